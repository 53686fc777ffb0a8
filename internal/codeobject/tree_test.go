package codeobject

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryNodes(t *testing.T) {
	tree := NewMap(
		Entry("amdhsa.version", NewList(NewString("1"), NewString("2"))),
		Entry("amdhsa.target", NewString("amdgcn-amd-amdhsa--gfx900")),
	)

	kind, err := tree.Kind()
	require.NoError(t, err)
	assert.Equal(t, KindMap, kind)

	var keys []string
	err = tree.ForEach(func(key, value Node) error {
		b, err := key.StringValue()
		require.NoError(t, err)
		keys = append(keys, string(b))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"amdhsa.version", "amdhsa.target"}, keys)

	list := tree[0].Value
	size, err := list.ListSize()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	item, err := list.ListItem(1)
	require.NoError(t, err)
	b, err := item.StringValue()
	require.NoError(t, err)
	assert.Equal(t, "2", string(b))

	_, err = list.ListItem(2)
	require.Error(t, err)
	assert.Equal(t, StatusInvalidArgument, StatusOf(err))
}

func TestInMemoryNodes_KindMismatch(t *testing.T) {
	tests := []struct {
		name  string
		query func() error
	}{
		{"string as list", func() error { _, err := NewString("x").ListSize(); return err }},
		{"string as map", func() error { return NewString("x").ForEach(func(_, _ Node) error { return nil }) }},
		{"list as string", func() error { _, err := NewList().StringValue(); return err }},
		{"map as list", func() error { _, err := NewMap().ListItem(0); return err }},
		{"map as string", func() error { _, err := NewMap().StringValue(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query()
			require.Error(t, err)
			assert.Equal(t, StatusInvalidArgument, StatusOf(err))
		})
	}
}

func TestStringValueIsACopy(t *testing.T) {
	s := NewString("abc")
	b, err := s.StringValue()
	require.NoError(t, err)
	b[0] = 'x'
	assert.Equal(t, "abc", string(s))
}

func TestFromValue(t *testing.T) {
	doc := map[any]any{
		"amdhsa.version": []any{uint8(1), uint8(2)},
		"amdhsa.kernels": []any{
			map[any]any{
				".name":               "vector_add",
				".sgpr_count":         int32(14),
				".uses_dynamic_stack": false,
				".wavefront_size":     uint64(64),
				".args":               []any{},
			},
		},
		"amdhsa.target": "amdgcn-amd-amdhsa--gfx900",
		"ratio":         float64(0.5),
		"blob":          []byte("raw"),
		"empty":         nil,
	}

	node, err := FromValue(doc)
	require.NoError(t, err)

	root, ok := node.(Map)
	require.True(t, ok)

	var keys []string
	for _, p := range root {
		keys = append(keys, string(p.Key.(String)))
	}
	assert.Equal(t, []string{"amdhsa.kernels", "amdhsa.target", "amdhsa.version", "blob", "empty", "ratio"}, keys)

	assert.Equal(t, NewList(NewString("1"), NewString("2")), root[2].Value)
	assert.Equal(t, NewString("raw"), root[3].Value)
	assert.Equal(t, NewString(""), root[4].Value)
	assert.Equal(t, NewString("0.5"), root[5].Value)

	kernels := root[0].Value.(List)
	require.Len(t, kernels, 1)
	kernel := kernels[0].(Map)

	var kernelKeys []string
	for _, p := range kernel {
		kernelKeys = append(kernelKeys, string(p.Key.(String)))
	}
	assert.Equal(t, []string{".args", ".name", ".sgpr_count", ".uses_dynamic_stack", ".wavefront_size"}, kernelKeys)
	assert.Equal(t, NewList(), kernel[0].Value)
	assert.Equal(t, NewString("14"), kernel[2].Value)
	assert.Equal(t, NewString("false"), kernel[3].Value)
	assert.Equal(t, NewString("64"), kernel[4].Value)
}

func TestFromValue_StringKeyedMap(t *testing.T) {
	node, err := FromValue(map[string]any{"b": "2", "a": int64(-1)})
	require.NoError(t, err)
	assert.Equal(t, NewMap(Entry("a", NewString("-1")), Entry("b", NewString("2"))), node)
}

func TestFromValue_Unsupported(t *testing.T) {
	_, err := FromValue(map[any]any{"k": struct{}{}})
	require.Error(t, err)
	assert.Equal(t, StatusInvalidArgument, StatusOf(err))

	_, err = FromValue(map[any]any{[2]int{1, 2}: "v"})
	require.Error(t, err)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusOutOfResources, StatusOf(Errorf(StatusOutOfResources, "oom")))
	assert.Equal(t, StatusError, StatusOf(assert.AnError))

	wrapped := Wrap(StatusInvalidArgument, "load", assert.AnError)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Equal(t, "load: "+assert.AnError.Error(), wrapped.Error())
}

func TestFromValue_CollidingKeys(t *testing.T) {
	for i := 0; i < 20; i++ {
		_, err := FromValue(map[any]any{int64(1): "int", "1": "string"})
		require.Error(t, err)
		assert.Equal(t, StatusInvalidArgument, StatusOf(err))
		assert.Contains(t, err.Error(), `duplicate map key "1"`)
	}

	_, err := FromValue(map[any]any{"outer": map[any]any{true: "a", "true": "b"}})
	require.Error(t, err)
	assert.Equal(t, StatusInvalidArgument, StatusOf(err))
}

func TestError_As(t *testing.T) {
	err := fmt.Errorf("load executable: %w", Wrap(StatusOutOfResources, "do action", assert.AnError))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StatusOutOfResources, se.Status)
	assert.Equal(t, "do action", se.Msg)
	assert.ErrorIs(t, err, assert.AnError)

	plain := Errorf(StatusInvalidArgument, "bad isa %q", "gfx1")
	assert.Equal(t, `bad isa "gfx1"`, plain.Error())
	assert.NoError(t, plain.Unwrap())
}
