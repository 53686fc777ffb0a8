package codeobject

import (
	"fmt"
	"sort"
	"strconv"
)

// String is an in-memory String node.
type String []byte

// List is an in-memory List node.
type List []Node

// Map is an in-memory Map node. Pairs are visited in slice order.
type Map []Pair

// Pair is one key/value entry of a Map.
type Pair struct {
	Key   Node
	Value Node
}

// NewString returns a String node holding s.
func NewString(s string) String {
	return String(s)
}

// NewList returns a List node with the given children.
func NewList(items ...Node) List {
	if items == nil {
		return List{}
	}
	return List(items)
}

// NewMap returns a Map node with the given pairs.
func NewMap(pairs ...Pair) Map {
	if pairs == nil {
		return Map{}
	}
	return Map(pairs)
}

// Entry returns a Pair with a String key.
func Entry(key string, value Node) Pair {
	return Pair{Key: String(key), Value: value}
}

func kindMismatch(op string, kind Kind) error {
	return Errorf(StatusInvalidArgument, "%s on %s node", op, kind)
}

func (String) Kind() (Kind, error) { return KindString, nil }

func (s String) StringValue() ([]byte, error) {
	out := make([]byte, len(s))
	copy(out, s)
	return out, nil
}

func (String) ListSize() (int, error)     { return 0, kindMismatch("list size", KindString) }
func (String) ListItem(int) (Node, error) { return nil, kindMismatch("list index", KindString) }
func (String) ForEach(func(_, _ Node) error) error {
	return kindMismatch("map iterate", KindString)
}

func (List) Kind() (Kind, error)          { return KindList, nil }
func (List) StringValue() ([]byte, error) { return nil, kindMismatch("string value", KindList) }
func (l List) ListSize() (int, error)     { return len(l), nil }
func (List) ForEach(func(_, _ Node) error) error {
	return kindMismatch("map iterate", KindList)
}

func (l List) ListItem(i int) (Node, error) {
	if i < 0 || i >= len(l) {
		return nil, Errorf(StatusInvalidArgument, "list index %d out of range [0,%d)", i, len(l))
	}
	return l[i], nil
}

func (Map) Kind() (Kind, error)          { return KindMap, nil }
func (Map) StringValue() ([]byte, error) { return nil, kindMismatch("string value", KindMap) }
func (Map) ListSize() (int, error)       { return 0, kindMismatch("list size", KindMap) }
func (Map) ListItem(int) (Node, error)   { return nil, kindMismatch("list index", KindMap) }

func (m Map) ForEach(visit func(key, value Node) error) error {
	for _, p := range m {
		if err := visit(p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// FromValue converts a decoded document (as produced by msgpack, YAML or
// JSON decoders into interface{}) into a metadata tree.
//
// Maps become Map nodes with their pairs ordered by key, arrays become List
// nodes and every scalar becomes a String node: booleans as true/false,
// integers in decimal, floats in their shortest form, nil as the empty string.
func FromValue(v any) (Node, error) {
	switch val := v.(type) {
	case []any:
		items := make(List, 0, len(val))
		for i, item := range val {
			n, err := FromValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, n)
		}
		return items, nil

	case map[any]any:
		pairs := make(Map, 0, len(val))
		seen := make(map[string]struct{}, len(val))
		for k, item := range val {
			key, ok := scalarString(k)
			if !ok {
				return nil, Errorf(StatusInvalidArgument, "unsupported map key type %T", k)
			}
			// Keys of different types may render the same, e.g. 1 and "1".
			if _, dup := seen[key]; dup {
				return nil, Errorf(StatusInvalidArgument, "duplicate map key %q", key)
			}
			seen[key] = struct{}{}
			n, err := FromValue(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			pairs = append(pairs, Pair{Key: String(key), Value: n})
		}
		sortPairs(pairs)
		return pairs, nil

	case map[string]any:
		pairs := make(Map, 0, len(val))
		for k, item := range val {
			n, err := FromValue(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			pairs = append(pairs, Pair{Key: String(k), Value: n})
		}
		sortPairs(pairs)
		return pairs, nil
	}

	if s, ok := scalarString(v); ok {
		return String(s), nil
	}
	return nil, Errorf(StatusInvalidArgument, "unsupported metadata value type %T", v)
}

func sortPairs(pairs Map) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return string(pairs[i].Key.(String)) < string(pairs[j].Key.(String))
	})
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case []byte:
		return string(val), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.FormatInt(int64(val), 10), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), true
	default:
		return "", false
	}
}
