// Package metadata renders a code-object metadata tree into the text dump
// appended to .disassembly files.
//
// The dump is not JSON. Strings are written raw, lists of strings are
// bracketed as "[ a b ]", and every map pair is written as "key : value" on
// its own line, indented by a level counter that nested lists reset to 1 and
// then to 0, and that nested maps only ever increment. Consumers of
// .disassembly files depend on that exact layout.
package metadata

import (
	"io"
	"strings"

	"github.com/amdgpu-tools/disassembler/internal/codeobject"
	cerrors "github.com/amdgpu-tools/disassembler/internal/errors"
)

// Banner separates the disassembly text from the metadata dump.
const Banner = "\n============= Metadata =================\n"

// Dump writes the banner, the serialized tree and a trailing newline to sink.
func Dump(root codeobject.Node, sink io.Writer) error {
	r := newRenderer(sink)
	if err := r.emit(Banner); err != nil {
		return err
	}
	if err := r.node(root); err != nil {
		return err
	}
	return r.emit("\n")
}

// Serialize writes root to sink. Every fragment is handed to sink as soon as
// it is produced; on error, what was already written stays written.
//
// Each call has its own render state, so independent calls do not affect
// each other's output.
func Serialize(root codeobject.Node, sink io.Writer) error {
	return newRenderer(sink).node(root)
}

// renderer holds the state of one walk: whether a map pair was already
// written anywhere in the tree, and the current indentation level.
type renderer struct {
	sink    io.Writer
	started bool
	level   int
}

func newRenderer(sink io.Writer) *renderer {
	return &renderer{sink: sink}
}

func (r *renderer) emit(s string) error {
	if _, err := io.WriteString(r.sink, s); err != nil {
		if cerrors.ClassOf(err) == cerrors.ClassIO {
			return err
		}
		return cerrors.IO("write metadata", err)
	}
	return nil
}

func (r *renderer) node(n codeobject.Node) error {
	kind, err := n.Kind()
	if err != nil {
		return serviceErr("get metadata kind", err)
	}

	switch kind {
	case codeobject.KindString:
		return r.str(n)
	case codeobject.KindList:
		return r.list(n)
	case codeobject.KindMap:
		return r.mapNode(n)
	default:
		return cerrors.Format("invalid metadata kind", int(kind))
	}
}

func (r *renderer) str(n codeobject.Node) error {
	b, err := n.StringValue()
	if err != nil {
		return serviceErr("get metadata string", err)
	}
	if _, err := r.sink.Write(b); err != nil {
		return cerrors.IO("write metadata", err)
	}
	return nil
}

func (r *renderer) list(n codeobject.Node) error {
	size, err := n.ListSize()
	if err != nil {
		return serviceErr("get metadata list", err)
	}

	// Brackets are driven by the string children only.
	strs := 0
	for i := 0; i < size; i++ {
		item, err := n.ListItem(i)
		if err != nil {
			return serviceErr("get kernel metadata index", err)
		}
		kind, err := item.Kind()
		if err != nil {
			return serviceErr("get kernel metadata kind", err)
		}

		switch kind {
		case codeobject.KindString:
			if strs == 0 {
				if err := r.emit("[ "); err != nil {
					return err
				}
			}
			if err := r.str(item); err != nil {
				return err
			}
			if err := r.emit(" "); err != nil {
				return err
			}
			strs++
		case codeobject.KindList:
			if err := r.list(item); err != nil {
				return err
			}
		case codeobject.KindMap:
			if err := r.mapNode(item); err != nil {
				return err
			}
		default:
			return cerrors.Format("invalid metadata kind", int(kind))
		}
	}

	if strs > 0 {
		return r.emit("]")
	}
	return nil
}

func (r *renderer) mapNode(n codeobject.Node) error {
	var visitErr error
	err := n.ForEach(func(key, value codeobject.Node) error {
		visitErr = r.pair(key, value)
		return visitErr
	})
	if visitErr != nil {
		return visitErr
	}
	if err != nil {
		return serviceErr("iterate metadata map", err)
	}
	return nil
}

func (r *renderer) pair(key, value codeobject.Node) error {
	if r.started {
		if err := r.emit("\n"); err != nil {
			return err
		}
	} else {
		r.started = true
	}
	if r.level > 0 {
		if err := r.emit(strings.Repeat("\t", r.level)); err != nil {
			return err
		}
	}
	if err := r.str(key); err != nil {
		return err
	}
	if err := r.emit(" : "); err != nil {
		return err
	}

	kind, err := value.Kind()
	if err != nil {
		return serviceErr("get map value kind", err)
	}

	switch kind {
	case codeobject.KindString:
		return r.str(value)
	case codeobject.KindList:
		// Reset, not restore: pairs after the list print at level 0.
		r.level = 1
		err := r.list(value)
		r.level = 0
		return err
	case codeobject.KindMap:
		// Never decremented.
		r.level++
		return r.mapNode(value)
	default:
		return cerrors.Format("invalid map value kind", int(kind))
	}
}

func serviceErr(op string, err error) error {
	return cerrors.Service(op, int(codeobject.StatusOf(err)), err)
}
