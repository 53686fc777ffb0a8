package llvm

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"

	"github.com/shamaton/msgpack/v2"

	"github.com/amdgpu-tools/disassembler/internal/codeobject"
)

const (
	noteNameAMDGPU = "AMDGPU"
	// ntAMDGPUMetadata holds the msgpack encoded code object metadata (v3+).
	ntAMDGPUMetadata = 32
)

type note struct {
	name string
	typ  uint32
	desc []byte
}

// parseNotes splits the content of a note section into its entries.
// Layout per entry: namesz, descsz, type, name and desc each padded to 4 bytes.
func parseNotes(data []byte, order binary.ByteOrder) ([]note, error) {
	var notes []note
	for off := 0; off < len(data); {
		if len(data)-off < 12 {
			return nil, fmt.Errorf("truncated note header at offset %d", off)
		}
		namesz := int(order.Uint32(data[off:]))
		descsz := int(order.Uint32(data[off+4:]))
		typ := order.Uint32(data[off+8:])
		off += 12

		if namesz < 0 || descsz < 0 || namesz > len(data)-off {
			return nil, fmt.Errorf("note name overruns section at offset %d", off)
		}
		name := string(bytes.TrimRight(data[off:off+namesz], "\x00"))
		off += align4(namesz)

		if off > len(data) || descsz > len(data)-off {
			return nil, fmt.Errorf("note desc overruns section at offset %d", off)
		}
		desc := data[off : off+descsz]
		off += align4(descsz)

		notes = append(notes, note{name: name, typ: typ, desc: desc})
	}
	return notes, nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}

func findMetadataNote(f *elf.File) ([]byte, error) {
	for _, sec := range f.Sections {
		if sec.Type != elf.SHT_NOTE {
			continue
		}
		data, err := sec.Data()
		if err != nil {
			return nil, codeobject.Wrap(codeobject.StatusInvalidArgument, "get shader metadata", err)
		}
		notes, err := parseNotes(data, f.ByteOrder)
		if err != nil {
			return nil, codeobject.Wrap(codeobject.StatusInvalidArgument, "get shader metadata", err)
		}
		for _, n := range notes {
			if n.name == noteNameAMDGPU && n.typ == ntAMDGPUMetadata {
				return n.desc, nil
			}
		}
	}
	return nil, codeobject.Errorf(codeobject.StatusInvalidArgument, "get shader metadata: no AMDGPU metadata note")
}

func decodeMetadata(desc []byte) (codeobject.Node, error) {
	var doc any
	if err := msgpack.Unmarshal(desc, &doc); err != nil {
		return nil, codeobject.Wrap(codeobject.StatusInvalidArgument, "decode shader metadata", err)
	}
	root, err := codeobject.FromValue(doc)
	if err != nil {
		return nil, codeobject.Wrap(codeobject.StatusInvalidArgument, "decode shader metadata", err)
	}
	return root, nil
}
