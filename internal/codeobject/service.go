package codeobject

import (
	"context"
	"fmt"
)

// Kind is the kind of a metadata node.
type Kind int

// Kind values match the ones reported by the code-object service.
const (
	KindNull   Kind = 0
	KindString Kind = 1
	KindMap    Kind = 2
	KindList   Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Language is the source language an action is configured for.
type Language int

const (
	LanguageNone Language = iota
	LanguageOpenCL12
	LanguageOpenCL20
	LanguageHC
	LanguageHIP
)

func (l Language) String() string {
	switch l {
	case LanguageNone:
		return "none"
	case LanguageOpenCL12:
		return "opencl-1.2"
	case LanguageOpenCL20:
		return "opencl-2.0"
	case LanguageHC:
		return "hc"
	case LanguageHIP:
		return "hip"
	default:
		return fmt.Sprintf("language(%d)", int(l))
	}
}

// Node is a read-only handle on a metadata node. Handles are only valid
// while the Executable that produced them is alive.
type Node interface {
	// Kind reports the node kind.
	Kind() (Kind, error)
	// StringValue returns the bytes of a String node.
	StringValue() ([]byte, error)
	// ListSize returns the number of children of a List node.
	ListSize() (int, error)
	// ListItem returns the child at index i of a List node.
	ListItem(i int) (Node, error)
	// ForEach calls visit for every pair of a Map node in stored order and
	// stops at the first error visit returns.
	ForEach(visit func(key, value Node) error) error
}

// Executable is a code object loaded into the service.
type Executable interface {
	// Name is the data name the executable was loaded under.
	Name() string
	// Metadata returns the root of the metadata tree of the loaded binary.
	Metadata() (Node, error)
}

// Service is the code-object service.
type Service interface {
	// LoadExecutable loads an executable code object from its raw bytes.
	LoadExecutable(ctx context.Context, data []byte, name string) (Executable, error)
	// Disassemble disassembles exe for the target ISA and returns the source text.
	Disassemble(ctx context.Context, exe Executable, isa string, lang Language) ([]byte, error)
}
