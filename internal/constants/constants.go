// Package constants defines shared configuration constants.
package constants

import "github.com/amdgpu-tools/disassembler/internal/codeobject"

var (
	ConfigFile = "disassembler.yaml"

	DefaultDir = "disassembler"
)

const (
	// TargetISA is the ISA every code object is disassembled for.
	TargetISA = "amdgcn-amd-amdhsa--gfx900"

	// SourceLanguage is the language the disassembly action is configured with.
	SourceLanguage = codeobject.LanguageHC

	// DataName is the name the input is loaded under in the code-object service.
	DataName = "hipkernel"

	// OutputSuffix is appended to the input path to name the output file.
	OutputSuffix = ".disassembly"
)
