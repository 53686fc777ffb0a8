// Package llvm implements the code-object service on top of llvm-objdump
// and the metadata note embedded in AMDGPU code objects.
package llvm

import (
	"bytes"
	"context"
	"debug/elf"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/amdgpu-tools/disassembler/internal/codeobject"
	cerrors "github.com/amdgpu-tools/disassembler/internal/errors"
)

// Config configures the objdump invocation.
type Config struct {
	// ObjdumpPath is the llvm-objdump executable.
	ObjdumpPath string
	// Timeout bounds one disassembly. Zero disables the limit.
	Timeout time.Duration
	// ExtraArgs are appended after the generated arguments.
	ExtraArgs []string
}

// Service is a codeobject.Service backed by llvm-objdump.
type Service struct {
	cfg    Config
	logger zerolog.Logger
}

var _ codeobject.Service = (*Service)(nil)

// New creates a Service.
func New(cfg Config, logger zerolog.Logger) *Service {
	if cfg.ObjdumpPath == "" {
		cfg.ObjdumpPath = "llvm-objdump"
	}
	return &Service{
		cfg:    cfg,
		logger: logger.With().Str("component", "llvm-service").Logger(),
	}
}

// Executable is an AMDGPU ELF loaded into the Service.
type Executable struct {
	name string
	data []byte
	file *elf.File
}

// Name implements codeobject.Executable.
func (e *Executable) Name() string {
	return e.name
}

// Metadata decodes the NT_AMDGPU_METADATA note of the executable.
func (e *Executable) Metadata() (codeobject.Node, error) {
	desc, err := findMetadataNote(e.file)
	if err != nil {
		return nil, err
	}
	return decodeMetadata(desc)
}

// LoadExecutable parses data as an AMDGPU ELF code object.
func (s *Service) LoadExecutable(_ context.Context, data []byte, name string) (codeobject.Executable, error) {
	if len(data) == 0 {
		return nil, codeobject.Errorf(codeobject.StatusInvalidArgument, "set data: empty code object")
	}

	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, codeobject.Wrap(codeobject.StatusInvalidArgument, "set data", err)
	}
	if f.Machine != elf.EM_AMDGPU {
		return nil, codeobject.Errorf(codeobject.StatusInvalidArgument,
			"set data: not an AMDGPU code object (machine %s)", f.Machine)
	}

	s.logger.Debug().
		Str("name", name).
		Int("size", len(data)).
		Str("class", f.Class.String()).
		Int("sections", len(f.Sections)).
		Msg("Loaded executable")

	return &Executable{name: name, data: data, file: f}, nil
}

// Disassemble runs llvm-objdump over exe for the given ISA.
func (s *Service) Disassemble(ctx context.Context, exe codeobject.Executable, isa string, lang codeobject.Language) ([]byte, error) {
	e, ok := exe.(*Executable)
	if !ok {
		return nil, codeobject.Errorf(codeobject.StatusInvalidArgument, "do action: executable %q was not loaded by this service", exe.Name())
	}

	tgt, err := parseISA(isa)
	if err != nil {
		return nil, err
	}
	if !supportedLanguage(lang) {
		return nil, codeobject.Errorf(codeobject.StatusInvalidArgument, "set language: unsupported language %s", lang)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	tmp, err := os.CreateTemp("", "disasm-*.hsaco")
	if err != nil {
		return nil, codeobject.Wrap(codeobject.StatusOutOfResources, "create data", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(e.data); err != nil {
		cerrors.DeferClose(s.logger, tmp, "failed to close code object temp file")
		return nil, codeobject.Wrap(codeobject.StatusOutOfResources, "create data", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, codeobject.Wrap(codeobject.StatusOutOfResources, "create data", err)
	}

	args := tgt.objdumpArgs()
	args = append(args, s.cfg.ExtraArgs...)
	args = append(args, tmpPath)

	s.logger.Debug().
		Str("objdump", s.cfg.ObjdumpPath).
		Strs("args", args).
		Str("language", lang.String()).
		Msg("Running disassembler")

	var stdout, stderr bytes.Buffer
	// #nosec G204 - objdump path and arguments come from the user's config.
	cmd := exec.CommandContext(ctx, s.cfg.ObjdumpPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, codeobject.Wrap(codeobject.StatusError, "do action", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, codeobject.Wrap(codeobject.StatusError, "do action", err)
		}
		return nil, codeobject.Wrap(codeobject.StatusError, fmt.Sprintf("do action: %s", msg), err)
	}

	s.logger.Debug().
		Dur("elapsed", time.Since(start)).
		Int("bytes", stdout.Len()).
		Msg("Disassembly finished")

	// objdump names its input in the header; report the data name instead
	// of the temp file.
	return bytes.ReplaceAll(stdout.Bytes(), []byte(tmpPath), []byte(e.name)), nil
}

func supportedLanguage(lang codeobject.Language) bool {
	switch lang {
	case codeobject.LanguageOpenCL12, codeobject.LanguageOpenCL20, codeobject.LanguageHC, codeobject.LanguageHIP:
		return true
	default:
		return false
	}
}
