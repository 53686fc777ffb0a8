// Package disasm sequences one disassembly run: read the code object, have
// the code-object service disassemble it, write the text next to the input
// and append the metadata dump.
package disasm

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/xxh3"

	"github.com/amdgpu-tools/disassembler/internal/codeobject"
	"github.com/amdgpu-tools/disassembler/internal/constants"
	cerrors "github.com/amdgpu-tools/disassembler/internal/errors"
	"github.com/amdgpu-tools/disassembler/internal/metadata"
	"github.com/amdgpu-tools/disassembler/internal/safe"
)

// xzMagic starts every xz stream.
var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Runner runs disassemblies against a code-object service.
type Runner struct {
	service codeobject.Service
	logger  zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(service codeobject.Service, logger zerolog.Logger) *Runner {
	return &Runner{
		service: service,
		logger:  logger.With().Str("component", "disasm").Logger(),
	}
}

// OutputPath returns the path the disassembly of inputPath is written to.
func OutputPath(inputPath string) string {
	return inputPath + constants.OutputSuffix
}

// Run disassembles the code object at inputPath and returns the output path.
//
// The run stops at the first failure. Whatever was written before the
// failure stays in the output file.
func (r *Runner) Run(ctx context.Context, inputPath string) (string, error) {
	data, err := r.load(inputPath)
	if err != nil {
		return "", err
	}

	exe, err := r.service.LoadExecutable(ctx, data, constants.DataName)
	if err != nil {
		return "", serviceErr("create data", err)
	}

	source, err := r.service.Disassemble(ctx, exe, constants.TargetISA, constants.SourceLanguage)
	if err != nil {
		return "", serviceErr("do action", err)
	}

	outputPath := OutputPath(inputPath)
	if _, err := safe.WriteFile(outputPath, source); err != nil {
		return "", err
	}
	r.logger.Debug().
		Str("output", outputPath).
		Int("bytes", len(source)).
		Msg("Wrote disassembly")

	root, err := exe.Metadata()
	if err != nil {
		return "", serviceErr("get shader metadata", err)
	}

	sink := safe.NewAppender(outputPath)
	if err := metadata.Dump(root, sink); err != nil {
		return "", err
	}
	r.logger.Debug().
		Str("output", sink.Path()).
		Msg("Appended metadata")

	r.logger.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Msg("Disassembly complete")

	return outputPath, nil
}

// load reads the input, transparently decompressing xz dumps.
func (r *Runner) load(inputPath string) ([]byte, error) {
	data, err := safe.ReadAll(inputPath, &safe.ReadOptions{AllowSymlinks: true})
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, xzMagic) {
		compressed := len(data)
		data, err = decompressXZ(data)
		if err != nil {
			return nil, cerrors.IO("fail to read file", fmt.Errorf("decompress %s: %w", inputPath, err))
		}
		r.logger.Debug().
			Int("compressed", compressed).
			Int("size", len(data)).
			Msg("Decompressed xz input")
	}

	r.logger.Debug().
		Str("input", inputPath).
		Int("size", len(data)).
		Str("xxh3", fmt.Sprintf("%016x", xxh3.Hash(data))).
		Msg("Loaded code object")

	return data, nil
}

func decompressXZ(data []byte) ([]byte, error) {
	zr, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty xz stream")
	}
	return out, nil
}

func serviceErr(op string, err error) error {
	return cerrors.Service(op, int(codeobject.StatusOf(err)), err)
}
