package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amdgpu-tools/disassembler/internal/codeobject"
	"github.com/amdgpu-tools/disassembler/internal/codeobject/codeobjecttest"
	"github.com/amdgpu-tools/disassembler/internal/config"
	cerrors "github.com/amdgpu-tools/disassembler/internal/errors"
)

type harness struct {
	svc    *codeobjecttest.Service
	cfg    *config.Config
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	// Keep the user's config out of the tests.
	t.Setenv("DISASM_CONFIG", t.TempDir())

	return &harness{
		svc: &codeobjecttest.Service{
			Source: []byte("s_endpgm\n"),
			Root:   codeobject.NewMap(codeobject.Entry("amdhsa.target", codeobject.NewString("amdgcn-amd-amdhsa--gfx900"))),
		},
	}
}

func (h *harness) run(args ...string) error {
	cmd := NewRootCmd(func(cfg *config.Config, _ zerolog.Logger) codeobject.Service {
		h.cfg = cfg
		return h.svc
	})
	cmd.SetArgs(args)
	cmd.SetOut(&h.stdout)
	cmd.SetErr(&h.stderr)
	return cmd.Execute()
}

func TestRoot_MissingArgument(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	err = h.run()
	require.Error(t, err)
	assert.Equal(t, cerrors.ClassArgument, cerrors.ClassOf(err))
	assert.Equal(t, 1, cerrors.ExitCode(err))

	out := h.stdout.String()
	assert.Contains(t, out, "Usage: disassembler <.hsaco file name>")
	assert.Contains(t, out, `export LOADER_OPTIONS_APPEND="-dump-code=1 -dump-dir=<path/to/save/dump>"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no output files may be created")
	assert.Nil(t, h.cfg, "service must not be created")
}

func TestRoot_TooManyArguments(t *testing.T) {
	h := newHarness(t)

	err := h.run("a.hsaco", "b.hsaco")
	require.Error(t, err)
	assert.Equal(t, cerrors.ClassArgument, cerrors.ClassOf(err))
}

func TestRoot_Success(t *testing.T) {
	h := newHarness(t)
	input := filepath.Join(t.TempDir(), "kernel.hsaco")
	require.NoError(t, os.WriteFile(input, []byte("\x7fELF"), 0o644))

	require.NoError(t, h.run(input))

	assert.Equal(t, "Disassembly file saved to "+input+".disassembly\n", h.stdout.String())

	got, err := os.ReadFile(input + ".disassembly")
	require.NoError(t, err)
	assert.Equal(t, "s_endpgm\n\n============= Metadata =================\namdhsa.target : amdgcn-amd-amdhsa--gfx900\n", string(got))
}

func TestRoot_MissingInputFile(t *testing.T) {
	h := newHarness(t)

	err := h.run(filepath.Join(t.TempDir(), "missing.hsaco"))
	require.Error(t, err)
	assert.Equal(t, cerrors.ClassIO, cerrors.ClassOf(err))
	assert.Empty(t, h.stdout.String())
}

func TestRoot_Flags(t *testing.T) {
	h := newHarness(t)
	input := filepath.Join(t.TempDir(), "kernel.hsaco")
	require.NoError(t, os.WriteFile(input, []byte("\x7fELF"), 0o644))

	require.NoError(t, h.run("--log-level", "debug", "--objdump", "/opt/rocm/llvm/bin/llvm-objdump", input))

	require.NotNil(t, h.cfg)
	assert.Equal(t, "debug", h.cfg.Logging.Level)
	assert.Equal(t, "/opt/rocm/llvm/bin/llvm-objdump", h.cfg.Objdump.Path)
	assert.Contains(t, h.stderr.String(), "Starting disassembler")
}

func TestRoot_ConfigFile(t *testing.T) {
	h := newHarness(t)
	input := filepath.Join(t.TempDir(), "kernel.hsaco")
	require.NoError(t, os.WriteFile(input, []byte("\x7fELF"), 0o644))

	cfgPath := filepath.Join(t.TempDir(), "disasm.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("objdump:\n  path: llvm-objdump-18\n  timeout: 10s\n"), 0o644))

	require.NoError(t, h.run("--config", cfgPath, input))
	assert.Equal(t, "llvm-objdump-18", h.cfg.Objdump.Path)

	err := h.run("--config", filepath.Join(t.TempDir(), "missing.yaml"), input)
	require.Error(t, err)
	assert.Equal(t, cerrors.ClassArgument, cerrors.ClassOf(err))
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	h := newHarness(t)

	err := h.run("--log-level", "chatty", "kernel.hsaco")
	require.Error(t, err)
	assert.Equal(t, cerrors.ClassArgument, cerrors.ClassOf(err))
}

func TestRoot_Version(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("--version"))
	assert.Contains(t, h.stdout.String(), "disassembler version dev")
}

func TestNewLLVMService(t *testing.T) {
	svc := NewLLVMService(config.Default(), zerolog.Nop())
	assert.NotNil(t, svc)
}

func TestLoggingConfig(t *testing.T) {
	var buf bytes.Buffer

	cfg := config.Default()
	cfg.Logging.Level = ""
	lc := loggingConfig(cfg, &buf)
	assert.Equal(t, "warn", lc.Level)
	assert.False(t, lc.Pretty)
	assert.Same(t, &buf, lc.Output)

	cfg.Logging.Level = "debug"
	cfg.Logging.Pretty = true
	lc = loggingConfig(cfg, &buf)
	assert.Equal(t, "debug", lc.Level)
	assert.True(t, lc.Pretty)
}
