// Package cli implements the disassembler command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/amdgpu-tools/disassembler/internal/codeobject"
	"github.com/amdgpu-tools/disassembler/internal/codeobject/llvm"
	"github.com/amdgpu-tools/disassembler/internal/config"
	"github.com/amdgpu-tools/disassembler/internal/disasm"
	cerrors "github.com/amdgpu-tools/disassembler/internal/errors"
	"github.com/amdgpu-tools/disassembler/internal/logging"
	"github.com/amdgpu-tools/disassembler/pkg/version"
)

const usageText = `Usage: disassembler <.hsaco file name>
<.hsaco file> can be generated by specify following env var before executing HIP/OpenCL app:
export LOADER_OPTIONS_APPEND="-dump-code=1 -dump-dir=<path/to/save/dump>"
`

// ServiceFactory builds the code-object service for a run.
type ServiceFactory func(cfg *config.Config, logger zerolog.Logger) codeobject.Service

// NewLLVMService is the default ServiceFactory.
func NewLLVMService(cfg *config.Config, logger zerolog.Logger) codeobject.Service {
	return llvm.New(llvm.Config{
		ObjdumpPath: cfg.Objdump.Path,
		Timeout:     cfg.Objdump.Timeout,
		ExtraArgs:   cfg.Objdump.ExtraArgs,
	}, logger)
}

type options struct {
	configPath  string
	logLevel    string
	objdumpPath string
}

func bindFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/disassembler/disassembler.yaml)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&opts.objdumpPath, "objdump", "", "Path to llvm-objdump")
}

// NewRootCmd creates the disassembler command. A nil factory selects NewLLVMService.
func NewRootCmd(newService ServiceFactory) *cobra.Command {
	if newService == nil {
		newService = NewLLVMService
	}
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "disassembler <.hsaco file name>",
		Short: "Disassemble an AMDGPU code object and dump its metadata",
		Long: `Disassemble an AMDGPU code object for gfx900 and dump the metadata tree
attached to it.

The disassembly and the metadata dump are written to <file>.disassembly,
next to the input. An existing output file is overwritten.`,
		Version:       version.Version,
		Args:          requireInput,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}

			logger := logging.NewWithComponent(loggingConfig(cfg, cmd.ErrOrStderr()), "disassembler")

			logger.Debug().
				Str("version", version.Version).
				Str("objdump", cfg.Objdump.Path).
				Msg("Starting disassembler")

			runner := disasm.NewRunner(newService(cfg, logger), logger)
			outputPath, err := runner.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printSaved(cmd.OutOrStdout(), outputPath)
			return nil
		},
	}

	bindFlags(cmd.Flags(), opts)
	cmd.SetVersionTemplate(version.String())

	return cmd
}

// requireInput accepts exactly one positional argument. A missing argument
// prints the usage block, including how to obtain a code object dump.
func requireInput(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 1:
		return nil
	case 0:
		_, _ = fmt.Fprint(cmd.OutOrStdout(), usageText)
		return cerrors.Argument("missing <.hsaco file name> argument")
	default:
		return cerrors.Argument(fmt.Sprintf("accepts 1 arg, received %d", len(args)))
	}
}

func loadConfig(fs *pflag.FlagSet, opts *options) (*config.Config, error) {
	loader := config.NewLoader()

	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = loader.LoadFile(opts.configPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, cerrors.Argument(err.Error())
	}

	if fs.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if fs.Changed("objdump") {
		cfg.Objdump.Path = opts.objdumpPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, cerrors.Argument(err.Error())
	}

	return cfg, nil
}

// loggingConfig layers the loaded settings over the logging defaults.
func loggingConfig(cfg *config.Config, stderr io.Writer) logging.Config {
	lc := logging.DefaultConfig()
	lc.Output = stderr
	lc.Pretty = cfg.Logging.Pretty || logging.IsTerminal(stderr)
	if cfg.Logging.Level != "" {
		lc.Level = cfg.Logging.Level
	}
	return lc
}

func printSaved(w io.Writer, outputPath string) {
	_, _ = color.New(color.FgGreen).Fprintf(w, "Disassembly file saved to %s\n", outputPath)
}

// Execute runs the root command. SIGINT and SIGTERM cancel the run.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd(nil).ExecuteContext(ctx)
}
