// Package config provides configuration loading for the disassembler.
//
// Values are layered: built-in defaults, then the YAML config file, then
// DISASM_* environment variables. Command line flags are applied last by
// the CLI.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the disassembler configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Objdump ObjdumpConfig `yaml:"objdump"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"DISASM_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"DISASM_LOG_PRETTY"`
}

// ObjdumpConfig configures the llvm-objdump backed code-object service.
type ObjdumpConfig struct {
	// Path is the llvm-objdump executable, resolved through PATH when relative.
	Path string `yaml:"path" env:"DISASM_OBJDUMP"`
	// Timeout bounds one disassembly. Zero disables the limit.
	Timeout time.Duration `yaml:"timeout" env:"DISASM_OBJDUMP_TIMEOUT"`
	// ExtraArgs are appended to the objdump command line.
	ExtraArgs []string `yaml:"extra_args" env:"DISASM_OBJDUMP_ARGS"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "warn",
		},
		Objdump: ObjdumpConfig{
			Path:    "llvm-objdump",
			Timeout: 2 * time.Minute,
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	if strings.TrimSpace(c.Objdump.Path) == "" {
		return fmt.Errorf("objdump.path: must not be empty")
	}
	if c.Objdump.Timeout < 0 {
		return fmt.Errorf("objdump.timeout: must not be negative")
	}
	return nil
}
