package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/amdgpu-tools/disassembler/internal/constants"
)

// Loader locates and loads the configuration file.
type Loader struct {
	baseDir string
}

// NewLoader creates a new config loader.
// The base directory is resolved in this order:
//  1. DISASM_CONFIG environment variable.
//  2. User config directory ($XDG_CONFIG_HOME/disassembler, ~/.config/disassembler).
//  3. $TMPDIR/disassembler (environments without a home dir).
func NewLoader() *Loader {
	if baseDir := os.Getenv("DISASM_CONFIG"); baseDir != "" {
		return &Loader{baseDir: baseDir}
	}

	configDir, err := os.UserConfigDir()
	if err == nil {
		return &Loader{baseDir: filepath.Join(configDir, constants.DefaultDir)}
	}

	return &Loader{baseDir: filepath.Join(os.TempDir(), constants.DefaultDir)}
}

// Path returns the path of the default config file.
func (l *Loader) Path() string {
	return filepath.Join(l.baseDir, constants.ConfigFile)
}

// Load loads the default config file. A missing file yields the defaults.
// Environment variable overrides are applied in both cases.
func (l *Loader) Load() (*Config, error) {
	return l.load(l.Path(), false)
}

// LoadFile loads an explicit config file, which must exist.
func (l *Loader) LoadFile(path string) (*Config, error) {
	return l.load(path, true)
}

func (l *Loader) load(path string, required bool) (*Config, error) {
	cfg := Default()

	//nolint:gosec // G304: Path is the user's config file.
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !required:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Apply environment variable overrides (layered configuration).
	if err := MergeFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}
