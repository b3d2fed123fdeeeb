// Package config loads the ambient settings that tune a compile/run:
// capacity limits (of which only the VM cycle limit is applied), and
// defaults for which reports the CLI emits. Settings are optional — every field has a
// spec-mandated default, and a missing or partial config file falls
// back to it field by field.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable of a pl0c run.
type Config struct {
	// Limits mirrors the capacity ceilings spec.md §5 calls fatal when
	// exceeded, defaulting to the reference's own constants. Only
	// MaxCycles takes effect: main applies it to the VM. The lexer,
	// compiler, symbol table and VM use their own compiled-in constants
	// for the other limits, so changing those fields does not alter a run.
	Limits struct {
		MaxCodeLength   int `toml:"max_code_length"`
		MaxSymbolTable  int `toml:"max_symbol_table"`
		MaxStackHeight  int `toml:"max_stack_height"`
		MaxLexicalLevel int `toml:"max_lexical_level"`
		MaxIdentLength  int `toml:"max_ident_length"`
		MaxLiteral      int `toml:"max_literal"`
		MaxCycles       uint64 `toml:"max_cycles"`
	} `toml:"limits"`

	// Reports controls which of the three report bodies a bare `pl0c
	// <in> <out>` invocation (no flags) emits by default.
	Reports struct {
		Lexemes  bool `toml:"lexemes"`
		Assembly bool `toml:"assembly"`
		Trace    bool `toml:"trace"`
	} `toml:"reports"`

	// Debugger settings for the optional "-i" interactive step-debugger.
	Debugger struct {
		ShowRegisters bool `toml:"show_registers"`
		ShowStack     bool `toml:"show_stack"`
		HistorySize   int  `toml:"history_size"`
	} `toml:"debugger"`
}

// DefaultConfig returns the spec-mandated defaults: every capacity set
// to its minimum required ceiling, no reports implicitly enabled (the
// CLI's flags are the normal way to ask for one).
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Limits.MaxCodeLength = 550
	cfg.Limits.MaxSymbolTable = 500
	cfg.Limits.MaxStackHeight = 40
	cfg.Limits.MaxLexicalLevel = 3
	cfg.Limits.MaxIdentLength = 11
	cfg.Limits.MaxLiteral = 2047
	cfg.Limits.MaxCycles = 1_000_000

	cfg.Reports.Lexemes = false
	cfg.Reports.Assembly = false
	cfg.Reports.Trace = false

	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.ShowStack = true
	cfg.Debugger.HistorySize = 1000

	return cfg
}

// GetConfigPath returns the platform-specific default config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "pl0c")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "pl0c")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, returning defaults unchanged
// if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path, creating parent directories as
// needed.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
