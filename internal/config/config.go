// Package config loads the optional netlist.toml import configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

// FileName is the configuration file looked up by Find.
const FileName = "netlist.toml"

// Config controls how documents are imported.
type Config struct {
	Import ImportConfig `toml:"import"`
	Log    LogConfig    `toml:"log"`
}

// ImportConfig holds the [import] section.
type ImportConfig struct {
	Policy         string `toml:"policy"`          // fail-fast or best-effort
	Format         string `toml:"format"`          // auto, json or rtlil
	ValidateSchema bool   `toml:"validate_schema"` // unify JSON input with the embedded schema
	Top            string `toml:"top"`             // restrict the build to this hierarchy
}

// LogConfig holds the [log] section.
type LogConfig struct {
	Level string `toml:"level"`
}

// Input formats.
const (
	FormatAuto  = "auto"
	FormatJSON  = "json"
	FormatRTLIL = "rtlil"
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Import: ImportConfig{
			Policy:         netlist.PolicyFailFast.String(),
			Format:         FormatAuto,
			ValidateSchema: true,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. Keys the configuration does not know
// are rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Find walks up from dir looking for FileName. ok is false when no file
// exists between dir and the filesystem root.
func Find(dir string) (path string, ok bool, err error) {
	if dir == "" {
		dir = "."
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", false, fmt.Errorf("config: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("config: %w", err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := netlist.ParsePolicy(c.Import.Policy); err != nil {
		return err
	}
	switch c.Import.Format {
	case "", FormatAuto, FormatJSON, FormatRTLIL:
	default:
		return fmt.Errorf("unknown format %q", c.Import.Format)
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return err
		}
	}
	return nil
}

// Policy returns the parsed import policy.
func (c *Config) Policy() netlist.Policy {
	p, _ := netlist.ParsePolicy(c.Import.Policy)
	return p
}

// Level returns the parsed log level, info when unset.
func (c *Config) Level() logrus.Level {
	l, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}
