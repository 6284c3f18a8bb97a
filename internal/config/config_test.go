package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/netlist"
)

func write(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Policy() != netlist.PolicyFailFast || !cfg.Import.ValidateSchema || cfg.Level() != logrus.InfoLevel {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
		check   func(*testing.T, *Config)
	}{
		{
			name: "full",
			body: "[import]\npolicy = \"best-effort\"\nformat = \"rtlil\"\nvalidate_schema = false\ntop = \"soc\"\n[log]\nlevel = \"debug\"\n",
			check: func(t *testing.T, c *Config) {
				if c.Policy() != netlist.PolicyBestEffort || c.Import.Format != FormatRTLIL ||
					c.Import.ValidateSchema || c.Import.Top != "soc" || c.Level() != logrus.DebugLevel {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{
			name: "partial keeps defaults",
			body: "[import]\ntop = \"cpu\"\n",
			check: func(t *testing.T, c *Config) {
				if c.Import.Format != FormatAuto || !c.Import.ValidateSchema || c.Import.Top != "cpu" {
					t.Errorf("config = %+v", c)
				}
			},
		},
		{name: "unknown key", body: "[import]\nstrict = true\n", wantErr: "import.strict"},
		{name: "bad policy", body: "[import]\npolicy = \"sometimes\"\n", wantErr: "unknown policy"},
		{name: "bad format", body: "[import]\nformat = \"edif\"\n", wantErr: "unknown format"},
		{name: "bad level", body: "[log]\nlevel = \"loud\"\n", wantErr: "loud"},
		{name: "syntax", body: "[import\n", wantErr: FileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, t.TempDir(), tt.body)
			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	want := write(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := Find(nested)
	if err != nil || !ok || got != want {
		t.Errorf("Find = %q %v %v, want %q", got, ok, err, want)
	}
}
