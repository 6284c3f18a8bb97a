package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const designJSON = `{
  "creator": "Yosys 0.38",
  "modules": {
    "top": {
      "ports": {
        "a": { "direction": "input",  "bits": [ 2 ] },
        "b": { "direction": "input",  "bits": [ 3 ] },
        "y": { "direction": "output", "bits": [ 4 ] }
      },
      "cells": {
        "and0": {
          "type": "$and",
          "parameters": { "A_WIDTH": 1, "B_WIDTH": 1, "Y_WIDTH": 1 },
          "connections": { "A": [ 2 ], "B": [ 3 ], "Y": [ 6 ] }
        },
        "u_leaf": {
          "type": "leaf",
          "connections": { "i": [ 6 ], "o": [ 4 ] }
        },
        "mem": {
          "type": "$mem_v2",
          "parameters": { "MEMID": "\\mem0", "SIZE": 4, "WIDTH": 1, "ABITS": 2, "OFFSET": 0, "RD_PORTS": 1, "WR_PORTS": 0 },
          "connections": {}
        }
      },
      "netnames": {
        "a":     { "hide_name": 0, "bits": [ 2 ] },
        "b":     { "hide_name": 0, "bits": [ 3 ] },
        "y":     { "hide_name": 0, "bits": [ 4 ] },
        "and_y": { "hide_name": 0, "bits": [ 6 ] }
      }
    },
    "leaf": {
      "ports": {
        "i": { "direction": "input",  "bits": [ 2 ] },
        "o": { "direction": "output", "bits": [ 3 ] }
      },
      "cells": {
        "inv": { "type": "$_NOT_", "connections": { "A": [ 2 ], "Y": [ 3 ] } }
      }
    }
  }
}`

const invalidJSON = `{
  "modules": {
    "m": {
      "cells": {
        "bad": {
          "type": "$eq",
          "parameters": { "A_WIDTH": 2, "B_WIDTH": 2, "Y_WIDTH": 2 },
          "connections": { "A": [ 2, 3 ], "B": [ 4, 5 ], "Y": [ 6, 7 ] }
        }
      }
    }
  }
}`

const designRTLIL = `module \top
  wire input 1 \a
  wire output 2 \y
  cell $_NOT_ \n0
    connect \A \a
    connect \Y \y
  end
end
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Reset flags to prevent accumulation between tests
	cfgPath, verbose, format, top = "", false, "", ""
	netModule, netName, memModule = "", "", ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCommandsE2E(t *testing.T) {
	dir := t.TempDir()
	conf := writeFile(t, dir, "netlist.toml", "[log]\nlevel = \"error\"\n")
	topConf := writeFile(t, dir, "top.toml", "[import]\ntop = \"leaf\"\n")
	design := writeFile(t, dir, "design.json", designJSON)
	invalid := writeFile(t, dir, "invalid.json", invalidJSON)
	rtl := writeFile(t, dir, "design.il", designRTLIL)
	sniffed := writeFile(t, dir, "design.netlist", designJSON)

	tests := []struct {
		name        string
		args        []string
		wantErr     error
		wantAnyErr  bool
		wantContain []string
		wantMissing []string
	}{
		{
			name:        "info",
			args:        []string{"info", "-c", conf, design},
			wantContain: []string{"Creator: Yosys 0.38", "Modules: 2", "module top", "module leaf", "instance leaf", "binary", "memory"},
		},
		{
			name:        "info rtlil by extension",
			args:        []string{"info", "-c", conf, rtl},
			wantContain: []string{"Modules: 1", "module top", "simple-gate"},
		},
		{
			name:        "info json by content",
			args:        []string{"info", "-c", conf, sniffed},
			wantContain: []string{"module leaf"},
		},
		{
			name:       "forced format mismatch",
			args:       []string{"info", "-c", conf, "--format", "json", rtl},
			wantAnyErr: true,
		},
		{
			name:        "order",
			args:        []string{"order", "-c", conf, design},
			wantContain: []string{"1.  leaf", "uses leaf"},
		},
		{
			name:        "order restricted by config",
			args:        []string{"order", "-c", topConf, design},
			wantContain: []string{"Build order (1 modules)", "leaf"},
			wantMissing: []string{"uses leaf"},
		},
		{
			name:       "unknown top",
			args:       []string{"order", "-c", conf, "--top", "nope", design},
			wantAnyErr: true,
		},
		{
			name:        "nets listing",
			args:        []string{"nets", "-c", conf, "-m", "top", design},
			wantContain: []string{"and_y", "DRIVERS"},
		},
		{
			name:        "single net",
			args:        []string{"nets", "-c", conf, "-m", "top", "--net", "and_y", design},
			wantContain: []string{"net and_y (id 6)", "and0.Y[0]", "u_leaf.i[0]"},
		},
		{
			name:        "net by id",
			args:        []string{"nets", "-c", conf, "-m", "top", "--net", "4", design},
			wantContain: []string{"net y (id 4)", "u_leaf.o[0]"},
		},
		{
			name:       "nets needs a module",
			args:       []string{"nets", "-c", conf, design},
			wantAnyErr: true,
		},
		{
			name:        "memories",
			args:        []string{"memories", "-c", conf, design},
			wantContain: []string{"top.mem0", "size", "4"},
		},
		{
			name:        "check passes",
			args:        []string{"check", "-c", conf, design},
			wantContain: []string{"OK: 2 modules, 4 cells"},
		},
		{
			name:        "check fails",
			args:        []string{"check", "-c", conf, invalid},
			wantErr:     errCheckFailed,
			wantContain: []string{"1 invalid cell(s)", "bad", "$eq"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := run(t, tt.args...)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.wantAnyErr:
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				return
			case err != nil:
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}

			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
			for _, miss := range tt.wantMissing {
				if strings.Contains(output, miss) {
					t.Errorf("Output contains unexpected string: %q\nGot:\n%s", miss, output)
				}
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		data string
		want string
	}{
		{"a.json", "module", "json"},
		{"a.il", "{", "rtlil"},
		{"a.RTLIL", "", "rtlil"},
		{"a.txt", "  \n{\"modules\":{}}", "json"},
		{"a", "module \\top\nend\n", "rtlil"},
	}
	for _, tt := range tests {
		if got := detectFormat(tt.path, []byte(tt.data)); got != tt.want {
			t.Errorf("detectFormat(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
