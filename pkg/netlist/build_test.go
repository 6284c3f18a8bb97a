package netlist

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/celltype"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/params"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/value"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/yosys"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

const hierarchyJSON = `{
  "creator": "test",
  "modules": {
    "top": {
      "ports": {
        "a":   { "direction": "input",  "bits": [ 2, 3 ] },
        "b":   { "direction": "input",  "bits": [ 4, 5 ] },
        "y":   { "direction": "output", "bits": [ 6, 7 ] },
        "inv": { "direction": "output", "bits": [ 8 ] }
      },
      "cells": {
        "and0": {
          "type": "$and",
          "parameters": { "A_WIDTH": "00000000000000000000000000000010", "B_WIDTH": "00000000000000000000000000000010", "Y_WIDTH": "00000000000000000000000000000010" },
          "port_directions": { "A": "input", "B": "input", "Y": "output" },
          "connections": { "A": [ 2, 3 ], "B": [ 4, 5 ], "Y": [ 9, 10 ] }
        },
        "u_buf": {
          "type": "buf2",
          "connections": { "i": [ 9, 10 ], "o": [ 6, 7 ] }
        },
        "n0": {
          "type": "$_NOT_",
          "connections": { "A": [ 2 ], "Y": [ 8 ] }
        },
        "tie": {
          "type": "$_BUF_",
          "connections": { "A": [ "1" ], "Y": [ 11 ] }
        }
      },
      "netnames": {
        "$and$1_Y": { "hide_name": 1, "bits": [ 9, 10 ] },
        "a":        { "hide_name": 0, "bits": [ 2, 3 ] },
        "mid":      { "hide_name": 0, "bits": [ 9, 10 ], "offset": 4 },
        "y":        { "hide_name": 0, "bits": [ 6, 7 ] }
      }
    },
    "buf2": {
      "ports": {
        "i": { "direction": "input",  "bits": [ 2, 3 ] },
        "o": { "direction": "output", "bits": [ 2, 3 ] }
      }
    }
  }
}`

func buildJSON(t *testing.T, doc string, opts ...Option) *Design {
	t.Helper()
	y, err := yosys.DecodeBytes([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}
	d, err := Build(y, append([]Option{WithLogger(quietLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

func TestBuildHierarchy(t *testing.T) {
	d := buildJSON(t, hierarchyJSON)
	if d.Creator != "test" {
		t.Errorf("Creator = %q", d.Creator)
	}
	if d.Order.Modules[0] != "buf2" || d.Modules[0].Name != "buf2" {
		t.Errorf("order = %v", d.Order.Modules)
	}

	top := d.Module("top")
	u := top.Cell("u_buf")
	if u.Submodule == nil || u.Submodule != d.Module("buf2") {
		t.Fatal("instance not linked to built submodule")
	}
	if u.Type.Level != celltype.LevelModule {
		t.Errorf("instance level = %s", u.Type.Level)
	}
	if got := u.PortDirection("o"); got != DirOutput {
		t.Errorf("direction from submodule = %s", got)
	}
	n0 := top.Cell("n0")
	if n0.PortDirection("Y") != DirOutput || n0.PortDirection("A") != DirInput {
		t.Error("gate directions not inferred")
	}
	if p, ok := top.Cell("and0").Params.(*params.BinaryParams); !ok || p.YWidth != 2 {
		t.Errorf("and0 params = %#v", top.Cell("and0").Params)
	}
	if got := top.Cell("and0").PortNames(); len(got) != 3 || got[0] != "A" || got[2] != "Y" {
		t.Errorf("PortNames = %v", got)
	}

	tie := top.Cell("tie").PortBits("A")
	if c, ok := tie[0].Ref.Const(); !ok || c != value.One {
		t.Errorf("constant endpoint = %v", tie[0].Ref)
	}
}

func TestNetNamesAndFanout(t *testing.T) {
	top := buildJSON(t, hierarchyJSON).Module("top")

	tests := []struct {
		id   int
		name string
	}{
		{2, "a[0]"},
		{9, "mid[4]"}, // visible name wins over the hidden one listed first
		{10, "mid[5]"},
		{8, "$net8"},
	}
	for _, tt := range tests {
		if n := top.Net(tt.id); n == nil || n.Name != tt.name {
			t.Errorf("net %d = %+v, want name %s", tt.id, n, tt.name)
		}
	}
	if top.NetByName("mid[4]").ID != 9 {
		t.Error("NetByName(mid[4])")
	}

	// net 2: driven by input port a[0], loads and0.A[0] and n0.A
	drivers := top.Drivers(2)
	if len(drivers) != 1 || drivers[0].Kind != RefPort {
		t.Errorf("drivers of net 2 = %v", drivers)
	}
	loads := top.Loads(2)
	if len(loads) != 2 {
		t.Fatalf("loads of net 2 = %v", loads)
	}
	r, ok := top.Resolve(loads[1])
	if !ok || r.Owner != "n0" || r.Port != "A" || !r.IsCell {
		t.Errorf("load = %+v", r)
	}

	// net 6: driven by the instance output, loads the module output y[0]
	drivers = top.Drivers(6)
	if len(drivers) != 1 {
		t.Fatalf("drivers of net 6 = %v", drivers)
	}
	if r, _ := top.Resolve(drivers[0]); r.Owner != "u_buf" || r.Port != "o" || r.Bit != 0 {
		t.Errorf("driver = %+v", r)
	}
	if loads := top.Loads(6); len(loads) != 1 || loads[0].Kind != RefPort {
		t.Errorf("loads of net 6 = %v", loads)
	}
}

const badCellJSON = `{
  "modules": {
    "m": {
      "ports": { "a": { "direction": "input", "bits": [ 2, 3 ] } },
      "cells": {
        "ok":  { "type": "$not", "parameters": { "A_WIDTH": 2, "Y_WIDTH": 2 }, "connections": { "A": [ 2, 3 ], "Y": [ 4, 5 ] } },
        "bad": { "type": "$eq",  "parameters": { "A_WIDTH": 2, "B_WIDTH": 2, "Y_WIDTH": 2 }, "connections": { "A": [ 2, 3 ], "B": [ 4, 5 ], "Y": [ 6, 7 ] } },
        "odd": { "type": "$fancy", "connections": { "Y": [ 8 ] } }
      }
    }
  }
}`

func TestPolicies(t *testing.T) {
	y, err := yosys.DecodeBytes([]byte(badCellJSON))
	if err != nil {
		t.Fatalf("DecodeBytes: %v", err)
	}

	_, err = Build(y, WithLogger(quietLogger()))
	var ce *CellError
	if !errors.As(err, &ce) {
		t.Fatalf("fail-fast error = %v, want CellError", err)
	}
	if ce.Module != "m" || ce.Cell != "bad" || ce.Type != "$eq" {
		t.Errorf("CellError = %+v", ce)
	}
	var ve *params.ValidationError
	if !errors.As(err, &ve) || ve.Port != "Y" || ve.Expected != 1 || ve.Actual != 2 {
		t.Errorf("ValidationError = %+v", ve)
	}

	logger, hook := test.NewNullLogger()
	d, err := Build(y, WithLogger(logger), WithPolicy(PolicyBestEffort))
	if err != nil {
		t.Fatalf("best-effort Build: %v", err)
	}
	m := d.Module("m")
	if len(m.Cells) != 2 || m.Cell("bad") != nil {
		t.Errorf("cells = %d", len(m.Cells))
	}
	if m.Cell("odd").Type.Kind != celltype.KindOther || m.Cell("odd").PortDirection("Y") != DirUnknown {
		t.Error("unknown primitive not kept as other")
	}
	if m.Cell("odd").Index != 1 {
		t.Errorf("cell index = %d, want 1", m.Cell("odd").Index)
	}
	if len(d.Diagnostics) != 1 || d.Diagnostics[0].Cell != "bad" {
		t.Errorf("diagnostics = %v", d.Diagnostics)
	}
	if e := hook.LastEntry(); e == nil || e.Level != logrus.WarnLevel || e.Data["cell"] != "bad" {
		t.Errorf("log entry = %+v", e)
	}
}

func TestBuildCycleWarns(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d, err := Build(design([]string{"A", "B"}, []string{"B", "A"}), WithLogger(logger))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.Modules) != 2 || !d.Order.IsCyclic() {
		t.Errorf("modules = %d cyclic = %v", len(d.Modules), d.Order.Cyclic)
	}
	found := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["modules"] != nil {
			found = true
		}
	}
	if !found {
		t.Error("cycle not logged")
	}
}

func TestBuildTop(t *testing.T) {
	doc := design([]string{"top", "mid"}, []string{"mid"}, []string{"unused"})
	d, err := Build(doc, WithLogger(quietLogger()), WithTop("mid"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.Modules) != 1 || d.Modules[0].Name != "mid" {
		t.Errorf("modules = %v", d.Order.Modules)
	}
	if _, err := Build(doc, WithTop("nope")); !errors.Is(err, ErrTopNotFound) {
		t.Errorf("unknown top: err = %v", err)
	}
	if _, err := Build(nil); !errors.Is(err, yosys.ErrMalformed) {
		t.Errorf("nil document: err = %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("best-effort"); err != nil || p != PolicyBestEffort {
		t.Errorf("ParsePolicy(best-effort) = %v %v", p, err)
	}
	if p, err := ParsePolicy(""); err != nil || p != PolicyFailFast {
		t.Errorf("ParsePolicy(\"\") = %v %v", p, err)
	}
	if _, err := ParsePolicy("yolo"); err == nil {
		t.Error("unknown policy accepted")
	}
}
