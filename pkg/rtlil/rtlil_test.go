package rtlil

import (
	"errors"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/yosys"
)

const adderRTLIL = `# Generated by Yosys 0.38
autoidx 12
attribute \top 1
attribute \src "top.v:1.1-12.10"
module \top
  parameter \WIDTH 4
  attribute \src "top.v:2.16-2.17"
  wire width 4 input 1 \a
  wire width 4 input 2 \b
  wire width 4 output 3 \y
  wire width 4 $add$top.v:5$1_Y
  wire \unused
  memory width 8 size 16 \mem0
  attribute \src "top.v:5.12-5.17"
  cell $add $add$top.v:5$1
    parameter \A_SIGNED 0
    parameter \A_WIDTH 4
    parameter \B_WIDTH 4
    parameter \Y_WIDTH 4
    parameter signed \K -3
    parameter \NAME "adder \"main\""
    parameter \INIT 4'x01z
    connect \A \a
    connect \B { \b [3:1] 1'0 }
    connect \Y $add$top.v:5$1_Y
  end
  cell \sub \u0
    connect \i \a [0]
    connect \o \unused
  end
  connect \y $add$top.v:5$1_Y
  connect \unused 1'1
end
module \sub
  wire input 1 \i
  wire output 2 \o
  connect \o \i
end
`

func parse(t *testing.T, src string) *yosys.Design {
	t.Helper()
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	f, err := p.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	d, err := Convert(f)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	return d
}

func TestConvertModules(t *testing.T) {
	d := parse(t, adderRTLIL)
	if len(d.Modules) != 2 || d.Modules[0].Name != "top" || d.Modules[1].Name != "sub" {
		t.Fatalf("modules = %v", d.Modules)
	}
	top := d.Modules[0]
	if top.Attributes["src"] != "top.v:1.1-12.10" {
		t.Errorf("module attributes = %v", top.Attributes)
	}
	if top.ParameterDefaults["WIDTH"] != int64(4) {
		t.Errorf("parameter defaults = %v", top.ParameterDefaults)
	}

	if len(top.Ports) != 3 {
		t.Fatalf("ports = %d, want 3", len(top.Ports))
	}
	want := []struct {
		name string
		dir  yosys.Direction
	}{{"a", yosys.DirInput}, {"b", yosys.DirInput}, {"y", yosys.DirOutput}}
	for i, w := range want {
		if top.Ports[i].Name != w.name || top.Ports[i].Direction != w.dir || len(top.Ports[i].Bits) != 4 {
			t.Errorf("port %d = %+v", i, top.Ports[i])
		}
	}
	if a := top.Port("a"); a.Bits[0] != yosys.NetBit(2) {
		t.Errorf("first net id = %v, want 2", a.Bits[0])
	}

	add := top.Cells[0]
	if add.Type != "$add" || !add.HideName || add.Attributes["src"] != "top.v:5.12-5.17" {
		t.Errorf("cell = %+v", add)
	}
	if add.Parameters["K"] != int64(-3) || add.Parameters["NAME"] != `adder "main"` || add.Parameters["INIT"] != "x01z" {
		t.Errorf("parameters = %v", add.Parameters)
	}

	// y is aliased to the adder output, so both share nets
	y := top.Port("y").Bits
	out := add.Connection("Y").Bits
	for i := range y {
		if y[i] != out[i] || y[i].IsConst() {
			t.Errorf("bit %d: y=%v adder=%v", i, y[i], out[i])
		}
	}

	// { \b [3:1] 1'0 }: constant zero is the least significant bit
	bBits := add.Connection("B").Bits
	b := top.Port("b").Bits
	if bBits[0] != yosys.ConstBit('0') || bBits[1] != b[1] || bBits[3] != b[3] {
		t.Errorf("concat bits = %v (b = %v)", bBits, b)
	}

	u0 := top.Cells[1]
	if u0.Name != "u0" || u0.Type != "sub" || u0.HideName {
		t.Errorf("instance = %+v", u0)
	}
	if got := u0.Connection("o").Bits; len(got) != 1 || got[0] != yosys.ConstBit('1') {
		t.Errorf("wire tied to constant resolved to %v", got)
	}
	if got := u0.Connection("i").Bits; len(got) != 1 || got[0] != top.Port("a").Bits[0] {
		t.Errorf("bit select resolved to %v", got)
	}

	if len(top.Memories) != 1 || top.Memories[0].ID != "mem0" || top.Memories[0].Width != 8 || top.Memories[0].Size != 16 {
		t.Errorf("memories = %+v", top.Memories)
	}
	if len(top.NetNames) != 5 || !top.NetNames[3].HideName {
		t.Errorf("netnames = %d", len(top.NetNames))
	}

	sub := d.Modules[1]
	if sub.Port("i").Bits[0] != sub.Port("o").Bits[0] {
		t.Error("connect did not alias i and o")
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown wire", "module \\m\n  wire \\a\n  connect \\a \\b\nend\n"},
		{"width mismatch", "module \\m\n  wire width 2 \\a\n  connect \\a 1'0\nend\n"},
		{"index out of range", "module \\m\n  wire width 2 \\a\n  wire \\b\n  connect \\b \\a [5]\nend\n"},
		{"duplicate wire", "module \\m\n  wire \\a\n  wire \\a\nend\n"},
	}
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := p.ParseString(tt.src)
			if err != nil {
				t.Fatalf("ParseString: %v", err)
			}
			if _, err := Convert(f); !errors.Is(err, yosys.ErrMalformed) {
				t.Errorf("Convert error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"process block", "module \\m\n  wire \\a\n  process $proc$1\n  end\nend\n"},
		{"bare cell name", "module \\m\n  cell \\sub u0\n  end\nend\n"},
		{"bare wire name", "module \\m\n  wire a\nend\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.src)); err == nil {
				t.Fatal("invalid RTLIL accepted")
			}
		})
	}
}

func TestBitsLiteral(t *testing.T) {
	cases := map[string]string{
		"4'0101":  "0101",
		"6'101":   "000101",
		"2'1101":  "01",
		"3'-m1":   "xx1",
		"0'":      "",
		"8'xxxxx": "000xxxxx",
	}
	for in, want := range cases {
		if got := bitsLiteral(in); got != want {
			t.Errorf("bitsLiteral(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIntegerSigspecIs32Bits(t *testing.T) {
	d := parse(t, "module \\m\n  wire width 32 \\a\n  connect \\a 5\nend\n")
	bits := d.Modules[0].NetNames[0].Bits
	if len(bits) != 32 || bits[0] != yosys.ConstBit('1') || bits[1] != yosys.ConstBit('0') || bits[2] != yosys.ConstBit('1') || bits[31] != yosys.ConstBit('0') {
		t.Errorf("bits = %v", bits)
	}
}
