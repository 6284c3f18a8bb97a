package celltype

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		id    string
		level Level
		kind  Kind
	}{
		{"$not", LevelWord, KindUnary},
		{"$reduce_xor", LevelWord, KindUnary},
		{"$and", LevelWord, KindBinary},
		{"$eq", LevelWord, KindBinary},
		{"$shiftx", LevelWord, KindBinary},
		{"$pmux", LevelWord, KindMux},
		{"$demux", LevelWord, KindMux},
		{"$sdffce", LevelWord, KindRegister},
		{"$mem_v2", LevelWord, KindMemory},
		{"$memwr", LevelWord, KindMemory},
		{"$fancy_new_op", LevelWord, KindOther},
		{"$_AND_", LevelGate, KindSimpleGate},
		{"$_TBUF_", LevelGate, KindSimpleGate},
		{"$_OAI4_", LevelGate, KindComplexGate},
		{"$_MUX8_", LevelGate, KindMux},
		{"$_DFF_P_", LevelGate, KindFlipFlop},
		{"$_SDFFCE_NP1N_", LevelGate, KindFlipFlop},
		{"$_DLATCHSR_PNP_", LevelGate, KindFlipFlop},
		{"$_FF_", LevelGate, KindFlipFlop},
		{"$_DFF_X_", LevelGate, KindOther},
		{"$_UNKNOWN_", LevelGate, KindOther},
		{"counter", LevelModule, KindOther},
		{"", LevelModule, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := Classify(tt.id)
			if got.ID != tt.id || got.Level != tt.level || got.Kind != tt.kind {
				t.Errorf("Classify(%q) = %v, want level=%s kind=%s", tt.id, got, tt.level, tt.kind)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for _, id := range Known() {
		a, b := Classify(id), Classify(id)
		if a != b {
			t.Fatalf("Classify(%q) not deterministic: %v != %v", id, a, b)
		}
		if a.Kind == KindOther {
			t.Errorf("known identifier %q classified as other", id)
		}
	}
}

func TestKindSetsDisjoint(t *testing.T) {
	seen := make(map[string]bool)
	for _, id := range Known() {
		if seen[id] {
			t.Errorf("identifier %q appears in more than one set", id)
		}
		seen[id] = true
	}
	if !seen["$_DFFSRE_NNNN_"] || !seen["$_DFFE_PN1P_"] {
		t.Error("flip-flop template expansion incomplete")
	}
}

func TestGatePorts(t *testing.T) {
	in, out, ok := GatePorts("$_MUX4_")
	if !ok {
		t.Fatal("GatePorts($_MUX4_) not found")
	}
	want := []string{"A", "B", "C", "D", "S", "T"}
	if len(in) != len(want) {
		t.Fatalf("inputs = %v, want %v", in, want)
	}
	for i := range want {
		if in[i] != want[i] {
			t.Errorf("input %d = %s, want %s", i, in[i], want[i])
		}
	}
	if len(out) != 1 || out[0] != "Y" {
		t.Errorf("outputs = %v", out)
	}
	if _, _, ok := GatePorts("$_DFF_P_"); ok {
		t.Error("flip-flops have no gate port layout")
	}
}

func TestIsOutput(t *testing.T) {
	cases := []struct {
		id   string
		port string
		want bool
	}{
		{"$add", "Y", true},
		{"$add", "A", false},
		{"$dff", "Q", true},
		{"$memrd", "DATA", true},
		{"$meminit", "DATA", false},
		{"$mem_v2", "RD_DATA", true},
		{"$_DFF_P_", "Q", true},
		{"$_AND_", "Y", true},
		{"submod", "Y", false},
	}
	for _, c := range cases {
		if got := IsOutput(Classify(c.id), c.port); got != c.want {
			t.Errorf("IsOutput(%s, %s) = %v, want %v", c.id, c.port, got, c.want)
		}
	}
}
