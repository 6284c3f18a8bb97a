package celltype

import "strings"

// GatePorts returns the input and output port names of a single-bit gate
// (simple, complex or mux gate). ok is false for other identifiers.
func GatePorts(id string) (inputs []string, outputs []string, ok bool) {
	switch id {
	case "$_BUF_", "$_NOT_":
		return []string{"A"}, []string{"Y"}, true
	case "$_AND_", "$_NAND_", "$_OR_", "$_NOR_", "$_XOR_", "$_XNOR_", "$_ANDNOT_", "$_ORNOT_":
		return []string{"A", "B"}, []string{"Y"}, true
	case "$_TBUF_":
		return []string{"A", "E"}, []string{"Y"}, true
	case "$_AOI3_", "$_OAI3_":
		return []string{"A", "B", "C"}, []string{"Y"}, true
	case "$_AOI4_", "$_OAI4_":
		return []string{"A", "B", "C", "D"}, []string{"Y"}, true
	case "$_MUX_", "$_NMUX_":
		return []string{"A", "B", "S"}, []string{"Y"}, true
	case "$_MUX4_":
		return append(letters(4), "S", "T"), []string{"Y"}, true
	case "$_MUX8_":
		return append(letters(8), "S", "T", "U"), []string{"Y"}, true
	case "$_MUX16_":
		return append(letters(16), "S", "T", "U", "V"), []string{"Y"}, true
	}
	return nil, nil, false
}

func letters(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('A' + i))
	}
	return out
}

// IsOutput reports whether port is an output of the primitive identified by
// ct. It is used when a document omits port directions. Module instances
// always report false; their directions come from the instantiated module.
func IsOutput(ct CellType, port string) bool {
	switch ct.Level {
	case LevelGate:
		if ct.Kind == KindFlipFlop {
			return port == "Q"
		}
		return port == "Y"
	case LevelWord:
		switch ct.Kind {
		case KindRegister:
			return port == "Q"
		case KindMemory:
			switch {
			case strings.HasPrefix(ct.ID, "$memrd"):
				return port == "DATA"
			case strings.HasPrefix(ct.ID, "$mem"):
				return port == "RD_DATA"
			}
			return false
		default:
			return port == "Y"
		}
	}
	return false
}
