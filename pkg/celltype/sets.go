package celltype

import "strings"

// Word-level operator identifiers, grouped by kind.
var (
	unaryOps = []string{
		"$not", "$pos", "$neg",
		"$reduce_and", "$reduce_or", "$reduce_xor", "$reduce_xnor", "$reduce_bool",
		"$logic_not",
	}
	binaryOps = []string{
		"$and", "$or", "$xor", "$xnor",
		"$shl", "$shr", "$sshl", "$sshr", "$shift", "$shiftx",
		"$lt", "$le", "$eq", "$ne", "$eqx", "$nex", "$ge", "$gt",
		"$add", "$sub", "$mul", "$div", "$mod", "$divfloor", "$modfloor", "$pow",
		"$logic_and", "$logic_or",
	}
	muxOps = []string{
		"$mux", "$pmux", "$bmux", "$demux", "$bwmux", "$tribuf",
	}
	registerOps = []string{
		"$dff", "$dffe", "$adff", "$adffe", "$sdff", "$sdffe", "$sdffce",
		"$dffsr", "$dffsre", "$aldff", "$aldffe",
		"$dlatch", "$adlatch", "$dlatchsr", "$sr", "$ff",
	}
	memoryOps = []string{
		"$mem", "$mem_v2", "$memrd", "$memrd_v2", "$memwr", "$memwr_v2",
		"$meminit", "$meminit_v2",
	}
)

// Gate-level identifiers.
var (
	simpleGates = []string{
		"$_BUF_", "$_NOT_", "$_AND_", "$_NAND_", "$_OR_", "$_NOR_",
		"$_XOR_", "$_XNOR_", "$_ANDNOT_", "$_ORNOT_", "$_TBUF_",
	}
	complexGates = []string{
		"$_AOI3_", "$_OAI3_", "$_AOI4_", "$_OAI4_",
	}
	muxGates = []string{
		"$_MUX_", "$_NMUX_", "$_MUX4_", "$_MUX8_", "$_MUX16_",
	}
	// Flip-flop families. 'p' expands to a polarity (N/P), 'v' to a
	// reset value (0/1).
	flipFlopTemplates = []string{
		"$_FF_",
		"$_DFF_p_", "$_DFF_ppv_",
		"$_DFFE_pp_", "$_DFFE_ppvp_",
		"$_SDFF_ppv_", "$_SDFFE_ppvp_", "$_SDFFCE_ppvp_",
		"$_DFFSR_ppp_", "$_DFFSRE_pppp_",
		"$_ALDFF_pp_", "$_ALDFFE_ppp_",
		"$_DLATCH_p_", "$_DLATCH_ppv_", "$_DLATCHSR_ppp_",
		"$_SR_pp_",
	}
)

var (
	wordSets = []kindSet{
		{KindUnary, newSet(unaryOps...)},
		{KindBinary, newSet(binaryOps...)},
		{KindMux, newSet(muxOps...)},
		{KindRegister, newSet(registerOps...)},
		{KindMemory, newSet(memoryOps...)},
	}
	gateSets = []kindSet{
		{KindSimpleGate, newSet(simpleGates...)},
		{KindComplexGate, newSet(complexGates...)},
		{KindMux, newSet(muxGates...)},
		{KindFlipFlop, newSet(expandTemplates(flipFlopTemplates)...)},
	}
)

func expandTemplates(templates []string) []string {
	var out []string
	for _, tpl := range templates {
		out = append(out, expand(tpl)...)
	}
	return out
}

func expand(tpl string) []string {
	idx := strings.IndexAny(tpl[2:], "pv")
	if idx < 0 {
		return []string{tpl}
	}
	idx += 2
	var choices string
	if tpl[idx] == 'p' {
		choices = "NP"
	} else {
		choices = "01"
	}
	var out []string
	for i := 0; i < len(choices); i++ {
		out = append(out, expand(tpl[:idx]+choices[i:i+1]+tpl[idx+1:])...)
	}
	return out
}

// Known returns every identifier with a non-OTHER classification, in the
// order the classifier checks them.
func Known() []string {
	var out []string
	for _, sets := range [][]string{
		unaryOps, binaryOps, muxOps, registerOps, memoryOps,
		simpleGates, complexGates, muxGates, expandTemplates(flipFlopTemplates),
	} {
		out = append(out, sets...)
	}
	return out
}
