package params

import (
	"sort"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/value"
)

// BinaryCategory groups binary operators by their output width rule.
type BinaryCategory uint8

const (
	CategoryLogic      BinaryCategory = iota // logic and compare: Y is one bit
	CategoryBitwise                          // Y == max(A, B)
	CategoryArithmetic                       // Y >= max(A, B)
	CategoryShift                            // Y == A
)

var binaryCategories = map[string]BinaryCategory{
	"$lt": CategoryLogic, "$le": CategoryLogic, "$eq": CategoryLogic, "$ne": CategoryLogic,
	"$eqx": CategoryLogic, "$nex": CategoryLogic, "$ge": CategoryLogic, "$gt": CategoryLogic,
	"$logic_and": CategoryLogic, "$logic_or": CategoryLogic,

	"$and": CategoryBitwise, "$or": CategoryBitwise, "$xor": CategoryBitwise, "$xnor": CategoryBitwise,

	"$add": CategoryArithmetic, "$sub": CategoryArithmetic, "$mul": CategoryArithmetic,
	"$div": CategoryArithmetic, "$mod": CategoryArithmetic, "$divfloor": CategoryArithmetic,
	"$modfloor": CategoryArithmetic, "$pow": CategoryArithmetic,

	"$shl": CategoryShift, "$shr": CategoryShift, "$sshl": CategoryShift,
	"$sshr": CategoryShift, "$shift": CategoryShift, "$shiftx": CategoryShift,
}

// UnaryParams covers $not, $pos, $neg, the reductions and $logic_not.
type UnaryParams struct {
	ID      string
	AWidth  int
	YWidth  int
	ASigned bool
}

func (p *UnaryParams) Op() string { return p.ID }
func (p *UnaryParams) sealed()    {}

func (p *UnaryParams) Widths() map[string]int {
	return map[string]int{"A": p.AWidth, "Y": p.YWidth}
}

// Reduces reports whether the operator collapses its input to one bit.
func (p *UnaryParams) Reduces() bool {
	switch p.ID {
	case "$not", "$pos", "$neg":
		return false
	}
	return true
}

func decodeUnary(id string, raw value.Values, ports Ports) *UnaryParams {
	return &UnaryParams{
		ID:      id,
		AWidth:  width(raw, ports, "A_WIDTH", "A"),
		YWidth:  width(raw, ports, "Y_WIDTH", "Y"),
		ASigned: raw.Bool("A_SIGNED", false),
	}
}

func (p *UnaryParams) validate() error {
	if p.Reduces() && p.YWidth != 1 {
		return &ValidationError{Port: "Y", Expected: 1, Actual: int64(p.YWidth), Reason: "reduction output must be one bit"}
	}
	return nil
}

// BinaryParams covers the two-operand word-level operators.
type BinaryParams struct {
	ID       string
	Category BinaryCategory
	AWidth   int
	BWidth   int
	YWidth   int
	ASigned  bool
	BSigned  bool
}

func (p *BinaryParams) Op() string { return p.ID }
func (p *BinaryParams) sealed()    {}

func (p *BinaryParams) Widths() map[string]int {
	return map[string]int{"A": p.AWidth, "B": p.BWidth, "Y": p.YWidth}
}

// Selects reports whether the operator is a $shift or $shiftx. Those
// extract a window of A, so Y may be narrower or wider than A.
func (p *BinaryParams) Selects() bool {
	return p.ID == "$shift" || p.ID == "$shiftx"
}

func decodeBinary(id string, raw value.Values, ports Ports) *BinaryParams {
	return &BinaryParams{
		ID:       id,
		Category: binaryCategories[id],
		AWidth:   width(raw, ports, "A_WIDTH", "A"),
		BWidth:   width(raw, ports, "B_WIDTH", "B"),
		YWidth:   width(raw, ports, "Y_WIDTH", "Y"),
		ASigned:  raw.Bool("A_SIGNED", false),
		BSigned:  raw.Bool("B_SIGNED", false),
	}
}

func (p *BinaryParams) validate() error {
	widest := max(p.AWidth, p.BWidth)
	switch p.Category {
	case CategoryLogic:
		if p.YWidth != 1 {
			return &ValidationError{Port: "Y", Expected: 1, Actual: int64(p.YWidth), Reason: "logic/compare output must be one bit"}
		}
	case CategoryBitwise:
		if p.YWidth != widest {
			return &ValidationError{Port: "Y", Expected: int64(widest), Actual: int64(p.YWidth), Reason: "bitwise output must match the widest input"}
		}
	case CategoryArithmetic:
		if p.YWidth < widest {
			return &ValidationError{Port: "Y", Expected: int64(widest), Actual: int64(p.YWidth), Reason: "arithmetic output narrower than its inputs"}
		}
	case CategoryShift:
		if !p.Selects() && p.YWidth != p.AWidth {
			return &ValidationError{Port: "Y", Expected: int64(p.AWidth), Actual: int64(p.YWidth), Reason: "shift output must match the shifted operand"}
		}
	}
	return nil
}

// MuxParams covers the word-level multiplexer family.
type MuxParams struct {
	ID     string
	Width  int // data width
	SWidth int // select width
	ABus   int // connected A width
	BBus   int // connected B width
	YBus   int // connected Y width
}

func (p *MuxParams) Op() string { return p.ID }
func (p *MuxParams) sealed()    {}

func (p *MuxParams) Widths() map[string]int {
	w, s := p.Width, p.SWidth
	switch p.ID {
	case "$mux":
		return map[string]int{"A": w, "B": w, "S": 1, "Y": w}
	case "$pmux":
		return map[string]int{"A": w, "B": w * s, "S": s, "Y": w}
	case "$bmux":
		return map[string]int{"A": w * s, "S": s, "Y": w}
	case "$demux":
		return map[string]int{"A": w, "S": s, "Y": w * s}
	case "$bwmux":
		return map[string]int{"A": w, "B": w, "S": w, "Y": w}
	case "$tribuf":
		return map[string]int{"A": w, "EN": 1, "Y": w}
	}
	return nil
}

func decodeMux(id string, raw value.Values, ports Ports) *MuxParams {
	return &MuxParams{
		ID:     id,
		Width:  width(raw, ports, "WIDTH", "Y"),
		SWidth: width(raw, ports, "S_WIDTH", "S"),
		ABus:   ports["A"],
		BBus:   ports["B"],
		YBus:   ports["Y"],
	}
}

func (p *MuxParams) validate() error {
	switch p.ID {
	case "$pmux":
		if p.SWidth <= 0 {
			return &ValidationError{Param: "S_WIDTH", Expected: 1, Actual: int64(p.SWidth), Reason: "parallel mux needs at least one select bit"}
		}
		if want := p.Width * p.SWidth; p.BBus != want {
			return &ValidationError{Port: "B", Expected: int64(want), Actual: int64(p.BBus), Reason: "B bus must hold one word per select bit"}
		}
	case "$bmux":
		if want := p.Width * p.SWidth; p.ABus != want {
			return &ValidationError{Port: "A", Expected: int64(want), Actual: int64(p.ABus), Reason: "A bus must hold one word per select bit"}
		}
	case "$demux":
		if want := p.Width * p.SWidth; p.YBus != want {
			return &ValidationError{Port: "Y", Expected: int64(want), Actual: int64(p.YBus), Reason: "Y bus must hold one word per select bit"}
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
