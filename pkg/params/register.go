package params

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/value"
)

// Control describes one single-bit control input of a storage element.
type Control struct {
	Port       string // canonical port name
	ActiveHigh bool
}

// Accepted names for the control ports that some variants require. Word
// cells use the long names, gate cells the single letters; either is
// accepted on both levels.
var (
	enableNames    = []string{"EN", "E"}
	syncResetNames = []string{"SRST", "R"}
)

// RegisterParams covers the word-level flip-flops and latches.
type RegisterParams struct {
	ID            string
	Width         int
	ClkPolarity   bool
	EnPolarity    bool
	ArstPolarity  bool
	SrstPolarity  bool
	AloadPolarity bool
	SetPolarity   bool
	ClrPolarity   bool
	ArstValue     value.BitVector
	SrstValue     value.BitVector
}

func (p *RegisterParams) Op() string { return p.ID }
func (p *RegisterParams) sealed()    {}

func (p *RegisterParams) Widths() map[string]int {
	w := p.Width
	return map[string]int{
		"CLK": 1, "EN": 1, "ARST": 1, "SRST": 1, "ALOAD": 1,
		"D": w, "Q": w, "AD": w, "SET": w, "CLR": w,
	}
}

// NeedsEnable reports whether the variant has a mandatory enable input.
func (p *RegisterParams) NeedsEnable() bool {
	switch p.ID {
	case "$dffe", "$adffe", "$sdffe", "$sdffce", "$aldffe", "$dffsre":
		return true
	}
	return false
}

// NeedsSyncReset reports whether the variant has a mandatory synchronous reset.
func (p *RegisterParams) NeedsSyncReset() bool {
	return strings.HasPrefix(p.ID, "$sdff")
}

// Controls lists the control inputs the variant uses, with polarities.
func (p *RegisterParams) Controls() []Control {
	var out []Control
	if p.ID != "$ff" && !strings.Contains(p.ID, "latch") && p.ID != "$sr" {
		out = append(out, Control{Port: "CLK", ActiveHigh: p.ClkPolarity})
	}
	if p.NeedsEnable() || strings.Contains(p.ID, "latch") {
		out = append(out, Control{Port: "EN", ActiveHigh: p.EnPolarity})
	}
	switch p.ID {
	case "$adff", "$adffe", "$adlatch":
		out = append(out, Control{Port: "ARST", ActiveHigh: p.ArstPolarity})
	case "$sdff", "$sdffe", "$sdffce":
		out = append(out, Control{Port: "SRST", ActiveHigh: p.SrstPolarity})
	case "$aldff", "$aldffe":
		out = append(out, Control{Port: "ALOAD", ActiveHigh: p.AloadPolarity})
	case "$dffsr", "$dffsre", "$dlatchsr", "$sr":
		out = append(out,
			Control{Port: "SET", ActiveHigh: p.SetPolarity},
			Control{Port: "CLR", ActiveHigh: p.ClrPolarity})
	}
	return out
}

func decodeRegister(id string, raw value.Values, ports Ports) *RegisterParams {
	p := &RegisterParams{
		ID:            id,
		Width:         width(raw, ports, "WIDTH", "Q"),
		ClkPolarity:   raw.Bool("CLK_POLARITY", true),
		EnPolarity:    raw.Bool("EN_POLARITY", true),
		ArstPolarity:  raw.Bool("ARST_POLARITY", true),
		SrstPolarity:  raw.Bool("SRST_POLARITY", true),
		AloadPolarity: raw.Bool("ALOAD_POLARITY", true),
		SetPolarity:   raw.Bool("SET_POLARITY", true),
		ClrPolarity:   raw.Bool("CLR_POLARITY", true),
	}
	p.ArstValue, _ = raw.Bits("ARST_VALUE")
	p.SrstValue, _ = raw.Bits("SRST_VALUE")
	return p
}

func (p *RegisterParams) validate(ports Ports) error {
	if p.NeedsSyncReset() {
		if err := requireControl(ports, syncResetNames); err != nil {
			return err
		}
	}
	if p.NeedsEnable() {
		if err := requireControl(ports, enableNames); err != nil {
			return err
		}
	}
	return nil
}

func requireControl(ports Ports, names []string) error {
	name, ok := ports.Has(names...)
	if !ok {
		return &ValidationError{Port: names[0], Expected: 1, Actual: 0, Reason: "required control port missing (also accepted as " + strings.Join(names[1:], ", ") + ")"}
	}
	if w := ports[name]; w > 1 {
		return &ValidationError{Port: name, Expected: 1, Actual: int64(w), Reason: "control port must be one bit"}
	}
	return nil
}

// FlipFlopParams describes a single-bit storage gate such as $_SDFFE_PN0P_.
// Everything is encoded in the type identifier.
type FlipFlopParams struct {
	ID         string
	Family     string // DFF, SDFFE, DLATCH, ...
	Controls   []Control
	ResetValue int // -1 when the family has no reset value
}

func (p *FlipFlopParams) Op() string { return p.ID }
func (p *FlipFlopParams) sealed()    {}

func (p *FlipFlopParams) Widths() map[string]int {
	w := map[string]int{"D": 1, "Q": 1, "AD": 1}
	for _, c := range p.Controls {
		w[c.Port] = 1
	}
	return w
}

// SyncReset reports whether the R input resets synchronously.
func (p *FlipFlopParams) SyncReset() bool {
	return strings.HasPrefix(p.Family, "SDFF")
}

// Control returns the control on port, if any.
func (p *FlipFlopParams) Control(port string) (Control, bool) {
	for _, c := range p.Controls {
		if c.Port == port {
			return c, true
		}
	}
	return Control{}, false
}

// ffLayouts maps family and code length to the meaning of each code letter:
// a control port letter, or 'V' for the reset value.
var ffLayouts = map[string]string{
	"DFF/1":      "C",
	"DFF/3":      "CRV",
	"DFFE/2":     "CE",
	"DFFE/4":     "CRVE",
	"SDFF/3":     "CRV",
	"SDFFE/4":    "CRVE",
	"SDFFCE/4":   "CRVE",
	"DFFSR/3":    "CSR",
	"DFFSRE/4":   "CSRE",
	"ALDFF/2":    "CL",
	"ALDFFE/3":   "CLE",
	"DLATCH/1":   "E",
	"DLATCH/3":   "ERV",
	"DLATCHSR/3": "ESR",
	"SR/2":       "SR",
}

func decodeFlipFlop(id string) *FlipFlopParams {
	p := &FlipFlopParams{ID: id, ResetValue: -1}
	body := strings.TrimSuffix(strings.TrimPrefix(id, "$_"), "_")
	family, code, _ := strings.Cut(body, "_")
	p.Family = family

	layout, ok := ffLayouts[family+"/"+strconv.Itoa(len(code))]
	if !ok {
		return p
	}
	for i := 0; i < len(layout); i++ {
		if layout[i] == 'V' {
			p.ResetValue = int(code[i] - '0')
			continue
		}
		p.Controls = append(p.Controls, Control{Port: layout[i : i+1], ActiveHigh: code[i] == 'P'})
	}
	return p
}

func (p *FlipFlopParams) validate(ports Ports) error {
	if p.SyncReset() {
		if err := requireControl(ports, []string{"R", "SRST"}); err != nil {
			return err
		}
	}
	switch p.Family {
	case "DFFE", "SDFFE", "SDFFCE", "DFFSRE", "ALDFFE":
		if err := requireControl(ports, []string{"E", "EN"}); err != nil {
			return err
		}
	}
	return nil
}
