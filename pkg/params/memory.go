package params

import (
	"strings"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/value"
)

// MemoryRole is the part a memory cell plays in its logical memory.
type MemoryRole uint8

const (
	RoleNone MemoryRole = iota
	RoleArray
	RoleRead
	RoleWrite
	RoleInit
)

func (r MemoryRole) String() string {
	switch r {
	case RoleArray:
		return "array"
	case RoleRead:
		return "read"
	case RoleWrite:
		return "write"
	case RoleInit:
		return "init"
	}
	return "none"
}

// RoleOf returns the memory role of a cell type identifier.
func RoleOf(id string) MemoryRole {
	base := strings.TrimSuffix(id, "_v2")
	switch base {
	case "$mem":
		return RoleArray
	case "$memrd":
		return RoleRead
	case "$memwr":
		return RoleWrite
	case "$meminit":
		return RoleInit
	}
	return RoleNone
}

// MemID returns the memory identifier carried by the memory parameter
// shapes. ok is false for any other shape.
func MemID(p Params) (id string, ok bool) {
	switch p := p.(type) {
	case *MemoryParams:
		return p.MemID, true
	case *MemReadParams:
		return p.MemID, true
	case *MemWriteParams:
		return p.MemID, true
	case *MemInitParams:
		return p.MemID, true
	}
	return "", false
}

// MemoryParams describes a whole memory array cell ($mem, $mem_v2).
type MemoryParams struct {
	ID      string
	MemID   string
	Size    int
	Width   int
	Abits   int
	Offset  int
	RdPorts int
	WrPorts int
	Init    value.BitVector // nil when absent or entirely undefined

	badInit bool
}

func (p *MemoryParams) Op() string { return p.ID }
func (p *MemoryParams) sealed()    {}

// V2 reports whether the cell uses the second memory cell revision.
func (p *MemoryParams) V2() bool { return strings.HasSuffix(p.ID, "_v2") }

func (p *MemoryParams) Widths() map[string]int {
	rd, wr := p.RdPorts, p.WrPorts
	w := map[string]int{
		"RD_CLK":  rd,
		"RD_EN":   rd,
		"RD_ADDR": rd * p.Abits,
		"RD_DATA": rd * p.Width,
		"WR_CLK":  wr,
		"WR_EN":   wr * p.Width,
		"WR_ADDR": wr * p.Abits,
		"WR_DATA": wr * p.Width,
	}
	if p.V2() {
		w["RD_ARST"] = rd
		w["RD_SRST"] = rd
	}
	return w
}

func decodeMemory(id string, raw value.Values, ports Ports) Params {
	switch RoleOf(id) {
	case RoleRead:
		return &MemReadParams{
			ID:          id,
			MemID:       raw.String("MEMID", ""),
			Abits:       width(raw, ports, "ABITS", "ADDR"),
			Width:       width(raw, ports, "WIDTH", "DATA"),
			ClkEnable:   raw.Bool("CLK_ENABLE", false),
			ClkPolarity: raw.Bool("CLK_POLARITY", true),
			Transparent: raw.Bool("TRANSPARENT", false),
		}
	case RoleWrite:
		p := &MemWriteParams{
			ID:          id,
			MemID:       raw.String("MEMID", ""),
			Abits:       width(raw, ports, "ABITS", "ADDR"),
			Width:       width(raw, ports, "WIDTH", "DATA"),
			ClkEnable:   raw.Bool("CLK_ENABLE", false),
			ClkPolarity: raw.Bool("CLK_POLARITY", true),
			Priority:    raw.Int("PRIORITY", 0),
			PortID:      -1,
		}
		if strings.HasSuffix(id, "_v2") {
			p.PortID = raw.Int("PORTID", 0)
			p.PriorityMask, _ = raw.Bits("PRIORITY_MASK")
		}
		return p
	case RoleInit:
		p := &MemInitParams{
			ID:       id,
			MemID:    raw.String("MEMID", ""),
			Abits:    width(raw, ports, "ABITS", "ADDR"),
			Width:    raw.Int("WIDTH", 0),
			Words:    raw.Int("WORDS", 1),
			Priority: raw.Int("PRIORITY", 0),
		}
		if p.Width == 0 && p.Words > 0 {
			p.Width = ports["DATA"] / p.Words
		}
		return p
	}

	p := &MemoryParams{
		ID:      id,
		MemID:   raw.String("MEMID", ""),
		Size:    raw.Int("SIZE", 0),
		Width:   raw.Int("WIDTH", 0),
		Abits:   raw.Int("ABITS", 0),
		Offset:  raw.Int("OFFSET", 0),
		RdPorts: raw.Int("RD_PORTS", 0),
		WrPorts: raw.Int("WR_PORTS", 0),
	}
	if raw.Has("INIT") {
		init, ok := raw.Bits("INIT")
		switch {
		case !ok:
			p.badInit = true
		case !init.Indeterminate():
			p.Init = init
		}
	}
	return p
}

func (p *MemoryParams) validate() error {
	if p.Size <= 0 {
		return &ValidationError{Param: "SIZE", Expected: 1, Actual: int64(p.Size), Reason: "memory size must be positive"}
	}
	if p.Abits <= 0 {
		return &ValidationError{Param: "ABITS", Expected: 1, Actual: int64(p.Abits), Reason: "address width must be positive"}
	}
	if p.Abits < 62 && int64(p.Size) > int64(1)<<uint(p.Abits) {
		return &ValidationError{Param: "SIZE", Expected: int64(1) << uint(p.Abits), Actual: int64(p.Size), Reason: "memory size exceeds the address space"}
	}
	if p.RdPorts < 0 {
		return &ValidationError{Param: "RD_PORTS", Actual: int64(p.RdPorts), Reason: "port count must not be negative"}
	}
	if p.WrPorts < 0 {
		return &ValidationError{Param: "WR_PORTS", Actual: int64(p.WrPorts), Reason: "port count must not be negative"}
	}
	if p.badInit {
		return &ValidationError{Param: "INIT", Reason: "initializer is not a bit literal"}
	}
	capacity := int64(p.Size) * int64(p.Width)
	if int64(p.Init.Len()) > capacity {
		return &ValidationError{Param: "INIT", Expected: capacity, Actual: int64(p.Init.Len()), Reason: "initializer larger than size x width"}
	}
	return nil
}

// InitWord returns word i of the initializer, zero-extended to the memory
// size. ok is false when the memory has no initializer.
func (p *MemoryParams) InitWord(i int) (value.BitVector, bool) {
	if p.Init == nil || i < 0 || i >= p.Size {
		return nil, false
	}
	full := p.Init.Resize(p.Size * p.Width)
	return full[i*p.Width : (i+1)*p.Width], true
}

// MemReadParams describes a read port cell ($memrd, $memrd_v2).
type MemReadParams struct {
	ID          string
	MemID       string
	Abits       int
	Width       int
	ClkEnable   bool
	ClkPolarity bool
	Transparent bool
}

func (p *MemReadParams) Op() string { return p.ID }
func (p *MemReadParams) sealed()    {}

func (p *MemReadParams) Widths() map[string]int {
	w := map[string]int{"CLK": 1, "EN": 1, "ADDR": p.Abits, "DATA": p.Width}
	if strings.HasSuffix(p.ID, "_v2") {
		w["ARST"] = 1
		w["SRST"] = 1
	}
	return w
}

// MemWriteParams describes a write port cell ($memwr, $memwr_v2). PortID is
// -1 for the unindexed variant, which orders ports by Priority instead.
type MemWriteParams struct {
	ID           string
	MemID        string
	Abits        int
	Width        int
	ClkEnable    bool
	ClkPolarity  bool
	Priority     int
	PortID       int
	PriorityMask value.BitVector
}

func (p *MemWriteParams) Op() string { return p.ID }
func (p *MemWriteParams) sealed()    {}

// Indexed reports whether the port carries a port id and priority mask.
func (p *MemWriteParams) Indexed() bool { return strings.HasSuffix(p.ID, "_v2") }

// Overrides lists the port ids this port takes priority over.
func (p *MemWriteParams) Overrides() []int { return p.PriorityMask.Ones() }

func (p *MemWriteParams) Widths() map[string]int {
	return map[string]int{"CLK": 1, "EN": p.Width, "ADDR": p.Abits, "DATA": p.Width}
}

func (p *MemWriteParams) validate() error {
	if !p.Indexed() {
		return nil
	}
	if p.PortID < 0 {
		return &ValidationError{Param: "PORTID", Actual: int64(p.PortID), Reason: "port id must not be negative"}
	}
	for _, bit := range p.PriorityMask.Ones() {
		if bit >= p.PortID {
			return &ValidationError{Param: "PRIORITY_MASK", Expected: int64(p.PortID - 1), Actual: int64(bit), Reason: "priority mask references a port at or above its own id"}
		}
	}
	return nil
}

// MemInitParams describes an initializer cell ($meminit, $meminit_v2).
type MemInitParams struct {
	ID       string
	MemID    string
	Abits    int
	Width    int
	Words    int
	Priority int
}

func (p *MemInitParams) Op() string { return p.ID }
func (p *MemInitParams) sealed()    {}

func (p *MemInitParams) Widths() map[string]int {
	w := map[string]int{"ADDR": p.Abits, "DATA": p.Width * p.Words}
	if strings.HasSuffix(p.ID, "_v2") {
		w["EN"] = p.Width
	}
	return w
}
