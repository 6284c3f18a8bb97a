package netlist

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/celltype"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/params"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/yosys"
)

// MemoryMeta is memory metadata supplied outside the cells.
type MemoryMeta struct {
	Width       int
	Size        int
	StartOffset int
	Attributes  params.Attributes
}

// LogicalMemory gathers the cells that together implement one memory.
// Cell references are indices into the module's cell list.
type LogicalMemory struct {
	ID         string
	ArrayCell  int // -1 when the memory has no array cell
	ReadPorts  []int
	WritePorts []int
	InitCells  []int
	Meta       *MemoryMeta
}

// HasArray reports whether an array cell was found.
func (m *LogicalMemory) HasArray() bool { return m.ArrayCell >= 0 }

// memoryKey strips the public-name backslash so MEMID parameters ("\mem")
// and metadata keys ("mem") meet on the same record.
func memoryKey(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), `\`)
}

// BuildMemories groups memory cells by memory id and merges metadata into
// the same records. Records are returned in order of first reference; cells
// without a memory id are skipped.
func BuildMemories(cells []*Cell, meta []*yosys.Memory) []*LogicalMemory {
	var out []*LogicalMemory
	byID := make(map[string]*LogicalMemory)
	record := func(id string) *LogicalMemory {
		if m, ok := byID[id]; ok {
			return m
		}
		m := &LogicalMemory{ID: id, ArrayCell: -1}
		byID[id] = m
		out = append(out, m)
		return m
	}

	for i, c := range cells {
		if c.Type.Kind != celltype.KindMemory || c.Params == nil {
			continue
		}
		raw, _ := params.MemID(c.Params)
		id := memoryKey(raw)
		if id == "" {
			continue
		}
		switch params.RoleOf(c.Type.ID) {
		case params.RoleArray:
			m := record(id)
			if m.ArrayCell < 0 {
				m.ArrayCell = i
			}
		case params.RoleRead:
			m := record(id)
			m.ReadPorts = append(m.ReadPorts, i)
		case params.RoleWrite:
			m := record(id)
			m.WritePorts = append(m.WritePorts, i)
		case params.RoleInit:
			m := record(id)
			m.InitCells = append(m.InitCells, i)
		}
	}

	for _, md := range meta {
		id := memoryKey(md.ID)
		if id == "" {
			continue
		}
		record(id).Meta = &MemoryMeta{
			Width:       md.Width,
			Size:        md.Size,
			StartOffset: md.StartOffset,
			Attributes:  params.NewAttributes(md.Attributes),
		}
	}
	return out
}

// Width returns the word width from the array cell, a port cell or the
// metadata, in that order of preference.
func (m *LogicalMemory) Width(cells []*Cell) int {
	if m.HasArray() {
		if p, ok := cells[m.ArrayCell].Params.(*params.MemoryParams); ok {
			return p.Width
		}
	}
	for _, i := range m.ReadPorts {
		if p, ok := cells[i].Params.(*params.MemReadParams); ok && p.Width > 0 {
			return p.Width
		}
	}
	for _, i := range m.WritePorts {
		if p, ok := cells[i].Params.(*params.MemWriteParams); ok && p.Width > 0 {
			return p.Width
		}
	}
	if m.Meta != nil {
		return m.Meta.Width
	}
	return 0
}

// Size returns the number of words from the array cell or the metadata.
func (m *LogicalMemory) Size(cells []*Cell) int {
	if m.HasArray() {
		if p, ok := cells[m.ArrayCell].Params.(*params.MemoryParams); ok {
			return p.Size
		}
	}
	if m.Meta != nil {
		return m.Meta.Size
	}
	return 0
}

// WritePort returns the cell index of the write port with the given port
// id. ok is false when no indexed write port has that id.
func (m *LogicalMemory) WritePort(cells []*Cell, portID int) (int, bool) {
	for _, i := range m.WritePorts {
		p, ok := cells[i].Params.(*params.MemWriteParams)
		if ok && p.Indexed() && p.PortID == portID {
			return i, true
		}
	}
	return 0, false
}

// Validate checks the write ports of the memory as a group: port ids are
// unique and every priority mask bit names a lower port id.
func (m *LogicalMemory) Validate(cells []*Cell) error {
	seen := make(map[int]int)
	for _, i := range m.WritePorts {
		p, ok := cells[i].Params.(*params.MemWriteParams)
		if !ok || !p.Indexed() {
			continue
		}
		if prev, dup := seen[p.PortID]; dup {
			return fmt.Errorf("netlist: memory %s: cells %s and %s: %w", m.ID, cells[prev].Name, cells[i].Name,
				&params.ValidationError{Param: "PORTID", Expected: -1, Actual: int64(p.PortID), Reason: "duplicate write port id"})
		}
		seen[p.PortID] = i
		for _, bit := range p.Overrides() {
			if bit >= p.PortID {
				return fmt.Errorf("netlist: memory %s: cell %s: %w", m.ID, cells[i].Name,
					&params.ValidationError{Param: "PRIORITY_MASK", Expected: int64(p.PortID - 1), Actual: int64(bit), Reason: "priority mask references a port at or above its own id"})
			}
		}
	}
	return nil
}
