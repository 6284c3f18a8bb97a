// Package netlist turns a decoded netlist document into a typed, validated
// and connectivity-indexed design model.
//
// Build is the entry point. It orders modules so that every instantiated
// user module is built before its parents, classifies and validates every
// cell, indexes the bit-level connectivity of each module and reconstructs
// logical memories from their split primitive cells. The resulting Design
// is read-only.
package netlist

import (
	"strconv"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/celltype"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/params"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/value"
)

// Direction is the direction of a port or endpoint.
type Direction uint8

const (
	DirUnknown Direction = iota
	DirInput
	DirOutput
	DirInout
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInout:
		return "inout"
	}
	return "unknown"
}

// BitRef references a net or carries one of the four constant bit values.
type BitRef struct {
	net     int
	konst   value.Bit
	isConst bool
}

// NetRef returns a reference to net id.
func NetRef(id int) BitRef { return BitRef{net: id} }

// ConstRef returns a constant bit reference.
func ConstRef(b value.Bit) BitRef { return BitRef{konst: b, isConst: true} }

// Net returns the referenced net id. ok is false for constants.
func (r BitRef) Net() (id int, ok bool) { return r.net, !r.isConst }

// Const returns the constant value. ok is false for net references.
func (r BitRef) Const() (b value.Bit, ok bool) { return r.konst, r.isConst }

// IsConst reports whether r is a constant.
func (r BitRef) IsConst() bool { return r.isConst }

func (r BitRef) String() string {
	if r.isConst {
		return r.konst.String()
	}
	return strconv.Itoa(r.net)
}

// Endpoint is one bit of one cell port.
type Endpoint struct {
	Port      string
	Bit       int // bit index within the port
	Ref       BitRef
	Direction Direction
}

// ModulePort is a port of a module.
type ModulePort struct {
	Name      string
	Index     int
	Direction Direction
	Bits      []BitRef
	Offset    int
	Upto      bool
	Signed    bool
}

// Width returns the number of bits.
func (p *ModulePort) Width() int { return len(p.Bits) }

// Cell is a classified, validated cell.
type Cell struct {
	Name       string
	Index      int
	Type       celltype.CellType
	HideName   bool
	Params     params.Params
	Attributes params.Attributes
	// Endpoints are ordered by connection, then by bit.
	Endpoints []Endpoint
	// Submodule is the instantiated module for user module instances.
	Submodule *Module
}

// PortNames returns the connected ports in connection order.
func (c *Cell) PortNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, ep := range c.Endpoints {
		if !seen[ep.Port] {
			seen[ep.Port] = true
			names = append(names, ep.Port)
		}
	}
	return names
}

// PortBits returns the endpoints of one port.
func (c *Cell) PortBits(port string) []Endpoint {
	var out []Endpoint
	for _, ep := range c.Endpoints {
		if ep.Port == port {
			out = append(out, ep)
		}
	}
	return out
}

// PortWidth returns the number of endpoints on port.
func (c *Cell) PortWidth(port string) int {
	n := 0
	for _, ep := range c.Endpoints {
		if ep.Port == port {
			n++
		}
	}
	return n
}

// PortDirection returns the direction of port.
func (c *Cell) PortDirection(port string) Direction {
	for _, ep := range c.Endpoints {
		if ep.Port == port {
			return ep.Direction
		}
	}
	return DirUnknown
}

// Net is a group of connected endpoints.
type Net struct {
	ID        int
	Name      string
	Endpoints []EndpointRef
}

// Module is a built module.
type Module struct {
	Name       string
	Attributes params.Attributes
	Parameters value.Values
	Ports      []*ModulePort
	Cells      []*Cell
	Nets       []*Net
	Memories   []*LogicalMemory

	index    *NetIndex
	netByID  map[int]*Net
	cellByNm map[string]*Cell
}

// Index returns the connectivity index of the module.
func (m *Module) Index() *NetIndex { return m.index }

// Port returns the port called name, or nil.
func (m *Module) Port(name string) *ModulePort {
	for _, p := range m.Ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Cell returns the cell called name, or nil.
func (m *Module) Cell(name string) *Cell { return m.cellByNm[name] }

// Net returns the net with the given id, or nil.
func (m *Module) Net(id int) *Net { return m.netByID[id] }

// NetByName returns the net with the given name, or nil.
func (m *Module) NetByName(name string) *Net {
	for _, n := range m.Nets {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Memory returns the logical memory with the given id, or nil.
func (m *Module) Memory(id string) *LogicalMemory {
	id = memoryKey(id)
	for _, mem := range m.Memories {
		if mem.ID == id {
			return mem
		}
	}
	return nil
}

// Resolved is an endpoint reference translated to names.
type Resolved struct {
	Owner     string // port or cell name
	Port      string // port name on the owner
	Bit       int    // bit within the port
	Direction Direction
	IsCell    bool
}

// Resolve turns a tagged endpoint reference into names. ok is false when
// the reference does not belong to the module.
func (m *Module) Resolve(ref EndpointRef) (Resolved, bool) {
	switch ref.Kind {
	case RefPort:
		if ref.Owner < 0 || ref.Owner >= len(m.Ports) {
			return Resolved{}, false
		}
		p := m.Ports[ref.Owner]
		if ref.Index < 0 || ref.Index >= len(p.Bits) {
			return Resolved{}, false
		}
		return Resolved{Owner: p.Name, Port: p.Name, Bit: ref.Index, Direction: p.Direction}, true
	case RefCell:
		if ref.Owner < 0 || ref.Owner >= len(m.Cells) {
			return Resolved{}, false
		}
		c := m.Cells[ref.Owner]
		if ref.Index < 0 || ref.Index >= len(c.Endpoints) {
			return Resolved{}, false
		}
		ep := c.Endpoints[ref.Index]
		return Resolved{Owner: c.Name, Port: ep.Port, Bit: ep.Bit, Direction: ep.Direction, IsCell: true}, true
	}
	return Resolved{}, false
}

// Drivers returns the endpoints that drive net id: module inputs and cell
// outputs. Inout endpoints appear in both Drivers and Loads.
func (m *Module) Drivers(id int) []EndpointRef {
	return m.filter(id, true)
}

// Loads returns the endpoints that net id drives: module outputs and cell
// inputs.
func (m *Module) Loads(id int) []EndpointRef {
	return m.filter(id, false)
}

func (m *Module) filter(id int, drivers bool) []EndpointRef {
	var out []EndpointRef
	for _, ref := range m.index.EndpointsOf(id) {
		r, ok := m.Resolve(ref)
		if !ok {
			continue
		}
		dir := r.Direction
		// a module input drives the inside of the module like a cell output
		if !r.IsCell {
			switch dir {
			case DirInput:
				dir = DirOutput
			case DirOutput:
				dir = DirInput
			}
		}
		switch dir {
		case DirOutput:
			if drivers {
				out = append(out, ref)
			}
		case DirInput:
			if !drivers {
				out = append(out, ref)
			}
		case DirInout:
			out = append(out, ref)
		}
	}
	return out
}

// Design is a fully built netlist.
type Design struct {
	Creator string
	Modules []*Module
	// Order lists module names so that instantiated modules come first.
	Order Order
	// Diagnostics holds the cells skipped under the best-effort policy.
	Diagnostics []*CellError
}

// Module returns the module called name, or nil.
func (d *Design) Module(name string) *Module {
	for _, m := range d.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}
