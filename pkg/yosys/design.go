// Package yosys holds the document tree of a synthesized netlist as written
// by Yosys and the JSON front-end that reads it.
//
// The tree mirrors the write_json format closely: object members keep their
// document order, parameter and attribute maps keep their raw leaves, and
// bit lists keep net ids and constants apart. Interpretation of cell types,
// parameters and connectivity happens in pkg/netlist.
package yosys

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformed is wrapped by every error caused by a document that does
// not have the expected shape.
var ErrMalformed = errors.New("yosys: malformed document")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Direction is the direction of a module or cell port.
type Direction string

const (
	DirInput  Direction = "input"
	DirOutput Direction = "output"
	DirInout  Direction = "inout"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirInput, DirOutput, DirInout:
		return d, nil
	}
	return "", malformed("unknown port direction %q", s)
}

// Bit is one entry of a bit list: a net id or a constant. Const is zero for
// net references and one of '0', '1', 'x', 'z' otherwise.
type Bit struct {
	Net   int
	Const byte
}

// NetBit returns a reference to net id.
func NetBit(id int) Bit { return Bit{Net: id} }

// ConstBit returns a constant bit.
func ConstBit(c byte) Bit { return Bit{Const: c} }

// IsConst reports whether b is a constant.
func (b Bit) IsConst() bool { return b.Const != 0 }

func (b Bit) String() string {
	if b.IsConst() {
		return string(b.Const)
	}
	return strconv.Itoa(b.Net)
}

// Design is a whole netlist document.
type Design struct {
	Creator string
	Modules []*Module
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

// Module is one module definition.
type Module struct {
	Name              string
	Attributes        map[string]any
	ParameterDefaults map[string]any
	Ports             []*Port
	Cells             []*Cell
	NetNames          []*NetName
	Memories          []*Memory
}

// Port returns the port called name, or nil.
func (m *Module) Port(name string) *Port {
	for _, p := range m.Ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Port is a module port.
type Port struct {
	Name      string
	Direction Direction
	Bits      []Bit
	Offset    int
	Upto      bool
	Signed    bool
}

// Cell is a cell instance: a primitive or an instance of another module.
type Cell struct {
	Name           string
	Type           string
	HideName       bool
	Parameters     map[string]any
	Attributes     map[string]any
	PortDirections map[string]Direction
	Connections    []*Connection
}

// Connection returns the connection on port, or nil.
func (c *Cell) Connection(port string) *Connection {
	for _, conn := range c.Connections {
		if conn.Port == port {
			return conn
		}
	}
	return nil
}

// Connection binds a cell port to a bit list.
type Connection struct {
	Port string
	Bits []Bit
}

// NetName is a named wire of a module.
type NetName struct {
	Name       string
	HideName   bool
	Bits       []Bit
	Offset     int
	Upto       bool
	Signed     bool
	Attributes map[string]any
}

// Memory is memory metadata supplied next to the cells.
type Memory struct {
	ID          string
	Width       int
	Size        int
	StartOffset int
	Attributes  map[string]any
}
