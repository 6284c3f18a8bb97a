package netlist

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/celltype"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/params"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/value"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/yosys"
)

// Policy decides what a failing cell does to the build.
type Policy uint8

const (
	// PolicyFailFast aborts Build on the first failing cell.
	PolicyFailFast Policy = iota
	// PolicyBestEffort skips failing cells and records them in
	// Design.Diagnostics.
	PolicyBestEffort
)

func (p Policy) String() string {
	if p == PolicyBestEffort {
		return "best-effort"
	}
	return "fail-fast"
}

// ParsePolicy parses "fail-fast" or "best-effort".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "fail-fast", "":
		return PolicyFailFast, nil
	case "best-effort":
		return PolicyBestEffort, nil
	}
	return PolicyFailFast, fmt.Errorf("netlist: unknown policy %q", s)
}

// CellError reports a cell that could not be built.
type CellError struct {
	Module string
	Cell   string
	Type   string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("netlist: module %s: cell %s (%s): %v", e.Module, e.Cell, e.Type, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// ErrTopNotFound is returned when the requested top module does not exist.
var ErrTopNotFound = errors.New("netlist: top module not found")

type builder struct {
	policy Policy
	log    logrus.FieldLogger
	top    string

	built map[string]*Module
	diags []*CellError
}

// Option configures Build.
type Option func(*builder)

// WithPolicy sets the failure policy. The default is PolicyFailFast.
func WithPolicy(p Policy) Option {
	return func(b *builder) { b.policy = p }
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *builder) { b.log = l }
}

// WithTop restricts the build to top and the modules it instantiates.
func WithTop(name string) Option {
	return func(b *builder) { b.top = name }
}

// Build constructs the design model from a decoded document.
func Build(doc *yosys.Design, opts ...Option) (*Design, error) {
	if doc == nil {
		return nil, fmt.Errorf("netlist: %w: nil document", yosys.ErrMalformed)
	}
	b := &builder{
		log:   logrus.StandardLogger(),
		built: make(map[string]*Module),
	}
	for _, opt := range opts {
		opt(b)
	}

	order := BuildOrder(doc)
	if b.top != "" {
		if doc.Module(b.top) == nil {
			return nil, fmt.Errorf("%w: %s", ErrTopNotFound, b.top)
		}
		order = order.Restrict(b.top, Dependencies(doc))
	}
	if order.IsCyclic() {
		b.log.WithField("modules", order.Cyclic).
			Warn("module instantiation cycle, build order does not respect dependencies")
	}

	d := &Design{Creator: doc.Creator, Order: order}
	for _, name := range order.Modules {
		m, err := b.module(doc.Module(name))
		if err != nil {
			return nil, err
		}
		b.built[name] = m
		d.Modules = append(d.Modules, m)
	}
	d.Diagnostics = b.diags
	return d, nil
}

// fail applies the policy to a cell error. It returns the error to abort
// with, or nil when the build continues.
func (b *builder) fail(err *CellError) error {
	if b.policy == PolicyFailFast {
		return err
	}
	b.log.WithFields(logrus.Fields{
		"module": err.Module,
		"cell":   err.Cell,
		"type":   err.Type,
	}).WithError(err.Err).Warn("skipping cell")
	b.diags = append(b.diags, err)
	return nil
}

func (b *builder) module(src *yosys.Module) (*Module, error) {
	m := &Module{
		Name:       src.Name,
		Attributes: params.NewAttributes(src.Attributes),
		Parameters: value.Values(src.ParameterDefaults),
		cellByNm:   make(map[string]*Cell),
		netByID:    make(map[int]*Net),
	}

	for i, p := range src.Ports {
		m.Ports = append(m.Ports, &ModulePort{
			Name:      p.Name,
			Index:     i,
			Direction: direction(p.Direction),
			Bits:      bitRefs(p.Bits),
			Offset:    p.Offset,
			Upto:      p.Upto,
			Signed:    p.Signed,
		})
	}

	for _, c := range src.Cells {
		cell, err := b.cell(c)
		if err != nil {
			ce := &CellError{Module: m.Name, Cell: c.Name, Type: c.Type, Err: err}
			if err := b.fail(ce); err != nil {
				return nil, err
			}
			continue
		}
		cell.Index = len(m.Cells)
		m.Cells = append(m.Cells, cell)
		m.cellByNm[cell.Name] = cell
	}

	m.index = BuildIndex(m.Ports, m.Cells)
	names := netNames(src.NetNames)
	for _, id := range m.index.NetIDs() {
		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("$net%d", id)
		}
		n := &Net{ID: id, Name: name, Endpoints: m.index.EndpointsOf(id)}
		m.Nets = append(m.Nets, n)
		m.netByID[id] = n
	}

	m.Memories = BuildMemories(m.Cells, src.Memories)
	for _, mem := range m.Memories {
		if err := mem.Validate(m.Cells); err != nil {
			ce := &CellError{Module: m.Name, Cell: mem.ID, Type: "memory", Err: err}
			if err := b.fail(ce); err != nil {
				return nil, err
			}
		}
	}

	b.log.WithFields(logrus.Fields{
		"module":   m.Name,
		"ports":    len(m.Ports),
		"cells":    len(m.Cells),
		"nets":     len(m.Nets),
		"memories": len(m.Memories),
	}).Debug("module built")
	return m, nil
}

func (b *builder) cell(src *yosys.Cell) (*Cell, error) {
	ct := celltype.Classify(src.Type)

	var sub *Module
	if ct.Level == celltype.LevelModule {
		sub = b.built[src.Type]
	}

	ports := make(params.Ports, len(src.Connections))
	for _, conn := range src.Connections {
		ports[conn.Port] = len(conn.Bits)
	}
	p, err := params.Decode(ct, value.Values(src.Parameters), ports)
	if err != nil {
		return nil, err
	}

	c := &Cell{
		Name:       src.Name,
		Type:       ct,
		HideName:   src.HideName,
		Params:     p,
		Attributes: params.NewAttributes(src.Attributes),
		Submodule:  sub,
	}
	for _, conn := range src.Connections {
		dir := portDirection(ct, src, sub, conn.Port)
		for i, bit := range conn.Bits {
			c.Endpoints = append(c.Endpoints, Endpoint{
				Port:      conn.Port,
				Bit:       i,
				Ref:       bitRef(bit),
				Direction: dir,
			})
		}
	}
	return c, nil
}

// portDirection takes the direction from the document, then from the
// instantiated module, then from the primitive's port layout.
func portDirection(ct celltype.CellType, src *yosys.Cell, sub *Module, port string) Direction {
	if d, ok := src.PortDirections[port]; ok {
		return direction(d)
	}
	if sub != nil {
		if p := sub.Port(port); p != nil {
			return p.Direction
		}
		return DirUnknown
	}
	if ct.IsPrimitive() && ct.Kind != celltype.KindOther {
		if celltype.IsOutput(ct, port) {
			return DirOutput
		}
		return DirInput
	}
	return DirUnknown
}

func direction(d yosys.Direction) Direction {
	switch d {
	case yosys.DirInput:
		return DirInput
	case yosys.DirOutput:
		return DirOutput
	case yosys.DirInout:
		return DirInout
	}
	return DirUnknown
}

func bitRef(b yosys.Bit) BitRef {
	if !b.IsConst() {
		return NetRef(b.Net)
	}
	switch b.Const {
	case '0':
		return ConstRef(value.Zero)
	case '1':
		return ConstRef(value.One)
	case 'z':
		return ConstRef(value.HighZ)
	}
	return ConstRef(value.Undef)
}

func bitRefs(bits []yosys.Bit) []BitRef {
	out := make([]BitRef, len(bits))
	for i, b := range bits {
		out[i] = bitRef(b)
	}
	return out
}

// netNames names every net after the wires that carry it. A visible name
// replaces a hidden one; otherwise the first name wins.
func netNames(wires []*yosys.NetName) map[int]string {
	names := make(map[int]string)
	hidden := make(map[int]bool)
	for _, w := range wires {
		for i, bit := range w.Bits {
			if bit.IsConst() {
				continue
			}
			if _, named := names[bit.Net]; named && (w.HideName || !hidden[bit.Net]) {
				continue
			}
			names[bit.Net] = bitName(w, i)
			hidden[bit.Net] = w.HideName
		}
	}
	return names
}

func bitName(w *yosys.NetName, i int) string {
	if len(w.Bits) == 1 {
		return w.Name
	}
	idx := w.Offset + i
	if w.Upto {
		idx = w.Offset + len(w.Bits) - 1 - i
	}
	return fmt.Sprintf("%s[%d]", w.Name, idx)
}
