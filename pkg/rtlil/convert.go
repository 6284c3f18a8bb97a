package rtlil

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/yosys"
)

func errorf(pos lexer.Position, format string, args ...any) error {
	return fmt.Errorf("rtlil: %s: %w: %s", pos, yosys.ErrMalformed, fmt.Sprintf(format, args...))
}

// publicName drops the backslash that marks a public identifier, the way
// write_json prints names.
func publicName(id string) string {
	return strings.TrimPrefix(id, `\`)
}

// Convert turns a parsed RTLIL file into the same document tree the JSON
// front-end produces. Every group of wire bits joined by module-level
// connect statements becomes one net; net ids start at 2.
func Convert(f *File) (*yosys.Design, error) {
	d := &yosys.Design{}
	var pending map[string]any
	for _, it := range f.Items {
		switch {
		case it.Attribute != nil:
			pending = addAttribute(pending, it.Attribute)
		case it.Module != nil:
			m, err := convertModule(it.Module, pending)
			if err != nil {
				return nil, err
			}
			pending = nil
			d.Modules = append(d.Modules, m)
		}
	}
	return d, nil
}

func addAttribute(attrs map[string]any, a *Attribute) map[string]any {
	if attrs == nil {
		attrs = make(map[string]any)
	}
	attrs[publicName(a.Name)] = constValue(a.Value)
	return attrs
}

type wire struct {
	name      string
	first     int // index of bit 0 in the module's bit space
	width     int
	offset    int
	upto      bool
	signed    bool
	dir       yosys.Direction
	portIndex int
	attrs     map[string]any
}

// index maps an HDL bit index to a position inside the wire.
func (w *wire) index(i int) (int, bool) {
	rel := i - w.offset
	if w.upto {
		rel = w.width - 1 - rel
	}
	return rel, rel >= 0 && rel < w.width
}

// sigBit is a wire bit (position in the module's bit space) or a constant.
type sigBit struct {
	bit   int
	konst byte
}

type attributed[T any] struct {
	item  T
	attrs map[string]any
}

type moduleBuilder struct {
	name  string
	wires map[string]*wire
	order []*wire
	nbits int
	set   *bitSet
	ids   map[int]int
}

func convertModule(src *Module, attrs map[string]any) (*yosys.Module, error) {
	m := &yosys.Module{Name: publicName(src.Name), Attributes: attrs}
	b := &moduleBuilder{name: m.Name, wires: make(map[string]*wire)}

	var (
		pending  map[string]any
		cells    []attributed[*Cell]
		connects []*Connect
	)
	for _, st := range src.Stmts {
		switch {
		case st.Attribute != nil:
			pending = addAttribute(pending, st.Attribute)
			continue
		case st.Parameter != nil:
			if st.Parameter.Default != nil {
				if m.ParameterDefaults == nil {
					m.ParameterDefaults = make(map[string]any)
				}
				m.ParameterDefaults[publicName(st.Parameter.Name)] = constValue(st.Parameter.Default)
			}
		case st.Wire != nil:
			if err := b.declare(st.Wire, pending); err != nil {
				return nil, err
			}
		case st.Memory != nil:
			m.Memories = append(m.Memories, convertMemory(st.Memory, pending))
		case st.Cell != nil:
			cells = append(cells, attributed[*Cell]{st.Cell, pending})
		case st.Connect != nil:
			connects = append(connects, st.Connect)
		}
		pending = nil
	}

	b.set = newBitSet(b.nbits)
	for _, c := range connects {
		if err := b.connect(c); err != nil {
			return nil, err
		}
	}
	b.number()

	var ports []*wire
	for _, w := range b.order {
		m.NetNames = append(m.NetNames, &yosys.NetName{
			Name:       publicName(w.name),
			HideName:   strings.HasPrefix(w.name, "$"),
			Bits:       b.wireBits(w),
			Offset:     w.offset,
			Upto:       w.upto,
			Signed:     w.signed,
			Attributes: w.attrs,
		})
		if w.dir != "" {
			ports = append(ports, w)
		}
	}
	sort.SliceStable(ports, func(i, j int) bool { return ports[i].portIndex < ports[j].portIndex })
	for _, w := range ports {
		m.Ports = append(m.Ports, &yosys.Port{
			Name:      publicName(w.name),
			Direction: w.dir,
			Bits:      b.wireBits(w),
			Offset:    w.offset,
			Upto:      w.upto,
			Signed:    w.signed,
		})
	}

	for _, c := range cells {
		cell, err := b.cell(c.item, c.attrs)
		if err != nil {
			return nil, err
		}
		m.Cells = append(m.Cells, cell)
	}
	return m, nil
}

func (b *moduleBuilder) declare(src *Wire, attrs map[string]any) error {
	if _, dup := b.wires[src.Name]; dup {
		return errorf(src.Pos, "module %s: wire %s declared twice", b.name, src.Name)
	}
	w := &wire{name: src.Name, width: 1, attrs: attrs}
	for _, o := range src.Options {
		switch {
		case o.Width != nil:
			w.width = *o.Width
		case o.Offset != nil:
			w.offset = *o.Offset
		case o.Input != nil:
			w.dir, w.portIndex = yosys.DirInput, *o.Input
		case o.Output != nil:
			w.dir, w.portIndex = yosys.DirOutput, *o.Output
		case o.Inout != nil:
			w.dir, w.portIndex = yosys.DirInout, *o.Inout
		case o.Upto:
			w.upto = true
		case o.Signed:
			w.signed = true
		}
	}
	if w.width < 0 {
		return errorf(src.Pos, "module %s: wire %s has negative width", b.name, src.Name)
	}
	w.first = b.nbits
	b.nbits += w.width
	b.wires[src.Name] = w
	b.order = append(b.order, w)
	return nil
}

func convertMemory(src *MemoryDecl, attrs map[string]any) *yosys.Memory {
	mem := &yosys.Memory{ID: publicName(src.Name), Width: 1, Attributes: attrs}
	for _, o := range src.Options {
		switch {
		case o.Width != nil:
			mem.Width = *o.Width
		case o.Size != nil:
			mem.Size = *o.Size
		case o.Offset != nil:
			mem.StartOffset = *o.Offset
		}
	}
	return mem
}

func (b *moduleBuilder) connect(c *Connect) error {
	lhs, err := b.resolve(c.Pos, c.LHS)
	if err != nil {
		return err
	}
	rhs, err := b.resolve(c.Pos, c.RHS)
	if err != nil {
		return err
	}
	if len(lhs) != len(rhs) {
		return errorf(c.Pos, "module %s: connect width mismatch (%d vs %d)", b.name, len(lhs), len(rhs))
	}
	for i := range lhs {
		l, r := lhs[i], rhs[i]
		switch {
		case l.konst == 0 && r.konst == 0:
			b.set.union(l.bit, r.bit)
		case l.konst == 0:
			b.set.bind(l.bit, r.konst)
		case r.konst == 0:
			b.set.bind(r.bit, l.konst)
		}
	}
	return nil
}

// number assigns net ids to the groups in wire declaration order.
func (b *moduleBuilder) number() {
	b.ids = make(map[int]int)
	next := 2
	for i := 0; i < b.nbits; i++ {
		if _, ok := b.set.constant(i); ok {
			continue
		}
		root := b.set.find(i)
		if _, ok := b.ids[root]; !ok {
			b.ids[root] = next
			next++
		}
	}
}

func (b *moduleBuilder) final(s sigBit) yosys.Bit {
	if s.konst != 0 {
		return yosys.ConstBit(s.konst)
	}
	if c, ok := b.set.constant(s.bit); ok {
		return yosys.ConstBit(c)
	}
	return yosys.NetBit(b.ids[b.set.find(s.bit)])
}

func (b *moduleBuilder) wireBits(w *wire) []yosys.Bit {
	bits := make([]yosys.Bit, w.width)
	for i := range bits {
		bits[i] = b.final(sigBit{bit: w.first + i})
	}
	return bits
}

func (b *moduleBuilder) cell(src *Cell, attrs map[string]any) (*yosys.Cell, error) {
	c := &yosys.Cell{
		Name:       publicName(src.Name),
		Type:       publicName(src.Type),
		HideName:   strings.HasPrefix(src.Name, "$"),
		Attributes: attrs,
	}
	for _, st := range src.Body {
		switch {
		case st.Parameter != nil:
			if c.Parameters == nil {
				c.Parameters = make(map[string]any)
			}
			c.Parameters[publicName(st.Parameter.Name)] = constValue(st.Parameter.Value)
		case st.Connect != nil:
			port := st.Connect.LHS.Wire
			if port == nil || port.Hi != nil {
				return nil, errorf(st.Connect.Pos, "cell %s: connect needs a port name", src.Name)
			}
			sig, err := b.resolve(st.Connect.Pos, st.Connect.RHS)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", src.Name, err)
			}
			bits := make([]yosys.Bit, len(sig))
			for i, s := range sig {
				bits[i] = b.final(s)
			}
			c.Connections = append(c.Connections, &yosys.Connection{Port: publicName(port.Name), Bits: bits})
		}
	}
	return c, nil
}

// resolve flattens a signal expression to bits, least significant first.
func (b *moduleBuilder) resolve(pos lexer.Position, s *SigSpec) ([]sigBit, error) {
	switch {
	case s.Bits != nil:
		digits := bitsLiteral(*s.Bits)
		out := make([]sigBit, len(digits))
		for i := range out {
			out[i] = sigBit{konst: digits[len(digits)-1-i]}
		}
		return out, nil
	case s.Int != nil:
		out := make([]sigBit, 32)
		u := uint32(*s.Int)
		for i := range out {
			out[i] = sigBit{konst: '0' + byte(u>>uint(i)&1)}
		}
		return out, nil
	case s.Wire != nil:
		return b.resolveWire(pos, s.Wire)
	case s.Concat != nil:
		var out []sigBit
		for i := len(s.Concat.Parts) - 1; i >= 0; i-- {
			part, err := b.resolve(pos, s.Concat.Parts[i])
			if err != nil {
				return nil, err
			}
			out = append(out, part...)
		}
		return out, nil
	}
	return nil, nil
}

func (b *moduleBuilder) resolveWire(pos lexer.Position, sw *SigWire) ([]sigBit, error) {
	w, ok := b.wires[sw.Name]
	if !ok {
		return nil, errorf(pos, "module %s: unknown wire %s", b.name, sw.Name)
	}
	if sw.Hi == nil {
		out := make([]sigBit, w.width)
		for i := range out {
			out[i] = sigBit{bit: w.first + i}
		}
		return out, nil
	}
	hi, ok := w.index(*sw.Hi)
	if !ok {
		return nil, errorf(pos, "module %s: index %d out of range for %s", b.name, *sw.Hi, sw.Name)
	}
	lo := hi
	if sw.Lo != nil {
		if lo, ok = w.index(*sw.Lo); !ok {
			return nil, errorf(pos, "module %s: index %d out of range for %s", b.name, *sw.Lo, sw.Name)
		}
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	out := make([]sigBit, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, sigBit{bit: w.first + i})
	}
	return out, nil
}

// bitsLiteral returns the digits of a sized constant, most significant
// first, padded or truncated to the declared width. The don't-care digits
// m and - read as x.
func bitsLiteral(lit string) string {
	size, digits, _ := strings.Cut(lit, "'")
	n, err := strconv.Atoi(size)
	if err != nil {
		n = len(digits)
	}
	digits = strings.NewReplacer("m", "x", "-", "x").Replace(digits)
	switch {
	case len(digits) > n:
		digits = digits[len(digits)-n:]
	case len(digits) < n:
		digits = strings.Repeat("0", n-len(digits)) + digits
	}
	return digits
}

func constValue(c *Const) any {
	switch {
	case c == nil:
		return nil
	case c.Str != nil:
		return unquote(*c.Str)
	case c.Bits != nil:
		return bitsLiteral(*c.Bits)
	case c.Real != nil:
		return *c.Real
	case c.Int != nil:
		return *c.Int
	}
	return nil
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(s, `"`)
}
