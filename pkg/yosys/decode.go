package yosys

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/goccy/go-json"
)

type decodeOptions struct {
	schema bool
}

// Option configures Decode.
type Option func(*decodeOptions)

// WithSchema enables or disables validation against the embedded schema
// before decoding. It is enabled by default.
func WithSchema(enabled bool) Option {
	return func(o *decodeOptions) { o.schema = enabled }
}

// ReadFile decodes the JSON netlist at path.
func ReadFile(path string, opts ...Option) (*Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("yosys: %w", err)
	}
	return DecodeBytes(data, opts...)
}

// Decode reads a JSON netlist from r.
func Decode(r io.Reader, opts ...Option) (*Design, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("yosys: %w", err)
	}
	return DecodeBytes(data, opts...)
}

// DecodeBytes decodes a JSON netlist held in memory.
func DecodeBytes(data []byte, opts ...Option) (*Design, error) {
	o := decodeOptions{schema: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !json.Valid(data) {
		return nil, malformed("not a JSON document")
	}
	if o.schema {
		s, err := DefaultSchema()
		if err != nil {
			return nil, err
		}
		if err := s.Validate(data); err != nil {
			return nil, err
		}
	}

	top, err := members(data, "document")
	if err != nil {
		return nil, err
	}
	d := &Design{}
	var modules json.RawMessage
	for _, m := range top {
		switch m.Key {
		case "creator":
			if err := json.Unmarshal(m.Value, &d.Creator); err != nil {
				return nil, malformed("creator: %v", err)
			}
		case "modules":
			modules = m.Value
		}
	}
	if modules == nil {
		return nil, malformed("missing modules")
	}
	mods, err := members(modules, "modules")
	if err != nil {
		return nil, err
	}
	for _, m := range mods {
		mod, err := decodeModule(m.Key, m.Value)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", m.Key, err)
		}
		d.Modules = append(d.Modules, mod)
	}
	return d, nil
}

type rawModule struct {
	Attributes        json.RawMessage `json:"attributes"`
	ParameterDefaults json.RawMessage `json:"parameter_default_values"`
	Ports             json.RawMessage `json:"ports"`
	Cells             json.RawMessage `json:"cells"`
	NetNames          json.RawMessage `json:"netnames"`
	Memories          json.RawMessage `json:"memories"`
}

type rawPort struct {
	Direction string            `json:"direction"`
	Bits      []json.RawMessage `json:"bits"`
	Offset    int               `json:"offset"`
	Upto      int               `json:"upto"`
	Signed    int               `json:"signed"`
}

type rawCell struct {
	HideName       int               `json:"hide_name"`
	Type           string            `json:"type"`
	Parameters     json.RawMessage   `json:"parameters"`
	Attributes     json.RawMessage   `json:"attributes"`
	PortDirections map[string]string `json:"port_directions"`
	Connections    json.RawMessage   `json:"connections"`
}

type rawNetName struct {
	HideName   int               `json:"hide_name"`
	Bits       []json.RawMessage `json:"bits"`
	Offset     int               `json:"offset"`
	Upto       int               `json:"upto"`
	Signed     int               `json:"signed"`
	Attributes json.RawMessage   `json:"attributes"`
}

type rawMemory struct {
	Width       int             `json:"width"`
	Size        int             `json:"size"`
	StartOffset int             `json:"start_offset"`
	Attributes  json.RawMessage `json:"attributes"`
}

func decodeModule(name string, data json.RawMessage) (*Module, error) {
	var rm rawModule
	if err := json.Unmarshal(data, &rm); err != nil {
		return nil, malformed("%v", err)
	}
	m := &Module{Name: name}
	var err error
	if m.Attributes, err = decodeValues(rm.Attributes); err != nil {
		return nil, err
	}
	if m.ParameterDefaults, err = decodeValues(rm.ParameterDefaults); err != nil {
		return nil, err
	}

	ports, err := members(rm.Ports, "ports")
	if err != nil {
		return nil, err
	}
	for _, p := range ports {
		var rp rawPort
		if err := json.Unmarshal(p.Value, &rp); err != nil {
			return nil, malformed("port %s: %v", p.Key, err)
		}
		dir, err := ParseDirection(rp.Direction)
		if err != nil {
			return nil, fmt.Errorf("port %s: %w", p.Key, err)
		}
		bits, err := decodeBits(rp.Bits)
		if err != nil {
			return nil, fmt.Errorf("port %s: %w", p.Key, err)
		}
		m.Ports = append(m.Ports, &Port{
			Name:      p.Key,
			Direction: dir,
			Bits:      bits,
			Offset:    rp.Offset,
			Upto:      rp.Upto != 0,
			Signed:    rp.Signed != 0,
		})
	}

	cells, err := members(rm.Cells, "cells")
	if err != nil {
		return nil, err
	}
	for _, c := range cells {
		cell, err := decodeCell(c.Key, c.Value)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", c.Key, err)
		}
		m.Cells = append(m.Cells, cell)
	}

	nets, err := members(rm.NetNames, "netnames")
	if err != nil {
		return nil, err
	}
	for _, n := range nets {
		var rn rawNetName
		if err := json.Unmarshal(n.Value, &rn); err != nil {
			return nil, malformed("netname %s: %v", n.Key, err)
		}
		bits, err := decodeBits(rn.Bits)
		if err != nil {
			return nil, fmt.Errorf("netname %s: %w", n.Key, err)
		}
		attrs, err := decodeValues(rn.Attributes)
		if err != nil {
			return nil, err
		}
		m.NetNames = append(m.NetNames, &NetName{
			Name:       n.Key,
			HideName:   rn.HideName != 0,
			Bits:       bits,
			Offset:     rn.Offset,
			Upto:       rn.Upto != 0,
			Signed:     rn.Signed != 0,
			Attributes: attrs,
		})
	}

	mems, err := members(rm.Memories, "memories")
	if err != nil {
		return nil, err
	}
	for _, mem := range mems {
		var rmem rawMemory
		if err := json.Unmarshal(mem.Value, &rmem); err != nil {
			return nil, malformed("memory %s: %v", mem.Key, err)
		}
		attrs, err := decodeValues(rmem.Attributes)
		if err != nil {
			return nil, err
		}
		m.Memories = append(m.Memories, &Memory{
			ID:          mem.Key,
			Width:       rmem.Width,
			Size:        rmem.Size,
			StartOffset: rmem.StartOffset,
			Attributes:  attrs,
		})
	}
	return m, nil
}

func decodeCell(name string, data json.RawMessage) (*Cell, error) {
	var rc rawCell
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, malformed("%v", err)
	}
	c := &Cell{Name: name, Type: rc.Type, HideName: rc.HideName != 0}
	var err error
	if c.Parameters, err = decodeValues(rc.Parameters); err != nil {
		return nil, err
	}
	if c.Attributes, err = decodeValues(rc.Attributes); err != nil {
		return nil, err
	}
	if len(rc.PortDirections) > 0 {
		c.PortDirections = make(map[string]Direction, len(rc.PortDirections))
		for port, s := range rc.PortDirections {
			dir, err := ParseDirection(s)
			if err != nil {
				return nil, fmt.Errorf("port %s: %w", port, err)
			}
			c.PortDirections[port] = dir
		}
	}

	conns, err := members(rc.Connections, "connections")
	if err != nil {
		return nil, err
	}
	for _, conn := range conns {
		var raw []json.RawMessage
		if err := json.Unmarshal(conn.Value, &raw); err != nil {
			return nil, malformed("connection %s: %v", conn.Key, err)
		}
		bits, err := decodeBits(raw)
		if err != nil {
			return nil, fmt.Errorf("connection %s: %w", conn.Key, err)
		}
		c.Connections = append(c.Connections, &Connection{Port: conn.Key, Bits: bits})
	}
	return c, nil
}

func decodeBits(raw []json.RawMessage) ([]Bit, error) {
	bits := make([]Bit, 0, len(raw))
	for i, r := range raw {
		b, err := parseBit(bytes.TrimSpace(r))
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
		bits = append(bits, b)
	}
	return bits, nil
}

func parseBit(r []byte) (Bit, error) {
	if len(r) > 0 && r[0] == '"' {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return Bit{}, malformed("%v", err)
		}
		switch s {
		case "0", "1", "x", "z":
			return ConstBit(s[0]), nil
		}
		return Bit{}, malformed("invalid constant bit %q", s)
	}
	n, err := strconv.Atoi(string(r))
	if err != nil || n < 0 {
		return Bit{}, malformed("invalid bit %s", r)
	}
	return NetBit(n), nil
}

// decodeValues decodes a parameter or attribute object. Numbers become
// int64 when integral and float64 otherwise.
func decodeValues(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, malformed("%v", err)
	}
	for k, v := range m {
		m[k] = plain(v)
	}
	return m, nil
}

func plain(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

type member struct {
	Key   string
	Value json.RawMessage
}

// members returns the members of a JSON object in document order. An
// absent or null object yields no members.
func members(raw json.RawMessage, what string) ([]member, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed("%s: %v", what, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, malformed("%s is not an object", what)
	}
	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed("%s: %v", what, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, malformed("%s: unexpected token %v", what, tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, malformed("%s.%s: %v", what, key, err)
		}
		out = append(out, member{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, malformed("%s: %v", what, err)
	}
	return out, nil
}
