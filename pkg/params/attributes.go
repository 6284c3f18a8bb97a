package params

import (
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/value"
)

// Attributes wraps the attribute map of a cell, wire or module. The
// synthesis tool attaches free-form metadata here; only a few keys have a
// fixed meaning.
type Attributes struct {
	value.Values
}

// NewAttributes wraps raw. A nil map is valid and empty.
func NewAttributes(raw map[string]any) Attributes {
	return Attributes{Values: value.Values(raw)}
}

// Src returns the source location, e.g. "top.v:12.3-14.6".
func (a Attributes) Src() string { return a.String("src", "") }

// SrcLocations splits a multi-location src attribute.
func (a Attributes) SrcLocations() []string {
	src := a.Src()
	if src == "" {
		return nil
	}
	return strings.Split(src, "|")
}

// Keep reports whether the object is marked to survive optimization.
func (a Attributes) Keep() bool { return a.Bool("keep", false) }

// HDLName returns the hierarchical HDL name with path components split.
func (a Attributes) HDLName() []string {
	name := a.String("hdlname", "")
	if name == "" {
		return nil
	}
	return strings.Fields(name)
}

// Top reports whether the module is marked as the design top.
func (a Attributes) Top() bool { return a.Bool("top", false) }

// Blackbox reports whether the module is a black box without contents.
func (a Attributes) Blackbox() bool {
	return a.Bool("blackbox", false) || a.Bool("whitebox", false)
}

// SrcLine returns the first line number of the source location.
func (a Attributes) SrcLine() (int, bool) {
	src := a.Src()
	if src == "" {
		return 0, false
	}
	_, pos, ok := strings.Cut(strings.Split(src, "|")[0], ":")
	if !ok {
		return 0, false
	}
	end := strings.IndexFunc(pos, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(pos)
	}
	n, err := strconv.Atoi(pos[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
