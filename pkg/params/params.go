// Package params decodes and validates the per-kind parameter sets of
// netlist cells.
//
// Every cell kind has exactly one parameter shape. The shapes form a closed
// union (the Params interface cannot be implemented outside this package)
// and Validate selects the invariant checks with a type switch, so the
// table of operation invariants lives in one place.
package params

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/celltype"
	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/value"
)

// ErrInvalid is matched by every ValidationError via errors.Is.
var ErrInvalid = errors.New("params: invalid cell parameters")

// ValidationError reports a violated structural invariant.
type ValidationError struct {
	Port     string // offending port, if the invariant is about a port
	Param    string // offending parameter, if the invariant is about a parameter
	Expected int64
	Actual   int64
	Reason   string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Port != "":
		return fmt.Sprintf("params: port %s: %s (expected %d, got %d)", e.Port, e.Reason, e.Expected, e.Actual)
	case e.Param != "":
		return fmt.Sprintf("params: parameter %s: %s (expected %d, got %d)", e.Param, e.Reason, e.Expected, e.Actual)
	}
	return "params: " + e.Reason
}

// Is makes errors.Is(err, ErrInvalid) true for validation failures.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Ports maps port names to their connected bit count. A port that is
// declared but carries no bits maps to zero.
type Ports map[string]int

// Has reports whether any of the given names is declared.
func (p Ports) Has(names ...string) (string, bool) {
	for _, n := range names {
		if _, ok := p[n]; ok {
			return n, true
		}
	}
	return "", false
}

// Params is the decoded parameter set of one cell.
type Params interface {
	// Op returns the cell type identifier the parameters were decoded for.
	Op() string
	// Widths returns the expected bit count of every port whose width is
	// determined by the parameters.
	Widths() map[string]int
	sealed()
}

// Decode builds the parameter object for a cell of type ct and validates
// it. raw is the document's parameter map and ports the connected widths.
func Decode(ct celltype.CellType, raw value.Values, ports Ports) (Params, error) {
	var p Params
	switch ct.Kind {
	case celltype.KindUnary:
		p = decodeUnary(ct.ID, raw, ports)
	case celltype.KindBinary:
		p = decodeBinary(ct.ID, raw, ports)
	case celltype.KindMux:
		if ct.Level == celltype.LevelGate {
			p = decodeGate(ct)
		} else {
			p = decodeMux(ct.ID, raw, ports)
		}
	case celltype.KindRegister:
		p = decodeRegister(ct.ID, raw, ports)
	case celltype.KindMemory:
		p = decodeMemory(ct.ID, raw, ports)
	case celltype.KindSimpleGate, celltype.KindComplexGate:
		p = decodeGate(ct)
	case celltype.KindFlipFlop:
		p = decodeFlipFlop(ct.ID)
	default:
		p = &OtherParams{ID: ct.ID, Values: raw}
	}
	if err := Validate(p, ports); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate runs the invariant checks of p against the connected port
// widths, then verifies every connected port against p.Widths().
func Validate(p Params, ports Ports) error {
	var err error
	switch p := p.(type) {
	case *UnaryParams:
		err = p.validate()
	case *BinaryParams:
		err = p.validate()
	case *MuxParams:
		err = p.validate()
	case *RegisterParams:
		err = p.validate(ports)
	case *FlipFlopParams:
		err = p.validate(ports)
	case *MemoryParams:
		err = p.validate()
	case *MemWriteParams:
		err = p.validate()
	case *MemReadParams, *MemInitParams, *GateParams:
	case *OtherParams:
		return nil
	default:
		return fmt.Errorf("params: unsupported parameter type %T", p)
	}
	if err != nil {
		return err
	}
	return checkWidths(p.Widths(), ports)
}

func checkWidths(expected map[string]int, ports Ports) error {
	for _, name := range sortedKeys(expected) {
		got, ok := ports[name]
		if !ok || got == 0 {
			continue
		}
		if want := expected[name]; got != want {
			return &ValidationError{
				Port:     name,
				Expected: int64(want),
				Actual:   int64(got),
				Reason:   "connected width does not match parameters",
			}
		}
	}
	return nil
}

// width prefers the explicit parameter and falls back to the connected
// width of port.
func width(raw value.Values, ports Ports, param, port string) int {
	if raw.Has(param) {
		return raw.Int(param, 0)
	}
	return ports[port]
}

// OtherParams keeps the raw parameters of cells without a dedicated shape
// (user module instances and unknown primitives).
type OtherParams struct {
	ID     string
	Values value.Values
}

func (p *OtherParams) Op() string             { return p.ID }
func (p *OtherParams) Widths() map[string]int { return nil }
func (p *OtherParams) sealed()                {}
