// Package celltype classifies synthesis cell type identifiers into an
// abstraction level and a behavioral kind.
//
// Yosys marks internal cells with a '$' prefix. Word-level operators look
// like "$add" or "$dffe"; single-bit gates use the "$_" prefix and a trailing
// underscore ("$_AND_", "$_DFF_P_"). Anything without a marker is an
// instance of a user module.
package celltype

import "strings"

const (
	// GatePrefix marks single-bit gate cells.
	GatePrefix = "$_"
	// WordPrefix marks word-level operator cells.
	WordPrefix = "$"
)

// Level is the abstraction level of a cell.
type Level uint8

const (
	LevelModule Level = iota // instance of a user module
	LevelWord                // word-level operator
	LevelGate                // single-bit gate
)

func (l Level) String() string {
	switch l {
	case LevelWord:
		return "word"
	case LevelGate:
		return "gate"
	default:
		return "module"
	}
}

// Kind is the behavioral category of a cell.
type Kind uint8

const (
	KindOther Kind = iota
	KindUnary
	KindBinary
	KindMux
	KindRegister
	KindMemory
	KindSimpleGate
	KindComplexGate
	KindFlipFlop
)

var kindNames = [...]string{
	KindOther:       "other",
	KindUnary:       "unary",
	KindBinary:      "binary",
	KindMux:         "mux",
	KindRegister:    "register",
	KindMemory:      "memory",
	KindSimpleGate:  "simple-gate",
	KindComplexGate: "complex-gate",
	KindFlipFlop:    "flip-flop",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "other"
}

// CellType is the immutable classification of one type identifier.
// Two CellTypes are equal iff all fields match, so values compare with ==.
type CellType struct {
	ID    string
	Level Level
	Kind  Kind
}

func (ct CellType) String() string {
	return ct.ID + " (" + ct.Level.String() + "/" + ct.Kind.String() + ")"
}

// IsPrimitive reports whether the identifier carries the operator marker.
func (ct CellType) IsPrimitive() bool {
	return ct.Level != LevelModule
}

// Classify maps a type identifier to its CellType. It is total and pure:
// unknown identifiers classify as KindOther at the level implied by their
// prefix.
func Classify(id string) CellType {
	switch {
	case strings.HasPrefix(id, GatePrefix):
		return CellType{ID: id, Level: LevelGate, Kind: lookup(id, gateSets)}
	case strings.HasPrefix(id, WordPrefix):
		return CellType{ID: id, Level: LevelWord, Kind: lookup(id, wordSets)}
	default:
		return CellType{ID: id, Level: LevelModule, Kind: KindOther}
	}
}

// IsPrimitiveID reports whether id carries an operator marker.
func IsPrimitiveID(id string) bool {
	return strings.HasPrefix(id, WordPrefix)
}

type kindSet struct {
	kind Kind
	ids  map[string]struct{}
}

// lookup checks the sets in priority order; the first match wins.
func lookup(id string, sets []kindSet) Kind {
	for _, s := range sets {
		if _, ok := s.ids[id]; ok {
			return s.kind
		}
	}
	return KindOther
}

func newSet(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
