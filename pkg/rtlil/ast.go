package rtlil

import "github.com/alecthomas/participle/v2/lexer"

// File is a complete RTLIL document.
type File struct {
	Items []*TopItem `@@*`
}

// TopItem is a statement at file level.
type TopItem struct {
	AutoIdx   *int       `  "autoidx" @Int`
	Attribute *Attribute `| @@`
	Module    *Module    `| @@`
}

// Modules returns the module definitions in document order.
func (f *File) Modules() []*Module {
	var out []*Module
	for _, it := range f.Items {
		if it.Module != nil {
			out = append(out, it.Module)
		}
	}
	return out
}

// Attribute attaches a value to the next module, wire, memory or cell.
// Example: attribute \src "top.v:3.1-5.4"
type Attribute struct {
	Name  string `"attribute" @Ident`
	Value *Const `@@`
}

// Const is a literal: string, sized bit constant, real or integer.
type Const struct {
	Str  *string  `  @String`
	Bits *string  `| @Bits`
	Real *float64 `| @Real`
	Int  *int64   `| @Int`
}

// Module is a module definition.
type Module struct {
	Pos   lexer.Position
	Name  string        `"module" @Ident`
	Stmts []*ModuleStmt `@@* "end"`
}

// ModuleStmt is one statement inside a module body. Processes are not part
// of the grammar: the input must be a netlist without behavioral code.
type ModuleStmt struct {
	Attribute *Attribute  `  @@`
	Parameter *Parameter  `| @@`
	Wire      *Wire       `| @@`
	Memory    *MemoryDecl `| @@`
	Cell      *Cell       `| @@`
	Connect   *Connect    `| @@`
}

// Parameter declares a module parameter with an optional default.
type Parameter struct {
	Name    string `"parameter" @Ident`
	Default *Const `@@?`
}

// Wire declares a wire.
// Example: wire width 8 offset 0 input 1 \a
type Wire struct {
	Pos     lexer.Position
	Options []*WireOption `"wire" @@*`
	Name    string        `@Ident`
}

// WireOption is one wire property.
type WireOption struct {
	Width  *int `  "width" @Int`
	Offset *int `| "offset" @Int`
	Input  *int `| "input" @Int`
	Output *int `| "output" @Int`
	Inout  *int `| "inout" @Int`
	Upto   bool `| @"upto"`
	Signed bool `| @"signed"`
}

// MemoryDecl declares memory metadata.
// Example: memory width 8 size 256 \mem
type MemoryDecl struct {
	Options []*MemoryOption `"memory" @@*`
	Name    string          `@Ident`
}

// MemoryOption is one memory property.
type MemoryOption struct {
	Width  *int `  "width" @Int`
	Size   *int `| "size" @Int`
	Offset *int `| "offset" @Int`
}

// Cell is a cell instance with its parameters and port connections.
type Cell struct {
	Pos  lexer.Position
	Type string      `"cell" @Ident`
	Name string      `@Ident`
	Body []*CellStmt `@@* "end"`
}

// CellStmt is one statement inside a cell body.
type CellStmt struct {
	Parameter *CellParameter `  @@`
	Connect   *Connect       `| @@`
}

// CellParameter sets a cell parameter.
// Example: parameter signed \B_SIGNED 1
type CellParameter struct {
	Signed bool   `"parameter" ( @"signed"`
	Real   bool   `            | @"real" )?`
	Name   string `@Ident`
	Value  *Const `@@`
}

// Connect joins two signals. Inside a cell the left side names a port.
type Connect struct {
	Pos lexer.Position
	LHS *SigSpec `"connect" @@`
	RHS *SigSpec `@@`
}

// SigSpec is a signal expression.
type SigSpec struct {
	Concat *Concat  `  @@`
	Bits   *string  `| @Bits`
	Int    *int64   `| @Int`
	Wire   *SigWire `| @@`
}

// Concat concatenates signals, most significant part first.
type Concat struct {
	Parts []*SigSpec `"{" @@* "}"`
}

// SigWire selects a whole wire, one bit or a bit range.
type SigWire struct {
	Name string `@Ident`
	Hi   *int   `( "[" @Int`
	Lo   *int   `  ( ":" @Int )? "]" )?`
}
