package rtlil

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// RTLILLexer defines the lexical structure of Yosys RTLIL text.
// Identifiers start with a backslash (public) or a dollar sign (internal)
// and run up to the next whitespace.
var RTLILLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	// Sized constants, e.g. 8'00001111 or 4'x01z
	{Name: "Bits", Pattern: `[0-9]+'[01xzm\-]*`},

	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Real", Pattern: `[-+]?[0-9]+\.[0-9]+([eE][-+]?[0-9]+)?`},
	{Name: "Int", Pattern: `[-+]?[0-9]+`},

	{Name: "Ident", Pattern: `[\\$][^ \t\r\n]+`},
	{Name: "Keyword", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	{Name: "Punct", Pattern: `[\[\]{}:,]`},
})
