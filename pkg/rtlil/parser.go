package rtlil

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceNetlist/pkg/yosys"
)

// Parser parses RTLIL text into a File.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new RTLIL parser instance.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(RTLILLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("rtlil: failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses RTLIL from a reader.
func (p *Parser) Parse(r io.Reader) (*File, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("rtlil: parse error: %w", err)
	}
	return f, nil
}

// ParseString parses RTLIL held in a string.
func (p *Parser) ParseString(input string) (*File, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("rtlil: parse error: %w", err)
	}
	return f, nil
}

// Decode parses RTLIL from r and converts it to a document tree.
func Decode(r io.Reader) (*yosys.Design, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	f, err := p.Parse(r)
	if err != nil {
		return nil, err
	}
	return Convert(f)
}

// ReadFile parses the RTLIL file at path and converts it.
func ReadFile(path string) (*yosys.Design, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rtlil: failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file)
}
