package yosys

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Schema checks raw documents against the embedded #Design definition
// before they are decoded, so shape errors name the offending path.
type Schema struct {
	ctx    *cue.Context
	design cue.Value
}

// NewSchema compiles the embedded schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource)
	if schema.Err() != nil {
		return nil, fmt.Errorf("yosys: compiling schema: %w", schema.Err())
	}
	design := schema.LookupPath(cue.ParsePath("#Design"))
	if design.Err() != nil {
		return nil, fmt.Errorf("yosys: looking up #Design: %w", design.Err())
	}
	return &Schema{ctx: ctx, design: design}, nil
}

var (
	defaultSchema     *Schema
	defaultSchemaErr  error
	defaultSchemaOnce sync.Once
)

// DefaultSchema returns a shared compiled schema.
func DefaultSchema() (*Schema, error) {
	defaultSchemaOnce.Do(func() {
		defaultSchema, defaultSchemaErr = NewSchema()
	})
	return defaultSchema, defaultSchemaErr
}

// Validate unifies the JSON document with #Design. Failures wrap
// ErrMalformed and list every violated constraint.
func (s *Schema) Validate(data []byte) error {
	doc := s.ctx.CompileBytes(data)
	if doc.Err() != nil {
		return malformed("%v", doc.Err())
	}
	unified := s.design.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var msgs []string
		for _, e := range cueerrors.Errors(err) {
			msgs = append(msgs, e.Error())
		}
		return malformed("schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}
