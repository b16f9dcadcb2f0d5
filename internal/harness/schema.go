package harness

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

// SchemaProblem is one schema violation in a scenario document.
type SchemaProblem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// SchemaError lists every violation found in a scenario document.
type SchemaError struct {
	File     string          `json:"file"`
	Problems []SchemaProblem `json:"problems"`
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s: %d schema violation(s)", e.File, len(e.Problems))
	for _, p := range e.Problems {
		buf.WriteString("\n  ")
		if p.Line > 0 {
			fmt.Fprintf(&buf, "line %d: ", p.Line)
		}
		if p.Path != "" {
			fmt.Fprintf(&buf, "%s: ", p.Path)
		}
		buf.WriteString(p.Message)
	}
	return buf.String()
}

// ValidateDocument checks a YAML scenario document against the embedded CUE
// schema. Unknown fields, missing required fields, out-of-range numbers and
// unknown op or outcome names are all reported, with line numbers where the
// document supplies them.
func ValidateDocument(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile scenario schema: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("failed to build document: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Scenario")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return newSchemaError(filename, err)
	}
	return nil
}

func newSchemaError(filename string, err error) *SchemaError {
	se := &SchemaError{File: filename}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		p := SchemaProblem{
			Path:    strings.TrimPrefix(strings.Join(e.Path(), "."), "#Scenario."),
			Message: fmt.Sprintf(format, args...),
		}
		for _, pos := range cueerrors.Positions(e) {
			if pos.Filename() == filename {
				p.Line = pos.Line()
				break
			}
		}
		se.Problems = append(se.Problems, p)
	}
	if len(se.Problems) == 0 {
		se.Problems = append(se.Problems, SchemaProblem{Message: err.Error()})
	}
	return se
}
