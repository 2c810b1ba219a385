package output

import (
	"slices"
	"strings"

	"github.com/abdul-hamid-achik/hitvars/packages/capture"
	"github.com/abdul-hamid-achik/hitvars/packages/core/env"
	"github.com/abdul-hamid-achik/hitvars/packages/core/errs"
	"github.com/abdul-hamid-achik/hitvars/packages/http"
)

// Formatter renders the results of the CLI commands.
type Formatter interface {
	FormatText(source, text string)
	FormatDiagnostics(diagnostics []Diagnostic)
	FormatDirectives(source string, directives []*capture.Directive)
	FormatResponse(resp *http.Response)
	FormatCaptures(values map[string]string)
	FormatVariables(vars []Variable)
	FormatError(err error)
	FormatWarning(format string, args ...any)
}

// Flushable is implemented by formatters that buffer until the end of a run.
type Flushable interface {
	Flush() error
}

// Diagnostic is a placeholder that failed to resolve, located in its source.
type Diagnostic struct {
	Source      string `json:"source"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Placeholder string `json:"placeholder"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
}

// Variable is a scope entry as listed by the CLI. Shadowed entries are
// hidden by a higher-precedence scope.
type Variable struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Source   string `json:"source"`
	Shadowed bool   `json:"shadowed,omitempty"`
}

// Variables flattens scopes in precedence order, sorted by name within each
// scope.
func Variables(scopes *env.Scopes) []Variable {
	var vars []Variable
	seen := make(map[string]bool)
	for _, source := range env.Sources() {
		layer := scopes.Layer(source)
		names := make([]string, 0, len(layer))
		for name := range layer {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			vars = append(vars, Variable{
				Name:     name,
				Value:    layer[name],
				Source:   source.String(),
				Shadowed: seen[name],
			})
			seen[name] = true
		}
	}
	return vars
}

// Diagnose turns validation failures into located diagnostics. Lines and
// columns are 1-based; columns count bytes.
func Diagnose(source, text string, failures []*env.TokenError) []Diagnostic {
	diagnostics := make([]Diagnostic, 0, len(failures))
	for _, f := range failures {
		line, col := position(text, f.Token.Start)
		kind := "error"
		if k, ok := errs.KindOf(f.Err); ok {
			kind = k.String()
		}
		diagnostics = append(diagnostics, Diagnostic{
			Source:      source,
			Line:        line,
			Column:      col,
			Placeholder: text[f.Token.Start:f.Token.End],
			Kind:        kind,
			Message:     f.Err.Error(),
		})
	}
	return diagnostics
}

func position(text string, offset int) (int, int) {
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')
	return line, col
}
