package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/hitvars/packages/capture"
	"github.com/abdul-hamid-achik/hitvars/packages/http"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Files     []JSONFile        `json:"files,omitempty"`
	Response  *JSONResponse     `json:"response,omitempty"`
	Captures  map[string]string `json:"captures,omitempty"`
	Variables []Variable        `json:"variables,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
	Time      string            `json:"time"`
}

// JSONFile holds the results for one input document
type JSONFile struct {
	Source      string          `json:"source"`
	Text        *string         `json:"text,omitempty"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	Directives  []JSONDirective `json:"directives,omitempty"`
}

// JSONDirective represents a parsed capture directive
type JSONDirective struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	Line      int    `json:"line"`
	Supported bool   `json:"supported"`
}

// JSONResponse represents response details
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
	Duration   float64           `json:"duration"`
}

// JSONFormatter formats results as a single JSON document. It is safe for
// concurrent use.
type JSONFormatter struct {
	writer io.Writer

	mu  sync.Mutex
	out JSONOutput
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

// file returns the entry for source, adding it on first use. Must be called
// with f.mu held.
func (f *JSONFormatter) file(source string) *JSONFile {
	for i := range f.out.Files {
		if f.out.Files[i].Source == source {
			return &f.out.Files[i]
		}
	}
	f.out.Files = append(f.out.Files, JSONFile{Source: source})
	return &f.out.Files[len(f.out.Files)-1]
}

func (f *JSONFormatter) FormatText(source, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.file(source).Text = &text
}

func (f *JSONFormatter) FormatDiagnostics(diagnostics []Diagnostic) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range diagnostics {
		file := f.file(d.Source)
		file.Diagnostics = append(file.Diagnostics, d)
	}
}

func (f *JSONFormatter) FormatDirectives(source string, directives []*capture.Directive) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file := f.file(source)
	for _, d := range directives {
		file.Directives = append(file.Directives, JSONDirective{
			Name:      d.Name,
			Path:      d.Path.String(),
			Kind:      d.Path.Kind.String(),
			Line:      d.Line,
			Supported: d.Path.Kind != capture.PathXPath,
		})
	}
}

func (f *JSONFormatter) FormatResponse(resp *http.Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out.Response = &JSONResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Headers,
		Body:       resp.BodyString(),
		Duration:   float64(resp.Duration.Milliseconds()),
	}
}

func (f *JSONFormatter) FormatCaptures(values map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.out.Captures == nil {
		f.out.Captures = make(map[string]string, len(values))
	}
	for k, v := range values {
		f.out.Captures[k] = v
	}
}

func (f *JSONFormatter) FormatVariables(vars []Variable) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out.Variables = append(f.out.Variables, vars...)
}

func (f *JSONFormatter) FormatError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out.Errors = append(f.out.Errors, err.Error())
}

func (f *JSONFormatter) FormatWarning(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out.Warnings = append(f.out.Warnings, fmt.Sprintf(format, args...))
}

// Flush writes the accumulated JSON output and resets the formatter.
func (f *JSONFormatter) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out.Time = time.Now().Format(time.RFC3339)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(f.out)
	f.out = JSONOutput{}
	return err
}
