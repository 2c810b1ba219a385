package output

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/abdul-hamid-achik/hitvars/packages/capture"
	"github.com/abdul-hamid-achik/hitvars/packages/http"
	"github.com/fatih/color"
)

// formatValue truncates long values for display
func formatValue(v string, maxLen int) string {
	if len(v) > maxLen {
		return v[:maxLen] + "..."
	}
	return v
}

type ConsoleFormatter struct {
	writer    io.Writer
	errWriter io.Writer
	verbose   bool
	noColor   bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithErrWriter sets where errors and warnings go.
func WithErrWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.errWriter = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// FormatText writes the substituted text unchanged.
func (f *ConsoleFormatter) FormatText(source, text string) {
	if f.verbose {
		bold := color.New(color.Bold).SprintFunc()
		fmt.Fprintf(f.errWriter, "%s\n", bold("Resolved: "+source))
	}
	fmt.Fprint(f.writer, text)
}

func (f *ConsoleFormatter) FormatDiagnostics(diagnostics []Diagnostic) {
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, d := range diagnostics {
		fmt.Fprintf(f.errWriter, "%s:%d:%d: %s %s\n",
			d.Source, d.Line, d.Column, red(d.Message), cyan(d.Placeholder))
	}
	if len(diagnostics) > 0 {
		fmt.Fprintf(f.errWriter, "\n%s\n", red(fmt.Sprintf("%d unresolved placeholder(s)", len(diagnostics))))
	}
}

func (f *ConsoleFormatter) FormatDirectives(source string, directives []*capture.Directive) {
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, d := range directives {
		fmt.Fprintf(f.writer, "%s:%d  %s = %s %s", source, d.Line, d.Name, d.Path, cyan("("+d.Path.Kind.String()+")"))
		if d.Path.Kind == capture.PathXPath {
			fmt.Fprintf(f.writer, " %s", yellow("not supported"))
		}
		fmt.Fprintln(f.writer)
	}
}

func (f *ConsoleFormatter) FormatResponse(resp *http.Response) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	status := fmt.Sprintf("%d %s", resp.StatusCode, resp.Status)
	if resp.Status == "" {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	if resp.IsSuccess() {
		status = green(status)
	} else {
		status = red(status)
	}
	fmt.Fprintf(f.errWriter, "%s %s\n", status, cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))

	if f.verbose {
		names := make([]string, 0, len(resp.Headers))
		for name := range resp.Headers {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(f.errWriter, "  %s: %s\n", name, resp.Headers[name])
		}
	}

	fmt.Fprintln(f.writer, resp.BodyString())
}

func (f *ConsoleFormatter) FormatCaptures(values map[string]string) {
	bold := color.New(color.Bold).SprintFunc()

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		value := values[name]
		if !f.verbose {
			value = formatValue(value, 100)
		}
		fmt.Fprintf(f.writer, "%s = %s\n", bold(name), value)
	}
}

func (f *ConsoleFormatter) FormatVariables(vars []Variable) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	for _, v := range vars {
		if v.Shadowed {
			if f.verbose {
				fmt.Fprintln(f.writer, faint(fmt.Sprintf("%s = %s [%s, shadowed]", v.Name, formatValue(v.Value, 100), v.Source)))
			}
			continue
		}
		fmt.Fprintf(f.writer, "%s = %s %s\n", bold(v.Name), formatValue(v.Value, 100), cyan("["+v.Source+"]"))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.errWriter, "%s %v\n", red("Error:"), err)
}

// FormatWarning satisfies builtin.WarnFunc.
func (f *ConsoleFormatter) FormatWarning(format string, args ...any) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(f.errWriter, "%s %s\n", yellow("warning:"), fmt.Sprintf(format, args...))
}
