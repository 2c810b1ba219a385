package capture

import (
	"bufio"
	"regexp"
	"strings"
)

// PathKind classifies a capture path.
type PathKind int

const (
	PathHeader PathKind = iota
	PathJSON
	PathXPath
)

func (k PathKind) String() string {
	switch k {
	case PathHeader:
		return "header"
	case PathJSON:
		return "jsonpath"
	case PathXPath:
		return "xpath"
	default:
		return "unknown"
	}
}

// Path is a classified capture path. For headers Expr is the header name.
type Path struct {
	Kind PathKind
	Expr string
}

func (p Path) String() string {
	if p.Kind == PathHeader {
		return headerPrefix + p.Expr
	}
	return p.Expr
}

const headerPrefix = "headers."

// ClassifyPath decides how raw should be evaluated against a response.
func ClassifyPath(raw string) Path {
	switch {
	case strings.HasPrefix(raw, headerPrefix):
		return Path{Kind: PathHeader, Expr: strings.TrimPrefix(raw, headerPrefix)}
	case strings.HasPrefix(raw, "$"),
		strings.HasPrefix(raw, "@."),
		strings.Contains(raw, "$."),
		hasBracketPair(raw) && !strings.HasPrefix(raw, "/"):
		return Path{Kind: PathJSON, Expr: raw}
	default:
		return Path{Kind: PathXPath, Expr: raw}
	}
}

func hasBracketPair(s string) bool {
	open := strings.IndexByte(s, '[')
	return open >= 0 && strings.IndexByte(s[open:], ']') > 0
}

// Directive is a parsed "# @capture name = path" line.
type Directive struct {
	Name string
	Path Path
	// Line is the 1-based line number within the scanned text, 0 when parsed alone.
	Line int
}

var directivePattern = regexp.MustCompile(`^\s*#\s*@capture\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*)$`)

// ParseDirective parses a single line. Lines that are not capture directives
// are reported with ok false; they are ordinary comments, not errors.
func ParseDirective(line string) (*Directive, bool) {
	m := directivePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	path := strings.TrimSpace(m[2])
	if path == "" {
		return nil, false
	}
	return &Directive{Name: m[1], Path: ClassifyPath(path)}, true
}

// ParseDirectives returns every capture directive in text, in order.
func ParseDirectives(text string) []*Directive {
	var directives []*Directive
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if d, ok := ParseDirective(scanner.Text()); ok {
			d.Line = lineNo
			directives = append(directives, d)
		}
	}
	return directives
}
