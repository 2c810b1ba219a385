package env

import (
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/hitvars/packages/builtin"
	"github.com/abdul-hamid-achik/hitvars/packages/core/errs"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

const (
	// MaxDepth bounds how many times resolved values are expanded again.
	MaxDepth = 10

	// Private use code points standing in for \{{ and \}} during scanning.
	// Both encode to three bytes in UTF-8, the same width as the escape
	// sequences they replace, so token offsets are unchanged.
	escapedOpen  = "\uE000"
	escapedClose = "\uE001"
)

var (
	escaper   = strings.NewReplacer(`\{{`, escapedOpen, `\}}`, escapedClose)
	unescaper = strings.NewReplacer(escapedOpen, "{{", escapedClose, "}}")
)

// Resolver expands {{name}} and {{$function args}} placeholders against a
// Scopes snapshot and the built-in functions.
type Resolver struct {
	funcs *builtin.Resolver
}

// NewResolver returns a Resolver dispatching $-prefixed names to funcs. A nil
// funcs uses builtin.NewResolver().
func NewResolver(funcs *builtin.Resolver) *Resolver {
	if funcs == nil {
		funcs = builtin.NewResolver()
	}
	return &Resolver{funcs: funcs}
}

// Functions returns the built-in function resolver.
func (r *Resolver) Functions() *builtin.Resolver {
	return r.funcs
}

// Substitute replaces every placeholder in text. Resolved values are expanded
// again, up to MaxDepth levels. Escaped braces (\{{ and \}}) are emitted as
// literal {{ and }}. On any failure no partial output is returned.
func (r *Resolver) Substitute(text string, scopes *Scopes) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	out, err := r.substitute(text, scopes, make(map[string]struct{}), 0)
	if err != nil {
		return "", err
	}
	return unescaper.Replace(out), nil
}

// SubstituteAll substitutes every value of values, keeping the keys as-is.
func (r *Resolver) SubstituteAll(values map[string]string, scopes *Scopes) (map[string]string, error) {
	result := make(map[string]string, len(values))
	for k, v := range values {
		resolved, err := r.Substitute(v, scopes)
		if err != nil {
			return nil, err
		}
		result[k] = resolved
	}
	return result, nil
}

func (r *Resolver) substitute(text string, scopes *Scopes, resolving map[string]struct{}, depth int) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	if depth > MaxDepth {
		return "", errs.Circular("maximum depth of %d exceeded", MaxDepth)
	}

	text = escaper.Replace(text)
	matches := variablePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0

	for _, m := range matches {
		b.WriteString(text[last:m[0]])

		name := strings.TrimSpace(text[m[2]:m[3]])
		if _, busy := resolving[name]; busy {
			return "", errs.Circular("variable %q references itself", name)
		}

		resolving[name] = struct{}{}
		value, err := r.resolveName(name, scopes)
		if err == nil {
			value, err = r.substitute(value, scopes, resolving, depth+1)
		}
		delete(resolving, name)

		if err != nil {
			return "", err
		}
		b.WriteString(value)
		last = m[1]
	}

	b.WriteString(text[last:])
	return b.String(), nil
}

func (r *Resolver) resolveName(name string, scopes *Scopes) (string, error) {
	if strings.HasPrefix(name, "$") {
		fields := strings.Fields(name)
		return r.funcs.Call(strings.TrimPrefix(fields[0], "$"), fields[1:])
	}

	if scopes != nil {
		if v, _, ok := scopes.Lookup(name); ok {
			return v, nil
		}
	}
	return "", errs.Undefined(name)
}

// Token is a located placeholder occurrence.
type Token struct {
	// Name is the trimmed text between the braces.
	Name string
	// Start and End are byte offsets of the whole {{...}} in the source text.
	Start int
	End   int
	// Function is true for $-prefixed names.
	Function bool
}

// ScanTokens returns every placeholder in text in source order. Escaped braces
// are not reported.
func ScanTokens(text string) []Token {
	if !strings.Contains(text, "{{") {
		return nil
	}

	escaped := escaper.Replace(text)
	var tokens []Token
	for _, m := range variablePattern.FindAllStringSubmatchIndex(escaped, -1) {
		name := strings.TrimSpace(escaped[m[2]:m[3]])
		tokens = append(tokens, Token{
			Name:     name,
			Start:    m[0],
			End:      m[1],
			Function: strings.HasPrefix(name, "$"),
		})
	}
	return tokens
}

// TokenError is a placeholder that failed to resolve.
type TokenError struct {
	Token Token
	Err   error
}

func (e *TokenError) Error() string {
	return e.Err.Error()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// Validate resolves every placeholder of text independently and reports the
// ones that fail, so a document can be diagnosed without stopping at the
// first problem.
func (r *Resolver) Validate(text string, scopes *Scopes) []*TokenError {
	var failures []*TokenError
	for _, tok := range ScanTokens(text) {
		_, err := r.substitute(text[tok.Start:tok.End], scopes, make(map[string]struct{}), 0)
		if err != nil {
			failures = append(failures, &TokenError{Token: tok, Err: err})
		}
	}
	return failures
}
