package capture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitvars/packages/core/env"
	"github.com/abdul-hamid-achik/hitvars/packages/core/errs"
	"github.com/abdul-hamid-achik/hitvars/packages/http"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Extract evaluates path against resp. contentType is the declared response
// type; when empty the response's Content-Type header is used.
func Extract(resp *http.Response, path Path, contentType string) (string, error) {
	switch path.Kind {
	case PathHeader:
		return extractHeader(resp, path.Expr)
	case PathJSON:
		if contentType == "" {
			contentType = resp.ContentType()
		}
		if !http.IsJSONContentType(contentType) {
			return "", errs.Syntax("JSONPath %q requires a JSON response, got content type %q", path.Expr, contentType)
		}
		return ExtractJSON(resp.Body, path.Expr)
	case PathXPath:
		return "", errs.Unsupported("XPath extraction")
	default:
		return "", errs.Syntax("unknown capture path kind %d", path.Kind)
	}
}

func extractHeader(resp *http.Response, name string) (string, error) {
	v, ok := resp.LookupHeader(name)
	if !ok {
		return "", errs.Undefined(fmt.Sprintf("Header '%s' not found", name))
	}
	return v, nil
}

// ExtractJSON evaluates a field/index path such as $.a.b[0].c against body.
func ExtractJSON(body []byte, expr string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errs.Syntax("response body is not valid JSON")
	}

	segments, err := parseSegments(normalizeJSONPath(expr))
	if err != nil {
		return "", err
	}

	current := gjson.ParseBytes(body)
	for _, seg := range segments {
		current, err = seg.apply(current)
		if err != nil {
			return "", err
		}
	}
	return render(current), nil
}

// normalizeJSONPath strips a leading $ or @ and the dot that follows it. A
// qualifier before the root, as in body.$.id, is dropped.
func normalizeJSONPath(expr string) string {
	expr = strings.TrimSpace(expr)
	if i := strings.Index(expr, "$."); i > 0 {
		expr = expr[i:]
	}
	if strings.HasPrefix(expr, "$") || strings.HasPrefix(expr, "@") {
		expr = expr[1:]
	}
	return strings.TrimPrefix(expr, ".")
}

type segment struct {
	field   string
	index   int
	isIndex bool
}

func (s segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.field
}

func (s segment) apply(v gjson.Result) (gjson.Result, error) {
	if s.isIndex {
		if !v.IsArray() {
			return gjson.Result{}, errs.Undefined(fmt.Sprintf("index %d applied to a non-array value", s.index))
		}
		items := v.Array()
		if s.index >= len(items) {
			return gjson.Result{}, errs.Undefined(fmt.Sprintf("index %d out of bounds (length %d)", s.index, len(items)))
		}
		return items[s.index], nil
	}

	if v.IsObject() {
		var found gjson.Result
		ok := false
		v.ForEach(func(key, value gjson.Result) bool {
			if key.Str == s.field {
				found, ok = value, true
				return false
			}
			return true
		})
		if ok {
			return found, nil
		}
	}
	return gjson.Result{}, errs.Undefined(fmt.Sprintf("field '%s' not found", s.field))
}

// parseSegments splits a normalized path into field and [index] segments.
func parseSegments(path string) ([]segment, error) {
	var segments []segment
	var field strings.Builder

	flush := func() {
		if field.Len() > 0 {
			segments = append(segments, segment{field: field.String()})
			field.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, errs.Syntax("unterminated '[' in JSONPath %q", path)
			}
			inner := path[i+1 : i+end]
			if inner == "" || strings.Trim(inner, "0123456789") != "" {
				return nil, errs.Syntax("invalid array index %q in JSONPath", inner)
			}
			idx, err := strconv.Atoi(inner)
			if err != nil {
				return nil, errs.Syntax("invalid array index %q in JSONPath", inner)
			}
			segments = append(segments, segment{index: idx, isIndex: true})
			i += end
		default:
			field.WriteByte(c)
		}
	}
	flush()
	return segments, nil
}

// render converts the terminal value to text: strings unquoted, numbers in
// canonical form, objects and arrays as compact JSON.
func render(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return "null"
	case gjson.JSON:
		return string(pretty.Ugly([]byte(v.Raw)))
	case gjson.Number:
		// Integers keep every digit, beyond float64 precision.
		if !strings.ContainsAny(v.Raw, ".eE") {
			return v.Raw
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return v.Raw
	}
}

// ExtractAll evaluates every directive against resp. Successful captures are
// returned even when others fail; failures are joined into the error.
func ExtractAll(resp *http.Response, directives []*Directive, contentType string) (map[string]string, error) {
	results := make(map[string]string, len(directives))
	var failures []error

	for _, d := range directives {
		value, err := Extract(resp, d.Path, contentType)
		if err != nil {
			failures = append(failures, fmt.Errorf("capture %s: %w", d.Name, err))
			continue
		}
		results[d.Name] = value
	}

	return results, errors.Join(failures...)
}

// Apply extracts every directive and records the successful captures in the
// session's request scope.
func Apply(session *env.Session, resp *http.Response, directives []*Directive, contentType string) (map[string]string, error) {
	results, err := ExtractAll(resp, directives, contentType)
	session.SetCaptures(results)
	return results, err
}
