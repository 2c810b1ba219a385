package capture

import (
	"testing"

	"github.com/abdul-hamid-achik/hitvars/packages/core/env"
	"github.com/abdul-hamid-achik/hitvars/packages/core/errs"
	"github.com/abdul-hamid-achik/hitvars/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createResponse(body string, headers map[string]string) *http.Response {
	if headers == nil {
		headers = make(map[string]string)
	}
	if _, ok := headers["Content-Type"]; !ok {
		headers["Content-Type"] = "application/json"
	}
	return &http.Response{
		StatusCode: 200,
		Headers:    headers,
		Body:       []byte(body),
	}
}

func requireKind(t *testing.T, err error, kind errs.Kind) {
	t.Helper()
	require.Error(t, err)
	got, ok := errs.KindOf(err)
	require.True(t, ok, "expected errs.Error, got %T: %v", err, err)
	assert.Equal(t, kind, got, "error: %v", err)
}

func TestExtract_JSONPath(t *testing.T) {
	resp := createResponse(`{
		"a": {"b": [{"c": "x"}]},
		"count": 3,
		"ratio": 1.5,
		"price": 1.50,
		"exp": 1e3,
		"big": 12345678901234567890,
		"ok": true,
		"nothing": null,
		"user": {"name": "John", "tags": ["a", "b"]},
		"dotted.key": "literal",
		"list": [10, [20, 30]]
	}`, nil)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"nested field and index", "$.a.b[0].c", "x"},
		{"number", "$.count", "3"},
		{"float", "$.ratio", "1.5"},
		{"trailing zero dropped", "$.price", "1.5"},
		{"exponent expanded", "$.exp", "1000"},
		{"large integer kept", "$.big", "12345678901234567890"},
		{"boolean", "$.ok", "true"},
		{"null", "$.nothing", "null"},
		{"object compacted", "$.user", `{"name":"John","tags":["a","b"]}`},
		{"array compacted", "$.user.tags", `["a","b"]`},
		{"at prefix", "@.user.name", "John"},
		{"no prefix", "user.name", "John"},
		{"nested arrays", "$.list[1][0]", "20"},
		{"bracket on root key", "$.list[0]", "10"},
		{"qualified root", "body.$.user.name", "John"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(resp, Path{Kind: PathJSON, Expr: tt.path}, "")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtract_Identity(t *testing.T) {
	resp := createResponse("{ \"a\" : 1,\n \"b\" : [ 1, 2 ] }", nil)

	for _, expr := range []string{"$", "@", "$."} {
		got, err := Extract(resp, Path{Kind: PathJSON, Expr: expr}, "")
		require.NoError(t, err, expr)
		assert.Equal(t, `{"a":1,"b":[1,2]}`, got, expr)
	}

	got, err := Extract(createResponse(`"just a string"`, nil), Path{Kind: PathJSON, Expr: "$"}, "")
	require.NoError(t, err)
	assert.Equal(t, "just a string", got)
}

func TestExtract_JSONPathMisses(t *testing.T) {
	resp := createResponse(`{"items": [{"id": 1}], "name": "x"}`, nil)

	tests := []struct {
		name string
		path string
	}{
		{"missing field", "$.missing"},
		{"index out of bounds", "$.items[5]"},
		{"field on array", "$.items.id"},
		{"index on object", "$.name[0]"},
		{"field on scalar", "$.name.first"},
		{"field that looks like nested dots", "$.dotted.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(resp, Path{Kind: PathJSON, Expr: tt.path}, "")
			requireKind(t, err, errs.UndefinedVariable)
		})
	}
}

func TestExtract_JSONPathSyntaxErrors(t *testing.T) {
	resp := createResponse(`{"items": [1]}`, nil)

	for _, path := range []string{"$.items[", "$.items[abc]", "$.items[]", "$.items[-1]"} {
		_, err := Extract(resp, Path{Kind: PathJSON, Expr: path}, "")
		requireKind(t, err, errs.InvalidSyntax)
	}
}

func TestExtract_JSONPathRequiresJSONContent(t *testing.T) {
	resp := createResponse(`{"a": 1}`, map[string]string{"Content-Type": "text/plain"})

	_, err := Extract(resp, Path{Kind: PathJSON, Expr: "$.a"}, "")
	requireKind(t, err, errs.InvalidSyntax)

	got, err := Extract(resp, Path{Kind: PathJSON, Expr: "$.a"}, "application/json")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	_, err = Extract(createResponse(`{"a": 1}`, nil), Path{Kind: PathJSON, Expr: "$.a"}, "text/html")
	requireKind(t, err, errs.InvalidSyntax)
}

func TestExtract_InvalidJSONBody(t *testing.T) {
	resp := createResponse(`{"a": `, nil)

	_, err := Extract(resp, Path{Kind: PathJSON, Expr: "$.a"}, "")
	requireKind(t, err, errs.InvalidSyntax)
}

func TestExtract_Header(t *testing.T) {
	resp := createResponse(`{}`, map[string]string{"X-Request-Id": "abc-123"})

	got, err := Extract(resp, ClassifyPath("headers.x-request-id"), "")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", got)

	_, err = Extract(resp, ClassifyPath("headers.X-Missing"), "")
	requireKind(t, err, errs.UndefinedVariable)
	assert.Contains(t, err.Error(), "Header 'X-Missing' not found")
}

func TestExtract_XPathUnsupported(t *testing.T) {
	resp := createResponse(`<book><title>Go</title></book>`, map[string]string{"Content-Type": "application/xml"})

	_, err := Extract(resp, ClassifyPath("/book/title"), "")
	requireKind(t, err, errs.InvalidSyntax)
	assert.Contains(t, err.Error(), "not supported")
}

func TestExtractAll(t *testing.T) {
	resp := createResponse(`{"token": "abc", "id": 7}`, map[string]string{"ETag": `"v1"`})
	directives := ParseDirectives(`# @capture token = $.token
# @capture id = $.id
# @capture etag = headers.ETag
# @capture missing = $.nope`)

	values, err := ExtractAll(resp, directives, "")
	requireKind(t, err, errs.UndefinedVariable)
	assert.Contains(t, err.Error(), "capture missing")

	assert.Equal(t, map[string]string{"token": "abc", "id": "7", "etag": `"v1"`}, values)
}

func TestApply_FeedsSubsequentSubstitution(t *testing.T) {
	session := env.NewSession(nil, nil)
	resp := createResponse(`{"access_token": "t0k3n"}`, nil)

	values, err := Apply(session, resp, ParseDirectives("# @capture tok = $.access_token"), "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tok": "t0k3n"}, values)

	got, err := session.Substitute("Authorization: Bearer {{tok}}")
	require.NoError(t, err)
	assert.Equal(t, "Authorization: Bearer t0k3n", got)
}
