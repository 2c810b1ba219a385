package builtin

import (
	"strconv"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitvars/packages/core/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 5, 14, 30, 15, 123_000_000, time.UTC)

func newTestResolver(t *testing.T, env map[string]string) *Resolver {
	t.Helper()
	return NewResolver(
		WithClock(func() time.Time { return fixedNow }),
		WithLookupEnv(func(name string) (string, bool) {
			v, ok := env[name]
			return v, ok
		}),
		WithDotenv(NewDotenvCache(t.TempDir())),
	)
}

func requireKind(t *testing.T, err error, kind errs.Kind) {
	t.Helper()
	require.Error(t, err)
	got, ok := errs.KindOf(err)
	require.True(t, ok, "expected errs.Error, got %T: %v", err, err)
	assert.Equal(t, kind, got, "error: %v", err)
}

func TestLookupFunction(t *testing.T) {
	for _, name := range Functions() {
		fn, ok := LookupFunction(name)
		require.True(t, ok, name)
		assert.Equal(t, name, fn.String())
	}

	_, ok := LookupFunction("nope")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Function(99).String())
}

func TestCall_UnknownFunction(t *testing.T) {
	r := newTestResolver(t, nil)

	_, err := r.Call("uuid", nil)
	requireKind(t, err, errs.UndefinedVariable)
}

func TestCall_GUID(t *testing.T) {
	r := newTestResolver(t, nil)

	first, err := r.Call("guid", nil)
	require.NoError(t, err)
	second, err := r.Call("guid", nil)
	require.NoError(t, err)

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, first, second)
}

func TestCall_Timestamp(t *testing.T) {
	r := newTestResolver(t, nil)

	now, err := r.Call("timestamp", nil)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(fixedNow.Unix(), 10), now)

	later, err := r.Call("timestamp", []string{"+1", "h"})
	require.NoError(t, err)

	n, _ := strconv.ParseInt(now, 10, 64)
	l, _ := strconv.ParseInt(later, 10, 64)
	assert.Equal(t, int64(3600), l-n)

	earlier, err := r.Call("timestamp", []string{"-2", "d"})
	require.NoError(t, err)
	e, _ := strconv.ParseInt(earlier, 10, 64)
	assert.Equal(t, int64(-2*86400), e-n)
}

func TestCall_TimestampInvalidOffset(t *testing.T) {
	r := newTestResolver(t, nil)

	tests := []struct {
		name string
		args []string
	}{
		{"single arg", []string{"1"}},
		{"too many args", []string{"1", "h", "x"}},
		{"non integer", []string{"one", "h"}},
		{"unknown unit", []string{"1", "w"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Call("timestamp", tt.args)
			requireKind(t, err, errs.InvalidOffset)
		})
	}
}

func TestCall_Datetime(t *testing.T) {
	r := newTestResolver(t, nil)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"rfc1123", []string{"rfc1123"}, "Tue, 05 Mar 2024 14:30:15 +0000"},
		{"iso8601", []string{"iso8601"}, "2024-03-05T14:30:15.123Z"},
		{"iso8601 with offset", []string{"iso8601", "1", "d"}, "2024-03-06T14:30:15.123Z"},
		{"rfc1123 negative offset", []string{"rfc1123", "-30", "m"}, "Tue, 05 Mar 2024 14:00:15 +0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Call("datetime", tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCall_DatetimeErrors(t *testing.T) {
	r := newTestResolver(t, nil)

	_, err := r.Call("datetime", nil)
	requireKind(t, err, errs.InvalidSyntax)

	_, err = r.Call("datetime", []string{"unix"})
	requireKind(t, err, errs.InvalidSyntax)

	_, err = r.Call("datetime", []string{"iso8601", "5"})
	requireKind(t, err, errs.InvalidOffset)
}

func TestCall_RandomInt(t *testing.T) {
	r := newTestResolver(t, nil)

	for range 20 {
		got, err := r.Call("randomInt", []string{"1", "1"})
		require.NoError(t, err)
		assert.Equal(t, "1", got)
	}

	for range 100 {
		got, err := r.Call("randomInt", []string{"-3", "3"})
		require.NoError(t, err)
		n, err := strconv.Atoi(got)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, -3)
		assert.LessOrEqual(t, n, 3)
	}
}

func TestCall_RandomIntErrors(t *testing.T) {
	r := newTestResolver(t, nil)

	tests := []struct {
		name string
		args []string
	}{
		{"min greater than max", []string{"5", "1"}},
		{"non numeric min", []string{"a", "1"}},
		{"non numeric max", []string{"1", "b"}},
		{"missing max", []string{"1"}},
		{"no args", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Call("randomInt", tt.args)
			requireKind(t, err, errs.InvalidSyntax)
		})
	}
}

func TestCall_ProcessEnv(t *testing.T) {
	r := newTestResolver(t, map[string]string{"API_TOKEN": "s3cret", "EMPTY": ""})

	got, err := r.Call("processEnv", []string{"API_TOKEN"})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	got, err = r.Call("processEnv", []string{"EMPTY"})
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = r.Call("processEnv", []string{"MISSING"})
	requireKind(t, err, errs.EnvVarNotFound)

	got, err = r.Call("processEnv", []string{"%MISSING"})
	require.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = r.Call("processEnv", []string{"%API_TOKEN"})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	_, err = r.Call("processEnv", nil)
	requireKind(t, err, errs.InvalidSyntax)
}

func TestCall_ProcessEnvReadsOSEnvironment(t *testing.T) {
	t.Setenv("HITVARS_TEST_VALUE", "from-os")
	r := NewResolver(WithDotenv(NewDotenvCache(t.TempDir())))

	got, err := r.Call("processEnv", []string{"HITVARS_TEST_VALUE"})
	require.NoError(t, err)
	assert.Equal(t, "from-os", got)
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		args     []string
		expected time.Duration
	}{
		{nil, 0},
		{[]string{"10", "s"}, 10 * time.Second},
		{[]string{"+5", "m"}, 5 * time.Minute},
		{[]string{"-1", "h"}, -time.Hour},
		{[]string{"3", "d"}, 72 * time.Hour},
	}

	for _, tt := range tests {
		got, err := ParseOffset(tt.args)
		require.NoError(t, err, "%v", tt.args)
		assert.Equal(t, tt.expected, got, "%v", tt.args)
	}
}
