package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseEnvironments_JSON(t *testing.T) {
	data := []byte(`{
		"$shared": {"version": "v1"},
		"dev": {"host": "localhost:8080", "port": 8080, "debug": true},
		"prod": {"host": "api.example.com"}
	}`)

	envs, err := ParseEnvironments(data)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"version": "v1"}, envs.Shared)
	assert.Equal(t, []string{"dev", "prod"}, envs.Names())
	assert.Equal(t, "8080", envs.Named["dev"]["port"])
	assert.Equal(t, "true", envs.Named["dev"]["debug"])
}

func TestParseEnvironments_YAML(t *testing.T) {
	data := []byte(`
$shared:
  version: v2
staging:
  host: staging.example.com
  retries: 3
`)

	envs, err := ParseEnvironments(data)
	require.NoError(t, err)

	assert.Equal(t, "v2", envs.Shared["version"])
	assert.Equal(t, "staging.example.com", envs.Named["staging"]["host"])
	assert.Equal(t, "3", envs.Named["staging"]["retries"])
}

func TestParseEnvironments_NumbersKeepPlainForm(t *testing.T) {
	data := []byte(`
dev:
  ratio: 1000000.5
  limit: 1e6
  small: 0.25
  count: 42
`)

	envs, err := ParseEnvironments(data)
	require.NoError(t, err)

	assert.Equal(t, "1000000.5", envs.Named["dev"]["ratio"])
	assert.Equal(t, "1000000", envs.Named["dev"]["limit"])
	assert.Equal(t, "0.25", envs.Named["dev"]["small"])
	assert.Equal(t, "42", envs.Named["dev"]["count"])
}

func TestParseEnvironments_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"environment is not an object", `{"dev": "nope"}`},
		{"nested object value", `{"dev": {"host": {"name": "x"}}}`},
		{"array value", `{"dev": {"hosts": ["a", "b"]}}`},
		{"not a document", `[1, 2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvironments([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseEnvironments_Empty(t *testing.T) {
	envs, err := ParseEnvironments(nil)
	require.NoError(t, err)
	assert.Empty(t, envs.Named)
	assert.Empty(t, envs.Shared)
}

func TestEnvironmentsScopes(t *testing.T) {
	envs, err := ParseEnvironments([]byte(`{"$shared": {"host": "shared", "v": "1"}, "dev": {"host": "dev"}}`))
	require.NoError(t, err)

	scopes, err := envs.Scopes("dev")
	require.NoError(t, err)

	v, source, ok := scopes.Lookup("host")
	require.True(t, ok)
	assert.Equal(t, "dev", v)
	assert.Equal(t, SourceEnvironment, source)

	v, source, _ = scopes.Lookup("v")
	assert.Equal(t, "1", v)
	assert.Equal(t, SourceShared, source)

	scopes, err = envs.Scopes("")
	require.NoError(t, err)
	v, _, _ = scopes.Lookup("host")
	assert.Equal(t, "shared", v)

	_, err = envs.Scopes("prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown environment")
}

func TestLoadAndFindEnvironments(t *testing.T) {
	dir := t.TempDir()

	_, ok := FindEnvironments(dir)
	assert.False(t, ok)

	path := filepath.Join(dir, "hitvars.env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dev:\n  host: localhost\n"), 0o644))

	found, ok := FindEnvironments(dir)
	require.True(t, ok)
	assert.Equal(t, path, found)

	envs, err := LoadEnvironments(found)
	require.NoError(t, err)
	assert.Equal(t, "localhost", envs.Named["dev"]["host"])

	_, err = LoadEnvironments(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestEnvironments_MarshalYAMLRoundTrip(t *testing.T) {
	envs := &Environments{
		Shared: map[string]string{"user": "demo"},
		Named: map[string]map[string]string{
			"dev":  {"baseUrl": "http://localhost"},
			"prod": {"baseUrl": "https://{{region}}.example.com", "region": "eu"},
		},
	}

	data, err := yaml.Marshal(envs)
	require.NoError(t, err)

	parsed, err := ParseEnvironments(data)
	require.NoError(t, err)
	assert.Equal(t, envs.Shared, parsed.Shared)
	assert.Equal(t, envs.Named, parsed.Named)
}
