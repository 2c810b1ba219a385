package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileVariables(t *testing.T) {
	text := `@baseUrl = https://{{host}}/v1
  @token=abc
@empty =

### Login
# @name login
POST {{baseUrl}}/login
@baseUrl = https://override
`

	vars := ParseFileVariables(text)
	require.Len(t, vars, 4)

	assert.Equal(t, &FileVariable{Name: "baseUrl", Value: "https://{{host}}/v1", Line: 1}, vars[0])
	assert.Equal(t, &FileVariable{Name: "token", Value: "abc", Line: 2}, vars[1])
	assert.Equal(t, &FileVariable{Name: "empty", Value: "", Line: 3}, vars[2])
	assert.Equal(t, 8, vars[3].Line)

	assert.Equal(t, map[string]string{
		"baseUrl": "https://override",
		"token":   "abc",
		"empty":   "",
	}, FileVariables(text))
}

func TestFileVariables_ResolveThroughScopes(t *testing.T) {
	text := "@baseUrl = https://{{host}}\nGET {{baseUrl}}/users"

	scopes := NewScopes()
	scopes.SetAll(SourceFile, FileVariables(text))
	scopes.Set(SourceEnvironment, "host", "api.example.com")

	got, err := NewResolver(nil).Substitute("GET {{baseUrl}}/users", scopes)
	require.NoError(t, err)
	assert.Equal(t, "GET https://api.example.com/users", got)
}
