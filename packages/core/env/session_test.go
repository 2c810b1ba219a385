package env

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_CapturesOverrideFileVariables(t *testing.T) {
	s := NewSession(fileScopes(map[string]string{"token": "from-file"}), newTestResolver(t))

	got, err := s.Substitute("Bearer {{token}}")
	require.NoError(t, err)
	assert.Equal(t, "Bearer from-file", got)

	s.SetCapture("token", "from-response")

	got, err = s.Substitute("Bearer {{token}}")
	require.NoError(t, err)
	assert.Equal(t, "Bearer from-response", got)
	assert.Equal(t, map[string]string{"token": "from-response"}, s.Captures())
}

func TestSession_DoesNotAliasCallerScopes(t *testing.T) {
	scopes := fileScopes(map[string]string{"a": "1"})
	s := NewSession(scopes, nil)

	scopes.Set(SourceFile, "a", "changed")
	snap := s.Snapshot()
	v, _, _ := snap.Lookup("a")
	assert.Equal(t, "1", v)

	snap.Set(SourceFile, "a", "mutated")
	v, _, _ = s.Snapshot().Lookup("a")
	assert.Equal(t, "1", v)
}

func TestSession_Reload(t *testing.T) {
	s := NewSession(nil, newTestResolver(t))
	s.SetCaptures(map[string]string{"id": "42"})

	got, err := s.Substitute("/items/{{id}}")
	require.NoError(t, err)
	assert.Equal(t, "/items/42", got)

	s.Reload(fileScopes(map[string]string{"other": "x"}))
	assert.Empty(t, s.Captures())
	assert.Len(t, s.Validate("{{id}}"), 1)

	s.Reload(nil)
	assert.False(t, s.Snapshot().Has("other"))
}

func TestSession_ConcurrentCapturesAndSubstitution(t *testing.T) {
	s := NewSession(fileScopes(map[string]string{"base": "https://example.com"}), newTestResolver(t))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetCapture(fmt.Sprintf("c%d", i), "v")
		}()
		go func() {
			defer wg.Done()
			got, err := s.Substitute("{{base}}/x")
			assert.NoError(t, err)
			assert.Equal(t, "https://example.com/x", got)
		}()
	}
	wg.Wait()

	assert.Len(t, s.Captures(), 20)
}
