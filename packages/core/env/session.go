package env

import "sync"

// Session owns the scopes of one document across several requests. Captured
// values are added between requests; each substitution works on a snapshot so
// concurrent captures never tear a resolution pass.
type Session struct {
	mu       sync.RWMutex
	scopes   *Scopes
	resolver *Resolver
}

// NewSession returns a Session over scopes. A nil scopes starts empty and a
// nil resolver uses NewResolver(nil).
func NewSession(scopes *Scopes, resolver *Resolver) *Session {
	if scopes == nil {
		scopes = NewScopes()
	}
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return &Session{
		scopes:   scopes.Clone(),
		resolver: resolver,
	}
}

// SetCapture records a value extracted from a response in the request scope.
func (s *Session) SetCapture(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes.Set(SourceRequest, name, value)
}

// SetCaptures records several captured values at once.
func (s *Session) SetCaptures(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes.SetAll(SourceRequest, values)
}

// Captures returns a copy of the request scope.
func (s *Session) Captures() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes.Layer(SourceRequest)
}

// Snapshot returns a copy of the current scopes.
func (s *Session) Snapshot() *Scopes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes.Clone()
}

// Reload replaces every scope, dropping captured values.
func (s *Session) Reload(scopes *Scopes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if scopes == nil {
		scopes = NewScopes()
	}
	s.scopes = scopes.Clone()
}

// Substitute resolves text against a snapshot of the session's scopes.
func (s *Session) Substitute(text string) (string, error) {
	return s.resolver.Substitute(text, s.Snapshot())
}

// Validate reports every failing placeholder in text.
func (s *Session) Validate(text string) []*TokenError {
	return s.resolver.Validate(text, s.Snapshot())
}
