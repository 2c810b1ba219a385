package env

import "maps"

// Source names one layer of the scope model.
type Source int

const (
	// SourceRequest holds values captured from earlier responses in the session.
	SourceRequest Source = iota
	// SourceFile holds variables declared in the current document.
	SourceFile
	// SourceEnvironment holds the variables of the active named environment.
	SourceEnvironment
	// SourceShared holds variables available regardless of the active environment.
	SourceShared

	sourceCount
)

func (s Source) String() string {
	switch s {
	case SourceRequest:
		return "request"
	case SourceFile:
		return "file"
	case SourceEnvironment:
		return "environment"
	case SourceShared:
		return "shared"
	default:
		return "unknown"
	}
}

// Sources returns every source in lookup precedence order.
func Sources() []Source {
	return []Source{SourceRequest, SourceFile, SourceEnvironment, SourceShared}
}

// Scopes is the ordered set of variable sources a placeholder is resolved
// against. Lookup checks sources in precedence order and returns the first hit.
//
// A Scopes value must not be mutated while a substitution is using it; take a
// Clone when the owner may change it concurrently.
type Scopes struct {
	layers [sourceCount]map[string]string
}

// NewScopes returns empty scopes.
func NewScopes() *Scopes {
	s := &Scopes{}
	for i := range s.layers {
		s.layers[i] = make(map[string]string)
	}
	return s
}

// Set binds name in the given source.
func (s *Scopes) Set(source Source, name, value string) {
	if s.layers[source] == nil {
		s.layers[source] = make(map[string]string)
	}
	s.layers[source][name] = value
}

// SetAll binds every entry of vars in the given source.
func (s *Scopes) SetAll(source Source, vars map[string]string) {
	if s.layers[source] == nil {
		s.layers[source] = make(map[string]string, len(vars))
	}
	maps.Copy(s.layers[source], vars)
}

// Replace swaps the whole contents of a source.
func (s *Scopes) Replace(source Source, vars map[string]string) {
	s.layers[source] = maps.Clone(vars)
	if s.layers[source] == nil {
		s.layers[source] = make(map[string]string)
	}
}

// Layer returns a copy of the variables held by a single source.
func (s *Scopes) Layer(source Source) map[string]string {
	return maps.Clone(s.layers[source])
}

// Lookup returns the value bound to name by the highest precedence source.
func (s *Scopes) Lookup(name string) (string, Source, bool) {
	for i, layer := range s.layers {
		if v, ok := layer[name]; ok {
			return v, Source(i), true
		}
	}
	return "", 0, false
}

// Has reports whether any source binds name.
func (s *Scopes) Has(name string) bool {
	_, _, ok := s.Lookup(name)
	return ok
}

// Clone returns a deep copy of s.
func (s *Scopes) Clone() *Scopes {
	clone := &Scopes{}
	for i, layer := range s.layers {
		clone.layers[i] = maps.Clone(layer)
	}
	return clone
}
