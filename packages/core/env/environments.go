package env

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// SharedEnvironment is the key holding variables available in every environment.
const SharedEnvironment = "$shared"

// EnvironmentFilenames contains the possible environment file names, in search order.
var EnvironmentFilenames = []string{
	"hitvars.env.json",
	"hitvars.env.yaml",
	"hitvars.env.yml",
	"http-client.env.json",
}

const environmentsSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"additionalProperties": {
			"type": ["string", "number", "boolean"]
		}
	}
}`

var environmentsSchemaLoader = gojsonschema.NewStringLoader(environmentsSchema)

// Environments holds the named environments of a project and the variables
// shared by all of them.
type Environments struct {
	Shared map[string]string
	Named  map[string]map[string]string
}

// FindEnvironments searches dir for an environment file.
func FindEnvironments(dir string) (string, bool) {
	for _, name := range EnvironmentFilenames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadEnvironments reads an environment file. JSON and YAML are both accepted.
func LoadEnvironments(path string) (*Environments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open environment file: %w", err)
	}
	envs, err := ParseEnvironments(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return envs, nil
}

// ParseEnvironments decodes and validates an environment document of the form
// {"$shared": {...}, "<name>": {...}}. Values must be strings, numbers or booleans.
func ParseEnvironments(data []byte) (*Environments, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing environments: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	result, err := gojsonschema.Validate(environmentsSchemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating environments: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("invalid environments: %s", strings.Join(problems, "; "))
	}

	envs := &Environments{
		Shared: make(map[string]string),
		Named:  make(map[string]map[string]string),
	}
	for name, raw := range doc {
		vars := make(map[string]string)
		for k, v := range raw.(map[string]any) {
			vars[k] = stringify(v)
		}
		if name == SharedEnvironment {
			envs.Shared = vars
		} else {
			envs.Named[name] = vars
		}
	}
	return envs, nil
}

func stringify(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Names returns the named environments in sorted order.
func (e *Environments) Names() []string {
	return slices.Sorted(maps.Keys(e.Named))
}

// Scopes builds scopes with the shared variables and, when active is not
// empty, the variables of the active environment.
func (e *Environments) Scopes(active string) (*Scopes, error) {
	scopes := NewScopes()
	scopes.SetAll(SourceShared, e.Shared)

	if active == "" {
		return scopes, nil
	}
	vars, ok := e.Named[active]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q (available: %s)", active, strings.Join(e.Names(), ", "))
	}
	scopes.SetAll(SourceEnvironment, vars)
	return scopes, nil
}

// Document returns the environments in file form, with the shared
// variables under SharedEnvironment.
func (e *Environments) Document() map[string]map[string]string {
	doc := make(map[string]map[string]string, len(e.Named)+1)
	if len(e.Shared) > 0 {
		doc[SharedEnvironment] = maps.Clone(e.Shared)
	}
	for name, vars := range e.Named {
		doc[name] = maps.Clone(vars)
	}
	return doc
}

// MarshalYAML implements yaml.Marshaler.
func (e *Environments) MarshalYAML() (any, error) {
	return e.Document(), nil
}
