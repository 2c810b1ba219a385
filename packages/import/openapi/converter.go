// Package openapi derives hitvars environments from the servers of an
// OpenAPI document.
package openapi

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitvars/packages/core/env"
	"github.com/getkin/kin-openapi/openapi3"
)

// BaseURLVariable is the variable each derived environment defines.
const BaseURLVariable = "baseUrl"

var serverVariablePattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Converter converts OpenAPI servers to environments
type Converter struct {
	baseURLVariable string
	validate        bool
}

// Option is a functional option for Converter
type Option func(*Converter)

// WithBaseURLVariable names the variable holding each server URL.
func WithBaseURLVariable(name string) Option {
	return func(c *Converter) {
		c.baseURLVariable = name
	}
}

// WithValidation validates the document before converting it.
func WithValidation(validate bool) Option {
	return func(c *Converter) {
		c.validate = validate
	}
}

// NewConverter creates a new OpenAPI converter
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		baseURLVariable: BaseURLVariable,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertFile loads an OpenAPI document from a file path or URL and converts it.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*env.Environments, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	var (
		doc *openapi3.T
		err error
	)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		var u *url.URL
		u, err = url.Parse(path)
		if err == nil {
			doc, err = loader.LoadFromURI(u)
		}
	} else {
		doc, err = loader.LoadFromFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}

	if c.validate {
		if err := doc.Validate(ctx); err != nil {
			return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
		}
	}
	return c.Convert(doc), nil
}

// ConvertData converts an OpenAPI document held in memory (JSON or YAML).
func (c *Converter) ConvertData(data []byte) (*env.Environments, error) {
	doc, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	return c.Convert(doc), nil
}

// Convert builds one environment per server. Server URL templates become
// placeholders and their defaults become variables of the environment. The
// API version is shared by every environment.
func (c *Converter) Convert(doc *openapi3.T) *env.Environments {
	envs := &env.Environments{
		Shared: make(map[string]string),
		Named:  make(map[string]map[string]string),
	}
	if doc.Info != nil && doc.Info.Version != "" {
		envs.Shared["apiVersion"] = doc.Info.Version
	}

	for i, server := range doc.Servers {
		if server == nil || server.URL == "" {
			continue
		}
		vars := map[string]string{
			c.baseURLVariable: serverVariablePattern.ReplaceAllString(server.URL, "{{$1}}"),
		}
		for name, v := range server.Variables {
			if v != nil {
				vars[name] = v.Default
			}
		}
		envs.Named[uniqueName(envs.Named, environmentName(server, i))] = vars
	}
	return envs
}

// environmentName derives a name from the server description, falling back
// to its host and finally its position.
func environmentName(server *openapi3.Server, index int) string {
	if name := sanitizeName(server.Description); name != "" {
		return name
	}
	if u, err := url.Parse(server.URL); err == nil && u.Hostname() != "" {
		if name := sanitizeName(strings.Split(u.Hostname(), ".")[0]); name != "" {
			return name
		}
	}
	return "server" + strconv.Itoa(index+1)
}

func uniqueName(existing map[string]map[string]string, name string) string {
	candidate := name
	for n := 2; ; n++ {
		if _, taken := existing[candidate]; !taken && candidate != env.SharedEnvironment {
			return candidate
		}
		candidate = name + strconv.Itoa(n)
	}
}

func sanitizeName(name string) string {
	result := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + 32
		}
		return '_'
	}, name)

	// Remove consecutive underscores
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	return strings.Trim(result, "_")
}
