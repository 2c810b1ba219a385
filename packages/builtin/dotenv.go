package builtin

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/hitvars/packages/core/errs"
)

const (
	// DotenvFilename is the file searched for by the dotenv function.
	DotenvFilename = ".env"
	// DotenvMaxParents is how many parent directories are searched after the start directory.
	DotenvMaxParents = 2
)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// DotenvCache lazily loads the nearest .env file once and serves lookups
// from memory until Clear is called. A failed load is remembered too.
type DotenvCache struct {
	mu     sync.Mutex
	dir    string
	warn   WarnFunc
	loaded bool
	path   string
	values map[string]string
	err    error
}

// DotenvOption configures a DotenvCache.
type DotenvOption func(*DotenvCache)

// WithDotenvWarnFunc sets the function called for malformed .env lines.
func WithDotenvWarnFunc(fn WarnFunc) DotenvOption {
	return func(c *DotenvCache) {
		c.warn = fn
	}
}

// NewDotenvCache returns a cache that searches dir and up to two of its
// parents for a .env file on first use.
func NewDotenvCache(dir string, opts ...DotenvOption) *DotenvCache {
	c := &DotenvCache{dir: dir}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the value of key, loading the .env file if needed.
func (c *DotenvCache) Lookup(key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.load()
	}
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.values[key]
	return v, ok, nil
}

// Path returns the .env file the cache was populated from, if any.
func (c *DotenvCache) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// SearchDirs returns the directories searched for a .env file, nearest first.
func (c *DotenvCache) SearchDirs() []string {
	dir, err := filepath.Abs(c.dir)
	if err != nil {
		dir = c.dir
	}
	dirs := []string{dir}
	for range DotenvMaxParents {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dirs = append(dirs, parent)
		dir = parent
	}
	return dirs
}

// Clear drops the cached values so the next lookup reloads from disk.
func (c *DotenvCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.path = ""
	c.values = nil
	c.err = nil
}

// load must be called with c.mu held.
func (c *DotenvCache) load() {
	c.loaded = true

	dirs := c.SearchDirs()
	for _, dir := range dirs {
		candidate := filepath.Join(dir, DotenvFilename)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}

		f, err := os.Open(candidate)
		if err != nil {
			c.err = errs.Dotenv("cannot open %s: %v", candidate, err)
			return
		}
		defer f.Close()

		values, err := ParseDotenv(f, c.warn)
		if err != nil {
			c.err = errs.Dotenv("reading %s: %v", candidate, err)
			return
		}
		c.path = candidate
		c.values = values
		return
	}

	c.err = errs.Dotenv("no %s file found in %s or its parents", DotenvFilename, dirs[0])
}

// ParseDotenv parses .env content into key-value pairs.
// Supports: KEY=value, KEY="quoted value", KEY='single quoted', # comments.
// Lines without = are skipped and reported through warn.
func ParseDotenv(r io.Reader, warn WarnFunc) (map[string]string, error) {
	result := make(map[string]string)
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			if warn != nil {
				warn("skipping malformed .env line %d: missing '='", lineNo)
			}
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "" {
			if warn != nil {
				warn("skipping malformed .env line %d: empty key", lineNo)
			}
			continue
		}

		result[key] = unquote(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning env file: %w", err)
	}

	return result, nil
}

// unquote strips one matching pair of surrounding single or double quotes.
func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
