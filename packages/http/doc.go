// Package http provides the response model consumed by capture extraction and
// a small HTTP client used to drive request chains from the command line.
//
// It wraps the standard library's http package with:
//   - Configurable timeouts
//   - Redirect handling
//   - Default headers applied to every request
//   - Case-insensitive header access on responses
package http
