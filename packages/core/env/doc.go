// Package env resolves {{variable}} placeholders for hitvars.
//
// It provides functionality for:
//   - The scope model: request-captured, file-local, active-environment and shared variables
//   - Substitution of {{name}} and {{$function args}} placeholders with cycle detection
//   - Locating placeholders and validating them for diagnostics
//   - Sessions that accumulate captured values between requests
//   - Loading named environments from JSON or YAML files
package env
