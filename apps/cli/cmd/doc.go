// Package cmd implements the hitvars CLI commands using Cobra.
//
// Available commands:
//   - resolve: Substitute placeholders in files or stdin
//   - validate: Report unresolvable placeholders without printing output
//   - list: Show the variables visible to placeholders and their scope
//   - extract: Evaluate a capture path against a response body
//   - captures: List the @capture directives of a file
//   - send: Substitute, send a request and capture values from the response
//   - session: Show or clear stored captures
//   - init: Create example environment and config files
//   - version: Show hitvars version information
//
// Flags default from HITVARS_* environment variables; a
// .hitvars.config.json file supplies project defaults.
package cmd
