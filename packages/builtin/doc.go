// Package builtin provides the built-in functions available inside placeholders.
//
// Available functions:
//   - guid: Generate a random UUID v4
//   - timestamp [offset unit]: Unix timestamp in seconds
//   - datetime rfc1123|iso8601 [offset unit]: Formatted UTC date
//   - randomInt min max: Random integer in the inclusive range
//   - processEnv NAME|%NAME: Process environment variable
//   - dotenv NAME: Value from the nearest .env file
//
// Functions are invoked using the {{$functionName arg1 arg2}} syntax. Offsets
// are a signed integer followed by a unit: s, m, h or d.
package builtin
