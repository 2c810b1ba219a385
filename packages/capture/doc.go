// Package capture extracts values from HTTP responses for use in subsequent requests.
//
// Capture directives are comment lines of the form
//
//	# @capture token = $.access_token
//	# @capture location = headers.Location
//
// The path is classified as a header lookup, a JSON path (field and array
// index segments only) or an XPath expression, which is recognised but not
// supported. Captured values are written into the request scope of an
// env.Session, enabling request chaining.
package capture
