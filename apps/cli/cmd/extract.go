package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/hitvars/packages/capture"
	"github.com/abdul-hamid-achik/hitvars/packages/http"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <path>",
	Short: "Evaluate a capture path against a response",
	Long: `Evaluate a capture path against a response body read from a file or
stdin. Paths are JSON paths ($.a.b[0]), response headers (headers.Name) or
XPath, which is recognised but not supported.

Examples:
  curl -s https://api.example.com/me | hitvars extract '$.user.id'
  hitvars extract headers.ETag --header 'ETag: "v1"' --body-file resp.json`,
	Args: cobra.ExactArgs(1),
	RunE: extractCommand,
}

var (
	bodyFileFlag    string
	headerFlags     []string
	contentTypeFlag string
)

func init() {
	extractCmd.Flags().StringVar(&bodyFileFlag, "body-file", "", "Read the response body from a file instead of stdin")
	extractCmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Response header (Name: value), may be repeated")
	extractCmd.Flags().StringVar(&contentTypeFlag, "content-type", "", "Declared response content type (default: the Content-Type header, else application/json)")
}

func extractCommand(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}

	headers, err := parseHeaderFlags(headerFlags)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	path := capture.ClassifyPath(args[0])
	var body []byte
	if path.Kind != capture.PathHeader {
		body, err = readBody(cmd.InOrStdin(), bodyFileFlag)
		if err != nil {
			return withExitCode(ExitInputError, err)
		}
	}

	resp := &http.Response{StatusCode: 200, Headers: headers, Body: body}
	contentType := contentTypeFlag
	if _, ok := resp.LookupHeader("Content-Type"); !ok && contentType == "" {
		contentType = "application/json"
	}
	value, err := capture.Extract(resp, path, contentType)
	if err != nil {
		ws.formatter.FormatError(err)
		_ = ws.flush()
		return errResolveFailed
	}

	ws.formatter.FormatText(args[0], value+"\n")
	return ws.flush()
}

func readBody(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == stdinName {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

func parseHeaderFlags(flags []string) (map[string]string, error) {
	headers := make(map[string]string, len(flags))
	for _, h := range flags {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
