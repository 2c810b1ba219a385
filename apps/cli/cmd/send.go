package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitvars/packages/capture"
	"github.com/abdul-hamid-achik/hitvars/packages/core/env"
	"github.com/abdul-hamid-achik/hitvars/packages/http"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <method> <url>",
	Short: "Send a request and capture values from the response",
	Long: `Substitute placeholders in the URL, headers and body, send the request
and capture values from the response. Captured values are stored in the
session and are visible to later commands as request variables.

Examples:
  hitvars send POST '{{baseUrl}}/login' -d '{"user":"{{user}}"}' --capture 'token = $.access_token'
  hitvars send GET '{{baseUrl}}/me' -H 'Authorization: Bearer {{token}}'
  hitvars send POST '{{baseUrl}}/login' --file api.http`,
	Args: cobra.ExactArgs(2),
	RunE: sendCommand,
}

var (
	sendHeaderFlags  []string
	dataFlag         string
	dataFileFlag     string
	captureFlags     []string
	requestFileFlag  string
	responseTypeFlag string
)

func init() {
	sendCmd.Flags().StringArrayVarP(&sendHeaderFlags, "header", "H", nil, "Request header (Name: value), may be repeated")
	sendCmd.Flags().StringVarP(&dataFlag, "data", "d", "", "Request body")
	sendCmd.Flags().StringVar(&dataFileFlag, "data-file", "", "Read the request body from a file")
	sendCmd.Flags().StringArrayVar(&captureFlags, "capture", nil, "Capture directive (name = path), may be repeated")
	sendCmd.Flags().StringVarP(&requestFileFlag, "file", "f", "", "Request file supplying @variables and # @capture directives")
	sendCmd.Flags().StringVar(&responseTypeFlag, "content-type", "", "Treat the response as this content type")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}

	headers, err := parseHeaderFlags(sendHeaderFlags)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	directives, err := parseCaptureFlags(captureFlags)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	dir, text := ".", ""
	if requestFileFlag != "" {
		text, err = ws.readDocument(requestFileFlag)
		if err != nil {
			return err
		}
		dir = documentDir(requestFileFlag)
		directives = append(capture.ParseDirectives(text), directives...)
	}

	body := dataFlag
	if dataFileFlag != "" {
		data, err := readBody(cmd.InOrStdin(), dataFileFlag)
		if err != nil {
			return withExitCode(ExitInputError, err)
		}
		body = string(data)
	}

	scopes, err := ws.scopes(ctx, dir, text)
	if err != nil {
		return err
	}
	session := env.NewSession(scopes, ws.resolver)

	req, err := buildRequest(session, args[0], args[1], headers, body)
	if err != nil {
		ws.formatter.FormatError(err)
		_ = ws.flush()
		return errResolveFailed
	}
	if err := http.ValidateURL(req.URL); err != nil {
		return withExitCode(ExitUsageError, err)
	}

	client := http.NewClient(
		http.WithTimeout(ws.cfg.TimeoutDuration()),
		http.WithFollowRedirects(ws.cfg.GetFollowRedirects()),
		http.WithMaxRedirects(ws.cfg.MaxRedirects),
		http.WithDefaultHeaders(ws.cfg.Headers),
	)
	resp, err := client.Do(ctx, req)
	if err != nil {
		return withExitCode(ExitNetworkError, err)
	}
	ws.formatter.FormatResponse(resp)

	captured, captureErr := capture.Apply(session, resp, directives, responseTypeFlag)
	if len(captured) > 0 {
		if err := ws.saveCaptures(ctx, captured); err != nil {
			return err
		}
		ws.formatter.FormatCaptures(captured)
	}
	if captureErr != nil {
		ws.formatter.FormatError(captureErr)
	}

	if err := ws.flush(); err != nil {
		return err
	}
	if captureErr != nil {
		return errResolveFailed
	}
	return nil
}

func buildRequest(session *env.Session, method, rawURL string, headers map[string]string, body string) (*http.Request, error) {
	url, err := session.Substitute(rawURL)
	if err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}

	req := http.NewRequest(strings.ToUpper(method), url)
	for name, value := range headers {
		resolved, err := session.Substitute(value)
		if err != nil {
			return nil, fmt.Errorf("header %s: %w", name, err)
		}
		req.SetHeader(name, resolved)
	}

	if body != "" {
		resolved, err := session.Substitute(body)
		if err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
		req.SetBody(resolved)
	}
	return req, nil
}

func parseCaptureFlags(flags []string) ([]*capture.Directive, error) {
	directives := make([]*capture.Directive, 0, len(flags))
	for _, f := range flags {
		d, ok := capture.ParseDirective("# @capture " + f)
		if !ok {
			return nil, fmt.Errorf("invalid --capture %q, expected 'name = path'", f)
		}
		directives = append(directives, d)
	}
	return directives, nil
}
