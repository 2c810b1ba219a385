package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitvars/packages/output"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|->...",
	Short: "Report placeholders that cannot be resolved",
	Long: `Check every placeholder of the given files without printing the
resolved text. Each failure is reported with its location and kind.

Examples:
  hitvars validate api.http
  hitvars validate api.http users.http --env prod`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}

	hasErrors := false
	for _, file := range args {
		text, err := ws.readDocument(file)
		if err != nil {
			return err
		}
		scopes, err := ws.scopes(cmd.Context(), documentDir(file), text)
		if err != nil {
			return err
		}

		if failures := ws.resolver.Validate(text, scopes); len(failures) > 0 {
			ws.formatter.FormatDiagnostics(output.Diagnose(file, text, failures))
			hasErrors = true
		} else if outputFlag != "json" {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if err := ws.flush(); err != nil {
		return err
	}
	if hasErrors {
		return errResolveFailed
	}
	return nil
}
