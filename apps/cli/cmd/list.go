package cmd

import (
	"github.com/abdul-hamid-achik/hitvars/packages/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [file|-]",
	Short: "List the variables visible to placeholders",
	Long: `List every variable a placeholder can see, with the scope it comes
from. With a file, its @name = value declarations are included. Use
--verbose to also show values hidden by a higher-precedence scope.

Examples:
  hitvars list
  hitvars list api.http --env staging -v`,
	Args: cobra.MaximumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}

	dir, text := ".", ""
	if len(args) == 1 {
		text, err = ws.readDocument(args[0])
		if err != nil {
			return err
		}
		dir = documentDir(args[0])
	}

	scopes, err := ws.scopes(cmd.Context(), dir, text)
	if err != nil {
		return err
	}

	ws.formatter.FormatVariables(output.Variables(scopes))
	return ws.flush()
}
