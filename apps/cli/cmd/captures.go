package cmd

import (
	"github.com/abdul-hamid-achik/hitvars/packages/capture"
	"github.com/spf13/cobra"
)

var capturesCmd = &cobra.Command{
	Use:   "captures <file|->",
	Short: "List the capture directives of a file",
	Long: `List the "# @capture name = path" directives of a request file with
their line and path kind.

Examples:
  hitvars captures api.http`,
	Args: cobra.ExactArgs(1),
	RunE: capturesCommand,
}

func capturesCommand(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}

	text, err := ws.readDocument(args[0])
	if err != nil {
		return err
	}

	ws.formatter.FormatDirectives(args[0], capture.ParseDirectives(text))
	return ws.flush()
}
