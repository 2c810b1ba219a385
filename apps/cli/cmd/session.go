package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or clear stored captures",
	Long: `Captured response values are stored per session in the capture store
(.hitvars/captures.db unless configured). Select the session with --session.

Examples:
  hitvars session show
  hitvars session list
  hitvars session clear --session ci`,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the captures of the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := newWorkspace(cmd)
		if err != nil {
			return err
		}
		values, err := ws.storedCaptures(cmd.Context())
		if err != nil {
			return err
		}
		ws.formatter.FormatCaptures(values)
		return ws.flush()
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions with stored captures",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := newWorkspace(cmd)
		if err != nil {
			return err
		}
		store, err := ws.openStore(false)
		if err != nil || store == nil {
			return err
		}
		defer store.Close()

		sessions, err := store.Sessions(cmd.Context())
		if err != nil {
			return withExitCode(ExitStoreError, err)
		}
		for _, name := range sessions {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the captures of the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := newWorkspace(cmd)
		if err != nil {
			return err
		}
		store, err := ws.openStore(false)
		if err != nil || store == nil {
			return err
		}
		defer store.Close()

		removed, err := store.Clear(cmd.Context(), ws.session())
		if err != nil {
			return withExitCode(ExitStoreError, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Cleared %d capture(s) from session %q\n", removed, ws.session())
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}

// saveCaptures persists captured values in the current session.
func (w *workspace) saveCaptures(ctx context.Context, values map[string]string) error {
	store, err := w.openStore(true)
	if err != nil || store == nil {
		return err
	}
	defer store.Close()

	if err := store.SaveAll(ctx, w.session(), values); err != nil {
		return withExitCode(ExitStoreError, err)
	}
	return nil
}
