package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spendwise/spendwise/internal/integrity"
)

func newCheckCommand(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate stored categories and transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*dataDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			snap, err := ws.store.Snapshot(cmd.Context(), ws.user())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := integrity.Check(snap)
			if len(problems) == 0 {
				fmt.Fprintf(out, "OK: %d categories, %d transactions\n", len(snap.Categories), len(snap.Transactions))
				return nil
			}
			for _, p := range problems {
				fmt.Fprintln(out, p.Error())
			}
			return fmt.Errorf("%d problems found", len(problems))
		},
	}
}
