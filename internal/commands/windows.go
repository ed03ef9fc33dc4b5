package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spendwise/spendwise/internal/window"
)

func newWindowsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "windows",
		Short: "List report time windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WINDOW\tDAYS")
			for _, w := range window.All() {
				days := "unbounded"
				if !w.Unbounded {
					days = fmt.Sprint(w.Days)
				}
				fmt.Fprintf(tw, "%s\t%s\n", w.Label, days)
			}
			return tw.Flush()
		},
	}
}
