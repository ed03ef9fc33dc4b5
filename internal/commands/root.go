package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spendwise/spendwise/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var dataDir string

	rootCmd := &cobra.Command{
		Use:     "spendwise",
		Short:   "Personal spending and budget limits",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", ".", "data directory")

	rootCmd.AddCommand(
		newInitCommand(&dataDir),
		newCategoryCommand(&dataDir),
		newTxCommand(&dataDir),
		newReportCommand(&dataDir),
		newCheckCommand(&dataDir),
		newWindowsCommand(),
	)

	return rootCmd
}
