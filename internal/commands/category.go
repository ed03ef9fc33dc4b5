package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/spendwise/spendwise/internal/model"
)

func newCategoryCommand(dataDir *string) *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage spending categories",
	}
	categoryCmd.AddCommand(
		newCategoryAddCommand(dataDir),
		newCategoryListCommand(dataDir),
		newCategoryUpdateCommand(dataDir),
		newCategoryDeleteCommand(dataDir),
	)
	return categoryCmd
}

func newCategoryAddCommand(dataDir *string) *cobra.Command {
	var name, limit string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lim, err := parseLimit(limit)
			if err != nil {
				return err
			}

			ws, err := openWorkspace(*dataDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			c, err := ws.store.AddCategory(cmd.Context(), model.Category{UserID: ws.user(), Name: name, Limit: lim})
			if err != nil {
				return err
			}
			ws.commit(fmt.Sprintf("category: add %s", c.Name))

			fmt.Fprintf(cmd.OutOrStdout(), "Added category %d %s (limit %s)\n", c.ID, c.Name, formatLimit(c.Limit))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "category name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&limit, "limit", "", "maximum spend (omit for no limit)")

	return cmd
}

func newCategoryListCommand(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*dataDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			cats, err := ws.store.Categories(cmd.Context(), ws.user())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(cats) == 0 {
				fmt.Fprintln(out, "No categories.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLIMIT")
			for _, c := range cats {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, formatLimit(c.Limit))
			}
			return tw.Flush()
		},
	}
}

func newCategoryUpdateCommand(dataDir *string) *cobra.Command {
	var name, limit string
	var noLimit bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category or change its limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("limit") && !noLimit {
				return errors.New("nothing to update: pass --name, --limit or --no-limit")
			}

			ws, err := openWorkspace(*dataDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			c, err := ws.store.Category(cmd.Context(), ws.user(), id)
			if err != nil {
				return err
			}
			if flags.Changed("name") {
				c.Name = name
			}
			if flags.Changed("limit") {
				if c.Limit, err = parseLimit(limit); err != nil {
					return err
				}
			}
			if noLimit {
				c.Limit = model.NoLimit()
			}

			if err := ws.store.UpdateCategory(cmd.Context(), c); err != nil {
				return err
			}
			ws.commit(fmt.Sprintf("category: update %d", c.ID))

			fmt.Fprintf(cmd.OutOrStdout(), "Updated category %d %s (limit %s)\n", c.ID, c.Name, formatLimit(c.Limit))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&limit, "limit", "", "new maximum spend")
	cmd.Flags().BoolVar(&noLimit, "no-limit", false, "remove the limit")
	cmd.MarkFlagsMutuallyExclusive("limit", "no-limit")

	return cmd
}

func newCategoryDeleteCommand(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category; its transactions become Uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ws, err := openWorkspace(*dataDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.store.DeleteCategory(cmd.Context(), ws.user(), id); err != nil {
				return err
			}
			ws.commit(fmt.Sprintf("category: delete %d", id))

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %d\n", id)
			return nil
		},
	}
}

// parseLimit turns an empty string into no limit.
func parseLimit(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return model.NoLimit(), nil
	}
	d, err := parseAmount("limit", s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return model.NewLimit(d), nil
}

func formatLimit(l decimal.NullDecimal) string {
	if !l.Valid {
		return "none"
	}
	return l.Decimal.StringFixed(2)
}
