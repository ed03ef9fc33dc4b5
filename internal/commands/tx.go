package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spendwise/spendwise/internal/model"
	"github.com/spendwise/spendwise/internal/store/csvstore"
)

func newTxCommand(dataDir *string) *cobra.Command {
	txCmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Record and edit transactions",
	}
	txCmd.AddCommand(
		newTxAddCommand(dataDir),
		newTxListCommand(dataDir),
		newTxUpdateCommand(dataDir),
		newTxDeleteCommand(dataDir),
	)
	return txCmd
}

type txFlags struct {
	category int
	amount   string
	date     string
	note     string
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.category, "category", 0, "category id")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount spent")
	cmd.Flags().StringVar(&f.date, "date", "", "date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.note, "note", "", "free-text note")
}

func newTxAddCommand(dataDir *string) *cobra.Command {
	var f txFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount("amount", f.amount)
			if err != nil {
				return err
			}
			date := time.Now().UTC()
			if f.date != "" {
				if date, err = csvstore.ParseDate(f.date); err != nil {
					return err
				}
			}

			ws, err := openWorkspace(*dataDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			t, err := ws.store.AddTransaction(cmd.Context(), model.Transaction{
				UserID:     ws.user(),
				CategoryID: f.category,
				Amount:     amount,
				Date:       date,
				Note:       f.note,
			})
			if err != nil {
				return err
			}
			ws.commit(fmt.Sprintf("tx: add %d", t.ID))

			fmt.Fprintf(cmd.OutOrStdout(), "Added transaction %d: %s on %s\n", t.ID, t.Amount.StringFixed(2), t.Date.Format(time.DateOnly))
			return nil
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newTxListCommand(dataDir *string) *cobra.Command {
	var categoryID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byCategory := cmd.Flags().Changed("category")
			if byCategory && categoryID <= 0 {
				return fmt.Errorf("invalid --category %d", categoryID)
			}

			ws, err := openWorkspace(*dataDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			ctx := cmd.Context()
			var txns []model.Transaction
			if byCategory {
				txns, err = ws.store.TransactionsByCategory(ctx, ws.user(), categoryID)
			} else {
				txns, err = ws.store.Transactions(ctx, ws.user())
			}
			if err != nil {
				return err
			}
			cats, err := ws.store.Categories(ctx, ws.user())
			if err != nil {
				return err
			}
			names := make(map[int]string, len(cats))
			for _, c := range cats {
				names[c.ID] = c.Name
			}

			out := cmd.OutOrStdout()
			if len(txns) == 0 {
				fmt.Fprintln(out, "No transactions.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tNOTE")
			for _, t := range txns {
				name, ok := names[t.CategoryID]
				if !ok {
					name = model.UncategorizedName
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Date.Format(time.DateOnly), name, t.Amount.StringFixed(2), t.Note)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&categoryID, "category", 0, "only transactions in this category")

	return cmd
}

func newTxUpdateCommand(dataDir *string) *cobra.Command {
	var f txFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("category") && !flags.Changed("amount") && !flags.Changed("date") && !flags.Changed("note") {
				return errors.New("nothing to update: pass --category, --amount, --date or --note")
			}

			ws, err := openWorkspace(*dataDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			t, err := ws.store.Transaction(cmd.Context(), ws.user(), id)
			if err != nil {
				return err
			}
			if flags.Changed("category") {
				t.CategoryID = f.category
			}
			if flags.Changed("amount") {
				if t.Amount, err = parseAmount("amount", f.amount); err != nil {
					return err
				}
			}
			if flags.Changed("date") {
				if t.Date, err = csvstore.ParseDate(f.date); err != nil {
					return err
				}
			}
			if flags.Changed("note") {
				t.Note = f.note
			}

			if err := ws.store.UpdateTransaction(cmd.Context(), t); err != nil {
				return err
			}
			ws.commit(fmt.Sprintf("tx: update %d", t.ID))

			fmt.Fprintf(cmd.OutOrStdout(), "Updated transaction %d\n", t.ID)
			return nil
		},
	}

	f.register(cmd)

	return cmd
}

func newTxDeleteCommand(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
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

			if err := ws.store.DeleteTransaction(cmd.Context(), ws.user(), id); err != nil {
				return err
			}
			ws.commit(fmt.Sprintf("tx: delete %d", id))

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %d\n", id)
			return nil
		},
	}
}
