package commands

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spendwise/spendwise/internal/alertlog"
	"github.com/spendwise/spendwise/internal/render"
	"github.com/spendwise/spendwise/internal/spending"
	"github.com/spendwise/spendwise/internal/store/csvstore"
	"github.com/spendwise/spendwise/internal/window"
)

type reportOptions struct {
	window string
	now    string
	format string
	alerts bool
}

func newReportCommand(dataDir *string) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show spending per category over a time window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(*dataDir)
			if err != nil {
				return err
			}
			defer ws.Close()

			label := opts.window
			if !cmd.Flags().Changed("window") {
				label = ws.cfg.Report.DefaultWindow
			}
			w, ok := window.Parse(label)
			if !ok {
				log.Warnf("unknown window %q, using %s", label, w)
			}

			formatName := opts.format
			if !cmd.Flags().Changed("format") {
				formatName = ws.cfg.Report.Format
			}
			format, err := render.ParseFormat(formatName)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if opts.now != "" {
				if now, err = csvstore.ParseDate(opts.now); err != nil {
					return err
				}
			}

			snap, err := ws.store.Snapshot(cmd.Context(), ws.user())
			if err != nil {
				return err
			}

			report, err := spending.Summarize(spending.Input{
				Now:          now,
				Window:       w,
				Transactions: snap.Transactions,
				Categories:   snap.Categories,
			})
			if err != nil {
				return err
			}
			for _, t := range report.Rejected {
				log.Warnf("skipped transaction %d: amount %s is not positive", t.ID, t.Amount)
			}
			for _, c := range report.Conflicts {
				log.Warnf("category %q: transaction %d has limit %s, keeping %s",
					c.Name, c.TransactionID, formatLimit(c.Ignored), formatLimit(c.Kept))
			}

			if err := render.Report(cmd.OutOrStdout(), format, report); err != nil {
				return err
			}

			if opts.alerts {
				alerts := alertlog.FromReport(ws.user(), report)
				if err := alertlog.Append(ws.dir, alerts); err != nil {
					return err
				}
				if len(alerts) > 0 {
					log.Infof("logged %d over-limit alerts", len(alerts))
					ws.commit(fmt.Sprintf("report: %d over-limit alerts for %s", len(alerts), w))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.window, "window", "w", "", "time window (1m, 3m, 6m, 1y, 5y, all or a full label)")
	cmd.Flags().StringVar(&opts.now, "now", "", "reference time (YYYY-MM-DD or RFC 3339; default now)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (table, csv, json)")
	cmd.Flags().BoolVar(&opts.alerts, "alerts", false, "append over-limit categories to logs/alerts.csv")

	return cmd
}
