package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/routine/internal/export"
	"github.com/sadopc/routine/internal/ics"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		date string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export <csv|json|ics>",
		Short: "Export the summary, a full snapshot, or one day as a calendar",
		Long: `Exports tracked data:
  csv   summary rows (Date, Tasks, Done, Score (%), Feedback)
  json  every day with its tasks, plus the summary
  ics   the tasks of --date as calendar events`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "json", "ics"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(args[0])
			sess, err := a.session(false)
			if err != nil {
				return err
			}
			tr := sess.Tracker()
			stamp := tr.Now().Format("2006-01-02")

			switch format {
			case "csv":
				if out == "" {
					out = fmt.Sprintf("routine-summary-%s.csv", stamp)
				}
				err = export.ToCSV(tr.Summary(), out)
			case "json":
				if out == "" {
					out = fmt.Sprintf("routine-%s.json", stamp)
				}
				err = export.ToJSON(tr.Snapshot(), tr.Summary(), out)
			case "ics":
				day, derr := a.resolveDay(date)
				if derr != nil {
					return derr
				}
				if out == "" {
					out = fmt.Sprintf("routine-%s.ics", day)
				}
				var n int
				n, err = export.ToICS(day, tr.Tasks(day), a.location(), out)
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%d event(s) written\n", n)
				}
			default:
				return fmt.Errorf("unknown export format %q (want csv, json or ics)", args[0])
			}
			if err != nil {
				return err
			}
			a.logger.Info("exported", zap.String("format", format), zap.String("path", out))
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	cmd.Flags().StringVar(&date, "date", "", "day for ics export (YYYY-MM-DD, today, tomorrow, yesterday)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		from string
		days int
	)
	cmd := &cobra.Command{
		Use:   "import <file.ics>",
		Short: "Import calendar events as tasks",
		Long: `Reads VEVENTs from an iCalendar file and adds one task per occurrence.
Recurring events are expanded from --from for --days days. All-day events
are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read calendar: %w", err)
			}
			events, err := ics.Parse(body, a.logger)
			if err != nil {
				return err
			}

			day, err := a.resolveDay(from)
			if err != nil {
				return err
			}
			start, err := time.ParseInLocation("2006-01-02", day, a.location())
			if err != nil {
				return err
			}
			drafts, err := ics.Expand(events, ics.ExpandConfig{
				Location: a.location(),
				From:     start,
				To:       start.AddDate(0, 0, days).Add(-time.Second),
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}

			sess, err := a.session(false)
			if err != nil {
				return err
			}
			added, skipped, err := sess.Import(drafts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d task(s) from %d event(s), %d skipped\n", added, len(events), skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day to import (default today)")
	cmd.Flags().IntVar(&days, "days", 7, "number of days to import")
	return cmd
}
