package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/routine/internal/routine"
)

func validMonth(v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse("2006-01", v); err != nil {
		return fmt.Errorf("%w: month %q must be YYYY-MM", routine.ErrValidation, v)
	}
	return nil
}

func newSummaryCmd(a *app) *cobra.Command {
	var (
		month string
		week  bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show progress for every day with tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validMonth(month); err != nil {
				return err
			}
			sess, err := a.session(false)
			if err != nil {
				return err
			}
			rows := sess.Tracker().Summary()
			if week {
				first := routine.WeekOf(a.clock(), sess.Store().WeekStart())
				rows = routine.FilterWeek(rows, first)
			} else {
				rows = routine.FilterMonth(rows, month)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tracked data yet. Complete some days first!")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), summaryTable(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "only this month (YYYY-MM)")
	cmd.Flags().BoolVar(&week, "week", false, "only the current week (see the week_start setting)")
	cmd.MarkFlagsMutuallyExclusive("month", "week")
	return cmd
}

func summaryTable(rows []routine.SummaryRow) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Tasks", "Done", "Score (%)", "Feedback").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for _, r := range rows {
		t.Row(r.Day, strconv.Itoa(r.Total), strconv.Itoa(r.Completed), strconv.Itoa(r.Percent), string(r.Feedback))
	}
	return t.String()
}

// reportMarkdown renders the summary as a markdown document.
func reportMarkdown(rows []routine.SummaryRow, month string, now time.Time) string {
	var b strings.Builder
	title := "All time"
	if month != "" {
		if t, err := time.Parse("2006-01", month); err == nil {
			title = t.Format("January 2006")
		}
	}
	fmt.Fprintf(&b, "# Routine report: %s\n\n", title)
	fmt.Fprintf(&b, "_Generated %s_\n\n", now.Format("January 02, 2006 03:04 PM"))

	if len(rows) == 0 {
		b.WriteString("No tracked data yet. Complete some days first!\n")
		return b.String()
	}

	total, best := 0, rows[0]
	counts := make(map[routine.Feedback]int)
	for _, r := range rows {
		total += r.Percent
		counts[r.Feedback]++
		if r.Percent > best.Percent {
			best = r
		}
	}
	fmt.Fprintf(&b, "**%d** tracked day(s), average **%d%%**. Best day: **%s** (%d%%).\n\n",
		len(rows), total/len(rows), best.Day, best.Percent)

	b.WriteString("| Date | Tasks | Done | Score (%) | Feedback |\n")
	b.WriteString("|---|---:|---:|---:|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %s |\n", r.Day, r.Total, r.Completed, r.Percent, r.Feedback)
	}

	b.WriteString("\n## Feedback\n\n")
	for _, f := range []routine.Feedback{
		routine.FeedbackOutstanding, routine.FeedbackGreat, routine.FeedbackKeepGoing, routine.FeedbackTryAgain,
	} {
		if counts[f] > 0 {
			fmt.Fprintf(&b, "- **%s**: %d day(s)\n", f, counts[f])
		}
	}
	return b.String()
}

func newReportCmd(a *app) *cobra.Command {
	var (
		month string
		raw   bool
		width int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a markdown progress report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validMonth(month); err != nil {
				return err
			}
			sess, err := a.session(false)
			if err != nil {
				return err
			}
			rows := routine.FilterMonth(sess.Tracker().Summary(), month)
			md := reportMarkdown(rows, month, sess.Tracker().Now())
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("create renderer: %w", err)
			}
			out, err := renderer.Render(md)
			if err != nil {
				return fmt.Errorf("render report: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "only this month (YYYY-MM)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width")
	return cmd
}
