package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/routine/internal/routine"
)

func newAddCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "add <start> <end> <description...>",
		Short: "Add a task to a day",
		Long: `Adds a task with a start and end time of day. Times may be written as
"06:30 AM", "6:30pm" or "18:30".

Example:
  routine add "06:00 AM" "06:45 AM" Morning run --date tomorrow`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.resolveDay(date)
			if err != nil {
				return err
			}
			sess, err := a.session(false)
			if err != nil {
				return err
			}
			t, err := sess.AddTask(day, args[0], args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task added for %s → %s: %s (%s)\n", t.Start, t.End, t.Description, day)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day (YYYY-MM-DD, today, tomorrow, yesterday)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks of a day",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.resolveDay(date)
			if err != nil {
				return err
			}
			sess, err := a.session(false)
			if err != nil {
				return err
			}
			writeDay(cmd.OutOrStdout(), sess.Tracker(), day)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day (YYYY-MM-DD, today, tomorrow, yesterday)")
	return cmd
}

func writeDay(w io.Writer, tr *routine.Tracker, day string) {
	tasks := tr.Tasks(day)
	fmt.Fprintln(w, day)
	if len(tasks) == 0 {
		fmt.Fprintln(w, "  No tasks added yet.")
		return
	}

	now := tr.Now()
	for i, t := range tasks {
		fmt.Fprintf(w, "  #%-2d %s → %s  %-30s %s\n", i+1, t.Start, t.End, t.Description, routine.DisplayStatus(t, day, now))
	}
	for _, o := range tr.Overlaps(day) {
		fmt.Fprintf(w, "  ⚠ #%d overlaps #%d\n", o.First+1, o.Second+1)
	}

	done := 0
	for _, t := range tasks {
		if t.Status == routine.StatusDone {
			done++
		}
	}
	fmt.Fprintf(w, "  Completed %d/%d Tasks\n", done, len(tasks))
	if tr.Evaluated(day) {
		if sc, err := tr.Score(day); err == nil {
			fmt.Fprintf(w, "  Score %d%%: %s\n", sc.Percent, routine.ClassifyScore(sc.Percent).Message())
		}
	}
}

// parsePosition reads a 1-based task number as shown by list.
func parsePosition(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(v, "#"))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: task number %q", routine.ErrValidation, v)
	}
	return n - 1, nil
}

func newMarkCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "mark <task-number> <done|missed>",
		Short: "Mark a started task as Done or Missed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.resolveDay(date)
			if err != nil {
				return err
			}
			idx, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			status, err := routine.ParseStatus(args[1])
			if err != nil {
				return err
			}
			sess, err := a.session(false)
			if err != nil {
				return err
			}
			if err := sess.MarkStatus(day, idx, status); err != nil {
				if errors.Is(err, routine.ErrFutureTask) {
					t := sess.Tasks(day)[idx]
					return fmt.Errorf("%q hasn't started yet (starts %s): %w", t.Description, t.Start, err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d marked %s\n", idx+1, status)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day (YYYY-MM-DD, today, tomorrow, yesterday)")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "delete <task-number>...",
		Aliases: []string{"rm"},
		Short:   "Delete tasks from a day",
		Long:    "Deletes the numbered tasks. Numbers that no longer exist are ignored.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.resolveDay(date)
			if err != nil {
				return err
			}
			indices := make([]int, 0, len(args))
			for _, arg := range args {
				idx, err := parsePosition(arg)
				if err != nil {
					return err
				}
				indices = append(indices, idx)
			}
			sess, err := a.session(false)
			if err != nil {
				return err
			}
			n, err := sess.DeleteTasks(day, indices...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d task(s)\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day (YYYY-MM-DD, today, tomorrow, yesterday)")
	return cmd
}

func newEvaluateCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "evaluate",
		Aliases: []string{"score"},
		Short:   "How was the day? Score a day whose tasks are all settled",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := a.resolveDay(date)
			if err != nil {
				return err
			}
			sess, err := a.session(false)
			if err != nil {
				return err
			}
			ev, err := sess.EvaluateDay(day)
			if errors.Is(err, routine.ErrIncompleteEvaluation) {
				return errors.New("please mark all tasks as Done or Missed before checking your day")
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Daily Accomplishment Score")
			fmt.Fprintf(out, "Completed %d/%d Tasks, %d%% success\n", ev.Score.Completed, ev.Score.Total, ev.Score.Percent)
			fmt.Fprintln(out, ev.Feedback.Message())
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day (YYYY-MM-DD, today, tomorrow, yesterday)")
	return cmd
}
