package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/routine/internal/routine"
	"github.com/sadopc/routine/internal/session"
	"github.com/sadopc/routine/internal/store"
)

type plannerModel struct {
	session *session.Session
	store   *store.Store
	width   int
	height  int

	day      string
	tasks    []routine.Task
	overlaps []routine.Overlap
	cursor   int
	selected map[int]bool

	progress progress.Model

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	startHour, startMinute, startMeridiem *string
	endHour, endMinute, endMeridiem       *string
	description                           *string
}

func newPlannerModel(sess *session.Session, s *store.Store) plannerModel {
	sh, sm, smer := "06", "00", "AM"
	eh, em, emer := "07", "00", "AM"
	desc := ""
	return plannerModel{
		session:       sess,
		store:         s,
		day:           routine.DayKey(sess.Tracker().Now()),
		selected:      make(map[int]bool),
		progress:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		startHour:     &sh,
		startMinute:   &sm,
		startMeridiem: &smer,
		endHour:       &eh,
		endMinute:     &em,
		endMeridiem:   &emer,
		description:   &desc,
	}
}

func (p *plannerModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.progress.Width = max(10, min(w-12, 60))
}

type plannerDataMsg struct {
	day      string
	tasks    []routine.Task
	overlaps []routine.Overlap
}

// refresh reads the tracker on the calling goroutine. The tracker is owned
// by the update loop, so the returned Cmd only carries the copied result.
func (p plannerModel) refresh() tea.Cmd {
	msg := plannerDataMsg{
		day:      p.day,
		tasks:    p.session.Tasks(p.day),
		overlaps: p.session.Tracker().Overlaps(p.day),
	}
	return func() tea.Msg { return msg }
}

func (p plannerModel) now() time.Time {
	return p.session.Tracker().Now()
}

func (p plannerModel) update(msg tea.Msg) (plannerModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case plannerDataMsg:
		if msg.day != p.day {
			return p, nil
		}
		p.tasks = msg.tasks
		p.overlaps = msg.overlaps
		if p.cursor >= len(p.tasks) {
			p.cursor = max(0, len(p.tasks)-1)
		}
		return p, nil

	case tea.KeyMsg:
		return p.updateKeys(msg)
	}
	return p, nil
}

func (p plannerModel) updateKeys(msg tea.KeyMsg) (plannerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.tasks)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Left):
		return p.gotoDay(shiftDay(p.day, -1))
	case key.Matches(msg, keys.Right):
		return p.gotoDay(shiftDay(p.day, 1))
	case key.Matches(msg, keys.Today):
		return p.gotoDay(routine.DayKey(p.now()))
	case key.Matches(msg, keys.New):
		return p.showAddForm()
	case key.Matches(msg, keys.Done):
		return p.mark(routine.StatusDone)
	case key.Matches(msg, keys.Missed):
		return p.mark(routine.StatusMissed)
	case key.Matches(msg, keys.Select):
		if len(p.tasks) > 0 {
			if p.selected[p.cursor] {
				delete(p.selected, p.cursor)
			} else {
				p.selected[p.cursor] = true
			}
		}
	case key.Matches(msg, keys.Delete):
		return p.deleteTasks()
	case key.Matches(msg, keys.Evaluate):
		return p.evaluate()
	}
	return p, nil
}

func (p plannerModel) gotoDay(day string) (plannerModel, tea.Cmd) {
	p.day = day
	p.cursor = 0
	p.selected = make(map[int]bool)
	p.tasks = nil
	p.overlaps = nil
	return p, p.refresh()
}

func (p plannerModel) mark(status routine.Status) (plannerModel, tea.Cmd) {
	if len(p.tasks) == 0 {
		return p, nil
	}
	err := p.session.MarkStatus(p.day, p.cursor, status)
	switch {
	case errors.Is(err, routine.ErrFutureTask):
		t := p.tasks[p.cursor]
		return p, statusCmd(fmt.Sprintf("%q hasn't started yet (starts %s)", t.Description, t.Start), true)
	case err != nil:
		return p, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return p, p.refresh()
}

// deleteTasks removes the selected tasks, or the one under the cursor when
// nothing is selected.
func (p plannerModel) deleteTasks() (plannerModel, tea.Cmd) {
	if len(p.tasks) == 0 {
		return p, nil
	}
	indices := make([]int, 0, len(p.selected))
	for i := range p.selected {
		indices = append(indices, i)
	}
	if len(indices) == 0 {
		indices = append(indices, p.cursor)
	}
	sort.Ints(indices)

	n, err := p.session.DeleteTasks(p.day, indices...)
	p.selected = make(map[int]bool)
	if err != nil {
		return p, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return p, tea.Batch(p.refresh(), statusCmd(fmt.Sprintf("Deleted %d task(s)", n), false))
}

func (p plannerModel) evaluate() (plannerModel, tea.Cmd) {
	ev, err := p.session.EvaluateDay(p.day)
	switch {
	case errors.Is(err, routine.ErrIncompleteEvaluation):
		return p, statusCmd("Please mark all tasks as Done or Missed before checking your day!", true)
	case errors.Is(err, routine.ErrNoTasks):
		return p, statusCmd("No tasks to evaluate yet", true)
	case err != nil:
		return p, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return p, tea.Batch(p.refresh(), statusCmd(fmt.Sprintf("Day scored %d%%", ev.Score.Percent), false))
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func (p plannerModel) showAddForm() (plannerModel, tea.Cmd) {
	defStart, defEnd := p.store.DefaultTimes()
	*p.startHour, *p.startMinute, *p.startMeridiem = splitClock(defStart, "06:00 AM")
	*p.endHour, *p.endMinute, *p.endMeridiem = splitClock(defEnd, "07:00 AM")
	*p.description = ""

	p.form = huh.NewForm(
		huh.NewGroup(
			clockSelect("Hour", hourOptions, p.startHour),
			clockSelect("Minute", minuteOptions, p.startMinute),
			clockSelect("AM/PM", meridiemOptions, p.startMeridiem),
		).Title("Start Time"),
		huh.NewGroup(
			clockSelect("Hour", hourOptions, p.endHour),
			clockSelect("Minute", minuteOptions, p.endMinute),
			clockSelect("AM/PM", meridiemOptions, p.endMeridiem),
		).Title("End Time"),
		huh.NewGroup(
			huh.NewInput().Title("Task Description").Value(p.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("please enter a task description")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func clockSelect(title string, values []string, v *string) *huh.Select[string] {
	return huh.NewSelect[string]().
		Title(title).
		Inline(true).
		Options(huh.NewOptions(values...)...).
		Value(v)
}

func (p plannerModel) updateForm(msg tea.Msg) (plannerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p.submitAddForm()
	}

	return p, cmd
}

func (p plannerModel) submitAddForm() (plannerModel, tea.Cmd) {
	start, err := joinClock(*p.startHour, *p.startMinute, *p.startMeridiem)
	if err != nil {
		return p, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	end, err := joinClock(*p.endHour, *p.endMinute, *p.endMeridiem)
	if err != nil {
		return p, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	if _, err := p.session.AddTask(p.day, start, end, *p.description); err != nil {
		return p, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	return p, tea.Batch(p.refresh(), statusCmd(fmt.Sprintf("Task added for %s → %s", start, end), false))
}

// --- View ---

func (p plannerModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("Add a New Task")
		sub := mutedStyle.Render(p.dayHeading())
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, sub, "", p.form.View()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		p.renderTaskPanel(w),
		p.renderScorePanel(w),
	)
}

func (p plannerModel) dayHeading() string {
	t, err := time.Parse(routine.DateLayout, p.day)
	if err != nil {
		return p.day
	}
	return t.Format("Monday, January 02, 2006")
}

func (p plannerModel) renderTaskPanel(w int) string {
	title := titleStyle.Render(p.dayHeading())
	if p.day == routine.DayKey(p.now()) {
		title += successStyle.Render("  today")
	}
	t, _ := time.Parse(routine.DateLayout, p.day)
	meta := mutedStyle.Render(fmt.Sprintf("Month: %s   Year: %d", t.Month(), t.Year()))

	if len(p.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			meta,
			"",
			mutedStyle.Render("No tasks added yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{title, meta, ""}
	now := p.now()
	for i, task := range p.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := "[ ]"
		if p.selected[i] {
			mark = "[x]"
		}
		label := routine.DisplayStatus(task, p.day, now)
		lock := ""
		if future, _ := routine.IsFuture(task, p.day, now); future && !task.Status.Final() {
			lock = mutedStyle.Render(" (locked)")
		}
		line := style.Render(fmt.Sprintf("%s%s %s → %s  %s", cursor, mark, task.Start, task.End, task.Description))
		rows = append(rows, line+"  "+labelStyle(label).Render(string(label))+lock)
	}

	if hint := p.overlapHint(); hint != "" {
		rows = append(rows, "", warningStyle.Render(hint))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: add  d: done  m: missed  space: select  x: delete  ←/→: day  t: today"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p plannerModel) overlapHint() string {
	if len(p.overlaps) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.overlaps))
	for _, o := range p.overlaps {
		parts = append(parts, fmt.Sprintf("#%d/#%d", o.First+1, o.Second+1))
	}
	return "⚠ Overlapping tasks: " + strings.Join(parts, ", ")
}

func (p plannerModel) renderScorePanel(w int) string {
	done := 0
	for _, t := range p.tasks {
		if t.Status == routine.StatusDone {
			done++
		}
	}
	completed := fmt.Sprintf("✅ Completed %s Tasks", highlightStyle.Render(fmt.Sprintf("%d/%d", done, len(p.tasks))))

	if !p.session.Tracker().Evaluated(p.day) || len(p.tasks) == 0 {
		rows := []string{completed}
		if len(p.tasks) > 0 {
			rows = append(rows, mutedStyle.Render("Press c: How was the day?"))
		}
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	score, err := routine.ComputeDayScore(p.tasks)
	if err != nil {
		return panelStyle.Width(w).Render(completed)
	}
	fb := routine.ClassifyScore(score.Percent)
	banner := lipgloss.NewStyle().Bold(true).Foreground(feedbackColor(fb)).Render(fb.Message())

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Daily Accomplishment Score"),
		"",
		p.progress.ViewAs(float64(score.Percent)/100),
		fmt.Sprintf("Completed %d/%d Tasks, %s success", score.Completed, score.Total,
			highlightStyle.Render(fmt.Sprintf("%d%%", score.Percent))),
		"",
		banner,
	)
	return activePanelStyle.Width(w).Render(content)
}
