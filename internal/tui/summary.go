package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/routine/internal/routine"
	"github.com/sadopc/routine/internal/session"
)

type summaryModel struct {
	session *session.Session
	width   int
	height  int

	month string // "2006-01"; empty shows every month
	week  string // first day of the shown week; overrides month when set
	rows  []routine.SummaryRow

	chart barchart.Model
}

func newSummaryModel(sess *session.Session) summaryModel {
	return summaryModel{
		session: sess,
		chart:   barchart.New(60, 12),
	}
}

func (s *summaryModel) setSize(w, h int) {
	s.width = w
	s.height = h
	s.buildChart()
}

type summaryDataMsg struct {
	month string
	week  string
	rows  []routine.SummaryRow
}

func (s summaryModel) refresh() tea.Cmd {
	rows := s.session.Tracker().Summary()
	if first, err := time.Parse(routine.DateLayout, s.week); err == nil {
		rows = routine.FilterWeek(rows, first)
	} else {
		rows = routine.FilterMonth(rows, s.month)
	}
	msg := summaryDataMsg{month: s.month, week: s.week, rows: rows}
	return func() tea.Msg { return msg }
}

// weekStart reads the week_start setting; Monday without a store.
func (s summaryModel) weekStart() time.Weekday {
	if st := s.session.Store(); st != nil {
		return st.WeekStart()
	}
	return time.Monday
}

func (s summaryModel) update(msg tea.Msg) (summaryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryDataMsg:
		if msg.month != s.month || msg.week != s.week {
			return s, nil
		}
		s.rows = msg.rows
		s.buildChart()
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if s.week != "" {
				s.week = shiftDay(s.week, -7)
			} else {
				s.month = shiftMonth(s.currentMonth(), -1)
			}
			return s, s.refresh()
		case key.Matches(msg, keys.Right):
			if s.week != "" {
				s.week = shiftDay(s.week, 7)
			} else {
				s.month = shiftMonth(s.currentMonth(), 1)
			}
			return s, s.refresh()
		case key.Matches(msg, keys.Week):
			s.month = ""
			s.week = routine.DayKey(routine.WeekOf(s.session.Tracker().Now(), s.weekStart()))
			return s, s.refresh()
		case key.Matches(msg, keys.AllTime):
			s.month = ""
			s.week = ""
			return s, s.refresh()
		}
	}
	return s, nil
}

// currentMonth is the filter month, or the month of today when unfiltered.
func (s summaryModel) currentMonth() string {
	if s.month != "" {
		return s.month
	}
	return s.session.Tracker().Now().Format("2006-01")
}

func (s *summaryModel) buildChart() {
	chartWidth := s.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if s.height > 30 {
		chartHeight = 14
	}

	s.chart = barchart.New(chartWidth, chartHeight)

	bars := make([]barchart.BarData, 0, len(s.rows))
	for _, r := range s.rows {
		label := r.Day
		if t, err := time.Parse(routine.DateLayout, r.Day); err == nil {
			label = t.Format("Jan 02")
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  string(r.Feedback),
				Value: float64(r.Percent),
				Style: lipgloss.NewStyle().Foreground(feedbackColor(r.Feedback)),
			}},
		})
	}
	if len(bars) == 0 {
		return
	}

	s.chart.PushAll(bars)
	s.chart.Draw()
}

func (s summaryModel) view() string {
	w := s.width - 4

	label := "All months"
	if t, err := time.Parse(routine.DateLayout, s.week); err == nil {
		label = "Week of " + t.Format("Mon, Jan 02 2006")
	} else if t, err := time.Parse("2006-01", s.month); err == nil {
		label = t.Format("January 2006")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Progress Summary"), "  ", mutedStyle.Render(label),
	)
	nav := mutedStyle.Render("  ←/→: month or week  W: this week  A: all months")

	if len(s.rows) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("No tracked data yet. Complete some days first!"), "", nav,
		))
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", s.chart.View(), "", s.renderTable(w), "", s.renderAverage(), "", nav,
		),
	)
}

func (s summaryModel) renderTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %6s %6s %10s  %-12s", "Date", "Tasks", "Done", "Score (%)", "Feedback")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 52))))

	for _, r := range s.rows {
		dot := lipgloss.NewStyle().Foreground(feedbackColor(r.Feedback)).Render("●")
		rows = append(rows, fmt.Sprintf("  %-12s %6d %6d %10d  %s %s",
			r.Day, r.Total, r.Completed, r.Percent, dot, r.Feedback,
		))
	}
	return strings.Join(rows, "\n")
}

func (s summaryModel) renderAverage() string {
	if len(s.rows) == 0 {
		return ""
	}
	total := 0
	for _, r := range s.rows {
		total += r.Percent
	}
	avg := total / len(s.rows)
	return fmt.Sprintf("  Average %s over %d day(s)", highlightStyle.Render(fmt.Sprintf("%d%%", avg)), len(s.rows))
}
