package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/routine/internal/export"
	"github.com/sadopc/routine/internal/session"
)

var exportFormats = []string{"CSV summary", "JSON snapshot", "ICS (current day)"}

// Options tunes an App. The zero value exports to the home directory in the
// local time zone.
type Options struct {
	Location  *time.Location
	ExportDir string
	Storage   string
	Logger    *zap.Logger
}

// App is the root Bubble Tea model.
type App struct {
	session *session.Session
	opts    Options
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	planner  plannerModel
	summary  summaryModel
	settings settingsModel

	help     help.Model
	status   string
	statusOK bool
}

func NewApp(sess *session.Session, opts Options) App {
	h := help.New()
	h.ShowAll = false

	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ExportDir == "" {
		opts.ExportDir, _ = os.UserHomeDir()
	}

	return App{
		session:    sess,
		opts:       opts,
		activeView: viewPlanner,
		planner:    newPlannerModel(sess, sess.Store()),
		summary:    newSummaryModel(sess),
		settings:   newSettingsModel(sess.Store(), opts.Storage),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.planner.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.planner.setSize(a.width, contentHeight)
		a.summary.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewPlanner
			return a, a.planner.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewSummary
			return a, a.summary.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		// Display labels depend on the clock.
		if a.activeView == viewPlanner && !a.planner.formActive {
			return a, tea.Batch(tickCmd(), a.planner.refresh())
		}
		return a, tickCmd()

	case statusMsg:
		a.status = msg.text
		a.statusOK = !msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusOK = true
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewPlanner:
		a.planner, cmd = a.planner.update(msg)
	case viewSummary:
		a.summary, cmd = a.summary.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPlanner:
		return a.planner.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewPlanner:
		return a.planner.refresh()
	case viewSummary:
		return a.summary.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewPlanner:
		content = a.planner.view()
	case viewSummary:
		content = a.summary.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("routine")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := errorStyle
		if a.statusOK {
			style = mutedStyle
		}
		status = style.Render(" " + a.status)
	}

	clock := mutedStyle.Render(" " + a.session.Tracker().Now().Format("03:04:05 PM"))

	left := footerStyle.Render(helpView)
	right := status + clock

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport copies what it needs from the tracker before returning; only the
// file writing runs in the Cmd.
func (a App) doExport(format int) tea.Cmd {
	tr := a.session.Tracker()
	day := a.planner.day
	opts := a.opts
	dateStr := tr.Now().Format("2006-01-02")
	rows := tr.Summary()
	snapshot := tr.Snapshot()
	tasks := tr.Tasks(day)

	return func() tea.Msg {
		var path string
		switch format {
		case 0:
			path = filepath.Join(opts.ExportDir, fmt.Sprintf("routine-summary-%s.csv", dateStr))
			if err := export.ToCSV(rows, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		case 1:
			path = filepath.Join(opts.ExportDir, fmt.Sprintf("routine-%s.json", dateStr))
			if err := export.ToJSON(snapshot, rows, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		default:
			if len(tasks) == 0 {
				return statusMsg{text: "No tasks on " + day + " to export", isError: true}
			}
			path = filepath.Join(opts.ExportDir, fmt.Sprintf("routine-%s.ics", day))
			n, err := export.ToICS(day, tasks, opts.Location, path)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("ICS error: %v", err), isError: true}
			}
			if n == 0 {
				return statusMsg{text: "No task on " + day + " has readable times", isError: true}
			}
		}

		opts.Logger.Info("exported", zap.String("path", path))
		return exportDoneMsg{path: path}
	}
}
