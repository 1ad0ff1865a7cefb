package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/routine/internal/routine"
	"github.com/sadopc/routine/internal/store"
)

var settingLabels = map[string]string{
	store.SettingDefaultStart: "Default start time",
	store.SettingDefaultEnd:   "Default end time",
	store.SettingWeekStart:    "Week starts on",
}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	// storage describes where the session lives, e.g. "in memory".
	storage string

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultStart *string
	defaultEnd   *string
	weekStart    *string
}

func newSettingsModel(s *store.Store, storage string) settingsModel {
	ds, de, ws := "", "", ""
	return settingsModel{
		store:        s,
		storage:      storage,
		defaultStart: &ds,
		defaultEnd:   &de,
		weekStart:    &ws,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func validClock(v string) error {
	if _, _, err := routine.ParseClock(v); err != nil {
		return fmt.Errorf("use a time like 06:30 AM")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.defaultStart, *s.defaultEnd = s.store.DefaultTimes()
	*s.weekStart = s.store.SettingOr(store.SettingWeekStart, "monday")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default start time").Value(s.defaultStart).Validate(validClock),
			huh.NewInput().Title("Default end time").Value(s.defaultEnd).Validate(validClock),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		).Title("Add Task Defaults"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(fmt.Sprintf("Settings error: %v", err), true)
		}
		return s, tea.Batch(s.refresh(), statusCmd("Settings saved", false))
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	if err := s.store.SetDefaultTimes(*s.defaultStart, *s.defaultEnd); err != nil {
		return err
	}
	return s.store.SetWeekStart(*s.weekStart)
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		name := setting.Key
		if l, ok := settingLabels[setting.Key]; ok {
			name = l
		}
		label := lipgloss.NewStyle().Width(24).Render(name)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	if s.storage != "" {
		rows = append(rows, "")
		rows = append(rows, fmt.Sprintf("  %s %s",
			lipgloss.NewStyle().Width(24).Render("Storage"), mutedStyle.Render(s.storage)))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	if k == store.SettingWeekStart && v != "" {
		return strings.ToUpper(v[:1]) + v[1:]
	}
	return v
}
