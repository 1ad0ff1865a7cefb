package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/routine/internal/tui"
)

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	ephemeral := !a.cfg.Persist
	sess, err := a.session(ephemeral)
	if err != nil {
		return err
	}

	storage := "in memory (this session only)"
	if !ephemeral {
		storage = a.dbUsed
	}

	model := tui.NewApp(sess, tui.Options{
		Location: a.location(),
		Storage:  storage,
		Logger:   a.logger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
