// Package cli is the cobra command tree. The bare command opens the TUI;
// subcommands run one tracker command against the database file.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/routine/internal/config"
	"github.com/sadopc/routine/internal/logging"
	"github.com/sadopc/routine/internal/routine"
	"github.com/sadopc/routine/internal/session"
	"github.com/sadopc/routine/internal/store"
)

type app struct {
	// Global flags
	configPath string
	dbPath     string
	persist    bool
	logLevel   string

	now func() time.Time

	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	sess   *session.Session
	dbUsed string
}

// Execute runs the command tree against os.Args. The database and logger
// are released even when the command fails.
func Execute() error {
	a := &app{now: time.Now}
	defer a.close()
	return newRootCmd(a).Execute()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "routine",
		Short: "Daily routine planner and tracker",
		Long: `routine plans a day as timed tasks, lets you mark each one Done or
Missed once it has started, and scores the day when every task is settled.

Run without arguments to open the interactive planner. The planner keeps its
data in memory unless --persist (or persist: true in the config) is set;
subcommands always read and write the database file.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runTUI,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ~/.config/routine/config.yaml)")
	pf.StringVar(&a.dbPath, "db", "", "database file (default ~/.config/routine/routine.db)")
	pf.BoolVar(&a.persist, "persist", false, "keep TUI sessions in the database file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newMarkCmd(a),
		newDeleteCmd(a),
		newEvaluateCmd(a),
		newSummaryCmd(a),
		newReportCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newScorecardCmd(a),
	)
	return root
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = a.dbPath
	}
	if flags.Changed("persist") {
		cfg.Persist = a.persist
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	// The TUI owns the terminal, so it only logs to a file.
	if !cmd.HasParent() {
		a.logger, err = logging.ForTUI(cfg.LogLevel, cfg.LogFile)
	} else {
		a.logger, err = logging.New(cfg.LogLevel, cfg.LogFile)
	}
	if err != nil {
		return err
	}
	a.logger.Debug("config loaded", zap.String("path", path), zap.String("command", cmd.Name()))
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store", zap.Error(err))
		}
		a.store = nil
		a.sess = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) location() *time.Location {
	if a.cfg == nil {
		return time.Local
	}
	return a.cfg.Location()
}

func (a *app) clock() time.Time {
	return a.now().In(a.location())
}

// session opens the tracker once per process. ephemeral selects a
// session-scoped in-memory store.
func (a *app) session(ephemeral bool) (*session.Session, error) {
	if a.sess != nil {
		return a.sess, nil
	}

	var (
		s   *store.Store
		err error
	)
	if ephemeral {
		s, err = store.NewMemory()
		a.dbUsed = store.MemoryPath
	} else {
		path := a.cfg.Database
		if path == "" {
			if path, err = store.DefaultDBPath(); err != nil {
				return nil, err
			}
		}
		a.dbUsed = path
		s, err = store.New(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sess, err := session.Open(s, a.logger, routine.WithClock(a.clock))
	if err != nil {
		s.Close()
		return nil, err
	}
	a.store = s
	a.sess = sess
	return sess, nil
}

// resolveDay turns a --date value into a day key. Empty means today.
func (a *app) resolveDay(v string) (string, error) {
	today := a.clock()
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "today":
		return routine.DayKey(today), nil
	case "yesterday":
		return routine.DayKey(today.AddDate(0, 0, -1)), nil
	case "tomorrow":
		return routine.DayKey(today.AddDate(0, 0, 1)), nil
	}
	d, err := routine.ParseDay(v, a.location())
	if err != nil {
		return "", err
	}
	return routine.DayKey(d), nil
}
