package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ScorecardConfig drives the browser capture command.
type ScorecardConfig struct {
	// Driver is "chromedp" (default) or "rod".
	Driver   string `yaml:"driver"`
	Headless bool   `yaml:"headless"`

	HomeURL   string `yaml:"home_url"`
	Query     string `yaml:"query"`
	SearchBox string `yaml:"search_box"`
	// Consent is the text of a cookie banner button clicked if present.
	Consent string `yaml:"consent"`

	// Phrases are tried in order; the first visible match is clicked.
	Phrases      []string `yaml:"phrases"`
	FallbackTag  string   `yaml:"fallback_tag"`
	FallbackText string   `yaml:"fallback_text"`

	Output    string `yaml:"output"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	UserAgent string `yaml:"user_agent"`

	ConsentTimeout time.Duration `yaml:"consent_timeout"`
	ClickTimeout   time.Duration `yaml:"click_timeout"`
	KeyDelay       time.Duration `yaml:"key_delay"`
	LoadWait       time.Duration `yaml:"load_wait"`
	ResultsWait    time.Duration `yaml:"results_wait"`
	PageWait       time.Duration `yaml:"page_wait"`
	Timeout        time.Duration `yaml:"timeout"`

	// Schedule is an optional cron spec for repeated captures.
	Schedule string `yaml:"schedule,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Database is the SQLite file used by CLI commands and by the TUI when
	// Persist is set. Empty means the default path.
	Database string `yaml:"database"`

	// Persist keeps TUI sessions across restarts. Off by default: a TUI
	// session lives in memory.
	Persist bool `yaml:"persist"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// Timezone is an IANA name; empty means the local zone.
	Timezone string `yaml:"timezone"`

	Scorecard ScorecardConfig `yaml:"scorecard"`
}

func DefaultScorecard() ScorecardConfig {
	return ScorecardConfig{
		Driver:    "chromedp",
		Headless:  false,
		HomeURL:   "https://www.google.com/",
		Query:     "SA vs India womens final scorecard",
		SearchBox: `textarea[name="q"]`,
		Consent:   "Accept all",
		Phrases: []string{
			"South Africa Women vs India Women, Final",
			"India Women vs South Africa Women, Final",
			"Scorecard",
			"Live Score",
			"Cricbuzz",
			"ESPNcricinfo",
		},
		FallbackTag:  "a",
		FallbackText: "Cricket",
		Output:       "scorecard.png",
		Width:        1200,
		Height:       800,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) " +
			"Chrome/119.0.6045.105 Safari/537.36",
		ConsentTimeout: 2500 * time.Millisecond,
		ClickTimeout:   4 * time.Second,
		KeyDelay:       40 * time.Millisecond,
		LoadWait:       3 * time.Second,
		ResultsWait:    4 * time.Second,
		PageWait:       5 * time.Second,
		Timeout:        2 * time.Minute,
	}
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		Scorecard: DefaultScorecard(),
	}
}

// Normalize fills in zero values so partial files behave like defaults.
func (c *Config) Normalize() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	d := DefaultScorecard()
	s := &c.Scorecard
	switch s.Driver {
	case "chromedp", "rod":
	default:
		s.Driver = d.Driver
	}
	if s.HomeURL == "" {
		s.HomeURL = d.HomeURL
	}
	if s.Query == "" {
		s.Query = d.Query
	}
	if s.SearchBox == "" {
		s.SearchBox = d.SearchBox
	}
	if s.Phrases == nil {
		s.Phrases = d.Phrases
	}
	if s.FallbackTag == "" {
		s.FallbackTag = d.FallbackTag
	}
	if s.Output == "" {
		s.Output = d.Output
	}
	if s.Width <= 0 {
		s.Width = d.Width
	}
	if s.Height <= 0 {
		s.Height = d.Height
	}
	if s.UserAgent == "" {
		s.UserAgent = d.UserAgent
	}
	if s.ConsentTimeout <= 0 {
		s.ConsentTimeout = d.ConsentTimeout
	}
	if s.ClickTimeout <= 0 {
		s.ClickTimeout = d.ClickTimeout
	}
	if s.KeyDelay < 0 {
		s.KeyDelay = 0
	}
	if s.LoadWait <= 0 {
		s.LoadWait = d.LoadWait
	}
	if s.ResultsWait <= 0 {
		s.ResultsWait = d.ResultsWait
	}
	if s.PageWait <= 0 {
		s.PageWait = d.PageWait
	}
	if s.Timeout <= 0 {
		s.Timeout = d.Timeout
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DefaultPath returns ~/.config/routine/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "routine", "config.yaml"), nil
}

// Load reads the YAML file at path. A missing file is created with the
// defaults (0600) on first run.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg atomically via a temp file and rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".routine-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
