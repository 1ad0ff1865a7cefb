package scorecard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/routine/internal/config"
)

// ErrNoResult means neither a candidate phrase nor the fallback link could
// be clicked. No screenshot is taken.
var ErrNoResult = errors.New("couldn't find expected match link")

type Runner struct {
	cfg    config.ScorecardConfig
	logger *zap.Logger

	sleep     func(ctx context.Context, d time.Duration) error
	writeFile func(name string, data []byte) error
}

func NewRunner(cfg config.ScorecardConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
		sleep:  sleepCtx,
		writeFile: func(name string, data []byte) error {
			return os.WriteFile(name, data, 0o644)
		},
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run performs one capture on b and returns the screenshot path.
func (r *Runner) Run(ctx context.Context, b Browser) (string, error) {
	c := r.cfg
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	r.logger.Info("opening search page", zap.String("url", c.HomeURL))
	if err := b.Navigate(ctx, c.HomeURL); err != nil {
		return "", fmt.Errorf("open %s: %w", c.HomeURL, err)
	}
	if err := r.sleep(ctx, c.LoadWait); err != nil {
		return "", err
	}

	if c.Consent != "" {
		if err := b.Click(ctx, TagText("button", c.Consent), c.ConsentTimeout); err != nil {
			r.logger.Debug("no consent banner", zap.Error(err))
		}
	}

	if err := b.Type(ctx, CSS(c.SearchBox), c.Query, c.KeyDelay); err != nil {
		return "", fmt.Errorf("enter query: %w", err)
	}
	if err := b.PressEnter(ctx); err != nil {
		return "", fmt.Errorf("submit query: %w", err)
	}
	if err := r.sleep(ctx, c.ResultsWait); err != nil {
		return "", err
	}

	if err := r.openResult(ctx, b); err != nil {
		return "", err
	}
	if err := r.sleep(ctx, c.PageWait); err != nil {
		return "", err
	}

	png, err := b.Screenshot(ctx, true)
	if err != nil {
		return "", err
	}
	if err := r.writeFile(c.Output, png); err != nil {
		return "", fmt.Errorf("save screenshot: %w", err)
	}
	r.logger.Info("scorecard captured", zap.String("path", c.Output), zap.Int("bytes", len(png)))
	return c.Output, nil
}

// openResult clicks the first candidate phrase that resolves, then the
// fallback link.
func (r *Runner) openResult(ctx context.Context, b Browser) error {
	c := r.cfg
	for _, phrase := range c.Phrases {
		err := b.Click(ctx, Text(phrase), c.ClickTimeout)
		if err == nil {
			r.logger.Info("opened result", zap.String("phrase", phrase))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Debug("phrase not found", zap.String("phrase", phrase), zap.Error(err))
	}

	if c.FallbackText != "" {
		loc := TagText(c.FallbackTag, c.FallbackText)
		err := b.Click(ctx, loc, c.ClickTimeout)
		if err == nil {
			r.logger.Info("opened fallback result", zap.String("locator", loc.String()))
			return nil
		}
		r.logger.Debug("fallback not found", zap.Error(err))
	}
	return ErrNoResult
}

// Capture opens the configured driver, runs once and closes the browser.
func Capture(ctx context.Context, cfg config.ScorecardConfig, logger *zap.Logger) (string, error) {
	b, err := Open(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer b.Close()
	return NewRunner(cfg, logger).Run(ctx, b)
}
