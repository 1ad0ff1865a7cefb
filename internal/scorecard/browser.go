// Package scorecard drives a real browser through a web search, opens the
// first matching result and saves a full-page screenshot of it.
package scorecard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/routine/internal/config"
)

// Locator finds an element either by CSS selector or by visible text,
// optionally restricted to a tag.
type Locator struct {
	CSS  string
	Text string
	Tag  string
}

func CSS(selector string) Locator { return Locator{CSS: selector} }

// Text matches the first element whose own text contains s.
func Text(s string) Locator { return Locator{Text: s} }

// TagText matches the first tag element whose text, including descendants,
// contains s.
func TagText(tag, s string) Locator { return Locator{Tag: tag, Text: s} }

// XPath renders a text locator as an XPath expression selecting the first
// match. CSS locators return "".
func (l Locator) XPath() string {
	if l.CSS != "" {
		return ""
	}
	lit := xpathLiteral(l.Text)
	if l.Tag == "" {
		return fmt.Sprintf("(//*[text()[contains(normalize-space(.), %s)]])[1]", lit)
	}
	return fmt.Sprintf("(//%s[contains(normalize-space(.), %s)])[1]", l.Tag, lit)
}

func (l Locator) String() string {
	switch {
	case l.CSS != "":
		return l.CSS
	case l.Tag != "":
		return fmt.Sprintf("%s:has-text(%q)", l.Tag, l.Text)
	default:
		return fmt.Sprintf("text=%q", l.Text)
	}
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		quoted = append(quoted, `"`+p+`"`)
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// Browser is the small surface the capture flow needs from a driver.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	// Click waits up to timeout for loc and clicks it.
	Click(ctx context.Context, loc Locator, timeout time.Duration) error
	// Type focuses loc and enters text one character at a time.
	Type(ctx context.Context, loc Locator, text string, perKey time.Duration) error
	PressEnter(ctx context.Context) error
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
	Close() error
}

// Options are the launch settings shared by both drivers.
type Options struct {
	Headless  bool
	Width     int
	Height    int
	UserAgent string
}

func OptionsFrom(cfg config.ScorecardConfig) Options {
	return Options{
		Headless:  cfg.Headless,
		Width:     cfg.Width,
		Height:    cfg.Height,
		UserAgent: cfg.UserAgent,
	}
}

// Open launches the driver named by cfg.Driver.
func Open(ctx context.Context, cfg config.ScorecardConfig) (Browser, error) {
	switch cfg.Driver {
	case "rod":
		return NewRod(ctx, OptionsFrom(cfg))
	case "chromedp", "":
		return NewChromedp(ctx, OptionsFrom(cfg))
	default:
		return nil, fmt.Errorf("unknown browser driver %q", cfg.Driver)
	}
}
