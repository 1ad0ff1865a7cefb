package scorecard

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

type rodBrowser struct {
	launch  *launcher.Launcher
	browser *rod.Browser
	page    *rod.Page
}

// NewRod launches Chrome with rod's launcher and opens a blank page.
func NewRod(ctx context.Context, o Options) (Browser, error) {
	l := launcher.New().
		Headless(o.Headless).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled").
		Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", o.Width, o.Height))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("rod: launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("rod: connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("rod: create page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             o.Width,
		Height:            o.Height,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}); err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("rod: set viewport: %w", err)
	}
	if o.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: o.UserAgent}); err != nil {
			_ = browser.Close()
			l.Kill()
			return nil, fmt.Errorf("rod: set user agent: %w", err)
		}
	}

	return &rodBrowser{launch: l, browser: browser, page: page}, nil
}

func (b *rodBrowser) element(ctx context.Context, loc Locator, timeout time.Duration) (*rod.Element, error) {
	p := b.page.Context(ctx)
	if timeout > 0 {
		p = p.Timeout(timeout)
		defer p.CancelTimeout()
	}
	if loc.CSS != "" {
		return p.Element(loc.CSS)
	}
	return p.ElementX(loc.XPath())
}

func (b *rodBrowser) Navigate(ctx context.Context, url string) error {
	p := b.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return p.WaitLoad()
}

func (b *rodBrowser) Click(ctx context.Context, loc Locator, timeout time.Duration) error {
	el, err := b.element(ctx, loc, timeout)
	if err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	if err := el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

func (b *rodBrowser) Type(ctx context.Context, loc Locator, text string, perKey time.Duration) error {
	if err := b.Click(ctx, loc, 0); err != nil {
		return err
	}
	p := b.page.Context(ctx)
	for _, r := range text {
		if err := p.InsertText(string(r)); err != nil {
			return fmt.Errorf("type into %s: %w", loc, err)
		}
		if perKey > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(perKey):
			}
		}
	}
	return nil
}

func (b *rodBrowser) PressEnter(ctx context.Context) error {
	return b.page.Context(ctx).Keyboard.Press(input.Enter)
}

func (b *rodBrowser) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return b.page.Context(ctx).Screenshot(fullPage, nil)
}

func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launch.Kill()
	return err
}
