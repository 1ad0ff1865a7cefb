package scorecard

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

type chromedpBrowser struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewChromedp starts a Chrome instance through chromedp's exec allocator.
func NewChromedp(ctx context.Context, o Options) (Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(o.Width, o.Height),
	)
	if o.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	if err := chromedp.Run(tabCtx, chromedp.EmulateViewport(int64(o.Width), int64(o.Height))); err != nil {
		cancel()
		return nil, fmt.Errorf("chromedp: start browser: %w", err)
	}
	return &chromedpBrowser{ctx: tabCtx, cancel: cancel}, nil
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx.
func (b *chromedpBrowser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	if timeout > 0 {
		var tcancel context.CancelFunc
		runCtx, tcancel = context.WithTimeout(runCtx, timeout)
		defer tcancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func query(loc Locator) (string, chromedp.QueryOption) {
	if loc.CSS != "" {
		return loc.CSS, chromedp.ByQuery
	}
	return loc.XPath(), chromedp.BySearch
}

func (b *chromedpBrowser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, 0, chromedp.Navigate(url))
}

func (b *chromedpBrowser) Click(ctx context.Context, loc Locator, timeout time.Duration) error {
	sel, by := query(loc)
	if err := b.run(ctx, timeout, chromedp.Click(sel, by, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

func (b *chromedpBrowser) Type(ctx context.Context, loc Locator, text string, perKey time.Duration) error {
	sel, by := query(loc)
	actions := []chromedp.Action{chromedp.Click(sel, by, chromedp.NodeVisible)}
	for _, r := range text {
		actions = append(actions, chromedp.KeyEvent(string(r)))
		if perKey > 0 {
			actions = append(actions, chromedp.Sleep(perKey))
		}
	}
	if err := b.run(ctx, 0, actions...); err != nil {
		return fmt.Errorf("type into %s: %w", loc, err)
	}
	return nil
}

func (b *chromedpBrowser) PressEnter(ctx context.Context) error {
	return b.run(ctx, 0, chromedp.KeyEvent(kb.Enter))
}

func (b *chromedpBrowser) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	var buf []byte
	var action chromedp.Action
	if fullPage {
		action = chromedp.FullScreenshot(&buf, 100)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
	}
	if err := b.run(ctx, 0, action); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

func (b *chromedpBrowser) Close() error {
	b.cancel()
	return nil
}
