package capture

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/xerrors"
)

type PlaywrightConfig struct {
	ViewportWidth  int
	ViewportHeight int
	FullPage       bool

	Timeout time.Duration
	Delay   time.Duration

	Headless                  bool
	ChromeDevtoolsProtocolURL string
}

func DefaultPlaywrightConfig() PlaywrightConfig {
	return PlaywrightConfig{
		ViewportWidth:  800,
		ViewportHeight: 1000,
		FullPage:       false,
		Timeout:        30 * time.Second,
		Delay:          0,
		Headless:       true,
	}
}

type playwrightCapturer struct {
	config PlaywrightConfig
}

func NewPlaywrightCapturer(ctx context.Context, p PlaywrightConfig) (Capturer, error) {
	return &playwrightCapturer{
		config: p,
	}, nil
}

func (c *playwrightCapturer) Capture(ctx context.Context, url string, options CaptureOptions) ([]byte, error) {
	p, err := playwright.Run()
	if err != nil {
		return nil, xerrors.Errorf("failed to start playwright: %w", err)
	}
	defer p.Stop()

	var browser playwright.Browser
	if c.config.ChromeDevtoolsProtocolURL == "" {
		browser, err = p.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(c.config.Headless),
		})
		if err != nil {
			return nil, xerrors.Errorf("failed to launch browser: %w", err)
		}
		defer browser.Close()
	} else {
		browser, err = p.Chromium.ConnectOverCDP(c.config.ChromeDevtoolsProtocolURL)
		if err != nil {
			return nil, xerrors.Errorf("failed to connect to browser via CDP at %s: %w", c.config.ChromeDevtoolsProtocolURL, err)
		}
	}

	page, err := browser.NewPage()
	if err != nil {
		return nil, xerrors.Errorf("failed to create new page: %w", err)
	}
	defer page.Close()

	if err := page.SetViewportSize(c.config.ViewportWidth, c.config.ViewportHeight); err != nil {
		return nil, xerrors.Errorf("failed to set viewport size: %w", err)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			page.Close()
		case <-done:
		}
	}()
	defer close(done)

	if len(options.Headers) > 0 {
		if err := page.SetExtraHTTPHeaders(options.Headers); err != nil {
			return nil, xerrors.Errorf("failed to set HTTP headers: %w", err)
		}
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(c.config.Timeout.Milliseconds())),
	}); err != nil {
		return nil, xerrors.Errorf("failed to navigate to %s: %w", url, err)
	}

	if c.config.Delay > 0 {
		select {
		case <-time.After(c.config.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(options.MaskSelectors) > 0 {
		if err := mask(page, options.MaskSelectors); err != nil {
			return nil, err
		}
	}

	screenshot, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage:   playwright.Bool(c.config.FullPage),
		Type:       playwright.ScreenshotTypePng,
		Animations: playwright.ScreenshotAnimationsDisabled,
		Caret:      playwright.ScreenshotCaretHide,
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to take screenshot: %w", err)
	}

	return screenshot, nil
}

// mask paints matching elements solid black so volatile content does not
// show up as a pixel difference.
func mask(page playwright.Page, selectors []string) error {
	unique := make([]byte, 8)
	if _, err := rand.Read(unique); err != nil {
		return xerrors.Errorf("failed to generate unique identifier: %w", err)
	}
	className := "reftest-mask-" + hex.EncodeToString(unique)

	script := `([selectors, className]) => {
		const style = document.createElement('style');
		style.textContent = '.' + className + ' { position: relative !important; }' +
			'.' + className + '::after { content: "" !important; position: absolute !important; inset: 0 !important;' +
			' background-color: black !important; z-index: 2147483646 !important; pointer-events: none !important; }';
		document.head.appendChild(style);
		selectors.forEach(selector => {
			document.querySelectorAll(selector).forEach(element => element.classList.add(className));
		});
	}`

	if _, err := page.Evaluate(script, []any{selectors, className}); err != nil {
		return xerrors.Errorf("failed to mask selectors: %w", err)
	}
	return nil
}
