package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// DefaultUserAgent is a desktop Chrome user agent. News sites routinely
// serve degraded markup (or block outright) headless-looking agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.45 Safari/537.36"

// DefaultNavigationTimeout bounds a single navigation, form fill, or
// markup read. A stalled page must not block the whole crawl.
const DefaultNavigationTimeout = 45 * time.Second

// Chrome is a Session backed by a headless Chrome instance via chromedp.
// One browser context with one page is created at construction and reused
// sequentially until Close.
type Chrome struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc

	timeout time.Duration
}

// Option configures a Chrome session.
type Option func(*options)

type options struct {
	headless  bool
	userAgent string
	timeout   time.Duration
}

// WithHeadless controls headless mode. Default is true; disable to watch
// the browser while debugging login flows.
func WithHeadless(headless bool) Option {
	return func(o *options) {
		o.headless = headless
	}
}

// WithUserAgent sets a custom User-Agent string.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithTimeout sets the per-operation deadline applied to each navigation,
// fill, click, and markup read.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewChrome launches a headless Chrome and opens the single page the
// session will reuse. The flags mirror common anti-automation-detection
// setups: sites that gate content on login tend to also fingerprint
// automation.
func NewChrome(ctx context.Context, opts ...Option) (*Chrome, error) {
	o := &options{
		headless:  true,
		userAgent: DefaultUserAgent,
		timeout:   DefaultNavigationTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.UserAgent(o.userAgent),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if !o.headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	c := &Chrome{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		timeout:       o.timeout,
	}

	// Start the browser process eagerly so construction fails fast when
	// Chrome is missing rather than on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// Navigate loads the URL and waits for the body to be ready.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	return chromedp.Run(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// HTML returns the rendered markup of the current page.
func (c *Chrome) HTML(ctx context.Context) (string, error) {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	var content string
	if err := chromedp.Run(opCtx, chromedp.OuterHTML("html", &content, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return content, nil
}

// Fill types a value into the matched element.
func (c *Chrome) Fill(ctx context.Context, selector, value string) error {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	return chromedp.Run(opCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

// Click clicks the matched element and waits for the page to settle.
func (c *Chrome) Click(ctx context.Context, selector string) error {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	return chromedp.Run(opCtx,
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Cookies returns the cookies currently held by the browser.
func (c *Chrome) Cookies(ctx context.Context) ([]Cookie, error) {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	var cookies []Cookie
	err := chromedp.Run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		raw, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, ck := range raw {
			cookies = append(cookies, Cookie{
				Name:   ck.Name,
				Value:  ck.Value,
				Domain: ck.Domain,
				Path:   ck.Path,
			})
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return cookies, nil
}

// SetCookies installs cookies into the browser.
func (c *Chrome) SetCookies(ctx context.Context, cookies []Cookie) error {
	opCtx, cancel := c.opContext(ctx)
	defer cancel()

	return chromedp.Run(opCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, ck := range cookies {
			err := network.SetCookie(ck.Name, ck.Value).
				WithDomain(ck.Domain).
				WithPath(ck.Path).
				Do(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	}))
}

// Close shuts down the page, browser, and allocator.
func (c *Chrome) Close() error {
	c.browserCancel()
	c.allocCancel()
	return nil
}

// opContext derives the per-operation context: the caller's cancellation
// combined with the browser lifetime and the configured deadline. chromedp
// actions must run on the browser context chain, so the caller's context
// only contributes cancellation.
func (c *Chrome) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, timeoutCancel := context.WithTimeout(c.browserCtx, c.timeout)

	stop := context.AfterFunc(ctx, timeoutCancel)
	return opCtx, func() {
		stop()
		timeoutCancel()
	}
}
