// internal/medium/browser.go
package medium

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserFetcher loads pages in headless Chrome so script-rendered content is
// present in the returned HTML. Rod downloads Chromium on first use if none
// is installed. Close must be called when done.
type BrowserFetcher struct {
	browser *rod.Browser
	timeout time.Duration
}

func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BrowserFetcher{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (f *BrowserFetcher) ensureBrowser() error {
	if f.browser != nil {
		return nil
	}

	l := launcher.New()
	// Use a pre-installed browser if given (containers, CI).
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin).NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	f.browser = rod.New().ControlURL(u)
	if err := f.browser.Connect(); err != nil {
		f.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := f.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	defer page.Close()

	timeout, err := loadTimeout(ctx, f.timeout)
	if err != nil {
		return nil, err
	}
	timed := page.Context(ctx).Timeout(timeout)
	err = timed.WaitLoad()
	timed.CancelTimeout()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPageLoad, url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	return []byte(html), nil
}

// loadTimeout is the configured timeout, shortened to ctx's deadline when
// that comes first.
func loadTimeout(ctx context.Context, configured time.Duration) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return configured, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return min(left, configured), nil
}

// Close releases browser resources.
func (f *BrowserFetcher) Close() error {
	if f.browser != nil {
		err := f.browser.Close()
		f.browser = nil
		return err
	}
	return nil
}
