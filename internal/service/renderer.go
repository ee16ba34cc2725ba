package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/at-my-table/backend/config"
)

// LoadedPage is a snapshot of a fully rendered recipe page
type LoadedPage struct {
	URL  string
	HTML string
}

// RenderError reports a failure to render a page: navigation timeout,
// connection failure to the browser backend, or readiness timeout.
type RenderError struct {
	URL string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.URL, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

const (
	// scroll increments mirror the lazy-load triggers recipe sites bind to
	// scroll position
	scrollStep     = 100
	scrollInterval = 50 * time.Millisecond

	// "mostly idle": at most this many in-flight requests sustained for
	// networkQuietFor. A strict idle never arrives on sites with
	// background polling.
	maxInflightForIdle = 2
	networkQuietFor    = 500 * time.Millisecond
	networkIdleCap     = 30 * time.Second

	imageWaitTimeout = 20 * time.Second
)

// scrollScript scrolls the page in fixed steps to the full scrollable
// height, resolving once the bottom is reached.
const scrollScript = `new Promise((resolve) => {
	let totalHeight = 0;
	const distance = 100;
	const timer = setInterval(() => {
		window.scrollBy(0, distance);
		totalHeight += distance;
		if (totalHeight >= document.body.scrollHeight) {
			clearInterval(timer);
			resolve();
		}
	}, 50);
})`

// ChromeRenderer drives a headless Chrome instance, either a remote pooled
// service (browserless-style websocket) or a locally launched process.
type ChromeRenderer struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
}

// NewChromeRenderer initializes the browser allocator. The allocator is
// shared; each Render call gets its own exclusive tab.
func NewChromeRenderer(cfg *config.Config) *ChromeRenderer {
	var allocCtx context.Context
	var cancel context.CancelFunc

	if cfg.ChromeWSURL != "" {
		wsURL := cfg.ChromeWSURL
		if cfg.ChromeToken != "" {
			wsURL = fmt.Sprintf("%s?token=%s", cfg.ChromeWSURL, cfg.ChromeToken)
		}
		allocCtx, cancel = chromedp.NewRemoteAllocator(context.Background(), wsURL)
	} else {
		// "no-sandbox" and "disable-dev-shm-usage" are important for
		// stability in server/Docker environments.
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		allocCtx, cancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	return &ChromeRenderer{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  cfg.RenderTimeout,
	}
}

// Close shuts down the browser allocator
func (r *ChromeRenderer) Close() {
	r.cancel()
}

// Render loads the URL in a fresh browser tab, defeats lazy-loading and
// returns a DOM snapshot. The tab is released on every exit path.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (*LoadedPage, error) {
	taskCtx, cancelTimeout := context.WithTimeout(r.allocCtx, r.timeout)
	defer cancelTimeout()

	taskCtx, cancelTab := chromedp.NewContext(taskCtx)
	defer cancelTab()

	tracker := newInflightTracker()
	r.installListeners(taskCtx, tracker)

	var html string
	err := chromedp.Run(taskCtx,
		// Abort stylesheet and font fetches before they reach the
		// network; they never affect extractable content.
		fetch.Enable().WithPatterns([]*fetch.RequestPattern{
			{ResourceType: network.ResourceTypeStylesheet, RequestStage: fetch.RequestStageRequest},
			{ResourceType: network.ResourceTypeFont, RequestStage: fetch.RequestStageRequest},
			{URLPattern: "*"},
		}),
		network.Enable(),
		chromedp.Navigate(url),
		waitNetworkMostlyIdle(tracker),
		chromedp.Evaluate(scrollScript, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		waitForImage(),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, &RenderError{URL: url, Err: err}
	}

	return &LoadedPage{URL: url, HTML: html}, nil
}

// installListeners wires request interception and in-flight accounting to
// the tab's event stream.
func (r *ChromeRenderer) installListeners(taskCtx context.Context, tracker *inflightTracker) {
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *fetch.EventRequestPaused:
			go func() {
				// the target executor is only available once the tab
				// is running, so resolve it at event time
				execCtx := cdp.WithExecutor(taskCtx, chromedp.FromContext(taskCtx).Target)
				var err error
				switch e.ResourceType {
				case network.ResourceTypeStylesheet, network.ResourceTypeFont:
					err = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx)
				default:
					err = fetch.ContinueRequest(e.RequestID).Do(execCtx)
				}
				if err != nil && taskCtx.Err() == nil {
					log.Printf("[ChromeRenderer] request interception: %v", err)
				}
			}()
		case *network.EventRequestWillBeSent:
			tracker.add(string(e.RequestID))
		case *network.EventLoadingFinished:
			tracker.remove(string(e.RequestID))
		case *network.EventLoadingFailed:
			tracker.remove(string(e.RequestID))
		}
	})
}

// inflightTracker counts requests that have been sent but not yet finished
// or failed.
type inflightTracker struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newInflightTracker() *inflightTracker {
	return &inflightTracker{inflight: make(map[string]struct{})}
}

func (t *inflightTracker) add(id string) {
	t.mu.Lock()
	t.inflight[id] = struct{}{}
	t.mu.Unlock()
}

func (t *inflightTracker) remove(id string) {
	t.mu.Lock()
	delete(t.inflight, id)
	t.mu.Unlock()
}

func (t *inflightTracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// waitNetworkMostlyIdle blocks until few enough requests remain in flight
// for a sustained interval. Proceeds anyway once the cap elapses: pages
// with persistent background polling never go quiet.
func waitNetworkMostlyIdle(tracker *inflightTracker) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		deadline := time.NewTimer(networkIdleCap)
		defer deadline.Stop()

		var quietSince time.Time
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-deadline.C:
				return nil
			case now := <-ticker.C:
				if tracker.count() > maxInflightForIdle {
					quietSince = time.Time{}
					continue
				}
				if quietSince.IsZero() {
					quietSince = now
					continue
				}
				if now.Sub(quietSince) >= networkQuietFor {
					return nil
				}
			}
		}
	})
}

// waitForImage waits for at least one img element to appear. Some pages
// never expose one before their scripts finish, so a timeout is not fatal.
func waitForImage() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		imgCtx, cancel := context.WithTimeout(ctx, imageWaitTimeout)
		defer cancel()
		if err := chromedp.WaitReady("img", chromedp.ByQuery).Do(imgCtx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[ChromeRenderer] no image appeared before timeout, extracting anyway")
		}
		return nil
	})
}
