package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/logger"
	coreproxy "github.com/Muhammad-ShahzaibIjaz/package-tracker/internal/core/proxy"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// HeaderName is the session-continuation header the backend requires.
// It is never exposed by a public endpoint; the official front-end sends
// it on an internal POST while rendering its tracking page.
const HeaderName = "Last-Event-ID"

// captureUserAgent mirrors a real desktop browser so the page renders the
// same code path a human visitor would trigger.
const captureUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// firstPartyDomains are the only hosts the page is allowed to reach while
// rendering; everything else is aborted to cut load time and side effects.
var firstPartyDomains = []string{
	"m.17track.net",
	"res.17track.net",
	"t.17track.net",
}

// blockedExtensions are static assets skipped even on first-party hosts.
var blockedExtensions = []string{".css", ".json", ".png", ".svg"}

// BrowserCapturer recovers the session token by watching the network
// traffic of a disposable headless browser. Each attempt is single-shot:
// the browser is torn down unconditionally, so no state leaks between
// captures.
type BrowserCapturer struct {
	pageURL     string
	endpointURL string
	proxyURL    string
	timeout     time.Duration
	logger      *zap.Logger
}

// NewBrowserCapturer creates a capturer that navigates to pageURL and
// watches for a POST to endpointURL. proxyURL optionally routes the
// browser through an authenticated upstream proxy.
func NewBrowserCapturer(pageURL, endpointURL, proxyURL string) *BrowserCapturer {
	return &BrowserCapturer{
		pageURL:     pageURL,
		endpointURL: endpointURL,
		proxyURL:    proxyURL,
		timeout:     60 * time.Second,
		logger:      logger.Named("session"),
	}
}

// Capture launches an isolated browser, renders the tracking page and
// returns the captured token, or an empty string if the page finished
// without issuing the intercepted call.
func (c *BrowserCapturer) Capture(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Chromium cannot take proxy credentials on the command line, so an
	// authenticated upstream goes through a local forwarder.
	var localProxyAddr string
	if c.proxyURL != "" {
		forwarder, err := coreproxy.NewForwardingProxy(c.proxyURL, "17track.net")
		if err != nil {
			return "", fmt.Errorf("failed to create proxy forwarder: %w", err)
		}
		localProxyAddr, err = forwarder.Start(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to start proxy forwarder: %w", err)
		}
		defer forwarder.Stop()
	}

	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-web-security").
		Set("disable-features", "IsolateOrigins").
		Set("disable-site-isolation-trials").
		Set("user-agent", captureUserAgent)

	if localProxyAddr != "" {
		l = l.Proxy(localProxyAddr)
	}

	u, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}

	router := page.HijackRequests()
	defer router.MustStop()

	found := make(chan string, 1)

	router.MustAdd("*", func(h *rod.Hijack) {
		reqURL := h.Request.URL().String()

		if !c.allowed(reqURL) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}

		if h.Request.Method() == http.MethodPost && strings.HasPrefix(reqURL, c.endpointURL) {
			if token := h.Request.Header(HeaderName); token != "" {
				select {
				case found <- token:
				default:
				}
			}
		}

		h.ContinueRequest(&proto.FetchContinueRequest{})
	})

	go router.Run()

	c.logger.Debug("Navigating capture page", zap.String("url", c.pageURL))
	if err := page.Navigate(c.pageURL); err != nil {
		return "", fmt.Errorf("failed to navigate: %w", err)
	}

	select {
	case token := <-found:
		c.logger.Debug("Session header captured")
		return token, nil
	case <-ctx.Done():
		// The page never issued the tracked call this attempt.
		return "", nil
	}
}

// allowed applies the first-party allowlist and the static-asset block.
func (c *BrowserCapturer) allowed(reqURL string) bool {
	for _, ext := range blockedExtensions {
		if strings.Contains(reqURL, ext) {
			return false
		}
	}
	for _, domain := range firstPartyDomains {
		if strings.Contains(reqURL, "https://"+domain) {
			return true
		}
	}
	return false
}
