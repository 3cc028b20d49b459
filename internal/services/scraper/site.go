package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/common"
	"github.com/rstatelabs/playnews/internal/services/browser"
)

// site bundles what every strategy needs to drive a page.
type site struct {
	session *browser.Session
	cfg     *common.ScraperConfig
	limiter *HostLimiter
	retry   RetryPolicy
	logger  arbor.ILogger
}

// navigate loads a URL in the tab, respecting the per-host rate limit and
// retrying with backoff.
func (s *site) navigate(tabCtx context.Context, pageURL string) error {
	if err := s.limiter.Wait(tabCtx, pageURL); err != nil {
		return err
	}

	return s.retry.Do(tabCtx, "navigate "+pageURL, func(ctx context.Context) error {
		navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		return chromedp.Run(navCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitReady("body"),
		)
	})
}

// renderedDoc snapshots the current DOM into a goquery document.
func (s *site) renderedDoc(tabCtx context.Context) (*goquery.Document, error) {
	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("failed to capture page HTML: %w", err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// dismissOverlays best-effort clicks the first close button so modals do not
// cover the content. Failure is fine; most pages have no overlay.
func (s *site) dismissOverlays(tabCtx context.Context) {
	const js = `(() => {
		const btn = document.querySelector("button[aria-label*='close' i], .close-button, [data-testid='close']");
		if (btn) { btn.click(); return true; }
		return false;
	})()`

	clickCtx, cancel := context.WithTimeout(tabCtx, 3*time.Second)
	defer cancel()

	var clicked bool
	if err := chromedp.Run(clickCtx, chromedp.Evaluate(js, &clicked)); err != nil {
		s.logger.Debug().Err(err).Msg("Overlay dismissal failed")
		return
	}
	if clicked {
		s.logger.Debug().Msg("Dismissed overlay")
	}
}

// firstAttr tries selectors in order inside the live page and returns the
// first non-empty attribute value.
func (s *site) firstAttr(tabCtx context.Context, selectors []string, attr string) string {
	for _, sel := range selectors {
		js := fmt.Sprintf(`(() => {
			const el = document.querySelector(%q);
			return el ? (el.getAttribute(%q) || "") : "";
		})()`, sel, attr)

		evalCtx, cancel := context.WithTimeout(tabCtx, 2*time.Second)
		var val string
		err := chromedp.Run(evalCtx, chromedp.Evaluate(js, &val))
		cancel()
		if err != nil {
			s.logger.Debug().Str("selector", sel).Err(err).Msg("Attribute lookup failed")
			continue
		}
		if strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// typeInto fills the first matching input. Selectors are tried in order with
// a short wait each, since the element may still be rendering.
func (s *site) typeInto(tabCtx context.Context, selectors []string, value string) error {
	var lastErr error
	for _, sel := range selectors {
		fillCtx, cancel := context.WithTimeout(tabCtx, 5*time.Second)
		err := chromedp.Run(fillCtx,
			chromedp.WaitVisible(sel, chromedp.ByQuery),
			chromedp.Clear(sel, chromedp.ByQuery),
			chromedp.SendKeys(sel, value, chromedp.ByQuery),
		)
		cancel()
		if err == nil {
			s.logger.Debug().Str("selector", sel).Msg("Filled input")
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("no input matched %v: %w", selectors, lastErr)
}

// humanDelay pauses between page actions using the configured jitter window.
func (s *site) humanDelay(ctx context.Context) {
	_ = RandomDelay(ctx, s.cfg.DelayMin, s.cfg.DelayMax)
}
