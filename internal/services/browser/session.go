package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// Session lifecycle states.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateStarting      State = "starting"
	StateReady         State = "ready"
	StateStale         State = "stale"
	StateClosed        State = "closed"
)

// Options configures one browser session.
type Options struct {
	UserAgent string
	Headless  bool
	// ProfileDir, when set, points the browser at a persistent user data
	// directory so cookies survive across runs. Sources with aggressive bot
	// detection need this to stay past their first verification.
	ProfileDir string
	// StartupTimeout bounds the launch probe. Zero means 30s.
	StartupTimeout time.Duration
}

// Session owns one browser process and hands out tab contexts. A session is
// lazily started, probed for liveness before reuse, and recreated in place
// when the process has died underneath us.
type Session struct {
	opts   Options
	logger arbor.ILogger

	mu            sync.Mutex
	state         State
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closing       bool
}

// NewSession creates an unstarted session. The browser process launches on
// the first NewTab call.
func NewSession(opts Options, logger arbor.ILogger) *Session {
	if opts.StartupTimeout <= 0 {
		opts.StartupTimeout = 30 * time.Second
	}
	return &Session{
		opts:   opts,
		logger: logger,
		state:  StateUninitialized,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// NewTab returns a context for one tab of a live browser, starting or
// recreating the process as needed. The returned cancel closes only the tab.
func (s *Session) NewTab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil, nil, fmt.Errorf("browser session is closed")
	}

	if s.state == StateReady {
		if err := s.probeLocked(); err != nil {
			s.logger.Warn().Err(err).Msg("Browser no longer responding, recreating")
			s.state = StateStale
			s.teardownLocked()
		}
	}

	if s.state != StateReady {
		if err := s.startLocked(ctx); err != nil {
			return nil, nil, err
		}
	}

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	return tabCtx, tabCancel, nil
}

// startLocked launches the browser process and verifies it responds. Must be
// called with the mutex held.
func (s *Session) startLocked(ctx context.Context) error {
	s.state = StateStarting
	s.logger.Info().
		Bool("headless", s.opts.Headless).
		Str("profile_dir", s.opts.ProfileDir).
		Msg("Starting browser")

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(s.opts.UserAgent),
	)
	if s.opts.ProfileDir != "" {
		if err := os.MkdirAll(s.opts.ProfileDir, 0755); err != nil {
			s.state = StateStale
			return fmt.Errorf("failed to create profile directory: %w", err)
		}
		allocatorOpts = append(allocatorOpts, chromedp.UserDataDir(s.opts.ProfileDir))
	}

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	s.browserCtx, s.browserCancel = chromedp.NewContext(s.allocCtx)

	probeCtx, probeCancel := context.WithTimeout(s.browserCtx, s.opts.StartupTimeout)
	defer probeCancel()

	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		s.teardownLocked()
		s.state = StateStale
		return fmt.Errorf("browser failed startup probe: %w", err)
	}

	// Headed browsers need a moment before the window accepts input.
	settle := 500 * time.Millisecond
	if !s.opts.Headless {
		settle = 2 * time.Second
	}
	select {
	case <-time.After(settle):
	case <-ctx.Done():
		s.teardownLocked()
		s.state = StateStale
		return ctx.Err()
	}

	s.state = StateReady
	s.logger.Info().Msg("Browser started")
	return nil
}

// probeLocked runs a trivial action to confirm the process is alive. Must be
// called with the mutex held.
func (s *Session) probeLocked() error {
	probeCtx, cancel := context.WithTimeout(s.browserCtx, 10*time.Second)
	defer cancel()

	var title string
	return chromedp.Run(probeCtx, chromedp.Title(&title))
}

// teardownLocked cancels the browser then the allocator, in that order.
// Must be called with the mutex held.
func (s *Session) teardownLocked() {
	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	s.browserCtx = nil
	s.allocCtx = nil
}

// Close shuts the session down. Safe to call more than once and after
// failures; later NewTab calls return an error.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing || s.state == StateClosed {
		return
	}
	s.closing = true

	s.teardownLocked()
	s.state = StateClosed
	s.closing = false
	s.logger.Debug().Msg("Browser session closed")
}
