// Package browser wraps a headless Chrome instance behind a small session API.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultNavTimeout bounds every navigation and wait operation so a page that
// never resolves fails the step instead of hanging the run.
const DefaultNavTimeout = 30 * time.Second

// Options configures a browser session.
type Options struct {
	Headless   bool
	ProxyURL   string
	UserAgent  string
	NavTimeout time.Duration
}

// Credentials are the login credentials for a target site.
type Credentials struct {
	Email    string
	Password string
}

// LoginSpec describes how to perform and verify a login on a specific site.
// The adapter for each site supplies its own spec.
type LoginSpec struct {
	LoginURL         string
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string
	// SuccessMarkers are substrings of the post-submit URL that indicate a
	// successful login (e.g. a feed or home view).
	SuccessMarkers []string
}

// Session owns one automated browser instance. Sessions are exclusively owned
// by a single discovery run; every opener must guarantee Close on all exit
// paths to avoid leaking Chrome processes.
type Session struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration
	closed      bool
}

// Open starts a browser instance. The parent context governs the whole
// session: cancelling it tears the browser down.
func Open(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.ProxyURL != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.ProxyURL))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Start the browser process eagerly so Open fails fast when Chrome is
	// missing, instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	navTimeout := opts.NavTimeout
	if navTimeout <= 0 {
		navTimeout = DefaultNavTimeout
	}

	return &Session{
		ctx:         browserCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		navTimeout:  navTimeout,
	}, nil
}

// Close releases the browser process. Idempotent and safe on a nil session.
func (s *Session) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	s.cancelCtx()
	s.cancelAlloc()
}

// run executes actions under the session's navigation timeout.
func (s *Session) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancel()

	if err := chromedp.Run(ctx, actions...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &TimeoutError{Timeout: s.navTimeout, Cause: err}
		}
		return err
	}
	return nil
}

// Navigate loads a URL and waits for the document body to be ready.
func (s *Session) Navigate(url string) error {
	if err := s.run(chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// WaitVisible waits for an element matching the selector to become visible.
func (s *Session) WaitVisible(selector string) error {
	return s.run(chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Exists reports whether an element matching the selector is present on the
// current page.
func (s *Session) Exists(selector string) (bool, error) {
	var found bool
	script := fmt.Sprintf(`document.querySelector(%q) !== null`, selector)
	if err := s.run(chromedp.Evaluate(script, &found)); err != nil {
		return false, err
	}
	return found, nil
}

// Attribute returns the value of an attribute on the first element matching
// the selector. The second return is false when the attribute is absent.
func (s *Session) Attribute(selector, name string) (string, bool, error) {
	var value string
	var ok bool
	if err := s.run(chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery)); err != nil {
		return "", false, err
	}
	return value, ok, nil
}

// Fill sets the value of a form field.
func (s *Session) Fill(selector, value string) error {
	return s.run(chromedp.SendKeys(selector, value, chromedp.ByQuery))
}

// Click clicks the first element matching the selector.
func (s *Session) Click(selector string) error {
	return s.run(chromedp.Click(selector, chromedp.ByQuery))
}

// OuterHTML returns the rendered HTML of the current page.
func (s *Session) OuterHTML() (string, error) {
	var html string
	if err := s.run(chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to capture page HTML: %w", err)
	}
	return html, nil
}

// BodyText returns the visible text of the current page body.
func (s *Session) BodyText() (string, error) {
	var text string
	if err := s.run(chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return text, nil
}

// CurrentURL returns the URL of the current page.
func (s *Session) CurrentURL() (string, error) {
	var url string
	if err := s.run(chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// IsLoginRequired heuristically detects a login wall: a login link or a login
// form on the current page.
func (s *Session) IsLoginRequired() (bool, error) {
	loginLink, err := s.Exists(`a[href*='/login']`)
	if err != nil {
		return false, err
	}
	if loginLink {
		return true, nil
	}
	return s.Exists(`form#login-form, form.login__form`)
}

// Login performs a form login as described by the LoginSpec and verifies
// success by inspecting the post-submit URL for its markers. Absence of a marker
// after the bounded wait is a LoginError, never a silent continuation.
func (s *Session) Login(spec LoginSpec, creds Credentials) error {
	log.Printf("[browser] login required, attempting login at %s", spec.LoginURL)

	if err := s.Navigate(spec.LoginURL); err != nil {
		return &LoginError{Message: "login page did not load", Cause: err}
	}
	if err := s.Fill(spec.UsernameSelector, creds.Email); err != nil {
		return &LoginError{Message: "failed to fill username", Cause: err}
	}
	if err := s.Fill(spec.PasswordSelector, creds.Password); err != nil {
		return &LoginError{Message: "failed to fill password", Cause: err}
	}
	if err := s.Click(spec.SubmitSelector); err != nil {
		return &LoginError{Message: "failed to submit login form", Cause: err}
	}

	// Poll the post-submit URL for a success marker within the nav timeout.
	deadline := time.Now().Add(s.navTimeout)
	for time.Now().Before(deadline) {
		url, err := s.CurrentURL()
		if err != nil {
			return &LoginError{Message: "failed to read post-login URL", Cause: err}
		}
		for _, marker := range spec.SuccessMarkers {
			if strings.Contains(url, marker) {
				log.Printf("[browser] login successful")
				return nil
			}
		}
		select {
		case <-s.ctx.Done():
			return &LoginError{Message: "session cancelled during login", Cause: s.ctx.Err()}
		case <-time.After(500 * time.Millisecond):
		}
	}

	return &LoginError{Message: "no login success marker found after submit, check credentials"}
}
