package auth

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// Navigator moves the user agent to a URL and reports where it currently is.
// The redirect login navigates to the provider and then watches Location for a code.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
	Location() *url.URL
}

// LocationTracker is a Navigator whose location is reported back by whoever
// receives the provider redirect (the web front's callback route).
type LocationTracker struct {
	mu          sync.Mutex
	location    *url.URL
	navigations chan string
	open        func(string) error
}

var _ Navigator = (*LocationTracker)(nil)

// NewLocationTracker creates a tracker that only records navigations.
func NewLocationTracker() *LocationTracker {
	return &LocationTracker{navigations: make(chan string, 1)}
}

// NewBrowserNavigator creates a tracker that also opens each navigation in the system browser.
func NewBrowserNavigator() *LocationTracker {
	t := NewLocationTracker()
	t.open = OpenBrowser
	return t
}

// Navigate records target as the current location and publishes it on Navigations.
// A navigation whose ctx is already done is dropped.
func (t *LocationTracker) Navigate(ctx context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid navigation target: %w", err)
	}

	t.mu.Lock()
	if err := ctx.Err(); err != nil {
		t.mu.Unlock()
		return err
	}
	t.location = u
	t.drainLocked()
	select {
	case t.navigations <- target:
	case <-ctx.Done():
		t.mu.Unlock()
		return ctx.Err()
	}
	t.mu.Unlock()

	if t.open != nil {
		if err := t.open(target); err != nil {
			log.Warn().Err(err).Msg("could not open browser, open the authorization url manually")
		}
	}
	return nil
}

// DiscardNavigation drops a published navigation nobody read. Call it after
// cancelling the login that navigated, so a later reader never sees its target.
func (t *LocationTracker) DiscardNavigation() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drainLocked()
}

// drainLocked empties the navigation buffer. t.mu must be held.
func (t *LocationTracker) drainLocked() {
	select {
	case <-t.navigations:
	default:
	}
}

// Location returns a copy of the current location, or nil before the first navigation.
func (t *LocationTracker) Location() *url.URL {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.location == nil {
		return nil
	}
	u := *t.location
	return &u
}

// SetLocation reports where the user agent has landed.
func (t *LocationTracker) SetLocation(u *url.URL) {
	if u == nil {
		return
	}
	copied := *u
	t.mu.Lock()
	t.location = &copied
	t.mu.Unlock()
}

// Navigations delivers each navigation target. Only the most recent unread one is kept.
func (t *LocationTracker) Navigations() <-chan string {
	return t.navigations
}

// OpenBrowser opens the specified URL in the default web browser.
// It supports Linux, macOS, and Windows.
func OpenBrowser(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	// The browser keeps running after the command returns.
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
