// Package browser defines the UI automation capability the reserver drives.
// Implementations live in the playwright and chromedp subpackages.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrTimeout          = errors.New("browser: timed out waiting for element")
	ErrNotFound         = errors.New("browser: element not found")
	ErrStaleElement     = errors.New("browser: element is no longer attached to the page")
	ErrClickIntercepted = errors.New("browser: click intercepted by another element")
)

// Driver is a single browser page. Selectors are CSS selectors.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Back(ctx context.Context) error

	// WaitPresent blocks until sel is attached to the DOM or timeout elapses.
	WaitPresent(ctx context.Context, sel string, timeout time.Duration) error
	// WaitClickable blocks until sel is visible and enabled or timeout elapses.
	WaitClickable(ctx context.Context, sel string, timeout time.Duration) error

	Fill(ctx context.Context, sel, value string) error
	Click(ctx context.Context, sel string) error
	PressEnter(ctx context.Context, sel string) error
	// ScriptClick clicks sel from page script, bypassing hit testing.
	ScriptClick(ctx context.Context, sel string) error
	// Reveal forces a hidden element to display so it can be operated on.
	Reveal(ctx context.Context, sel string) error
	SelectByValue(ctx context.Context, sel, value string) error
	SelectByText(ctx context.Context, sel, text string) error

	Text(ctx context.Context, sel string) (string, error)
	Exists(ctx context.Context, sel string) (bool, error)
	HTML(ctx context.Context) (string, error)

	Close() error
}

// Options configure a browser launch.
type Options struct {
	ExecutablePath string
	Headless       bool
	DebugPort      int
}

// Args are the fixed Chromium flags every session is launched with.
func (o Options) Args() []string {
	port := o.DebugPort
	if port == 0 {
		port = 9222
	}
	return []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
		fmt.Sprintf("--remote-debugging-port=%d", port),
	}
}

// Launcher starts a new browser session.
type Launcher func(ctx context.Context, opts Options) (Driver, error)

// ClickWithFallback clicks sel; if the click is intercepted by an overlapping
// element it sends Enter to the same element once instead.
func ClickWithFallback(ctx context.Context, d Driver, sel string) error {
	err := d.Click(ctx, sel)
	if !errors.Is(err, ErrClickIntercepted) {
		return err
	}
	if err := d.PressEnter(ctx, sel); err != nil {
		return fmt.Errorf("enter after intercepted click: %w", err)
	}
	return nil
}
