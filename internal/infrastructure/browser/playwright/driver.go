// Package playwright implements browser.Driver on playwright-go's Chromium.
package playwright

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/srt-reserver/internal/infrastructure/browser"
	pw "github.com/playwright-community/playwright-go"
)

// actionTimeout bounds single interactions (click, fill, read) so a missing
// element surfaces as an error instead of playwright's 30s default.
const actionTimeout = 5 * time.Second

type Driver struct {
	pw      *pw.Playwright
	browser pw.Browser
	page    pw.Page
}

var _ browser.Driver = (*Driver)(nil)

// Launch starts playwright and a Chromium instance with the fixed session flags.
func Launch(ctx context.Context, opts browser.Options) (browser.Driver, error) {
	run, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	launch := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
		Args:     opts.Args(),
	}
	if opts.ExecutablePath != "" {
		launch.ExecutablePath = pw.String(opts.ExecutablePath)
	}
	b, err := run.Chromium.Launch(launch)
	if err != nil {
		_ = run.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	page, err := b.NewPage()
	if err != nil {
		_ = b.Close()
		_ = run.Stop()
		return nil, fmt.Errorf("open page: %w", err)
	}
	return &Driver{pw: run, browser: b, page: page}, nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.Goto(url)
	return mapErr(err)
}

func (d *Driver) Back(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.GoBack()
	return mapErr(err)
}

func (d *Driver) WaitPresent(ctx context.Context, sel string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapErr(d.page.Locator(sel).First().WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateAttached,
		Timeout: millis(timeout),
	}))
}

func (d *Driver) WaitClickable(ctx context.Context, sel string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := d.page.Locator(sel).First()
	if err := loc.WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	}); err != nil {
		return mapErr(err)
	}
	enabled, err := loc.IsEnabled()
	if err != nil {
		return mapErr(err)
	}
	if !enabled {
		return fmt.Errorf("%w: %s is disabled", browser.ErrTimeout, sel)
	}
	return nil
}

func (d *Driver) Fill(ctx context.Context, sel, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapErr(d.page.Locator(sel).First().Fill(value, pw.LocatorFillOptions{Timeout: millis(actionTimeout)}))
}

func (d *Driver) Click(ctx context.Context, sel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapErr(d.page.Locator(sel).First().Click(pw.LocatorClickOptions{Timeout: millis(actionTimeout)}))
}

func (d *Driver) PressEnter(ctx context.Context, sel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapErr(d.page.Locator(sel).First().Press("Enter", pw.LocatorPressOptions{Timeout: millis(actionTimeout)}))
}

func (d *Driver) ScriptClick(ctx context.Context, sel string) error {
	return d.eval(ctx, sel, "el => el.click()")
}

func (d *Driver) Reveal(ctx context.Context, sel string) error {
	return d.eval(ctx, sel, "el => el.setAttribute('style', 'display: block;')")
}

func (d *Driver) eval(ctx context.Context, sel, script string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.Locator(sel).First().Evaluate(script, nil, pw.LocatorEvaluateOptions{Timeout: millis(actionTimeout)})
	return mapErr(err)
}

func (d *Driver) SelectByValue(ctx context.Context, sel, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	values := []string{value}
	_, err := d.page.Locator(sel).First().SelectOption(pw.SelectOptionValues{Values: &values}, pw.LocatorSelectOptionOptions{Timeout: millis(actionTimeout)})
	return mapErr(err)
}

func (d *Driver) SelectByText(ctx context.Context, sel, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	labels := []string{text}
	_, err := d.page.Locator(sel).First().SelectOption(pw.SelectOptionValues{Labels: &labels}, pw.LocatorSelectOptionOptions{Timeout: millis(actionTimeout)})
	return mapErr(err)
}

func (d *Driver) Text(ctx context.Context, sel string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s, err := d.page.Locator(sel).First().InnerText(pw.LocatorInnerTextOptions{Timeout: millis(actionTimeout)})
	if err != nil {
		return "", mapErr(err)
	}
	return s, nil
}

func (d *Driver) Exists(ctx context.Context, sel string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n, err := d.page.Locator(sel).Count()
	if err != nil {
		return false, mapErr(err)
	}
	return n > 0, nil
}

func (d *Driver) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s, err := d.page.Content()
	return s, mapErr(err)
}

func (d *Driver) Close() error {
	return errors.Join(d.browser.Close(), d.pw.Stop())
}

func millis(d time.Duration) *float64 {
	return pw.Float(float64(d.Milliseconds()))
}

// mapErr translates playwright's error messages into browser sentinels. The
// original error stays in the chain for logging.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "intercepts pointer events"):
		return fmt.Errorf("%w: %w", browser.ErrClickIntercepted, err)
	case strings.Contains(msg, "not attached to the DOM"), strings.Contains(msg, "Element is detached"):
		return fmt.Errorf("%w: %w", browser.ErrStaleElement, err)
	case errors.Is(err, pw.ErrTimeout):
		return fmt.Errorf("%w: %w", browser.ErrTimeout, err)
	}
	return err
}
