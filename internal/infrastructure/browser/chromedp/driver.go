// Package chromedp implements browser.Driver over the Chrome DevTools
// protocol with chromedp. Element reads and script actions go through
// querySelector. Text waits up to the action timeout for a node that is
// being re-rendered and reports one that never comes back as stale.
package chromedp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/example/srt-reserver/internal/infrastructure/browser"
)

const actionTimeout = 5 * time.Second

type Driver struct {
	ctx         context.Context
	cancelAlloc context.CancelFunc
	cancelTab   context.CancelFunc
}

var _ browser.Driver = (*Driver)(nil)

// Launch starts Chrome with the fixed session flags and opens one tab. The
// browser is bound to a background context; Close releases it.
func Launch(ctx context.Context, opts browser.Options) (browser.Driver, error) {
	port := opts.DebugPort
	if port == 0 {
		port = 9222
	}
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("remote-debugging-port", fmt.Sprint(port)),
	)
	if opts.ExecutablePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecutablePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	d := &Driver{ctx: tabCtx, cancelAlloc: cancelAlloc, cancelTab: cancelTab}

	// an empty Run starts the browser so launch failures surface here
	if err := d.run(ctx, 0); err != nil {
		d.Close()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	return d, nil
}

// run executes actions on the tab. Cancelling ctx aborts the actions without
// closing the tab.
func (d *Driver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(d.ctx)
	defer cancel()
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", browser.ErrTimeout, err)
	}
	return err
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, 0, chromedp.Navigate(url))
}

func (d *Driver) Back(ctx context.Context) error {
	return d.run(ctx, 0, chromedp.NavigateBack())
}

func (d *Driver) WaitPresent(ctx context.Context, sel string, timeout time.Duration) error {
	return d.run(ctx, timeout, chromedp.WaitReady(sel, chromedp.ByQuery))
}

func (d *Driver) WaitClickable(ctx context.Context, sel string, timeout time.Duration) error {
	return d.run(ctx, timeout,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.WaitEnabled(sel, chromedp.ByQuery),
	)
}

func (d *Driver) Fill(ctx context.Context, sel, value string) error {
	return d.run(ctx, actionTimeout,
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	)
}

// Click refuses to click when another element sits on top of the target's
// center, mirroring what a real pointer would hit.
func (d *Driver) Click(ctx context.Context, sel string) error {
	var covered bool
	if err := d.eval(ctx, sel, `el => {
		const r = el.getBoundingClientRect();
		const top = document.elementFromPoint(r.left + r.width / 2, r.top + r.height / 2);
		return top !== null && top !== el && !el.contains(top);
	}`, &covered); err != nil {
		return err
	}
	if covered {
		return fmt.Errorf("%w: %s", browser.ErrClickIntercepted, sel)
	}
	return d.run(ctx, actionTimeout, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible))
}

func (d *Driver) PressEnter(ctx context.Context, sel string) error {
	return d.run(ctx, actionTimeout, chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery))
}

func (d *Driver) ScriptClick(ctx context.Context, sel string) error {
	return d.eval(ctx, sel, `el => { el.click(); return true; }`, nil)
}

func (d *Driver) Reveal(ctx context.Context, sel string) error {
	return d.eval(ctx, sel, `el => { el.setAttribute('style', 'display: block;'); return true; }`, nil)
}

func (d *Driver) SelectByValue(ctx context.Context, sel, value string) error {
	return d.selectOption(ctx, sel, "o => o.value === want", value)
}

func (d *Driver) SelectByText(ctx context.Context, sel, text string) error {
	return d.selectOption(ctx, sel, "o => o.text.trim() === want", text)
}

func (d *Driver) selectOption(ctx context.Context, sel, match, want string) error {
	var ok bool
	script := fmt.Sprintf(`el => {
		const want = %s;
		const opt = Array.from(el.options).find(%s);
		if (!opt) return false;
		el.value = opt.value;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	}`, jsString(want), match)
	if err := d.eval(ctx, sel, script, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: option %q in %s", browser.ErrNotFound, want, sel)
	}
	return nil
}

func (d *Driver) Text(ctx context.Context, sel string) (string, error) {
	var s string
	err := retryMissing(ctx, actionTimeout, func() error {
		return d.eval(ctx, sel, `el => el.innerText`, &s)
	})
	if err != nil {
		return "", vanished(sel, err)
	}
	return s, nil
}

// retryMissing repeats op while its element is missing, for at most timeout.
// Any other error ends the wait.
func retryMissing(ctx context.Context, timeout time.Duration, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = timeout
	return backoff.Retry(func() error {
		err := op()
		if err == nil || errors.Is(err, browser.ErrNotFound) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(b, ctx))
}

// vanished reports a node that stayed missing through the wait as stale: it
// was there when the page was read and went away with a re-render.
func vanished(sel string, err error) error {
	if errors.Is(err, browser.ErrNotFound) {
		return fmt.Errorf("%w: %s did not reappear", browser.ErrStaleElement, sel)
	}
	return err
}

func (d *Driver) Exists(ctx context.Context, sel string) (bool, error) {
	var ok bool
	err := d.run(ctx, actionTimeout, chromedp.Evaluate(
		fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(sel)), &ok))
	return ok, err
}

func (d *Driver) HTML(ctx context.Context) (string, error) {
	var s string
	err := d.run(ctx, actionTimeout, chromedp.OuterHTML("html", &s, chromedp.ByQuery))
	return s, err
}

func (d *Driver) Close() error {
	// cancelling the tab context created by NewContext closes the browser
	d.cancelTab()
	d.cancelAlloc()
	return nil
}

// evalResult is what every element script resolves to: found is false when
// the selector matched nothing at call time.
type evalResult struct {
	Found bool            `json:"found"`
	Value json.RawMessage `json:"value"`
}

// eval runs fn(el) against the first element matching sel and decodes its
// result into out (if non-nil).
func (d *Driver) eval(ctx context.Context, sel, fn string, out any) error {
	var res evalResult
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (el === null) return { found: false, value: null };
		return { found: true, value: (%s)(el) };
	})()`, jsString(sel), fn)
	if err := d.run(ctx, actionTimeout, chromedp.Evaluate(expr, &res)); err != nil {
		if isDetached(err) {
			return fmt.Errorf("%w: %s: %w", browser.ErrStaleElement, sel, err)
		}
		return err
	}
	if !res.Found {
		return fmt.Errorf("%w: %s", browser.ErrNotFound, sel)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(res.Value, out)
}

func isDetached(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Cannot find context with specified id") ||
		strings.Contains(msg, "Execution context was destroyed") ||
		strings.Contains(msg, "No node with given id")
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
