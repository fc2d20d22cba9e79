// Package browsertest provides a scriptable in-memory browser.Driver.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/srt-reserver/internal/infrastructure/browser"
)

// Fake records every call and answers from its maps. Hooks run before the
// maps are consulted so tests can change page state between calls.
type Fake struct {
	mu    sync.Mutex
	calls []string

	Texts    map[string]string
	TextErr  map[string]error
	Present  map[string]bool
	WaitErr  map[string]error
	ClickErr map[string]error
	EnterErr map[string]error
	Page     string

	// OnText, when set, overrides Texts/TextErr.
	OnText func(sel string) (string, error)
	// OnClick runs after a successful click, enter or script click.
	OnClick func(sel string)
	// OnBack runs after a back navigation.
	OnBack func()

	Closed bool
}

var _ browser.Driver = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Texts:    map[string]string{},
		TextErr:  map[string]error{},
		Present:  map[string]bool{},
		WaitErr:  map[string]error{},
		ClickErr: map[string]error{},
		EnterErr: map[string]error{},
	}
}

func (f *Fake) record(format string, args ...any) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count returns how many recorded calls equal call.
func (f *Fake) Count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// Filter returns the recorded calls starting with prefix.
func (f *Fake) Filter(prefix string) []string {
	var out []string
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	f.record("navigate %s", url)
	return ctx.Err()
}

func (f *Fake) Back(ctx context.Context) error {
	f.record("back")
	if f.OnBack != nil {
		f.OnBack()
	}
	return ctx.Err()
}

func (f *Fake) WaitPresent(ctx context.Context, sel string, timeout time.Duration) error {
	f.record("wait-present %s", sel)
	return f.WaitErr[sel]
}

func (f *Fake) WaitClickable(ctx context.Context, sel string, timeout time.Duration) error {
	f.record("wait-clickable %s", sel)
	return f.WaitErr[sel]
}

func (f *Fake) Fill(ctx context.Context, sel, value string) error {
	f.record("fill %s=%s", sel, value)
	return nil
}

func (f *Fake) Click(ctx context.Context, sel string) error {
	f.record("click %s", sel)
	if err := f.ClickErr[sel]; err != nil {
		return err
	}
	f.clicked(sel)
	return nil
}

func (f *Fake) PressEnter(ctx context.Context, sel string) error {
	f.record("enter %s", sel)
	if err := f.EnterErr[sel]; err != nil {
		return err
	}
	f.clicked(sel)
	return nil
}

func (f *Fake) ScriptClick(ctx context.Context, sel string) error {
	f.record("script-click %s", sel)
	f.clicked(sel)
	return ctx.Err()
}

func (f *Fake) clicked(sel string) {
	if f.OnClick != nil {
		f.OnClick(sel)
	}
}

func (f *Fake) Reveal(ctx context.Context, sel string) error {
	f.record("reveal %s", sel)
	return nil
}

func (f *Fake) SelectByValue(ctx context.Context, sel, value string) error {
	f.record("select-value %s=%s", sel, value)
	return nil
}

func (f *Fake) SelectByText(ctx context.Context, sel, text string) error {
	f.record("select-text %s=%s", sel, text)
	return nil
}

func (f *Fake) Text(ctx context.Context, sel string) (string, error) {
	f.record("text %s", sel)
	if f.OnText != nil {
		return f.OnText(sel)
	}
	if err := f.TextErr[sel]; err != nil {
		return "", err
	}
	return f.Texts[sel], nil
}

func (f *Fake) Exists(ctx context.Context, sel string) (bool, error) {
	f.record("exists %s", sel)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Present[sel], nil
}

// SetPresent toggles whether sel exists, safe to call from hooks.
func (f *Fake) SetPresent(sel string, present bool) {
	f.mu.Lock()
	f.Present[sel] = present
	f.mu.Unlock()
}

func (f *Fake) HTML(ctx context.Context) (string, error) {
	f.record("html")
	return f.Page, nil
}

func (f *Fake) Close() error {
	f.record("close")
	f.Closed = true
	return nil
}
