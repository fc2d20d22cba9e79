package browser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/srt-reserver/internal/infrastructure/browser"
	"github.com/example/srt-reserver/internal/infrastructure/browser/browsertest"
	"github.com/stretchr/testify/require"
)

func TestClickWithFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("plain click", func(t *testing.T) {
		d := browsertest.New()
		require.NoError(t, browser.ClickWithFallback(ctx, d, "#a"))
		require.Equal(t, []string{"click #a"}, d.Calls())
	})

	t.Run("intercepted", func(t *testing.T) {
		d := browsertest.New()
		d.ClickErr["#a"] = browser.ErrClickIntercepted
		require.NoError(t, browser.ClickWithFallback(ctx, d, "#a"))
		require.Equal(t, []string{"click #a", "enter #a"}, d.Calls())
	})

	t.Run("intercepted and enter fails", func(t *testing.T) {
		d := browsertest.New()
		d.ClickErr["#a"] = browser.ErrClickIntercepted
		d.EnterErr["#a"] = browser.ErrStaleElement
		err := browser.ClickWithFallback(ctx, d, "#a")
		require.ErrorIs(t, err, browser.ErrStaleElement)
		require.Equal(t, []string{"click #a", "enter #a"}, d.Calls())
	})

	t.Run("other errors propagate", func(t *testing.T) {
		d := browsertest.New()
		boom := errors.New("boom")
		d.ClickErr["#a"] = boom
		require.ErrorIs(t, browser.ClickWithFallback(ctx, d, "#a"), boom)
		require.Equal(t, []string{"click #a"}, d.Calls())
	})
}

func TestOptionsArgs(t *testing.T) {
	require.Contains(t, browser.Options{}.Args(), "--remote-debugging-port=9222")
	require.Contains(t, browser.Options{DebugPort: 9333}.Args(), "--remote-debugging-port=9333")
	require.Contains(t, browser.Options{}.Args(), "--no-sandbox")
}
