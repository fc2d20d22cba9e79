package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Debug("hidden")
	require.Empty(t, buf.String())

	New(&buf, false).Info("shown", "row", 3)
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "row")

	buf.Reset()
	New(&buf, true).Debug("detail")
	require.Contains(t, buf.String(), "detail")
}
