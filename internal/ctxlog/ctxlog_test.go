package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("returns embedded logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		ctx := WithLogger(context.Background(), logger)

		got := FromContext(ctx)
		require.Same(t, logger, got)

		got.Debug("hello", "k", "v")
		assert.Contains(t, buf.String(), "hello")
	})

	t.Run("missing logger discards", func(t *testing.T) {
		got := FromContext(context.Background())
		require.NotNil(t, got)
		assert.False(t, got.Enabled(context.Background(), slog.LevelError))
	})
}
