package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"Lee_Forum/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("stdout json", func(t *testing.T) {
		l, err := New(config.LogConfig{Level: "info", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		l.Info("hello")
	})

	t.Run("file output contains trace id", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(config.LogConfig{Level: "debug", Format: "json", Output: "file", FilePath: path})
		require.NoError(t, err)

		ctx := WithTraceID(context.Background(), "trace-123")
		l.With(ctx).Info("banned user")
		require.NoError(t, l.Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "banned user")
		assert.Contains(t, string(content), "trace-123")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestWithTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "")
	assert.NotEmpty(t, TraceID(ctx))
	assert.Empty(t, TraceID(context.Background()))
}
