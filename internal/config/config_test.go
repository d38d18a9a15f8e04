package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults when no file is given", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "mysql", cfg.Database.Driver)
		assert.Equal(t, "moderation.events", cfg.Kafka.Topic)
		// 未配置 broker 时事件只写日志
		assert.Empty(t, cfg.Kafka.Brokers)
		assert.Equal(t, 200, cfg.Outbox.BatchSize)
		assert.Equal(t, time.Second, cfg.Outbox.Interval)
		assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
		assert.Equal(t, 20, cfg.Moderation.DefaultPageSize)
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
server:
  port: 9000
database:
  driver: postgres
  dsn: "host=localhost user=lee dbname=forum"
outbox:
  interval: 5s
moderation:
  max_page_size: 50
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 5*time.Second, cfg.Outbox.Interval)
		assert.Equal(t, 50, cfg.Moderation.MaxPageSize)
		assert.Equal(t, 20, cfg.Moderation.DefaultPageSize)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("LEE_SERVER_PORT", "7070")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [port"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
