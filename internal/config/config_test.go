package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"host": "0.0.0.0", "port": 8080},
		"database": {"host": "db", "port": 5432, "user": "app", "password": "secret", "dbname": "seckill", "sslmode": "disable", "migrations_path": "migrations"},
		"redis": {"host": "cache", "port": 6379, "db": 0},
		"queue": {"stream": "stream.orders", "group": "g1", "consumer": "c7", "block_timeout": "5s"},
		"lock": {"key_prefix": "order-lock:", "lease": "30s"},
		"worker": {"count": 4, "recovery_backoff": "50ms"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "cache", cfg.Redis.Host)
	assert.Equal(t, "c7", cfg.Queue.Consumer)
	assert.Equal(t, 5*time.Second, cfg.Queue.BlockTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.Lock.Lease.Std())
	assert.Equal(t, 4, cfg.Worker.Count)
	assert.Equal(t, 50*time.Millisecond, cfg.Worker.RecoveryBackoff.Std())
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"host": "0.0.0.0", "port": 8080},
		"database": {"host": "db", "port": 5432, "user": "app", "dbname": "seckill", "sslmode": "disable"},
		"redis": {"host": "cache", "port": 6379}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "stream.orders", cfg.Queue.Stream)
	assert.Equal(t, "g1", cfg.Queue.Group)
	assert.Equal(t, "c1", cfg.Queue.Consumer)
	assert.Equal(t, 2*time.Second, cfg.Queue.BlockTimeout.Std())
	assert.Equal(t, "order-lock:", cfg.Lock.KeyPrefix)
	assert.Equal(t, 10*time.Second, cfg.Lock.Lease.Std())
	assert.Equal(t, 1, cfg.Worker.Count)
	assert.Equal(t, 20*time.Millisecond, cfg.Worker.RecoveryBackoff.Std())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"host": "0.0.0.0", "port": 8080},
		"database": {"host": "db", "port": 5432, "user": "app", "dbname": "seckill", "sslmode": "disable"},
		"redis": {"host": "cache", "port": 6379}
	}`)

	t.Setenv("DB_HOST", "db-override")
	t.Setenv("DB_PORT", "15432")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("QUEUE_CONSUMER", "c42")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db-override", cfg.Database.Host)
	assert.Equal(t, 15432, cfg.Database.Port)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, "c42", cfg.Queue.Consumer)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDuration_Unmarshal(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Std())

	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`123`), &d))
}

func TestDuration_Marshal(t *testing.T) {
	out, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(out))
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "secret",
		DBName:   "seckill",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=seckill sslmode=disable", cfg.GetDSN())
}
