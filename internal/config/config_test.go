package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	//実行環境の値に左右されないよう消しておく
	for _, key := range []string{"PORT", "DB_DRIVER", "POSTGRES_PORT", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_SQLiteDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/test.db", cfg.SQLitePath)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPostgresPort(t *testing.T) {
	t.Setenv("POSTGRES_PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
