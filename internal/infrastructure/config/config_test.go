package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"BUILDFLOW_APP_NAME":           os.Getenv("BUILDFLOW_APP_NAME"),
		"BUILDFLOW_APP_ENV":            os.Getenv("BUILDFLOW_APP_ENV"),
		"BUILDFLOW_APP_PORT":           os.Getenv("BUILDFLOW_APP_PORT"),
		"BUILDFLOW_DATABASE_HOST":      os.Getenv("BUILDFLOW_DATABASE_HOST"),
		"BUILDFLOW_DATABASE_PORT":      os.Getenv("BUILDFLOW_DATABASE_PORT"),
		"BUILDFLOW_DATABASE_PASSWORD":  os.Getenv("BUILDFLOW_DATABASE_PASSWORD"),
		"BUILDFLOW_DATABASE_SSLMODE":   os.Getenv("BUILDFLOW_DATABASE_SSLMODE"),
		"BUILDFLOW_REDIS_HOST":         os.Getenv("BUILDFLOW_REDIS_HOST"),
		"BUILDFLOW_STORAGE_BUCKET":     os.Getenv("BUILDFLOW_STORAGE_BUCKET"),
		"BUILDFLOW_JWT_SECRET":         os.Getenv("BUILDFLOW_JWT_SECRET"),
		"BUILDFLOW_LOG_LEVEL":          os.Getenv("BUILDFLOW_LOG_LEVEL"),
		"BUILDFLOW_WORKFLOW_AUTOSAVE_DELAY": os.Getenv("BUILDFLOW_WORKFLOW_AUTOSAVE_DELAY"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "buildflow-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "buildflow", cfg.Database.DBName)
		assert.Equal(t, "buildflow-documents", cfg.Storage.Bucket)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, int64(25<<20), cfg.Workflow.MaxUploadBytes)
	})

	t.Run("loads values from environment variables", func(t *testing.T) {
		clearEnv()
		os.Setenv("BUILDFLOW_APP_NAME", "test-app")
		os.Setenv("BUILDFLOW_DATABASE_HOST", "testdb.local")
		os.Setenv("BUILDFLOW_DATABASE_PORT", "5433")
		os.Setenv("BUILDFLOW_REDIS_HOST", "cache.local")
		os.Setenv("BUILDFLOW_STORAGE_BUCKET", "test-docs")
		os.Setenv("BUILDFLOW_LOG_LEVEL", "debug")
		os.Setenv("BUILDFLOW_WORKFLOW_AUTOSAVE_DELAY", "2s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "cache.local", cfg.Redis.Host)
		assert.Equal(t, "test-docs", cfg.Storage.Bucket)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "2s", cfg.Workflow.AutosaveDelay.String())
	})

	t.Run("production requires jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("BUILDFLOW_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production rejects disabled ssl", func(t *testing.T) {
		clearEnv()
		os.Setenv("BUILDFLOW_APP_ENV", "production")
		os.Setenv("BUILDFLOW_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		os.Setenv("BUILDFLOW_DATABASE_PASSWORD", "secret")
		os.Setenv("BUILDFLOW_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "buildflow",
		Password: "p@ss/word",
		DBName:   "buildflow",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.local:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// special characters in the password are escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
