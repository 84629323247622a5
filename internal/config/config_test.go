package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.Host)
	assert.Equal(t, "ollama", cfg.Classifier.Provider)
	assert.Equal(t, "llama3.2:3b", cfg.Classifier.Model)
	assert.Equal(t, 5*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, 5, cfg.Worker.Queues["routing"])
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 8080
database:
  driver: sqlite
  sqlite:
    path: /tmp/bot.db
classifier:
  provider: openai
  model: gpt-4o-mini
  timeout: 2s
pricing:
  openai:
    gpt-4o-mini:
      input_per_token: 0.00000015
      output_per_token: 0.0000006
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9090")
	t.Setenv("SERVICEBOT_LOG_LEVEL", "debug")

	cfg, err := load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "PORT overrides the file")
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/bot.db", cfg.Database.SQLite.Path)
	assert.Equal(t, "sk-test", cfg.Classifier.OpenaiApiKey)
	assert.Equal(t, 2*time.Second, cfg.Classifier.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)

	price, ok := cfg.Pricing["openai"]["gpt-4o-mini"]
	require.True(t, ok)
	assert.InDelta(t, 0.0000006, price.OutputPerToken, 1e-12)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/bot")
	cfg, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/bot", cfg.Database.Primary.DSN)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := load(viper.New(), t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"missing dsn", func(c *Config) { c.Database.Primary.DSN = "" }, "database.primary.dsn"},
		{"bad type", func(c *Config) { c.Classifier.Type = "magic" }, "classifier.type"},
		{"bad provider", func(c *Config) { c.Classifier.Provider = "anthropic" }, "classifier.provider"},
		{"openai without key", func(c *Config) { c.Classifier.Provider = "openai" }, "openai_api_key"},
		{"gemini without key", func(c *Config) { c.Classifier.Provider = "gemini" }, "gemini_api_key"},
		{"zero timeout", func(c *Config) { c.Classifier.Timeout = 0 }, "classifier.timeout"},
		{"routing without redis", func(c *Config) { c.Routing.Enabled = true; c.Redis.Address = "" }, "redis.address"},
		{"negative pricing", func(c *Config) {
			c.Pricing = map[string]map[string]PricingInfo{"openai": {"m": {InputPerToken: -1}}}
		}, "negative token cost"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}

	t.Run("keyword needs no provider", func(t *testing.T) {
		cfg := base()
		cfg.Classifier.Type = "keyword"
		cfg.Classifier.Provider = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoadPromptContent(t *testing.T) {
	content, err := LoadPromptContent("")
	require.NoError(t, err)
	assert.Empty(t, content)

	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("Classify {{MESSAGE}}"), 0o600))
	content, err = LoadPromptContent(path)
	require.NoError(t, err)
	assert.Equal(t, "Classify {{MESSAGE}}", content)

	_, err = LoadPromptContent(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
