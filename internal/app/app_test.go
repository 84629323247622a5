package app

import (
	"context"
	"testing"

	"servicebot/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(classifierType string) *config.Config {
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLite.Path = ":memory:"
	cfg.Classifier.Type = classifierType
	cfg.Classifier.Provider = "ollama"
	cfg.Classifier.Model = "llama3.2:3b"
	cfg.Ollama.Host = "http://127.0.0.1:1"
	cfg.Log.Level = "info"
	return cfg
}

func TestNewApp_KeywordClassifier(t *testing.T) {
	a, err := NewApp(sqliteConfig("keyword"))
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.ConversationService)
	require.NotNil(t, a.UsageService)

	res, err := a.ConversationService.CreateConversation(context.Background(), "my invoice is wrong")
	require.NoError(t, err)
	assert.Equal(t, "billing", res.Categorization.Category)
}

func TestNewApp_OllamaFallsBackWhenUnreachable(t *testing.T) {
	a, err := NewApp(sqliteConfig("llm"))
	require.NoError(t, err)
	defer a.Close()

	res, err := a.ConversationService.CreateConversation(context.Background(), "I can't log into my account")
	require.NoError(t, err)
	assert.Equal(t, "authentication", res.Categorization.Category)
	assert.Equal(t, 0.8, res.Categorization.Confidence)

	status := a.HealthService.Check(context.Background())
	assert.True(t, status.DatabaseConnected)
	assert.False(t, status.OllamaConnected)
}

func TestNewApp_BadPromptTemplate(t *testing.T) {
	cfg := sqliteConfig("llm")
	cfg.Classifier.PromptTemplate = "/definitely/not/here.txt"
	_, err := NewApp(cfg)
	assert.Error(t, err)
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)
	defer log.SetFormatter(&log.TextFormatter{})

	cfg := sqliteConfig("keyword")
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	require.NoError(t, ConfigureLogging(cfg))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	cfg.Log.Level = "loud"
	assert.Error(t, ConfigureLogging(cfg))
}
