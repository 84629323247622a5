package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

type Config struct {
	Server struct {
		Host        string   `mapstructure:"host"`
		Port        int      `mapstructure:"port"`
		Mode        string   `mapstructure:"mode"` // gin mode: debug, release, test
		CORSOrigins []string `mapstructure:"cors_origins"`
	} `mapstructure:"server"`

	Database struct {
		Driver  string `mapstructure:"driver"` // "postgres" or "sqlite"
		Primary struct {
			DSN string `mapstructure:"dsn"`
		} `mapstructure:"primary"`
		SQLite struct {
			Path string `mapstructure:"path"`
		} `mapstructure:"sqlite"`
	} `mapstructure:"database"`

	Ollama struct {
		Host string `mapstructure:"host"`
	} `mapstructure:"ollama"`

	Classifier struct {
		Type           string        `mapstructure:"type"`     // "llm" or "keyword"
		Provider       string        `mapstructure:"provider"` // "ollama", "openai", "gemini" (if type is "llm")
		Model          string        `mapstructure:"model"`
		BaseURL        string        `mapstructure:"base_url"` // OpenAI-compatible endpoint override
		OpenaiApiKey   string        `mapstructure:"openai_api_key"`
		GeminiApiKey   string        `mapstructure:"gemini_api_key"`
		Timeout        time.Duration `mapstructure:"timeout"`
		PromptTemplate string        `mapstructure:"prompt_template"` // path to prompt template file
	} `mapstructure:"classifier"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Routing struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"routing"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // "text" or "json"
	} `mapstructure:"log"`

	Chat struct {
		ServerURL string        `mapstructure:"server_url"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"chat"`

	// Pricing: map[provider][model] = struct{input_per_token, output_per_token}
	Pricing map[string]map[string]PricingInfo `mapstructure:"pricing"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.primary.dsn", "postgresql://localhost:5432/service_bot")
	v.SetDefault("database.sqlite.path", "servicebot.db")

	v.SetDefault("ollama.host", "http://localhost:11434")

	v.SetDefault("classifier.type", "llm")
	v.SetDefault("classifier.provider", "ollama")
	v.SetDefault("classifier.model", "llama3.2:3b")
	v.SetDefault("classifier.base_url", "")
	v.SetDefault("classifier.openai_api_key", "")
	v.SetDefault("classifier.gemini_api_key", "")
	v.SetDefault("classifier.timeout", "5s")
	v.SetDefault("classifier.prompt_template", "")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("routing.enabled", false)

	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("worker.queues", map[string]int{"routing": 5, "default": 1})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("chat.server_url", "http://localhost:3001/api")
	v.SetDefault("chat.timeout", "30s")
}

// LoadConfig reads config.yaml from the working directory (if present),
// applies defaults and environment overrides. Every key can be overridden
// with a SERVICEBOT_ variable (classifier.model -> SERVICEBOT_CLASSIFIER_MODEL);
// a few conventional names are bound explicitly.
func LoadConfig() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.SetEnvPrefix("SERVICEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names, checked after the prefixed ones.
	_ = v.BindEnv("database.primary.dsn", "SERVICEBOT_DATABASE_PRIMARY_DSN", "DATABASE_URL")
	_ = v.BindEnv("ollama.host", "SERVICEBOT_OLLAMA_HOST", "OLLAMA_HOST")
	_ = v.BindEnv("classifier.openai_api_key", "SERVICEBOT_CLASSIFIER_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("classifier.gemini_api_key", "SERVICEBOT_CLASSIFIER_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("server.port", "SERVICEBOT_SERVER_PORT", "PORT")

	if err := v.ReadInConfig(); err != nil {
		// It's okay if the config file doesn't exist; defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &config, nil
}
