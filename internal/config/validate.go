package config

import (
	"errors"
	"fmt"
)

// Validate checks required fields, especially for enabled providers/features.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}

	// Database config
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Primary.DSN == "" {
			return errors.New("database.primary.dsn is required for the postgres driver")
		}
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return errors.New("database.sqlite.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("database.driver must be 'postgres' or 'sqlite', got '%s'", c.Database.Driver)
	}

	// Classifier config
	if c.Classifier.Timeout <= 0 {
		return errors.New("classifier.timeout must be positive")
	}
	switch c.Classifier.Type {
	case "keyword":
	case "llm":
		if c.Classifier.Model == "" {
			return errors.New("classifier.model is required when classifier.type is 'llm'")
		}
		switch c.Classifier.Provider {
		case "ollama":
			if c.Ollama.Host == "" {
				return errors.New("ollama.host is required for the ollama provider")
			}
		case "openai":
			// A base_url means an OpenAI-compatible server that may not need a key.
			if c.Classifier.OpenaiApiKey == "" && c.Classifier.BaseURL == "" {
				return errors.New("classifier.openai_api_key is required for the openai provider")
			}
		case "gemini":
			if c.Classifier.GeminiApiKey == "" {
				return errors.New("classifier.gemini_api_key is required for the gemini provider")
			}
		default:
			return fmt.Errorf("unsupported classifier.provider '%s'", c.Classifier.Provider)
		}
	default:
		return fmt.Errorf("classifier.type must be 'llm' or 'keyword', got '%s'", c.Classifier.Type)
	}

	// Redis and worker config only matter once routing jobs are enabled.
	if c.Routing.Enabled {
		if c.Redis.Address == "" {
			return errors.New("redis.address is required when routing is enabled")
		}
		if c.Worker.Concurrency <= 0 {
			return errors.New("worker.concurrency must be a positive integer")
		}
		if len(c.Worker.Queues) == 0 {
			return errors.New("worker.queues must define at least one queue")
		}
		for name, priority := range c.Worker.Queues {
			if name == "" {
				return errors.New("worker.queues contains an empty queue name")
			}
			if priority <= 0 {
				return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
			}
		}
	}

	for provider, models := range c.Pricing {
		for model, price := range models {
			if price.InputPerToken < 0 || price.OutputPerToken < 0 {
				return fmt.Errorf("pricing for provider '%s', model '%s' has negative token cost", provider, model)
			}
		}
	}

	return nil
}
