package app

import (
	"context"
	"fmt"
	"time"

	"servicebot/internal/catalog"
	"servicebot/internal/config"
	"servicebot/internal/ollama"
	"servicebot/internal/services"
	"servicebot/internal/store"
	"servicebot/internal/store/primary"
	"servicebot/internal/store/sqlite"
	"servicebot/pkg/classifier"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

type App struct {
	Config  *config.Config
	Catalog *catalog.Catalog

	Store     store.Store
	JobClient store.JobClient
	Ollama    *ollama.Client

	// Classifier is the timeout-bounded primary classifier with keyword fallback.
	Classifier classifier.Classifier
	closers    []func() error

	// --- Initialized Services ---
	ClassificationService *services.ClassificationService
	ConversationService   *services.ConversationService
	UsageService          *services.UsageService
	HealthService         *services.HealthService
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	app := &App{Config: cfg, Catalog: catalog.Default()}

	if err := app.initStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.initClassifier(ctx); err != nil {
		app.Close()
		return nil, err
	}
	app.initServices()

	log.Debug("Application initialization complete.")
	return app, nil
}

// --- Private Helper Methods ---

func (a *App) initStore(ctx context.Context) error {
	switch a.Config.Database.Driver {
	case "sqlite":
		s, err := sqlite.New(ctx, a.Config.Database.SQLite.Path)
		if err != nil {
			return fmt.Errorf("init sqlite store: %w", err)
		}
		a.Store = s
	default:
		ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.Primary.DSN)
		if err != nil {
			return fmt.Errorf("init primary store: %w", err)
		}
		a.Store = ps
	}
	return nil
}

func (a *App) initJobClient() error {
	if !a.Config.Routing.Enabled {
		log.Debug("Routing is disabled, using no-op job client.")
		a.JobClient = store.NoopJobClient{}
		return nil
	}
	jc, err := store.NewAsynqJobClient(a.RedisOpt(), a.Store)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.JobClient = jc
	return nil
}

// RedisOpt is the asynq connection option shared by the job client and the worker.
func (a *App) RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	}
}

func (a *App) initClassifier(ctx context.Context) error {
	cfg := a.Config

	// The Ollama client also backs the /health probe, so it exists whatever the provider.
	a.Ollama = ollama.NewClient(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.Host,
		Timeout:      cfg.Classifier.Timeout,
		DefaultModel: cfg.Classifier.Model,
	})

	if cfg.Classifier.Type == "keyword" {
		log.Info("Classifier type is 'keyword', LLM classification disabled.")
		a.Classifier = classifier.NewFallbackClassifier(nil, cfg.Classifier.Timeout)
		return nil
	}

	promptTemplate, err := config.LoadPromptContent(cfg.Classifier.PromptTemplate)
	if err != nil {
		return fmt.Errorf("failed to load classifier prompt template: %w", err)
	}

	var primaryClassifier classifier.Classifier
	switch cfg.Classifier.Provider {
	case "ollama":
		primaryClassifier = classifier.NewOllamaClassifier(a.Ollama, cfg.Classifier.Model, promptTemplate, a.Catalog)
	case "openai":
		client := classifier.NewOpenAIClient(cfg.Classifier.OpenaiApiKey, cfg.Classifier.BaseURL)
		primaryClassifier = classifier.NewOpenAIClassifier(client, cfg.Classifier.Model, promptTemplate, a.Catalog)
	case "gemini":
		gc, err := classifier.NewGeminiClassifier(ctx, cfg.Classifier.GeminiApiKey, cfg.Classifier.Model, promptTemplate, a.Catalog)
		if err != nil {
			return fmt.Errorf("init gemini classifier: %w", err)
		}
		a.closers = append(a.closers, gc.Close)
		primaryClassifier = gc
	default:
		return fmt.Errorf("unsupported classifier provider: %s", cfg.Classifier.Provider)
	}

	log.Infof("Initialized %s classifier (model %s, timeout %s)", cfg.Classifier.Provider, cfg.Classifier.Model, cfg.Classifier.Timeout)
	a.Classifier = classifier.NewFallbackClassifier(primaryClassifier, cfg.Classifier.Timeout)
	return nil
}

func (a *App) initServices() {
	a.ClassificationService = services.NewClassificationService(a.Classifier, a.Store, a.Config.Pricing)
	a.ConversationService = services.NewConversationService(a.Store, a.ClassificationService, a.Catalog, a.JobClient)
	a.UsageService = services.NewUsageService(a.Store)
	a.HealthService = services.NewHealthService(a.Store, a.Ollama)
}

// Close releases every resource the app opened. Safe on a partially built App.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warnf("Error closing classifier: %v", err)
		}
	}
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			log.Warnf("Error closing job client: %v", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			log.Warnf("Error closing store: %v", err)
		}
	}
}

// ShutdownTimeout bounds graceful HTTP and worker shutdown.
const ShutdownTimeout = 10 * time.Second
