package cmd

import (
	"context"
	"fmt"
	"os"

	"servicebot/internal/app"
	"servicebot/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// skipAppAnnotation marks commands that only need configuration, not the
// database or classifier.
const skipAppAnnotation = "servicebot/skip-app"

var rootCmd = &cobra.Command{
	Use:   "servicebot",
	Short: "Customer-support intake chatbot",
	Long: `servicebot classifies free-text support requests into a fixed set of
categories and walks the user through the category's intake questions.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := app.ConfigureLogging(cfg); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		if _, skip := cmd.Annotations[skipAppAnnotation]; !skip {
			appInstance, err := app.NewApp(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			ctx = context.WithValue(ctx, appKey, appInstance)
		}
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appInstance, err := GetAppFromContext(cmd.Context()); err == nil {
			appInstance.Close()
		}
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type contextKey string

const (
	appKey    contextKey = "app"
	configKey contextKey = "config"
)

// GetAppFromContext returns the app built in PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	if ctx == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

// GetConfigFromContext returns the configuration loaded in PersistentPreRunE.
func GetConfigFromContext(ctx context.Context) (*config.Config, error) {
	if ctx == nil {
		return nil, fmt.Errorf("configuration not found in context")
	}
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not found in context")
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database and LLM connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}

		fmt.Printf("Checking %s database connectivity...\n", appInstance.Config.Database.Driver)
		if err := appInstance.Store.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		fmt.Println("Database connection successful.")

		fmt.Printf("Checking Ollama at %s...\n", appInstance.Config.Ollama.Host)
		models, err := appInstance.Ollama.ListModels(ctx)
		if err != nil {
			log.Warnf("Ollama is not reachable: %v", err)
			fmt.Println("Ollama unavailable; classification will use keyword fallback.")
			return nil
		}
		fmt.Printf("Ollama reachable, %d model(s) installed.\n", len(models))
		return nil
	},
}
