package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/eiken/internal/bootstrap"
	"github.com/at-ishikawa/eiken/internal/config"
	"github.com/at-ishikawa/eiken/internal/inference"
	"github.com/at-ishikawa/eiken/internal/inference/openai"
	"github.com/at-ishikawa/eiken/internal/keystore"
	"github.com/at-ishikawa/eiken/internal/question"
	"github.com/at-ishikawa/eiken/internal/quiz"
	"github.com/at-ishikawa/eiken/internal/result"
	"github.com/at-ishikawa/eiken/internal/server"
)

var configFile string

func main() {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "eiken-server",
		Short:         "Eiken grade 4 quiz HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	})))
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	srv, err := newServer(ctx, app, cfg)
	if err != nil {
		return err
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// newServer wires the quiz controller, key storage and result store behind the HTTP API.
// Release hooks for the result store are registered on app.
func newServer(ctx context.Context, app *bootstrap.App, cfg *config.Config) (*http.Server, error) {
	keys := keystore.NewFileStore(cfg.KeyStore.Path)
	client := server.NewKeyedClient(keys, func(apiKey string) inference.Client {
		return openai.NewClient(apiKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, cfg.OpenAI.MaxRetryAttempts)
	})
	controller := quiz.NewController(cfg.Quiz.QuestionsPerSet, client, cfg.Quiz.ExplanationTimeout())

	loader, err := question.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("question.NewLoader() > %w", err)
	}

	repository, closeRepository, err := result.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("result.Open() > %w", err)
	}
	app.AddShutdownHook(func(context.Context) error {
		return closeRepository()
	})

	handler := server.NewQuizHandler(controller, loader, keys, repository, cfg.Quiz.Shuffle)
	if cfg.Quiz.QuestionsFile != "" {
		if err := handler.Preload(ctx, cfg.Quiz.QuestionsFile); err != nil {
			slog.Default().Warn("failed to preload questions",
				slog.String("source", cfg.Quiz.QuestionsFile),
				slog.Any("error", err),
			)
		}
	}

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.WithCORS(h2c.NewHandler(handler.Routes(), &http2.Server{}), cfg.Server.CORS.AllowedOrigins),
	}, nil
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
