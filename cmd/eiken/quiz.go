package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/eiken/internal/cli"
	"github.com/at-ishikawa/eiken/internal/config"
	"github.com/at-ishikawa/eiken/internal/inference"
	"github.com/at-ishikawa/eiken/internal/inference/openai"
	"github.com/at-ishikawa/eiken/internal/keystore"
	"github.com/at-ishikawa/eiken/internal/question"
	"github.com/at-ishikawa/eiken/internal/quiz"
	"github.com/at-ishikawa/eiken/internal/result"
)

func newQuizCommand() *cobra.Command {
	var (
		questionsSource string
		shuffle         bool
		perSet          int
	)
	command := &cobra.Command{
		Use:   "quiz",
		Short: "Answer grade 4 questions in sets, with an explanation after each answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cmd.Flags().Changed("shuffle") {
				cfg.Quiz.Shuffle = shuffle
			}
			if cmd.Flags().Changed("per-set") {
				if perSet < 1 {
					return fmt.Errorf("--per-set must be at least 1")
				}
				cfg.Quiz.QuestionsPerSet = perSet
			}
			if questionsSource == "" {
				questionsSource = cfg.Quiz.QuestionsFile
			}

			keys := keystore.NewFileStore(cfg.KeyStore.Path)
			apiKey, err := keys.GetAPIKey()
			if err != nil {
				if errors.Is(err, keystore.ErrNoAPIKey) {
					return fmt.Errorf("an OpenAI API key is required. Run `eiken key set` or set %s: %w", keystore.EnvAPIKey, err)
				}
				return fmt.Errorf("keys.GetAPIKey() > %w", err)
			}

			openaiClient := openai.NewClient(apiKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, cfg.OpenAI.MaxRetryAttempts)
			defer func() {
				_ = openaiClient.Close()
			}()
			slog.Default().Debug("using OpenAI provider", slog.String("model", openaiClient.GetModel()))

			return runQuiz(cmd, cfg, keys, openaiClient, questionsSource)
		},
	}
	command.Flags().StringVar(&questionsSource, "questions", "", "question file path or URL (default quiz.questions_file)")
	command.Flags().BoolVar(&shuffle, "shuffle", false, "shuffle the questions before starting")
	command.Flags().IntVar(&perSet, "per-set", 0, "number of questions per set (default quiz.questions_per_set)")
	return command
}

func runQuiz(cmd *cobra.Command, cfg *config.Config, keys *keystore.FileStore, client inference.Client, source string) error {
	ctx := cmd.Context()

	loader, err := question.NewLoader()
	if err != nil {
		return fmt.Errorf("question.NewLoader() > %w", err)
	}
	questions, err := loader.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("loader.Load() > %w", err)
	}
	if cfg.Quiz.Shuffle {
		questions = question.Shuffle(questions)
	}

	controller := quiz.NewController(cfg.Quiz.QuestionsPerSet, client, cfg.Quiz.ExplanationTimeout())
	if err := controller.LoadQuestions(questions); err != nil {
		return fmt.Errorf("controller.LoadQuestions() > %w", err)
	}

	repository, closeRepository, err := result.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("result.Open() > %w", err)
	}
	defer func() {
		if err := closeRepository(); err != nil {
			slog.Default().Warn("failed to close the result store", slog.Any("error", err))
		}
	}()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Eiken grade 4 quiz: %d questions, %d per set\n", len(questions), cfg.Quiz.QuestionsPerSet)
	_, _ = fmt.Fprintln(out, "Answer with the choice number or text. Press Ctrl+C to stop.")
	_, _ = fmt.Fprintln(out)

	quizCLI := cli.NewQuizCLI(controller, repository, keys, source, cmd.InOrStdin(), out)
	return quizCLI.Run(ctx, quizCLI)
}
