//go:build integration

package openai_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/at-ishikawa/eiken/internal/inference"
	"github.com/at-ishikawa/eiken/internal/inference/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClient_Explain_Integration calls the real API.
// Run with: OPENAI_API_KEY=your-key go test -tags integration -v ./internal/inference/openai
func TestClient_Explain_Integration(t *testing.T) {
	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})),
	)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY environment variable not set, skipping integration test")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	client := openai.NewClient(apiKey, model, "", inference.DefaultMaxRetryAttempts)
	defer func() {
		_ = client.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	got, err := client.Explain(ctx, inference.ExplainRequest{
		Question:      "My brother ___ tennis every Sunday.",
		Choices:       []string{"play", "plays", "playing", "played"},
		CorrectAnswer: "plays",
		UserAnswer:    "play",
		IsCorrect:     false,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.Explanation)
}
