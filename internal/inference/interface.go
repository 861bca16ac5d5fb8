package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines the methods for AI inference operations
type Client interface {
	Explain(ctx context.Context, params ExplainRequest) (ExplainResponse, error)
}

// ExplainRequest describes an answered multiple-choice question
type ExplainRequest struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correct_answer"`
	UserAnswer    string   `json:"user_answer"`
	IsCorrect     bool     `json:"is_correct"`
}

// ExplainResponse holds the explanation shown to the learner
type ExplainResponse struct {
	Explanation string `json:"explanation"`
	// Point is a short name of the grammar or vocabulary point, e.g. "be動詞".
	// It is shown in brackets ahead of the explanation.
	Point string `json:"point,omitempty"`
}

const (
	DefaultMaxRetryAttempts = 3
)
