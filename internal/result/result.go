// Package result records completed quiz batches.
package result

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/eiken/internal/quiz"
)

// AnswerRecord is one answered question of a completed batch.
type AnswerRecord struct {
	Prompt        string `json:"prompt" yaml:"prompt" db:"prompt"`
	Choice        string `json:"choice" yaml:"choice" db:"choice"`
	CorrectChoice string `json:"correct_choice" yaml:"correct_choice" db:"correct_choice"`
	Correct       bool   `json:"correct" yaml:"correct" db:"is_correct"`
}

// BatchResult is a completed batch.
type BatchResult struct {
	ID            string         `json:"id" yaml:"id" db:"id"`
	CompletedAt   time.Time      `json:"completed_at" yaml:"completed_at" db:"completed_at"`
	QuestionsFile string         `json:"questions_file" yaml:"questions_file" db:"questions_file"`
	BatchNumber   int            `json:"batch_number" yaml:"batch_number" db:"batch_number"`
	Score         int            `json:"score" yaml:"score" db:"score"`
	Total         int            `json:"total" yaml:"total" db:"total"`
	Answers       []AnswerRecord `json:"answers" yaml:"answers" db:"-"`
}

// NewBatchResult builds the result of the batch that state has just completed.
func NewBatchResult(state quiz.State, questionsFile string, completedAt time.Time) BatchResult {
	summary := state.Summary()
	answers := make([]AnswerRecord, 0, len(summary.Answers))
	for _, a := range summary.Answers {
		record := AnswerRecord{
			Choice:  a.Choice,
			Correct: a.Correct,
		}
		if a.QuestionIndex >= 0 && a.QuestionIndex < len(state.Questions) {
			question := state.Questions[a.QuestionIndex]
			record.Prompt = question.Prompt
			record.CorrectChoice = question.CorrectChoice()
		}
		answers = append(answers, record)
	}

	return BatchResult{
		ID:            uuid.NewString(),
		CompletedAt:   completedAt.UTC(),
		QuestionsFile: questionsFile,
		BatchNumber:   summary.BatchNumber,
		Score:         summary.Score,
		Total:         summary.Total,
		Answers:       answers,
	}
}

// Accuracy is the ratio of correct answers, or 0 for an empty batch.
func (r BatchResult) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}

//go:generate mockgen -source=result.go -destination=../mocks/result/mock_repository.go -package=mock_result

// Repository persists completed batches.
type Repository interface {
	Save(ctx context.Context, batch BatchResult) error
	// FindAll returns every result ordered by completion time.
	FindAll(ctx context.Context) ([]BatchResult, error)
}
