package result

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/eiken/internal/quiz"
)

func completedState(t *testing.T) quiz.State {
	t.Helper()
	questions := []quiz.Question{
		{Prompt: "I ___ a student.", Choices: []string{"am", "is", "are"}, Correct: 0},
		{Prompt: "They ___ happy.", Choices: []string{"am", "is", "are"}, Correct: 2},
		{Prompt: "She ___ a cat.", Choices: []string{"have", "has"}, Correct: 1},
	}

	state := quiz.NewState(2)
	steps := []quiz.Event{
		quiz.LoadEvent{Questions: questions},
		quiz.AnswerEvent{Choice: "am", Explanation: "ok"},
		quiz.AdvanceEvent{},
		quiz.AnswerEvent{Choice: "is", Explanation: "ng"},
		quiz.AdvanceEvent{},
	}
	for _, event := range steps {
		var applied bool
		state, applied = quiz.Reduce(state, event)
		require.True(t, applied, "%T", event)
	}
	require.Equal(t, quiz.PhaseBatchComplete, state.Phase())
	return state
}

func TestNewBatchResult(t *testing.T) {
	completedAt := time.Date(2026, 4, 5, 10, 30, 0, 0, time.FixedZone("JST", 9*60*60))

	got := NewBatchResult(completedState(t), "grade4.yml", completedAt)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, time.Date(2026, 4, 5, 1, 30, 0, 0, time.UTC), got.CompletedAt)
	assert.Equal(t, "grade4.yml", got.QuestionsFile)
	assert.Equal(t, 1, got.BatchNumber)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, []AnswerRecord{
		{Prompt: "I ___ a student.", Choice: "am", CorrectChoice: "am", Correct: true},
		{Prompt: "They ___ happy.", Choice: "is", CorrectChoice: "are", Correct: false},
	}, got.Answers)
	assert.InDelta(t, 0.5, got.Accuracy(), 0.0001)
}

func TestBatchResult_Accuracy(t *testing.T) {
	assert.Zero(t, BatchResult{}.Accuracy())
	assert.InDelta(t, 0.7, BatchResult{Score: 7, Total: 10}.Accuracy(), 0.0001)
}
