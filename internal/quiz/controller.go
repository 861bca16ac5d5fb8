package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/at-ishikawa/eiken/internal/inference"
)

// ErrNoQuestions is returned when an empty question list is loaded.
var ErrNoQuestions = errors.New("no questions to load")

// DefaultExplanationTimeout bounds a single explanation request.
const DefaultExplanationTimeout = 20 * time.Second

// Controller owns a State and applies transitions to it one at a time.
type Controller struct {
	mu         sync.Mutex
	state      State
	generation uint64

	client             inference.Client
	explanationTimeout time.Duration
}

// NewController creates a controller with an empty state.
// client may be nil, in which case questions without a stored explanation get the fallback one.
func NewController(batchSize int, client inference.Client, explanationTimeout time.Duration) *Controller {
	if explanationTimeout <= 0 {
		explanationTimeout = DefaultExplanationTimeout
	}
	return &Controller{
		state:              NewState(batchSize),
		client:             client,
		explanationTimeout: explanationTimeout,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Dispatch applies a synchronous event and reports whether it changed the state.
// An AnswerEvent without an explanation should go through SubmitAnswer instead.
func (c *Controller) Dispatch(event Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(event)
}

func (c *Controller) apply(event Event) bool {
	next, applied := Reduce(c.state, event)
	if !applied {
		slog.Default().Debug("ignored quiz event",
			"event", fmt.Sprintf("%T", event),
			"phase", c.state.Phase().String(),
		)
		return false
	}
	c.state = next
	c.generation++
	return true
}

// LoadQuestions replaces the question list and resets progress.
func (c *Controller) LoadQuestions(questions []Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	c.Dispatch(LoadEvent{Questions: questions})
	return nil
}

// SubmitAnswer records choice for the current question and reveals its explanation.
// It returns false when no question is waiting for an answer, including a repeated
// submission for an already explained question, and when choice is not one of the choices.
func (c *Controller) SubmitAnswer(ctx context.Context, choice string) bool {
	if strings.TrimSpace(choice) == "" {
		return false
	}

	c.mu.Lock()
	if c.state.Phase() != PhaseAnswering {
		c.mu.Unlock()
		return false
	}
	question, _ := c.state.CurrentQuestion()
	generation := c.generation
	c.mu.Unlock()

	if question.ChoiceIndex(choice) < 0 {
		return false
	}

	explanation := question.Explanation
	if explanation == "" {
		explanation = c.explain(ctx, question, choice)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		// Another transition won while the explanation was being generated.
		return false
	}
	return c.apply(AnswerEvent{Choice: choice, Explanation: explanation})
}

// Advance moves past the explained question, or completes the batch.
// It returns the state the transition produced.
func (c *Controller) Advance() (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	applied := c.apply(AdvanceEvent{})
	return c.state.clone(), applied
}

// ContinueAfterResults starts the next batch after the results were shown.
func (c *Controller) ContinueAfterResults() bool {
	return c.Dispatch(ContinueEvent{})
}

// Reset returns to the empty state.
func (c *Controller) Reset() {
	c.Dispatch(ResetEvent{})
}

func (c *Controller) explain(ctx context.Context, question Question, choice string) string {
	isCorrect := question.IsCorrect(choice)
	if c.client == nil {
		return FallbackExplanation(question, isCorrect)
	}

	ctx, cancel := context.WithTimeout(ctx, c.explanationTimeout)
	defer cancel()

	response, err := c.client.Explain(ctx, inference.ExplainRequest{
		Question:      question.Prompt,
		Choices:       question.Choices,
		CorrectAnswer: question.CorrectChoice(),
		UserAnswer:    choice,
		IsCorrect:     isCorrect,
	})
	if err != nil {
		slog.Default().Warn("failed to generate an explanation, using the fallback",
			"question", question.Prompt,
			"error", err,
		)
		return FallbackExplanation(question, isCorrect)
	}
	if response.Explanation == "" {
		return FallbackExplanation(question, isCorrect)
	}
	if point := strings.TrimSpace(response.Point); point != "" {
		return fmt.Sprintf("【%s】%s", point, response.Explanation)
	}
	return response.Explanation
}

// FallbackExplanation is shown when no explanation is stored and none could be generated.
func FallbackExplanation(question Question, isCorrect bool) string {
	if isCorrect {
		return fmt.Sprintf("正解です。正しい答えは「%s」です。", question.CorrectChoice())
	}
	return fmt.Sprintf("不正解です。正しい答えは「%s」です。", question.CorrectChoice())
}
