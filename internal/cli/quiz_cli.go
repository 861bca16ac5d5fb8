package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/at-ishikawa/eiken/internal/quiz"
	"github.com/at-ishikawa/eiken/internal/result"
)

// KeyStore is the part of the key storage the quiz needs on reset.
type KeyStore interface {
	Clear() error
}

// QuizCLI runs the grade-4 quiz in a terminal, one screen per Session call.
type QuizCLI struct {
	*InteractiveQuizCLI
	controller    *quiz.Controller
	repository    result.Repository
	keyStore      KeyStore
	questionsFile string
	now           func() time.Time
}

func NewQuizCLI(
	controller *quiz.Controller,
	repository result.Repository,
	keyStore KeyStore,
	questionsFile string,
	stdin io.Reader,
	stdout io.Writer,
) *QuizCLI {
	return &QuizCLI{
		InteractiveQuizCLI: newInteractiveQuizCLI(stdin, stdout),
		controller:         controller,
		repository:         repository,
		keyStore:           keyStore,
		questionsFile:      questionsFile,
		now:                time.Now,
	}
}

func (r *QuizCLI) Session(ctx context.Context) error {
	state := r.controller.State()
	switch state.Phase() {
	case quiz.PhaseAnswering:
		return r.answerSession(ctx, state)
	case quiz.PhaseExplaining:
		return r.explanationSession(ctx, state)
	case quiz.PhaseBatchComplete:
		return r.resultSession(state)
	default:
		r.println("No questions are loaded.")
		return errEnd
	}
}

func (r *QuizCLI) answerSession(ctx context.Context, state quiz.State) error {
	question, _ := state.CurrentQuestion()

	r.println()
	_, _ = r.bold.Fprintf(r.stdoutWriter, "Question %d/%d", state.PositionInBatch(), state.BatchTotal())
	r.printf("  Score %d/%d  (set %d, %d/%d overall)\n",
		state.BatchScore, state.BatchTotal(), state.BatchNumber(), state.CurrentQuestionIndex+1, len(state.Questions))
	r.println(question.Prompt)
	for i, choice := range question.Choices {
		r.printf("  %d. %s\n", i+1, choice)
	}
	_, _ = r.bold.Fprint(r.stdoutWriter, "Your answer: ")

	input, err := r.readLine()
	if err != nil {
		return err
	}
	choice, ok := question.ResolveChoice(input)
	if !ok {
		r.printf("Enter a number between 1 and %d or one of the choices.\n", len(question.Choices))
		return nil
	}

	if !r.controller.SubmitAnswer(ctx, choice) {
		slog.Default().Debug("answer was not applied", slog.String("choice", choice))
	}
	return nil
}

func (r *QuizCLI) explanationSession(ctx context.Context, state quiz.State) error {
	question, _ := state.CurrentQuestion()

	r.println()
	if state.LastAnswerCorrect() {
		r.printf("✅ ")
		_, _ = r.green.Fprintf(r.stdoutWriter, "Correct! ")
	} else {
		r.printf("❌ ")
		_, _ = r.red.Fprintf(r.stdoutWriter, "Wrong. ")
	}
	r.printf("The answer is %s.\n", r.bold.Sprint(question.CorrectChoice()))
	_, _ = r.italic.Fprintln(r.stdoutWriter, state.Explanation)
	r.printf("Press Enter to continue...")

	if _, err := r.readLine(); err != nil {
		return err
	}
	next, applied := r.controller.Advance()
	if !applied {
		return nil
	}
	if next.Phase() == quiz.PhaseBatchComplete {
		r.saveResult(ctx, next)
	}
	return nil
}

func (r *QuizCLI) saveResult(ctx context.Context, state quiz.State) {
	if r.repository == nil {
		return
	}
	batch := result.NewBatchResult(state, r.questionsFile, r.now())
	if err := r.repository.Save(ctx, batch); err != nil {
		slog.Default().Warn("failed to save a batch result",
			slog.Int("batchNumber", batch.BatchNumber),
			slog.Any("error", err),
		)
	}
}

func (r *QuizCLI) resultSession(state quiz.State) error {
	summary := state.Summary()

	r.println()
	_, _ = r.bold.Fprintf(r.stdoutWriter, "Set %d finished: %d/%d\n", summary.BatchNumber, summary.Score, summary.Total)
	r.printf("Total correct answers: %d\n", state.Score)
	r.printf("[c] continue  [r] reset  [q] quit: ")

	input, err := r.readLine()
	if err != nil {
		return err
	}

	switch strings.ToLower(input) {
	case "c", "continue":
		r.controller.ContinueAfterResults()
		return nil
	case "r", "reset":
		r.controller.Reset()
		if r.keyStore != nil {
			if err := r.keyStore.Clear(); err != nil {
				return fmt.Errorf("keyStore.Clear() > %w", err)
			}
		}
		r.println("The quiz was reset and the API key was removed. Run `eiken key set` to start again.")
		return errEnd
	case "q", "quit":
		return errEnd
	default:
		r.println("Enter c, r or q.")
		return nil
	}
}
