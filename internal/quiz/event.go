package quiz

import (
	"slices"
	"strings"
)

// Event is a user intent applied to a State by Reduce.
type Event interface {
	isEvent()
}

// LoadEvent replaces the question list and starts over.
type LoadEvent struct {
	Questions []Question
}

// AnswerEvent records a choice for the current question together with the
// explanation to reveal.
type AnswerEvent struct {
	Choice      string
	Explanation string
}

// AdvanceEvent moves past an explained question.
type AdvanceEvent struct{}

// ContinueEvent leaves the results of a completed batch for the next batch.
type ContinueEvent struct{}

// ResetEvent discards everything.
type ResetEvent struct{}

func (LoadEvent) isEvent()     {}
func (AnswerEvent) isEvent()   {}
func (AdvanceEvent) isEvent()  {}
func (ContinueEvent) isEvent() {}
func (ResetEvent) isEvent()    {}

// Reduce applies event to s and returns the next state.
// Transitions that are not valid in the current phase return s unchanged and false.
func Reduce(s State, event Event) (State, bool) {
	switch e := event.(type) {
	case LoadEvent:
		return load(s, e)
	case AnswerEvent:
		return answer(s, e)
	case AdvanceEvent:
		return advance(s)
	case ContinueEvent:
		return continueAfterResults(s)
	case ResetEvent:
		return NewState(s.BatchSize), true
	}
	return s, false
}

func load(s State, e LoadEvent) (State, bool) {
	if len(e.Questions) == 0 {
		return s, false
	}
	next := NewState(s.BatchSize)
	next.Questions = slices.Clone(e.Questions)
	return next, true
}

func answer(s State, e AnswerEvent) (State, bool) {
	if s.Phase() != PhaseAnswering || strings.TrimSpace(e.Choice) == "" {
		return s, false
	}
	question, ok := s.CurrentQuestion()
	if !ok || question.ChoiceIndex(e.Choice) < 0 {
		return s, false
	}

	next := s.clone()
	correct := question.IsCorrect(e.Choice)
	next.UserAnswer = e.Choice
	if correct {
		next.Score++
		next.BatchScore++
	}
	next.BatchAnswers = append(next.BatchAnswers, Answer{
		QuestionIndex: s.CurrentQuestionIndex,
		Choice:        e.Choice,
		Correct:       correct,
	})
	next.ShowExplanation = true
	next.Explanation = e.Explanation
	return next, true
}

func advance(s State) (State, bool) {
	if s.Phase() != PhaseExplaining {
		return s, false
	}
	next := s.clone()
	if s.closesBatch() {
		next.QuizCompleted = true
		return next, true
	}
	next.CurrentQuestionIndex++
	next.clearAnswer()
	return next, true
}

func continueAfterResults(s State) (State, bool) {
	if s.Phase() != PhaseBatchComplete {
		return s, false
	}
	next := s.clone()
	next.QuizCompleted = false
	next.CurrentQuestionIndex++
	if next.CurrentQuestionIndex >= len(next.Questions) {
		next.CurrentQuestionIndex = 0
	}
	next.BatchScore = 0
	next.BatchAnswers = nil
	next.clearAnswer()
	return next, true
}

func (s *State) clearAnswer() {
	s.UserAnswer = ""
	s.ShowExplanation = false
	s.Explanation = ""
}
