package quiz

import "slices"

// Phase is the position of a State in the progression state machine.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseAnswering
	PhaseExplaining
	PhaseBatchComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseAnswering:
		return "answering"
	case PhaseExplaining:
		return "explaining"
	case PhaseBatchComplete:
		return "batch_complete"
	}
	return "unknown"
}

// Answer is one answered question within the current batch.
type Answer struct {
	QuestionIndex int    `json:"question_index" yaml:"question_index"`
	Choice        string `json:"choice" yaml:"choice"`
	Correct       bool   `json:"correct" yaml:"correct"`
}

// State is the whole quiz session.
// Score counts correct answers over the session and never decreases until a reset
// or a new load. BatchScore counts correct answers in the current batch only.
type State struct {
	Questions            []Question
	BatchSize            int
	CurrentQuestionIndex int
	UserAnswer           string
	Score                int
	BatchScore           int
	BatchAnswers         []Answer
	ShowExplanation      bool
	Explanation          string
	QuizCompleted        bool
}

// NewState returns the empty state for the given batch size.
// A non-positive batch size falls back to DefaultQuestionsPerSet.
func NewState(batchSize int) State {
	if batchSize <= 0 {
		batchSize = DefaultQuestionsPerSet
	}
	return State{BatchSize: batchSize}
}

// Phase derives the state machine position from the flags.
func (s State) Phase() Phase {
	switch {
	case len(s.Questions) == 0:
		return PhaseEmpty
	case s.QuizCompleted:
		return PhaseBatchComplete
	case s.ShowExplanation:
		return PhaseExplaining
	default:
		return PhaseAnswering
	}
}

// CurrentQuestion returns the question at CurrentQuestionIndex.
func (s State) CurrentQuestion() (Question, bool) {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// BatchNumber is the 1-based number of the batch containing the current question.
func (s State) BatchNumber() int {
	return s.CurrentQuestionIndex/s.batchSize() + 1
}

// PositionInBatch is the 1-based position of the current question within its batch.
func (s State) PositionInBatch() int {
	return s.CurrentQuestionIndex%s.batchSize() + 1
}

// BatchTotal is the number of questions in the current batch. It is smaller than
// BatchSize only for the trailing batch of a list whose length is not a multiple of it.
func (s State) BatchTotal() int {
	if len(s.Questions) == 0 {
		return 0
	}
	start := s.CurrentQuestionIndex - s.CurrentQuestionIndex%s.batchSize()
	return min(s.batchSize(), len(s.Questions)-start)
}

// LastAnswerCorrect reports whether the answer being explained was correct.
func (s State) LastAnswerCorrect() bool {
	if !s.ShowExplanation || len(s.BatchAnswers) == 0 {
		return false
	}
	return s.BatchAnswers[len(s.BatchAnswers)-1].Correct
}

// BatchSummary describes the batch containing the current question.
type BatchSummary struct {
	BatchNumber int
	Score       int
	Total       int
	Answers     []Answer
}

// Summary returns the current batch's results. It is meaningful in PhaseBatchComplete.
func (s State) Summary() BatchSummary {
	return BatchSummary{
		BatchNumber: s.BatchNumber(),
		Score:       s.BatchScore,
		Total:       s.BatchTotal(),
		Answers:     slices.Clone(s.BatchAnswers),
	}
}

func (s State) batchSize() int {
	if s.BatchSize <= 0 {
		return DefaultQuestionsPerSet
	}
	return s.BatchSize
}

// closesBatch reports whether the current question is the last of its batch,
// either at a multiple of the batch size or at the end of the list.
func (s State) closesBatch() bool {
	next := s.CurrentQuestionIndex + 1
	return next%s.batchSize() == 0 || next >= len(s.Questions)
}

func (s State) clone() State {
	s.BatchAnswers = slices.Clone(s.BatchAnswers)
	return s
}
