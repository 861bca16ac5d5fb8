// Package quiz holds the quiz progression state machine: the state value, the
// events that move it, and the controller that owns it for a session.
package quiz

import (
	"strconv"
	"strings"
)

// DefaultQuestionsPerSet is the batch size used when none is configured.
const DefaultQuestionsPerSet = 10

// Question is a multiple-choice item. It is never modified after loading.
type Question struct {
	Prompt      string   `json:"prompt" yaml:"prompt"`
	Choices     []string `json:"choices" yaml:"choices"`
	Correct     int      `json:"correct" yaml:"correct"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// CorrectChoice returns the text of the correct choice, or "" when the index is out of range.
func (q Question) CorrectChoice() string {
	if q.Correct < 0 || q.Correct >= len(q.Choices) {
		return ""
	}
	return q.Choices[q.Correct]
}

// IsCorrect reports whether choice matches the correct choice, ignoring surrounding spaces.
func (q Question) IsCorrect(choice string) bool {
	correct := q.CorrectChoice()
	if correct == "" {
		return false
	}
	return strings.TrimSpace(choice) == strings.TrimSpace(correct)
}

// ChoiceIndex returns the index of choice in Choices or -1.
func (q Question) ChoiceIndex(choice string) int {
	choice = strings.TrimSpace(choice)
	for i, c := range q.Choices {
		if strings.TrimSpace(c) == choice {
			return i
		}
	}
	return -1
}

// ResolveChoice accepts a 1-based choice number or the text of a choice, ignoring case,
// and returns the matching choice as written in Choices.
func (q Question) ResolveChoice(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(q.Choices) {
			return "", false
		}
		return q.Choices[n-1], true
	}
	if i := q.ChoiceIndex(input); i >= 0 {
		return q.Choices[i], true
	}
	for _, c := range q.Choices {
		if strings.EqualFold(strings.TrimSpace(c), input) {
			return c, true
		}
	}
	return "", false
}
