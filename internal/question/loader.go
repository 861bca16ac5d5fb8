// Package question loads quiz questions from YAML or JSON files and URLs.
package question

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/eiken/internal/config"
	"github.com/at-ishikawa/eiken/internal/quiz"
)

// ErrInvalidQuestion is wrapped by every ValidationError.
var ErrInvalidQuestion = errors.New("invalid question")

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// record is the on-disk shape of a question. The correct choice is given either by
// index (correct) or by text (answer). Text fields are trimmed before validation.
type record struct {
	Prompt      string   `json:"prompt" yaml:"prompt" validate:"required"`
	Choices     []string `json:"choices" yaml:"choices" validate:"min=2,unique,dive,required"`
	Correct     *int     `json:"correct,omitempty" yaml:"correct,omitempty"`
	Answer      string   `json:"answer,omitempty" yaml:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

type document struct {
	Questions []record `json:"questions" yaml:"questions"`
}

// Problem is a single validation failure. Index is 0-based; -1 means the whole file.
type Problem struct {
	Index   int
	Message string
}

func (p Problem) String() string {
	if p.Index < 0 {
		return p.Message
	}
	return fmt.Sprintf("question %d: %s", p.Index+1, p.Message)
}

// ValidationError lists every problem found in a question file.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		messages = append(messages, p.String())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidQuestion, strings.Join(messages, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidQuestion
}

type Loader struct {
	httpClient *resty.Client
	validate   *validator.Validate
	translator ut.Translator
}

func NewLoader() (*Loader, error) {
	validate, trans, err := config.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("config.NewValidator() > %w", err)
	}
	return &Loader{
		httpClient: resty.New(),
		validate:   validate,
		translator: trans,
	}, nil
}

// Load reads questions from a local path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, source string) ([]quiz.Question, error) {
	if source == "" {
		return nil, fmt.Errorf("no question source given: %w", quiz.ErrNoQuestions)
	}

	var (
		contents []byte
		format   Format
		err      error
	)
	if isURL(source) {
		contents, format, err = l.fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch(%s) > %w", source, err)
		}
	} else {
		contents, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("os.ReadFile(%s) > %w", source, err)
		}
		format = FormatFromPath(source)
	}

	questions, err := l.Parse(contents, format)
	if err != nil {
		return nil, fmt.Errorf("Parse(%s) > %w", source, err)
	}
	return questions, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, Format, error) {
	res, err := l.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json, application/yaml, text/yaml, */*").
		Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("client.R.Get > %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, "", fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body()))
	}

	format := FormatYAML
	if strings.Contains(res.Header().Get("Content-Type"), "json") {
		format = FormatJSON
	} else if urlPath := strings.SplitN(url, "?", 2)[0]; strings.EqualFold(path.Ext(urlPath), ".json") {
		format = FormatJSON
	}
	return res.Body(), format, nil
}

// Parse decodes and validates a question file. The top level is either a list of
// questions or an object with a "questions" list.
func (l *Loader) Parse(contents []byte, format Format) ([]quiz.Question, error) {
	records, err := decode(contents, format)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, quiz.ErrNoQuestions
	}

	problems := l.check(records)
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	questions := make([]quiz.Question, 0, len(records))
	for _, r := range records {
		questions = append(questions, quiz.Question{
			Prompt:      r.Prompt,
			Choices:     r.Choices,
			Correct:     correctIndex(r),
			Explanation: r.Explanation,
		})
	}
	return questions, nil
}

// Validate returns every problem in a question file without building questions.
func (l *Loader) Validate(contents []byte, format Format) []Problem {
	records, err := decode(contents, format)
	if err != nil {
		return []Problem{{Index: -1, Message: err.Error()}}
	}
	return l.check(records)
}

func (l *Loader) check(records []record) []Problem {
	if len(records) == 0 {
		return []Problem{{Index: -1, Message: quiz.ErrNoQuestions.Error()}}
	}

	var problems []Problem
	for i, r := range records {
		if err := l.validate.Struct(r); err != nil {
			var validationErrors validator.ValidationErrors
			if !errors.As(err, &validationErrors) {
				problems = append(problems, Problem{Index: i, Message: err.Error()})
				continue
			}
			for _, e := range validationErrors {
				problems = append(problems, Problem{Index: i, Message: e.Translate(l.translator)})
			}
			continue
		}

		switch {
		case r.Correct == nil && r.Answer == "":
			problems = append(problems, Problem{Index: i, Message: "either correct or answer is required"})
		case r.Correct != nil && (*r.Correct < 0 || *r.Correct >= len(r.Choices)):
			problems = append(problems, Problem{Index: i, Message: fmt.Sprintf("correct must be between 0 and %d", len(r.Choices)-1)})
		case r.Correct == nil && indexOf(r.Choices, r.Answer) < 0:
			problems = append(problems, Problem{Index: i, Message: fmt.Sprintf("answer %q is not one of the choices", r.Answer)})
		case r.Correct != nil && r.Answer != "" && indexOf(r.Choices, r.Answer) != *r.Correct:
			problems = append(problems, Problem{Index: i, Message: fmt.Sprintf("answer %q does not match correct %d", r.Answer, *r.Correct)})
		}
	}
	return problems
}

func decode(contents []byte, format Format) ([]record, error) {
	records, err := decodeRecords(contents, format)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].trim()
	}
	return records, nil
}

func (r *record) trim() {
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.Answer = strings.TrimSpace(r.Answer)
	r.Explanation = strings.TrimSpace(r.Explanation)
	for i, c := range r.Choices {
		r.Choices[i] = strings.TrimSpace(c)
	}
}

func decodeRecords(contents []byte, format Format) ([]record, error) {
	contents = bytes.TrimSpace(contents)
	if len(contents) == 0 {
		return nil, nil
	}

	var records []record
	var doc document
	switch format {
	case FormatJSON:
		if contents[0] == '[' {
			if err := json.Unmarshal(contents, &records); err != nil {
				return nil, fmt.Errorf("json.Unmarshal > %w", err)
			}
			return records, nil
		}
		if err := json.Unmarshal(contents, &doc); err != nil {
			return nil, fmt.Errorf("json.Unmarshal > %w", err)
		}
		return doc.Questions, nil
	default:
		var node yaml.Node
		if err := yaml.Unmarshal(contents, &node); err != nil {
			return nil, fmt.Errorf("yaml.Unmarshal > %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			if err := node.Decode(&records); err != nil {
				return nil, fmt.Errorf("yaml.Node.Decode > %w", err)
			}
			return records, nil
		}
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("yaml.Node.Decode > %w", err)
		}
		return doc.Questions, nil
	}
}

func correctIndex(r record) int {
	if r.Correct != nil {
		return *r.Correct
	}
	return indexOf(r.Choices, r.Answer)
}

func indexOf(choices []string, answer string) int {
	answer = strings.TrimSpace(answer)
	for i, c := range choices {
		if strings.TrimSpace(c) == answer {
			return i
		}
	}
	return -1
}

// FormatFromPath guesses the format from a file extension, defaulting to YAML.
func FormatFromPath(p string) Format {
	if strings.EqualFold(filepath.Ext(p), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Shuffle returns a shuffled copy of questions.
func Shuffle(questions []quiz.Question) []quiz.Question {
	shuffled := make([]quiz.Question, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
