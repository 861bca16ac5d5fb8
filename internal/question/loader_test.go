package question

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/eiken/internal/quiz"
)

const yamlQuestions = `- prompt: "I ___ a student."
  choices: ["am", "is", "are", "be"]
  correct: 0
  explanation: "主語が I のときは am を使います。"
- prompt: "My sister ___ tennis every Sunday."
  choices: ["play", "plays", "playing", "played"]
  answer: plays
`

const jsonQuestions = `{"questions": [
  {"prompt": "I ___ a student.", "choices": ["am", "is", "are", "be"], "correct": 0}
]}`

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	loader, err := NewLoader()
	require.NoError(t, err)
	return loader
}

func TestLoader_Parse(t *testing.T) {
	tests := []struct {
		name          string
		contents      string
		format        Format
		want          []quiz.Question
		wantErrIs     error
		wantErrString []string
	}{
		{
			name:     "YAML list",
			contents: yamlQuestions,
			format:   FormatYAML,
			want: []quiz.Question{
				{
					Prompt:      "I ___ a student.",
					Choices:     []string{"am", "is", "are", "be"},
					Correct:     0,
					Explanation: "主語が I のときは am を使います。",
				},
				{
					Prompt:  "My sister ___ tennis every Sunday.",
					Choices: []string{"play", "plays", "playing", "played"},
					Correct: 1,
				},
			},
		},
		{
			name: "YAML document with questions key",
			contents: `questions:
  - prompt: "I ___ a student."
    choices: ["am", "is"]
    correct: 0
`,
			format: FormatYAML,
			want: []quiz.Question{
				{Prompt: "I ___ a student.", Choices: []string{"am", "is"}, Correct: 0},
			},
		},
		{
			name:     "JSON document",
			contents: jsonQuestions,
			format:   FormatJSON,
			want: []quiz.Question{
				{Prompt: "I ___ a student.", Choices: []string{"am", "is", "are", "be"}, Correct: 0},
			},
		},
		{
			name:     "JSON list",
			contents: `[{"prompt": "He ___ from Canada.", "choices": ["is", "are"], "answer": "is"}]`,
			format:   FormatJSON,
			want: []quiz.Question{
				{Prompt: "He ___ from Canada.", Choices: []string{"is", "are"}, Correct: 0},
			},
		},
		{
			name:     "surrounding spaces are trimmed",
			contents: `[{"prompt": " He ___ from Canada. ", "choices": [" is", "are "], "answer": "is "}]`,
			format:   FormatJSON,
			want: []quiz.Question{
				{Prompt: "He ___ from Canada.", Choices: []string{"is", "are"}, Correct: 0},
			},
		},
		{
			name:          "choices duplicated after trimming",
			contents:      `[{"prompt": "I ___ a student.", "choices": ["am", "am "], "correct": 0}]`,
			format:        FormatJSON,
			wantErrIs:     ErrInvalidQuestion,
			wantErrString: []string{"question 1: choices must contain unique values"},
		},
		{
			name:      "empty file",
			contents:  "   \n",
			format:    FormatYAML,
			wantErrIs: quiz.ErrNoQuestions,
		},
		{
			name:      "empty list",
			contents:  "[]",
			format:    FormatJSON,
			wantErrIs: quiz.ErrNoQuestions,
		},
		{
			name:          "malformed JSON",
			contents:      `[{"prompt": `,
			format:        FormatJSON,
			wantErrString: []string{"json.Unmarshal"},
		},
		{
			name: "invalid questions",
			contents: `- prompt: ""
  choices: ["am"]
  correct: 0
- prompt: "I ___ a student."
  choices: ["am", "is"]
  correct: 2
- prompt: "I ___ a student."
  choices: ["am", "is"]
- prompt: "I ___ a student."
  choices: ["am", "is"]
  answer: are
- prompt: "I ___ a student."
  choices: ["am", "am"]
  correct: 0
`,
			format:    FormatYAML,
			wantErrIs: ErrInvalidQuestion,
			wantErrString: []string{
				"question 1: prompt is a required field",
				"question 1: choices must contain at least 2 items",
				"question 2: correct must be between 0 and 1",
				"question 3: either correct or answer is required",
				`question 4: answer "are" is not one of the choices`,
				"question 5: choices must contain unique values",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := newTestLoader(t)
			got, err := loader.Parse([]byte(tt.contents), tt.format)
			if tt.wantErrIs != nil || len(tt.wantErrString) > 0 {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
				for _, want := range tt.wantErrString {
					assert.Contains(t, err.Error(), want)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoader_Validate(t *testing.T) {
	loader := newTestLoader(t)

	assert.Empty(t, loader.Validate([]byte(yamlQuestions), FormatYAML))
	assert.Equal(t, []Problem{{Index: -1, Message: quiz.ErrNoQuestions.Error()}}, loader.Validate([]byte(""), FormatYAML))

	problems := loader.Validate([]byte(`[{"prompt": "x", "choices": ["a", "b"], "correct": 1, "answer": "a"}]`), FormatJSON)
	require.Len(t, problems, 1)
	assert.Equal(t, `question 1: answer "a" does not match correct 1`, problems[0].String())

	problems = loader.Validate([]byte(`[{"prompt": "x", "choices": ["am", " am"], "correct": 0}]`), FormatJSON)
	assert.Equal(t, []Problem{{Index: 0, Message: "choices must contain unique values"}}, problems)
}

func TestLoader_Load(t *testing.T) {
	t.Run("local YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grade4.yml")
		require.NoError(t, os.WriteFile(path, []byte(yamlQuestions), 0644))

		got, err := newTestLoader(t).Load(context.Background(), path)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("local JSON file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "grade4.json")
		require.NoError(t, os.WriteFile(path, []byte(jsonQuestions), 0644))

		got, err := newTestLoader(t).Load(context.Background(), path)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := newTestLoader(t).Load(context.Background(), filepath.Join(t.TempDir(), "missing.yml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "os.ReadFile")
	})

	t.Run("no source", func(t *testing.T) {
		_, err := newTestLoader(t).Load(context.Background(), "")
		assert.ErrorIs(t, err, quiz.ErrNoQuestions)
	})

	t.Run("remote JSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/questions", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(jsonQuestions))
		}))
		defer server.Close()

		got, err := newTestLoader(t).Load(context.Background(), server.URL+"/questions")
		require.NoError(t, err)
		assert.Equal(t, []quiz.Question{
			{Prompt: "I ___ a student.", Choices: []string{"am", "is", "are", "be"}, Correct: 0},
		}, got)
	})

	t.Run("remote YAML", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(yamlQuestions))
		}))
		defer server.Close()

		got, err := newTestLoader(t).Load(context.Background(), server.URL+"/grade4.yml")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("remote error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("not found"))
		}))
		defer server.Close()

		_, err := newTestLoader(t).Load(context.Background(), server.URL+"/missing.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status code: 404")
	})
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("questions.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("questions.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("questions"))
}

func TestShuffle(t *testing.T) {
	questions := []quiz.Question{{Prompt: "a"}, {Prompt: "b"}, {Prompt: "c"}}
	got := Shuffle(questions)
	assert.ElementsMatch(t, questions, got)
	assert.Equal(t, "a", questions[0].Prompt, "input is not modified")
}
