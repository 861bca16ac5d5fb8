// Package server exposes the quiz controller as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/at-ishikawa/eiken/internal/keystore"
	"github.com/at-ishikawa/eiken/internal/question"
	"github.com/at-ishikawa/eiken/internal/quiz"
	"github.com/at-ishikawa/eiken/internal/result"
)

const maxRequestBodyBytes = 1 << 20

type KeyStore interface {
	GetAPIKey() (string, error)
	HasAPIKey() bool
	SetAPIKey(key string) error
	Clear() error
}

type QuestionLoader interface {
	Load(ctx context.Context, source string) ([]quiz.Question, error)
	Parse(contents []byte, format question.Format) ([]quiz.Question, error)
}

// QuizHandler serves one quiz session shared by every client of the process.
type QuizHandler struct {
	controller *quiz.Controller
	loader     QuestionLoader
	keys       KeyStore
	repository result.Repository
	shuffle    bool
	now        func() time.Time

	mu            sync.Mutex
	questionsFile string
}

func NewQuizHandler(
	controller *quiz.Controller,
	loader QuestionLoader,
	keys KeyStore,
	repository result.Repository,
	shuffle bool,
) *QuizHandler {
	return &QuizHandler{
		controller: controller,
		loader:     loader,
		keys:       keys,
		repository: repository,
		shuffle:    shuffle,
		now:        time.Now,
	}
}

// Routes returns a mux with every API route registered.
func (h *QuizHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", h.getState)
	mux.HandleFunc("POST /api/questions", h.requireAPIKey(h.loadQuestions))
	mux.HandleFunc("POST /api/answer", h.requireAPIKey(h.submitAnswer))
	mux.HandleFunc("POST /api/next", rejectNonJSON(h.requireAPIKey(h.advance)))
	mux.HandleFunc("POST /api/continue", rejectNonJSON(h.requireAPIKey(h.continueAfterResults)))
	mux.HandleFunc("POST /api/reset", rejectNonJSON(h.reset))
	mux.HandleFunc("GET /api/key", h.getKey)
	mux.HandleFunc("PUT /api/key", h.putKey)
	mux.HandleFunc("DELETE /api/key", rejectNonJSON(h.deleteKey))
	return mux
}

type questionView struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
}

// StateView is the JSON form of the quiz state. Indices and scores are those of
// the current batch except TotalQuestions, QuestionIndex and TotalScore.
type StateView struct {
	Phase             string        `json:"phase"`
	TotalQuestions    int           `json:"total_questions"`
	QuestionIndex     int           `json:"question_index"`
	BatchNumber       int           `json:"batch_number"`
	QuestionNumber    int           `json:"question_number"`
	BatchTotal        int           `json:"batch_total"`
	BatchScore        int           `json:"batch_score"`
	TotalScore        int           `json:"total_score"`
	Question          *questionView `json:"question,omitempty"`
	UserAnswer        string        `json:"user_answer,omitempty"`
	ShowExplanation   bool          `json:"show_explanation"`
	Explanation       string        `json:"explanation,omitempty"`
	LastAnswerCorrect bool          `json:"last_answer_correct"`
	CorrectChoice     string        `json:"correct_choice,omitempty"`
	QuizCompleted     bool          `json:"quiz_completed"`
}

func newStateView(state quiz.State) StateView {
	view := StateView{
		Phase:           state.Phase().String(),
		TotalQuestions:  len(state.Questions),
		TotalScore:      state.Score,
		ShowExplanation: state.ShowExplanation,
		QuizCompleted:   state.QuizCompleted,
	}
	if state.Phase() == quiz.PhaseEmpty {
		return view
	}

	view.QuestionIndex = state.CurrentQuestionIndex
	view.BatchNumber = state.BatchNumber()
	view.QuestionNumber = state.PositionInBatch()
	view.BatchTotal = state.BatchTotal()
	view.BatchScore = state.BatchScore
	if q, ok := state.CurrentQuestion(); ok {
		view.Question = &questionView{Prompt: q.Prompt, Choices: q.Choices}
		if state.ShowExplanation {
			view.UserAnswer = state.UserAnswer
			view.Explanation = state.Explanation
			view.LastAnswerCorrect = state.LastAnswerCorrect()
			view.CorrectChoice = q.CorrectChoice()
		}
	}
	return view
}

type transitionResponse struct {
	Applied bool      `json:"applied"`
	State   StateView `json:"state"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func (h *QuizHandler) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStateView(h.controller.State()))
}

type loadQuestionsRequest struct {
	Questions json.RawMessage `json:"questions"`
	Source    string          `json:"source"`
}

func (h *QuizHandler) loadQuestions(w http.ResponseWriter, r *http.Request) {
	var req loadQuestionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		questions []quiz.Question
		source    string
		err       error
	)
	switch {
	case len(req.Questions) > 0 && string(req.Questions) != "null":
		source = "upload"
		questions, err = h.loader.Parse(req.Questions, question.FormatJSON)
	case strings.TrimSpace(req.Source) != "":
		source = strings.TrimSpace(req.Source)
		questions, err = h.loader.Load(r.Context(), source)
	default:
		writeError(w, http.StatusBadRequest, errors.New("either questions or source is required"))
		return
	}
	if err != nil {
		writeLoadError(w, err)
		return
	}

	if err := h.start(questions, source); err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Applied: true, State: newStateView(h.controller.State())})
}

// Preload starts a quiz from source before any request arrives.
func (h *QuizHandler) Preload(ctx context.Context, source string) error {
	questions, err := h.loader.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("loader.Load() > %w", err)
	}
	return h.start(questions, source)
}

func (h *QuizHandler) start(questions []quiz.Question, source string) error {
	if h.shuffle {
		questions = question.Shuffle(questions)
	}
	if err := h.controller.LoadQuestions(questions); err != nil {
		return err
	}

	h.mu.Lock()
	h.questionsFile = source
	h.mu.Unlock()

	slog.Default().Info("loaded questions", slog.String("source", source), slog.Int("count", len(questions)))
	return nil
}

type answerRequest struct {
	Choice string `json:"choice"`
}

func (h *QuizHandler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	choice := req.Choice
	state := h.controller.State()
	if q, ok := state.CurrentQuestion(); ok && state.Phase() == quiz.PhaseAnswering {
		resolved, ok := q.ResolveChoice(req.Choice)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("choice %q is neither a choice nor its number", req.Choice))
			return
		}
		choice = resolved
	}

	applied := h.controller.SubmitAnswer(r.Context(), choice)
	writeJSON(w, http.StatusOK, transitionResponse{Applied: applied, State: newStateView(h.controller.State())})
}

func (h *QuizHandler) advance(w http.ResponseWriter, r *http.Request) {
	state, applied := h.controller.Advance()
	if applied && state.Phase() == quiz.PhaseBatchComplete {
		h.saveResult(r.Context(), state)
	}
	writeJSON(w, http.StatusOK, transitionResponse{Applied: applied, State: newStateView(state)})
}

func (h *QuizHandler) continueAfterResults(w http.ResponseWriter, r *http.Request) {
	applied := h.controller.ContinueAfterResults()
	writeJSON(w, http.StatusOK, transitionResponse{Applied: applied, State: newStateView(h.controller.State())})
}

// reset also forgets the API key, so the client has to enter it again.
func (h *QuizHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.controller.Reset()
	if err := h.keys.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("keys.Clear() > %w", err))
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{Applied: true, State: newStateView(h.controller.State())})
}

type keyResponse struct {
	Configured bool   `json:"configured"`
	Masked     string `json:"masked,omitempty"`
}

func (h *QuizHandler) getKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keys.GetAPIKey()
	if err != nil {
		if errors.Is(err, keystore.ErrNoAPIKey) {
			writeJSON(w, http.StatusOK, keyResponse{Configured: false})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, keyResponse{Configured: true, Masked: keystore.Mask(key)})
}

type putKeyRequest struct {
	APIKey string `json:"api_key"`
}

func (h *QuizHandler) putKey(w http.ResponseWriter, r *http.Request) {
	var req putKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.keys.SetAPIKey(req.APIKey); err != nil {
		if errors.Is(err, keystore.ErrNoAPIKey) {
			writeError(w, http.StatusBadRequest, errors.New("api_key is required"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, keyResponse{Configured: true, Masked: keystore.Mask(strings.TrimSpace(req.APIKey))})
}

func (h *QuizHandler) deleteKey(w http.ResponseWriter, r *http.Request) {
	if err := h.keys.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, keyResponse{Configured: h.keys.HasAPIKey()})
}

func (h *QuizHandler) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.keys.HasAPIKey() {
			writeError(w, http.StatusPreconditionFailed, keystore.ErrNoAPIKey)
			return
		}
		next(w, r)
	}
}

func (h *QuizHandler) saveResult(ctx context.Context, state quiz.State) {
	if h.repository == nil {
		return
	}
	h.mu.Lock()
	questionsFile := h.questionsFile
	h.mu.Unlock()

	batch := result.NewBatchResult(state, questionsFile, h.now())
	if err := h.repository.Save(ctx, batch); err != nil {
		slog.Default().Warn("failed to save a batch result",
			slog.Int("batchNumber", batch.BatchNumber),
			slog.Any("error", err),
		)
	}
}

// rejectNonJSON guards bodyless routes: no Content-Type or JSON only.
func rejectNonJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "" && !hasJSONContentType(r) {
			writeError(w, http.StatusUnsupportedMediaType, errNotJSON)
			return
		}
		next(w, r)
	}
}

var errNotJSON = errors.New("the request content type must be application/json")

func hasJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if !hasJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, errNotJSON)
		return false
	}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeLoadError(w http.ResponseWriter, err error) {
	var validationErr *question.ValidationError
	if errors.As(err, &validationErr) {
		problems := make([]string, 0, len(validationErr.Problems))
		for _, p := range validationErr.Problems {
			problems = append(problems, p.String())
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: question.ErrInvalidQuestion.Error(), Problems: problems})
		return
	}
	writeError(w, http.StatusBadRequest, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed", slog.Int("status", status), slog.Any("error", err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("failed to write a response", slog.Any("error", err))
	}
}
