package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_result "github.com/at-ishikawa/eiken/internal/mocks/result"
	"github.com/at-ishikawa/eiken/internal/result"
)

func newTestGenerator(t *testing.T, repo result.Repository) (*Generator, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "reports")
	g := NewGenerator(repo, "", dir)
	g.location = time.UTC
	g.now = func() time.Time {
		return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	}
	return g, dir
}

func TestGenerator_Generate(t *testing.T) {
	results := []result.BatchResult{
		{ID: "1", CompletedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), QuestionsFile: "grade4.yml", BatchNumber: 1, Score: 6, Total: 10},
		{ID: "2", CompletedAt: time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC), QuestionsFile: "grade4.yml", BatchNumber: 2, Score: 9, Total: 10,
			Answers: []result.AnswerRecord{{Prompt: "They ___ happy.", Choice: "is", CorrectChoice: "are"}}},
		{ID: "3", CompletedAt: time.Date(2026, 4, 11, 9, 0, 0, 0, time.UTC), QuestionsFile: "grade4.yml", BatchNumber: 3, Score: 5, Total: 5},
	}

	tests := []struct {
		name            string
		opts            Options
		wantFile        string
		wantContains    []string
		wantNotContains []string
	}{
		{
			name:     "all results",
			wantFile: "report-20260501.md",
			wantContains: []string{
				"| 2026-04 | 2 | 15 | 14 | 93.3% |",
				"| 2026-03 | 1 | 10 | 6 | 60.0% |",
				"| **Total** | 3 | 25 | 20 | 80.0% |",
				"1. They ___ happy. (answer: are, missed 1 times)",
				"- 2026-04-11 09:00 set 3 of grade4.yml: 5/5 (100.0%)\n- 2026-04-10 09:00 set 2",
			},
		},
		{
			name:            "single month",
			opts:            Options{Year: 2026, Month: 3},
			wantFile:        "report-2026-03.md",
			wantContains:    []string{"| **Total** | 1 | 10 | 6 | 60.0% |", "set 1 of grade4.yml: 6/10"},
			wantNotContains: []string{"2026-04", "Most missed"},
		},
		{
			name:            "recent limit",
			opts:            Options{Year: 2026, RecentBatches: 1},
			wantFile:        "report-2026.md",
			wantContains:    []string{"set 3 of grade4.yml"},
			wantNotContains: []string{"set 2 of grade4.yml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock_result.NewMockRepository(ctrl)
			repo.EXPECT().FindAll(gomock.Any()).Return(results, nil)

			g, dir := newTestGenerator(t, repo)
			got, err := g.Generate(context.Background(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.wantFile), got.MarkdownPath)
			assert.Empty(t, got.PDFPath)

			content, err := os.ReadFile(got.MarkdownPath)
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, string(content), want)
			}
			for _, notWant := range tt.wantNotContains {
				assert.NotContains(t, string(content), notWant)
			}
		})
	}
}

func TestGenerator_Generate_PDF(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_result.NewMockRepository(ctrl)
	repo.EXPECT().FindAll(gomock.Any()).Return([]result.BatchResult{
		{ID: "1", CompletedAt: time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC), BatchNumber: 1, Score: 9, Total: 10},
	}, nil)

	g, _ := newTestGenerator(t, repo)
	got, err := g.Generate(context.Background(), Options{PDF: true})
	require.NoError(t, err)
	assert.FileExists(t, got.MarkdownPath)
	assert.FileExists(t, got.PDFPath)
}

func TestGenerator_Generate_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_result.NewMockRepository(ctrl)
	repo.EXPECT().FindAll(gomock.Any()).Return(nil, fmt.Errorf("connection refused"))

	g, dir := newTestGenerator(t, repo)
	_, err := g.Generate(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoDirExists(t, dir)
}
