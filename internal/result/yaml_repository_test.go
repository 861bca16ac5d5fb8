package result

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	repo := NewYAMLRepository(dir)
	ctx := context.Background()

	got, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "missing directory has no results")

	april := BatchResult{
		ID:            "b",
		CompletedAt:   time.Date(2026, 4, 30, 23, 0, 0, 0, time.UTC),
		QuestionsFile: "grade4.yml",
		BatchNumber:   2,
		Score:         8,
		Total:         10,
		Answers: []AnswerRecord{
			{Prompt: "I ___ a student.", Choice: "am", CorrectChoice: "am", Correct: true},
		},
	}
	march := BatchResult{
		ID:          "a",
		CompletedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		BatchNumber: 1,
		Score:       3,
		Total:       5,
	}
	require.NoError(t, repo.Save(ctx, april))
	require.NoError(t, repo.Save(ctx, march))
	assert.FileExists(t, filepath.Join(dir, "2026-04", "20260430T230000-b.yml"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a result"), 0644))

	got, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, april, got[1])
}

func TestYAMLRepository_SaveWithoutID(t *testing.T) {
	repo := NewYAMLRepository(t.TempDir())
	err := repo.Save(context.Background(), BatchResult{CompletedAt: time.Now()})
	assert.Error(t, err)
}

func TestYAMLRepository_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("score: [1"), 0644))

	_, err := NewYAMLRepository(dir).FindAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yml")
}
