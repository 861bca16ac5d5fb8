package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/eiken/internal/result"
	"github.com/at-ishikawa/eiken/internal/testutil"
)

func setupResults(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))

	repository := result.NewYAMLRepository(filepath.Join(tmpDir, "results"))
	for _, r := range []result.BatchResult{
		{
			ID:            "batch-1",
			CompletedAt:   time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC),
			QuestionsFile: "questions.yml",
			BatchNumber:   1,
			Score:         7,
			Total:         10,
			Answers: []result.AnswerRecord{
				{Prompt: "I ___ a student.", Choice: "is", CorrectChoice: "am"},
			},
		},
		{
			ID:            "batch-2",
			CompletedAt:   time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC),
			QuestionsFile: "questions.yml",
			BatchNumber:   2,
			Score:         9,
			Total:         10,
		},
	} {
		require.NoError(t, repository.Save(context.Background(), r))
	}
	return tmpDir
}

func TestResultsListCommand(t *testing.T) {
	setupResults(t)

	out, err := executeCommand(t, newResultsCommand(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "7/10")
	assert.Contains(t, out, "9/10")
	assert.Less(t, strings.Index(out, "9/10"), strings.Index(out, "7/10"), "newest first")

	out, err = executeCommand(t, newResultsCommand(), "", "list", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "9/10")
	assert.NotContains(t, out, "7/10")
}

func TestResultsListCommand_Empty(t *testing.T) {
	setConfigFile(t, testutil.SetupTestConfig(t, t.TempDir()))

	out, err := executeCommand(t, newResultsCommand(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestResultsStatsCommand(t *testing.T) {
	setupResults(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		wantErr string
	}{
		{
			name: "all periods",
			args: []string{"stats"},
			want: []string{"2025-03", "2025-04", "Totals:", "80.0%"},
		},
		{
			name:    "one month",
			args:    []string{"stats", "--year", "2025", "--month", "3"},
			want:    []string{"2025-03", "70.0%"},
			notWant: []string{"2025-04"},
		},
		{
			name:    "month without year",
			args:    []string{"stats", "--month", "3"},
			wantErr: "--month requires --year",
		},
		{
			name:    "month out of range",
			args:    []string{"stats", "--year", "2025", "--month", "13"},
			wantErr: "--month must be between 1 and 12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(t, newResultsCommand(), "", tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestResultsReportCommand(t *testing.T) {
	tmpDir := setupResults(t)

	out, err := executeCommand(t, newResultsCommand(), "", "report", "--year", "2025", "--month", "3")
	require.NoError(t, err)

	reportPath := filepath.Join(tmpDir, "reports", "report-2025-03.md")
	assert.Contains(t, out, "Wrote "+reportPath)

	content, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Eiken Grade 4 Quiz Report")
	assert.Contains(t, string(content), "I ___ a student.")
}

func TestResultsCommand_Store(t *testing.T) {
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))

	out, err := executeCommand(t, newResultsCommand(), "", "list", "--store", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
	_, err = os.Stat(filepath.Join(tmpDir, "results", "eiken.db"))
	assert.NoError(t, err)

	_, err = executeCommand(t, newResultsCommand(), "", "list", "--store", "postgres")
	assert.Error(t, err)
}

func TestResultsCommand_InvalidConfig(t *testing.T) {
	setConfigFile(t, setupBrokenConfigFile(t))

	_, err := executeCommand(t, newResultsCommand(), "", "list")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configuration")
}
