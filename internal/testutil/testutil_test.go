package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/eiken/internal/config"
	"github.com/at-ishikawa/eiken/internal/question"
)

func TestSetupTestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	got := SetupTestConfig(t, tmpDir)

	want := filepath.Join(tmpDir, "config.yml")
	assert.Equal(t, want, got)

	for _, d := range []string{"results", "reports", "keys"} {
		info, err := os.Stat(filepath.Join(tmpDir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	loader, err := config.NewConfigLoader(got)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "keys", "credentials.yml"), cfg.KeyStore.Path)
	assert.Equal(t, config.ResultStoreYAML, cfg.Results.Store)
	assert.Equal(t, filepath.Join(tmpDir, "results"), cfg.Results.Directory)
	assert.Equal(t, filepath.Join(tmpDir, "reports"), cfg.Outputs.ReportDirectory)
	assert.Empty(t, cfg.Quiz.QuestionsFile)
}

func TestSetupTestConfigWithQuestions(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := SetupTestConfigWithQuestions(t, tmpDir, 3)

	loader, err := config.NewConfigLoader(cfgPath)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "questions.yml"), cfg.Quiz.QuestionsFile)
	assert.Equal(t, 10, cfg.Quiz.QuestionsPerSet)
}

func TestWriteQuestionsFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := WriteQuestionsFile(t, tmpDir, 12)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	loader, err := question.NewLoader()
	require.NoError(t, err)
	questions, err := loader.Parse(contents, question.FormatYAML)
	require.NoError(t, err)
	require.Len(t, questions, 12)
	assert.Equal(t, "Question 1", questions[0].Prompt)
	assert.Equal(t, "Question 12", questions[11].Prompt)
	assert.Equal(t, 0, questions[0].Correct)
}
