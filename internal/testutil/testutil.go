// Package testutil provides shared test helpers for creating config files and question fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig creates a minimal config file whose key store, results and
// reports all live under tmpDir. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dirs := []string{"results", "reports", "keys"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`quiz:
  questions_per_set: 10
  explanation_timeout_seconds: 5
keystore:
  path: %s
results:
  store: yaml
  directory: %s
  sqlite_path: %s
outputs:
  report_directory: %s
`,
		filepath.Join(tmpDir, "keys", "credentials.yml"),
		filepath.Join(tmpDir, "results"),
		filepath.Join(tmpDir, "results", "eiken.db"),
		filepath.Join(tmpDir, "reports"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithQuestions creates a config file like SetupTestConfig and
// points quiz.questions_file at a generated file of count questions.
func SetupTestConfigWithQuestions(t *testing.T, tmpDir string, count int) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)
	questionsPath := WriteQuestionsFile(t, tmpDir, count)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = []byte(strings.Replace(string(content), "quiz:\n", fmt.Sprintf("quiz:\n  questions_file: %s\n", questionsPath), 1))
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	return cfgPath
}

// WriteQuestionsFile writes count valid questions to tmpDir/questions.yml.
// Question i has prompt "Question i", choices "A".."D" and "A" as the answer.
func WriteQuestionsFile(t *testing.T, tmpDir string, count int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("questions:\n")
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&b, "  - prompt: \"Question %d\"\n", i)
		b.WriteString("    choices: [A, B, C, D]\n")
		b.WriteString("    answer: A\n")
	}

	path := filepath.Join(tmpDir, "questions.yml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}
