package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResultReport(t *testing.T) {
	generatedAt := time.Date(2026, 4, 30, 21, 0, 0, 0, time.UTC)
	data := ResultReportTemplate{
		GeneratedAt: generatedAt,
		Periods: []ReportPeriod{
			{Period: "2026-04", Sets: 2, Questions: 20, Correct: 17, Accuracy: 0.85},
		},
		Total: ReportPeriod{Period: "total", Sets: 2, Questions: 20, Correct: 17, Accuracy: 0.85},
		MostMissed: []ReportMissedQuestion{
			{Prompt: "They ___ happy.", CorrectChoice: "are", Misses: 2},
		},
		Batches: []ReportBatch{
			{CompletedAt: generatedAt, QuestionsFile: "grade4.yml", BatchNumber: 1, Score: 9, Total: 10, Accuracy: 0.9},
		},
	}

	tests := []struct {
		name         string
		templatePath func(t *testing.T) string
		data         ResultReportTemplate
		wantContains []string
		wantExact    string
	}{
		{
			name: "uses filesystem template when available",
			templatePath: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "custom.md.go.tmpl")
				require.NoError(t, os.WriteFile(path, []byte(`Total: {{ .Total.Correct }}/{{ .Total.Questions }} {{ percent .Total.Accuracy }}`), 0644))
				return path
			},
			data:      data,
			wantExact: "Total: 17/20 85.0%",
		},
		{
			name: "uses embedded template when file doesn't exist",
			templatePath: func(t *testing.T) string {
				return "/non/existent/report.md.go.tmpl"
			},
			data: data,
			wantContains: []string{
				"Generated at 2026-04-30 21:00",
				"| 2026-04 | 2 | 20 | 17 | 85.0% |",
				"| **Total** | 2 | 20 | 17 | 85.0% |",
				"1. They ___ happy. (answer: are, missed 2 times)",
				"- 2026-04-30 21:00 set 1 of grade4.yml: 9/10 (90.0%)",
			},
		},
		{
			name: "falls back when the filesystem template is broken",
			templatePath: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "broken.md.go.tmpl")
				require.NoError(t, os.WriteFile(path, []byte(`{{ .Total `), 0644))
				return path
			},
			data:         ResultReportTemplate{GeneratedAt: generatedAt},
			wantContains: []string{"# Eiken Grade 4 Quiz Report", "No sets completed yet."},
		},
		{
			name: "empty path uses embedded template",
			templatePath: func(t *testing.T) string {
				return ""
			},
			data:         ResultReportTemplate{GeneratedAt: generatedAt},
			wantContains: []string{"| **Total** | 0 | 0 | 0 | 0.0% |"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteResultReport(&buf, tt.templatePath(t), tt.data))
			if tt.wantExact != "" {
				assert.Equal(t, tt.wantExact, buf.String())
			}
			for _, want := range tt.wantContains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestStudyGuide(t *testing.T) {
	guide := StudyGuide()
	for _, want := range []string{
		"前後の文脈をよく読む",
		"時制や単数・複数の一致に注意",
		"品詞を確認",
		"be動詞と一般動詞",
		"現在形と過去形",
		"助動詞 (can, will, must)",
	} {
		assert.Contains(t, guide, want)
	}
}
