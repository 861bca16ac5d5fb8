package assets

import (
	_ "embed"
	"fmt"
	"io"
	"time"
)

//go:embed templates/result-report.md.go.tmpl
var fallbackResultReportTemplate string

const resultReportTemplateName = "result-report.md.go.tmpl"

// ResultReportTemplate is the data passed to the result report template.
type ResultReportTemplate struct {
	GeneratedAt time.Time
	Periods     []ReportPeriod
	Total       ReportPeriod
	MostMissed  []ReportMissedQuestion
	Batches     []ReportBatch
}

type ReportPeriod struct {
	Period    string
	Sets      int
	Questions int
	Correct   int
	Accuracy  float64
}

type ReportMissedQuestion struct {
	Prompt        string
	CorrectChoice string
	Misses        int
}

type ReportBatch struct {
	CompletedAt   time.Time
	QuestionsFile string
	BatchNumber   int
	Score         int
	Total         int
	Accuracy      float64
}

func WriteResultReport(output io.Writer, templatePath string, templateData ResultReportTemplate) error {
	tmpl, err := parseTemplateWithFallback(templatePath, resultReportTemplateName, fallbackResultReportTemplate)
	if err != nil {
		return fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, templateData); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
