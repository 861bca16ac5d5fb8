// Package report writes the markdown (and optionally PDF) report of the result log.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/at-ishikawa/eiken/internal/assets"
	"github.com/at-ishikawa/eiken/internal/pdf"
	"github.com/at-ishikawa/eiken/internal/result"
	"github.com/at-ishikawa/eiken/internal/statistics"
)

const defaultRecentBatches = 20

type Options struct {
	Year  int
	Month int
	PDF   bool

	// PaperSize is passed to the PDF renderer; empty means A4.
	PaperSize string

	// RecentBatches limits the "recent sets" list; 0 uses the default.
	RecentBatches int
}

type Generator struct {
	repository   result.Repository
	templatePath string
	outputDir    string
	location     *time.Location
	now          func() time.Time
}

func NewGenerator(repository result.Repository, templatePath, outputDir string) *Generator {
	return &Generator{
		repository:   repository,
		templatePath: templatePath,
		outputDir:    outputDir,
		location:     time.Local,
		now:          time.Now,
	}
}

// Output holds the paths of the generated files. PDFPath is empty unless requested.
type Output struct {
	MarkdownPath string
	PDFPath      string
}

func (g *Generator) Generate(ctx context.Context, opts Options) (Output, error) {
	results, err := g.repository.FindAll(ctx)
	if err != nil {
		return Output{}, fmt.Errorf("repository.FindAll() > %w", err)
	}

	data := g.templateData(results, opts)

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return Output{}, fmt.Errorf("os.MkdirAll(%s) > %w", g.outputDir, err)
	}
	markdownPath := filepath.Join(g.outputDir, fileName(data.GeneratedAt, opts))
	file, err := os.Create(markdownPath)
	if err != nil {
		return Output{}, fmt.Errorf("os.Create(%s) > %w", markdownPath, err)
	}
	defer func() {
		_ = file.Close()
	}()
	if err := assets.WriteResultReport(file, g.templatePath, data); err != nil {
		return Output{}, fmt.Errorf("assets.WriteResultReport() > %w", err)
	}
	if err := file.Close(); err != nil {
		return Output{}, fmt.Errorf("file.Close() > %w", err)
	}

	output := Output{MarkdownPath: markdownPath}
	slog.Default().Info("wrote a result report", slog.String("path", markdownPath), slog.Int("sets", data.Total.Sets))
	if !opts.PDF {
		return output, nil
	}

	output.PDFPath, err = pdf.ConvertMarkdownToPDF(markdownPath, opts.PaperSize)
	if err != nil {
		return output, fmt.Errorf("pdf.ConvertMarkdownToPDF(%s) > %w", markdownPath, err)
	}
	return output, nil
}

func (g *Generator) templateData(results []result.BatchResult, opts Options) assets.ResultReportTemplate {
	stats := statistics.CalculateStatistics(results, opts.Year, opts.Month, g.location)

	data := assets.ResultReportTemplate{
		GeneratedAt: g.now().In(g.location),
		Total:       toReportPeriod(stats.Total),
	}
	for _, p := range stats.Periods {
		data.Periods = append(data.Periods, toReportPeriod(p))
	}
	for _, m := range stats.MostMissed {
		data.MostMissed = append(data.MostMissed, assets.ReportMissedQuestion{
			Prompt:        m.Prompt,
			CorrectChoice: m.CorrectChoice,
			Misses:        m.Misses,
		})
	}

	limit := opts.RecentBatches
	if limit <= 0 {
		limit = defaultRecentBatches
	}
	// results are oldest first; the report lists newest first
	for i := len(results) - 1; i >= 0 && len(data.Batches) < limit; i-- {
		r := results[i]
		completedAt := r.CompletedAt.In(g.location)
		if opts.Year != 0 && completedAt.Year() != opts.Year {
			continue
		}
		if opts.Month != 0 && int(completedAt.Month()) != opts.Month {
			continue
		}
		data.Batches = append(data.Batches, assets.ReportBatch{
			CompletedAt:   completedAt,
			QuestionsFile: r.QuestionsFile,
			BatchNumber:   r.BatchNumber,
			Score:         r.Score,
			Total:         r.Total,
			Accuracy:      r.Accuracy(),
		})
	}
	return data
}

func toReportPeriod(p statistics.PeriodStatistics) assets.ReportPeriod {
	return assets.ReportPeriod{
		Period:    p.Period,
		Sets:      p.Sets,
		Questions: p.Questions,
		Correct:   p.Correct,
		Accuracy:  p.Accuracy(),
	}
}

func fileName(generatedAt time.Time, opts Options) string {
	switch {
	case opts.Year != 0 && opts.Month != 0:
		return fmt.Sprintf("report-%04d-%02d.md", opts.Year, opts.Month)
	case opts.Year != 0:
		return fmt.Sprintf("report-%04d.md", opts.Year)
	default:
		return fmt.Sprintf("report-%s.md", generatedAt.Format("20060102"))
	}
}
