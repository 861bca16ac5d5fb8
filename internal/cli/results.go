package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/at-ishikawa/eiken/internal/result"
	"github.com/at-ishikawa/eiken/internal/statistics"
)

// RunResultsList prints the latest completed sets, newest first. limit <= 0 prints all.
func RunResultsList(ctx context.Context, w io.Writer, repository result.Repository, limit int) error {
	results, err := repository.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("repository.FindAll() > %w", err)
	}
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "No results found.")
		return nil
	}

	_, _ = fmt.Fprintf(w, "%-16s  %-4s  %-7s  %-8s  %s\n", "Completed", "Set", "Score", "Accuracy", "Questions")
	_, _ = fmt.Fprintf(w, "%-16s  %-4s  %-7s  %-8s  %s\n", "---------", "---", "-----", "--------", "---------")
	printed := 0
	for i := len(results) - 1; i >= 0; i-- {
		if limit > 0 && printed >= limit {
			break
		}
		r := results[i]
		_, _ = fmt.Fprintf(w, "%-16s  %-4d  %-7s  %-8s  %s\n",
			r.CompletedAt.In(time.Local).Format("2006-01-02 15:04"),
			r.BatchNumber,
			fmt.Sprintf("%d/%d", r.Score, r.Total),
			fmt.Sprintf("%.1f%%", r.Accuracy()*100),
			r.QuestionsFile,
		)
		printed++
	}
	return nil
}

// RunResultsStats prints monthly statistics and the total.
func RunResultsStats(ctx context.Context, w io.Writer, repository result.Repository, year, month int) error {
	results, err := repository.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("repository.FindAll() > %w", err)
	}

	stats := statistics.CalculateStatistics(results, year, month, time.Local)
	if len(stats.Periods) == 0 {
		_, _ = fmt.Fprintln(w, "No results found for the specified period.")
		return nil
	}

	_, _ = fmt.Fprintln(w, "Quiz Statistics Report")
	_, _ = fmt.Fprintln(w, "======================")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%-10s  %-5s  %-9s  %-7s  %s\n", "Period", "Sets", "Questions", "Correct", "Accuracy")
	_, _ = fmt.Fprintf(w, "%-10s  %-5s  %-9s  %-7s  %s\n", "------", "----", "---------", "-------", "--------")
	for _, s := range append(stats.Periods, stats.Total) {
		period := s.Period
		if period == "total" {
			_, _ = fmt.Fprintln(w)
			period = "Totals:"
		}
		_, _ = fmt.Fprintf(w, "%-10s  %-5d  %-9d  %-7d  %.1f%%\n", period, s.Sets, s.Questions, s.Correct, s.Accuracy()*100)
	}
	return nil
}
