// Package statistics aggregates completed quiz batches by month.
package statistics

import (
	"fmt"
	"sort"
	"time"

	"github.com/at-ishikawa/eiken/internal/result"
)

// PeriodStatistics holds the totals for one month, e.g. "2026-04".
type PeriodStatistics struct {
	Period    string
	Sets      int
	Questions int
	Correct   int
}

// Accuracy is Correct divided by Questions, or 0 when nothing was answered.
func (s PeriodStatistics) Accuracy() float64 {
	if s.Questions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Questions)
}

// MissedQuestion counts how often a prompt was answered incorrectly.
type MissedQuestion struct {
	Prompt        string
	CorrectChoice string
	Misses        int
}

type StatisticsResult struct {
	Periods []PeriodStatistics
	Total   PeriodStatistics
	// MostMissed is ordered by misses, most first.
	MostMissed []MissedQuestion
}

// CalculateStatistics aggregates results per month of CompletedAt in loc.
// year and month filter the results; 0 means no filter.
func CalculateStatistics(results []result.BatchResult, year, month int, loc *time.Location) StatisticsResult {
	if loc == nil {
		loc = time.UTC
	}

	periods := make(map[string]*PeriodStatistics)
	missed := make(map[string]*MissedQuestion)
	total := PeriodStatistics{Period: "total"}

	for _, r := range results {
		completedAt := r.CompletedAt.In(loc)
		if !matchesFilter(completedAt.Year(), int(completedAt.Month()), year, month) {
			continue
		}

		period := completedAt.Format("2006-01")
		stats, ok := periods[period]
		if !ok {
			stats = &PeriodStatistics{Period: period}
			periods[period] = stats
		}
		stats.Sets++
		stats.Questions += r.Total
		stats.Correct += r.Score
		total.Sets++
		total.Questions += r.Total
		total.Correct += r.Score

		for _, a := range r.Answers {
			if a.Correct {
				continue
			}
			key := fmt.Sprintf("%s|%s", a.Prompt, a.CorrectChoice)
			if missed[key] == nil {
				missed[key] = &MissedQuestion{Prompt: a.Prompt, CorrectChoice: a.CorrectChoice}
			}
			missed[key].Misses++
		}
	}

	return buildResult(periods, total, missed)
}

func matchesFilter(resultYear, resultMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if resultYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return resultMonth == filterMonth
}

func buildResult(periods map[string]*PeriodStatistics, total PeriodStatistics, missed map[string]*MissedQuestion) StatisticsResult {
	list := make([]PeriodStatistics, 0, len(periods))
	for _, p := range periods {
		list = append(list, *p)
	}
	// newest first
	sort.Slice(list, func(i, j int) bool {
		return list[i].Period > list[j].Period
	})

	mostMissed := make([]MissedQuestion, 0, len(missed))
	for _, m := range missed {
		mostMissed = append(mostMissed, *m)
	}
	sort.Slice(mostMissed, func(i, j int) bool {
		if mostMissed[i].Misses != mostMissed[j].Misses {
			return mostMissed[i].Misses > mostMissed[j].Misses
		}
		return mostMissed[i].Prompt < mostMissed[j].Prompt
	})

	return StatisticsResult{
		Periods:    list,
		Total:      total,
		MostMissed: mostMissed,
	}
}
