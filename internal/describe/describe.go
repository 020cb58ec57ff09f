// Package describe computes per-column descriptive statistics for a
// loaded cohort: count, mean, sample standard deviation, min/max for
// numeric columns, frequency tables for categorical columns, and
// missingness everywhere.
package describe

import (
	"math"
	"sort"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/dataset"
)

// NumericSummary holds single-column statistics over non-missing values.
type NumericSummary struct {
	Name    string
	Count   int // non-missing observations
	Missing int
	Mean    float64
	Std     float64 // sample standard deviation (n-1)
	Min     float64
	Max     float64
}

// LevelCount is one row of a categorical frequency table.
type LevelCount struct {
	Value string
	Count int
}

// CategorySummary holds a frequency table for one categorical column.
type CategorySummary struct {
	Name    string
	Missing int
	Levels  []LevelCount // sorted by count desc, then value asc
}

// Summary is the full descriptive report for a cohort.
type Summary struct {
	Rows        int
	Numeric     []NumericSummary
	Categorical []CategorySummary
	Events      int
	Censored    int
	EventRate   float64
}

// Describe computes the summary for a loaded table.
func Describe(t *dataset.Table) *Summary {
	s := &Summary{Rows: t.Len()}

	s.Numeric = []NumericSummary{
		summarizeNumeric(dataset.ColAge, column(t, func(sub dataset.Subject) float64 { return sub.Age })),
		summarizeNumeric(dataset.ColBiomarker, column(t, func(sub dataset.Subject) float64 { return sub.Biomarker })),
		summarizeNumeric(dataset.ColTime, t.Times()),
	}

	s.Categorical = []CategorySummary{
		summarizeCategory(dataset.ColSex, column2(t, func(sub dataset.Subject) string {
			switch {
			case dataset.Missing(sub.Sex):
				return ""
			case sub.Sex == 1:
				return "1"
			default:
				return "0"
			}
		})),
		summarizeCategory(dataset.ColTreatment, column2(t, func(sub dataset.Subject) string { return sub.Treatment })),
	}

	s.Events = t.Events()
	s.Censored = t.Censored()
	if s.Rows > 0 {
		s.EventRate = float64(s.Events) / float64(s.Rows)
	}
	return s
}

func column(t *dataset.Table, get func(dataset.Subject) float64) []float64 {
	out := make([]float64, t.Len())
	for i, sub := range t.Subjects {
		out[i] = get(sub)
	}
	return out
}

func column2(t *dataset.Table, get func(dataset.Subject) string) []string {
	out := make([]string, t.Len())
	for i, sub := range t.Subjects {
		out[i] = get(sub)
	}
	return out
}

// summarizeNumeric runs a single pass over the column, skipping missing
// cells and counting them.
func summarizeNumeric(name string, values []float64) NumericSummary {
	s := NumericSummary{Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, v := range values {
		if dataset.Missing(v) {
			s.Missing++
			continue
		}
		s.Count++
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	if s.Count == 0 {
		s.Min, s.Max = math.NaN(), math.NaN()
		s.Mean, s.Std = math.NaN(), math.NaN()
		return s
	}
	s.Mean = sum / float64(s.Count)

	// Second pass for the corrected sum of squares keeps the variance
	// exact even when values dwarf their spread.
	var ss float64
	for _, v := range values {
		if dataset.Missing(v) {
			continue
		}
		d := v - s.Mean
		ss += d * d
	}
	if s.Count > 1 {
		s.Std = math.Sqrt(ss / float64(s.Count-1))
	}
	return s
}

func summarizeCategory(name string, values []string) CategorySummary {
	s := CategorySummary{Name: name}
	counts := make(map[string]int)
	for _, v := range values {
		if v == "" {
			s.Missing++
			continue
		}
		counts[v]++
	}
	for v, c := range counts {
		s.Levels = append(s.Levels, LevelCount{Value: v, Count: c})
	}
	sort.Slice(s.Levels, func(i, j int) bool {
		if s.Levels[i].Count != s.Levels[j].Count {
			return s.Levels[i].Count > s.Levels[j].Count
		}
		return s.Levels[i].Value < s.Levels[j].Value
	})
	return s
}
