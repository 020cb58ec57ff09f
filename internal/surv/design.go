package surv

import (
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/dataset"
)

// CovariateNames is the Cox model's covariate order: age, sex,
// biomarker, and the treatment indicator (B versus reference arm A).
var CovariateNames = []string{"age", "sex", "biomarker", "treatment_B"}

// Design is a complete-case regression design built from a cohort.
type Design struct {
	Names  []string
	X      [][]float64 // one row per retained subject, model order
	Times  []float64
	Events []int

	// Dropped counts subjects excluded for a missing covariate. The
	// exclusion is reported, never silent.
	Dropped int
}

// BuildDesign extracts the Cox design matrix from a loaded table,
// excluding subjects with any missing covariate.
func BuildDesign(t *dataset.Table) (*Design, error) {
	d := &Design{Names: CovariateNames}
	for _, s := range t.Subjects {
		if dataset.Missing(s.Age) || dataset.Missing(s.Sex) ||
			dataset.Missing(s.Biomarker) || s.Treatment == "" {
			d.Dropped++
			continue
		}
		trtB := 0.0
		if s.Treatment == dataset.TreatmentB {
			trtB = 1
		}
		d.X = append(d.X, []float64{s.Age, s.Sex, s.Biomarker, trtB})
		d.Times = append(d.Times, s.Time)
		d.Events = append(d.Events, s.Event)
	}
	if len(d.X) == 0 {
		return nil, ErrNoSubjects
	}
	return d, nil
}
