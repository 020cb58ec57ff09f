package dataset

import "math"

// Column names of the required schema, in canonical order.
const (
	ColID        = "id"
	ColAge       = "age"
	ColSex       = "sex"
	ColTreatment = "treatment"
	ColBiomarker = "biomarker"
	ColTime      = "time"
	ColEvent     = "event"
)

// Columns lists the required schema in canonical order.
var Columns = []string{ColID, ColAge, ColSex, ColTreatment, ColBiomarker, ColTime, ColEvent}

// Treatment arm labels.
const (
	TreatmentA = "A"
	TreatmentB = "B"
)

// Subject is a single record of the cohort.
//
// Age, Sex and Biomarker are NaN when missing; Treatment is "" when
// missing. Time and Event are always present and valid after a
// successful load.
type Subject struct {
	ID        string
	Age       float64 // positive integer stored as float; NaN when missing
	Sex       float64 // 0 or 1; NaN when missing
	Treatment string  // "A" or "B"; "" when missing
	Biomarker float64 // NaN when missing
	Time      float64 // follow-up duration, >= 0
	Event     int     // 1 = event observed, 0 = right-censored
}

// Table is the in-memory cohort. It is read-only after load.
type Table struct {
	Subjects []Subject
}

// Len returns the number of subjects.
func (t *Table) Len() int { return len(t.Subjects) }

// Events returns the number of subjects with an observed event.
func (t *Table) Events() int {
	n := 0
	for _, s := range t.Subjects {
		n += s.Event
	}
	return n
}

// Censored returns the number of right-censored subjects.
func (t *Table) Censored() int { return t.Len() - t.Events() }

// Times returns the follow-up durations in table order.
func (t *Table) Times() []float64 {
	out := make([]float64, len(t.Subjects))
	for i, s := range t.Subjects {
		out[i] = s.Time
	}
	return out
}

// EventFlags returns the event indicators in table order.
func (t *Table) EventFlags() []int {
	out := make([]int, len(t.Subjects))
	for i, s := range t.Subjects {
		out[i] = s.Event
	}
	return out
}

// MaxTime returns the largest observed follow-up time, or 0 for an
// empty table.
func (t *Table) MaxTime() float64 {
	max := 0.0
	for _, s := range t.Subjects {
		if s.Time > max {
			max = s.Time
		}
	}
	return max
}

// Missing reports whether a numeric cell holds a missing value.
func Missing(v float64) bool { return math.IsNaN(v) }
