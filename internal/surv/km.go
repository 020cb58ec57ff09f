package surv

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// KMPoint is one row of the Kaplan-Meier event table: the risk set and
// outcome counts at a distinct observed time, with the survival
// estimate and its confidence interval after that time.
type KMPoint struct {
	Time     float64
	AtRisk   int
	Events   int
	Censored int
	Survival float64
	Lower    float64
	Upper    float64
}

// KMEstimate is a fitted Kaplan-Meier survival curve.
type KMEstimate struct {
	// Points holds one row per distinct observed time, ascending.
	Points []KMPoint

	// CILevel is the confidence level of the interval columns.
	CILevel float64

	maxTime float64
}

// SurvivalPoint is the estimate at a queried time point.
type SurvivalPoint struct {
	Time     float64
	Survival float64
	Lower    float64
	Upper    float64

	// Extrapolated marks queries beyond the last observed time, where
	// the curve carries its last value forward without support.
	Extrapolated bool
}

// FitKM computes the product-limit estimate over the cohort.
//
// Censored subjects count toward the risk set at their censoring time
// and are removed afterwards; they never count as failures. Confidence
// intervals are log-log (Greenwood variance), so the endpoints stay
// inside [0, 1].
func FitKM(times []float64, events []int, ciLevel float64) (*KMEstimate, error) {
	if len(times) == 0 {
		return nil, ErrNoSubjects
	}
	if len(times) != len(events) {
		return nil, fmt.Errorf("times and events length mismatch: %d vs %d", len(times), len(events))
	}
	if ciLevel <= 0 || ciLevel >= 1 {
		return nil, fmt.Errorf("confidence level must be in (0, 1), got %g", ciLevel)
	}
	for i, t := range times {
		if t < 0 || math.IsNaN(t) {
			return nil, fmt.Errorf("negative or undefined time at index %d: %g", i, t)
		}
		if events[i] != 0 && events[i] != 1 {
			return nil, fmt.Errorf("non-binary event flag at index %d: %d", i, events[i])
		}
	}

	type obs struct {
		t float64
		e int
	}
	sorted := make([]obs, len(times))
	for i := range times {
		sorted[i] = obs{t: times[i], e: events[i]}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].t < sorted[j].t })

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - (1-ciLevel)/2)

	est := &KMEstimate{CILevel: ciLevel, maxTime: sorted[len(sorted)-1].t}
	surv := 1.0
	greenwood := 0.0 // cumulative sum of d / (n * (n - d))
	atRisk := len(sorted)

	for i := 0; i < len(sorted); {
		t := sorted[i].t
		d, c := 0, 0
		for i < len(sorted) && sorted[i].t == t {
			if sorted[i].e == 1 {
				d++
			} else {
				c++
			}
			i++
		}

		if d > 0 {
			surv *= 1 - float64(d)/float64(atRisk)
			if atRisk > d {
				greenwood += float64(d) / (float64(atRisk) * float64(atRisk-d))
			}
		}
		lower, upper := logLogInterval(surv, greenwood, z)
		est.Points = append(est.Points, KMPoint{
			Time:     t,
			AtRisk:   atRisk,
			Events:   d,
			Censored: c,
			Survival: surv,
			Lower:    lower,
			Upper:    upper,
		})
		atRisk -= d + c
	}
	return est, nil
}

// SurvivalAt evaluates the fitted curve at an arbitrary time point.
// Queries past the last observed time carry the final estimate forward
// and set Extrapolated.
func (e *KMEstimate) SurvivalAt(t float64) SurvivalPoint {
	p := SurvivalPoint{Time: t, Survival: 1, Lower: 1, Upper: 1}
	for _, pt := range e.Points {
		if pt.Time > t {
			break
		}
		p.Survival = pt.Survival
		p.Lower = pt.Lower
		p.Upper = pt.Upper
	}
	p.Extrapolated = t > e.maxTime
	return p
}

// MedianSurvival returns the smallest observed time where the survival
// estimate drops to 0.5 or below, and false when the curve never does.
func (e *KMEstimate) MedianSurvival() (float64, bool) {
	for _, pt := range e.Points {
		if pt.Survival <= 0.5 {
			return pt.Time, true
		}
	}
	return 0, false
}

// MaxTime returns the last observed follow-up time.
func (e *KMEstimate) MaxTime() float64 { return e.maxTime }

// logLogInterval computes the log(-log S) confidence interval. The
// transform is undefined at S == 1 and S == 0; both collapse to a
// degenerate interval at the estimate.
func logLogInterval(surv, greenwood, z float64) (lower, upper float64) {
	if surv >= 1 {
		return 1, 1
	}
	if surv <= 0 {
		return 0, 0
	}
	logS := math.Log(surv)
	se := math.Sqrt(greenwood) / math.Abs(logS)
	lower = math.Pow(surv, math.Exp(z*se))
	upper = math.Pow(surv, math.Exp(-z*se))
	return lower, upper
}
