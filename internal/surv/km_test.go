package surv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFitKM_HandComputed tests the product-limit estimate on a small
// cohort worked out by hand.
func TestFitKM_HandComputed(t *testing.T) {
	times := []float64{1, 2, 2, 3, 4, 5}
	events := []int{1, 1, 0, 1, 0, 1}

	est, err := FitKM(times, events, 0.95)
	require.NoError(t, err)
	require.Len(t, est.Points, 5)

	// t=1: 6 at risk, 1 event -> 5/6
	p := est.Points[0]
	assert.Equal(t, 6, p.AtRisk)
	assert.Equal(t, 1, p.Events)
	assert.InDelta(t, 5.0/6.0, p.Survival, 1e-12)

	// t=2: 5 at risk, 1 event, 1 censored -> 5/6 * 4/5 = 2/3
	p = est.Points[1]
	assert.Equal(t, 5, p.AtRisk)
	assert.Equal(t, 1, p.Events)
	assert.Equal(t, 1, p.Censored)
	assert.InDelta(t, 2.0/3.0, p.Survival, 1e-12)

	// t=3: 3 at risk, 1 event -> 2/3 * 2/3 = 4/9
	p = est.Points[2]
	assert.Equal(t, 3, p.AtRisk)
	assert.InDelta(t, 4.0/9.0, p.Survival, 1e-12)

	// t=4: censoring only, survival unchanged
	p = est.Points[3]
	assert.Equal(t, 0, p.Events)
	assert.InDelta(t, 4.0/9.0, p.Survival, 1e-12)

	// t=5: last subject fails -> 0
	p = est.Points[4]
	assert.Equal(t, 1, p.AtRisk)
	assert.InDelta(t, 0.0, p.Survival, 1e-12)
	assert.Equal(t, 0.0, p.Lower)
	assert.Equal(t, 0.0, p.Upper)
}

// TestFitKM_FullyCensored tests that a cohort with no events keeps the
// survival estimate at 1 everywhere.
func TestFitKM_FullyCensored(t *testing.T) {
	times := []float64{2, 4, 6, 8}
	events := []int{0, 0, 0, 0}

	est, err := FitKM(times, events, 0.95)
	require.NoError(t, err)
	for _, p := range est.Points {
		assert.Equal(t, 1.0, p.Survival)
		assert.Equal(t, 1.0, p.Lower)
		assert.Equal(t, 1.0, p.Upper)
	}
	for _, q := range []float64{0, 1, 5, 100} {
		assert.Equal(t, 1.0, est.SurvivalAt(q).Survival)
	}
}

// TestFitKM_Monotone tests that the survival curve never increases.
func TestFitKM_Monotone(t *testing.T) {
	times := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7}
	events := []int{1, 0, 1, 1, 0, 1, 1, 0, 1, 1, 0, 1, 0, 1}

	est, err := FitKM(times, events, 0.95)
	require.NoError(t, err)

	prev := 1.0
	for _, p := range est.Points {
		assert.LessOrEqual(t, p.Survival, prev)
		assert.GreaterOrEqual(t, p.Survival, 0.0)
		assert.LessOrEqual(t, p.Lower, p.Survival)
		assert.GreaterOrEqual(t, p.Upper, p.Survival)
		assert.LessOrEqual(t, p.Upper, 1.0)
		prev = p.Survival
	}
}

// TestSurvivalAt_Extrapolated tests that queries beyond the last
// observed time are flagged.
func TestSurvivalAt_Extrapolated(t *testing.T) {
	est, err := FitKM([]float64{1, 2, 3}, []int{1, 0, 1}, 0.95)
	require.NoError(t, err)

	in := est.SurvivalAt(3)
	assert.False(t, in.Extrapolated)

	out := est.SurvivalAt(3.5)
	assert.True(t, out.Extrapolated)
	assert.Equal(t, in.Survival, out.Survival)
}

// TestFitKM_Median tests the median survival lookup.
func TestFitKM_Median(t *testing.T) {
	est, err := FitKM([]float64{1, 2, 3, 4}, []int{1, 1, 1, 1}, 0.95)
	require.NoError(t, err)
	med, ok := est.MedianSurvival()
	require.True(t, ok)
	assert.Equal(t, 2.0, med)

	est, err = FitKM([]float64{1, 2, 3, 4}, []int{0, 0, 0, 0}, 0.95)
	require.NoError(t, err)
	_, ok = est.MedianSurvival()
	assert.False(t, ok)
}

// TestFitKM_Invalid tests input validation.
func TestFitKM_Invalid(t *testing.T) {
	_, err := FitKM(nil, nil, 0.95)
	assert.ErrorIs(t, err, ErrNoSubjects)

	_, err = FitKM([]float64{1}, []int{1, 0}, 0.95)
	assert.Error(t, err)

	_, err = FitKM([]float64{-1}, []int{1}, 0.95)
	assert.Error(t, err)

	_, err = FitKM([]float64{1}, []int{2}, 0.95)
	assert.Error(t, err)

	_, err = FitKM([]float64{1}, []int{1}, 1.5)
	assert.Error(t, err)
}
