package surv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/dataset"
)

// simDesign builds a complete-case design from a simulated cohort.
func simDesign(t *testing.T, n int, seed uint64) *Design {
	t.Helper()
	tbl, err := dataset.Simulate(n, seed, dataset.DefaultTruth())
	require.NoError(t, err)
	d, err := BuildDesign(tbl)
	require.NoError(t, err)
	return d
}

// TestBuildDesign_DropsMissing tests complete-case exclusion counting.
func TestBuildDesign_DropsMissing(t *testing.T) {
	tbl := &dataset.Table{Subjects: []dataset.Subject{
		{ID: "S1", Age: 50, Sex: 0, Treatment: "A", Biomarker: 1, Time: 2, Event: 1},
		{ID: "S2", Age: math.NaN(), Sex: 1, Treatment: "B", Biomarker: 2, Time: 4, Event: 0},
		{ID: "S3", Age: 70, Sex: 0, Treatment: "", Biomarker: 3, Time: 6, Event: 1},
	}}
	d, err := BuildDesign(tbl)
	require.NoError(t, err)
	assert.Len(t, d.X, 1)
	assert.Equal(t, 2, d.Dropped)
	assert.Equal(t, CovariateNames, d.Names)
	assert.Equal(t, []float64{50, 0, 1, 0}, d.X[0])
}

// TestFitCox_RecoversSimulationTruth tests that the fit recovers the
// signs of the generating coefficients on a well-sized cohort.
func TestFitCox_RecoversSimulationTruth(t *testing.T) {
	d := simDesign(t, 400, 11)

	m, err := FitCox(d, CoxOptions{})
	require.NoError(t, err)
	require.Len(t, m.Coefficients, 4)
	assert.Greater(t, m.EventsObserved, 0)
	assert.Greater(t, m.Iterations, 0)
	assert.Greater(t, m.LogLikelihood, m.NullLogLikelihood)

	byName := map[string]Coefficient{}
	for _, c := range m.Coefficients {
		byName[c.Name] = c
	}

	// Generating model: age +0.03, biomarker +0.5, treatment_B -0.6.
	assert.Greater(t, byName["age"].Beta, 0.0)
	assert.Less(t, byName["age"].P, 0.05)
	assert.Greater(t, byName["biomarker"].Beta, 0.0)
	assert.Less(t, byName["biomarker"].P, 0.05)
	assert.Less(t, byName["treatment_B"].Beta, 0.0)
	assert.Less(t, byName["treatment_B"].P, 0.05)

	// A predictive model separates risks better than chance.
	assert.Greater(t, m.Concordance, 0.55)
	assert.Less(t, m.Concordance, 1.0)
}

// TestFitCox_HazardRatiosPositive tests that every reported hazard
// ratio is strictly positive with a consistent interval.
func TestFitCox_HazardRatiosPositive(t *testing.T) {
	m, err := FitCox(simDesign(t, 250, 23), CoxOptions{})
	require.NoError(t, err)
	for _, c := range m.Coefficients {
		assert.Greater(t, c.HR, 0.0, c.Name)
		assert.Greater(t, c.HRLower, 0.0, c.Name)
		assert.Less(t, c.HRLower, c.HR, c.Name)
		assert.Greater(t, c.HRUpper, c.HR, c.Name)
		assert.Greater(t, c.SE, 0.0, c.Name)
		assert.InDelta(t, math.Exp(c.Beta), c.HR, 1e-12, c.Name)
		assert.GreaterOrEqual(t, c.P, 0.0, c.Name)
		assert.LessOrEqual(t, c.P, 1.0, c.Name)
	}
}

// TestFitCox_PerfectSeparation tests that a covariate perfectly
// ordering the event times yields non-convergence or an extreme, wide
// estimate - never a confident near-zero-variance fit.
func TestFitCox_PerfectSeparation(t *testing.T) {
	// Group 1 fails strictly before group 0 starts failing.
	d := &Design{
		Names: []string{"x"},
		X: [][]float64{
			{1}, {1}, {1}, {1},
			{0}, {0}, {0}, {0},
		},
		Times:  []float64{1, 2, 3, 4, 10, 11, 12, 13},
		Events: []int{1, 1, 1, 1, 1, 1, 1, 1},
	}

	m, err := FitCox(d, CoxOptions{})
	if err != nil {
		require.True(t, IsConvergenceError(err), "unexpected error type: %v", err)
		return
	}
	// If it converged, the estimate must be visibly extreme and unstable.
	c := m.Coefficients[0]
	assert.Greater(t, c.HR, 10.0)
	assert.Greater(t, c.SE, 1.0)
}

// TestFitCox_ConstantCovariate tests the singular-information failure.
func TestFitCox_ConstantCovariate(t *testing.T) {
	d := &Design{
		Names:  []string{"const"},
		X:      [][]float64{{1}, {1}, {1}, {1}},
		Times:  []float64{1, 2, 3, 4},
		Events: []int{1, 1, 0, 1},
	}
	_, err := FitCox(d, CoxOptions{})
	require.Error(t, err)
	assert.True(t, IsConvergenceError(err))
}

// TestFitCox_NoEvents tests the flat-likelihood failure.
func TestFitCox_NoEvents(t *testing.T) {
	d := &Design{
		Names:  []string{"x"},
		X:      [][]float64{{1}, {0}},
		Times:  []float64{1, 2},
		Events: []int{0, 0},
	}
	_, err := FitCox(d, CoxOptions{})
	assert.ErrorIs(t, err, ErrNoEvents)
}

// TestFitCox_IterationCap tests that an unreachable tolerance is
// surfaced as non-convergence instead of a silent result.
func TestFitCox_IterationCap(t *testing.T) {
	d := simDesign(t, 150, 5)
	_, err := FitCox(d, CoxOptions{MaxIter: 1, Tol: 1e-14})
	require.Error(t, err)
	require.True(t, IsConvergenceError(err))

	var ce *ConvergenceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.Iterations)
}
