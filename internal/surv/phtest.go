package surv

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PHCovariate is the proportional-hazards test verdict for one
// covariate.
type PHCovariate struct {
	Name string
	Stat float64 // chi-squared statistic, 1 degree of freedom
	P    float64
	OK   bool // true when the PH assumption is not rejected at Alpha
}

// PHTestResult is the Grambsch-Therneau style test of the proportional-
// hazards assumption: Schoenfeld residuals correlated against a rank
// transform of the event times.
type PHTestResult struct {
	Covariates []PHCovariate

	GlobalStat float64
	GlobalDF   int
	GlobalP    float64
	GlobalOK   bool

	Alpha         float64
	TimeTransform string // always "rank"
}

// TestProportionalHazards runs the PH assumption test on a converged
// Cox fit. A small p-value means the covariate's effect drifts with
// time, violating the assumption.
func TestProportionalHazards(m *CoxModel, alpha float64) (*PHTestResult, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("significance level must be in (0, 1), got %g", alpha)
	}
	p := len(m.beta)
	n := len(m.times)

	// Schoenfeld residuals at each failure, one vector per event,
	// collected in descending time order.
	type residual struct {
		time float64
		s    []float64
	}
	var residuals []residual

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return m.times[order[a]] > m.times[order[b]] })

	theta := make([]float64, n)
	for i := 0; i < n; i++ {
		eta := 0.0
		for j := 0; j < p; j++ {
			eta += m.xc[i][j] * m.beta[j]
		}
		theta[i] = math.Exp(eta)
	}

	s0 := 0.0
	s1 := make([]float64, p)
	for k := 0; k < n; {
		t := m.times[order[k]]
		var failures []int
		for k < n && m.times[order[k]] == t {
			i := order[k]
			s0 += theta[i]
			for j := 0; j < p; j++ {
				s1[j] += theta[i] * m.xc[i][j]
			}
			if m.events[i] == 1 {
				failures = append(failures, i)
			}
			k++
		}
		for _, i := range failures {
			s := make([]float64, p)
			for j := 0; j < p; j++ {
				s[j] = m.xc[i][j] - s1[j]/s0
			}
			residuals = append(residuals, residual{time: t, s: s})
		}
	}

	d := len(residuals)
	if d < 2 {
		return nil, fmt.Errorf("proportional-hazards test needs at least 2 events, got %d", d)
	}

	// Rank transform of the failure times, average ranks for ties.
	sort.Slice(residuals, func(a, b int) bool { return residuals[a].time < residuals[b].time })
	g := make([]float64, d)
	for i := 0; i < d; {
		j := i
		for j < d && residuals[j].time == residuals[i].time {
			j++
		}
		avg := float64(i+j-1)/2 + 1
		for k := i; k < j; k++ {
			g[k] = avg
		}
		i = j
	}
	gMean := 0.0
	for _, v := range g {
		gMean += v
	}
	gMean /= float64(d)
	gss := 0.0
	for i := range g {
		g[i] -= gMean
		gss += g[i] * g[i]
	}
	if gss == 0 {
		return nil, fmt.Errorf("all events share one time; rank transform is degenerate")
	}

	// Score vector u_j = sum_i g_i * s_ij.
	u := make([]float64, p)
	for i, r := range residuals {
		for j := 0; j < p; j++ {
			u[j] += g[i] * r.s[j]
		}
	}

	dn := float64(d)
	res := &PHTestResult{Alpha: alpha, TimeTransform: "rank", GlobalDF: p}
	chi1 := distuv.ChiSquared{K: 1}
	for j := 0; j < p; j++ {
		stat := dn * u[j] * u[j] / (gss * m.info.At(j, j))
		pv := chi1.Survival(stat)
		res.Covariates = append(res.Covariates, PHCovariate{
			Name: m.Coefficients[j].Name,
			Stat: stat,
			P:    pv,
			OK:   pv >= alpha,
		})
	}

	var chol mat.Cholesky
	if !chol.Factorize(m.info) {
		return nil, fmt.Errorf("information matrix is singular; global test unavailable")
	}
	iu := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(iu, mat.NewVecDense(p, u)); err != nil {
		return nil, fmt.Errorf("global test solve: %w", err)
	}
	global := 0.0
	for j := 0; j < p; j++ {
		global += u[j] * iu.AtVec(j)
	}
	global *= dn / gss
	res.GlobalStat = global
	res.GlobalP = distuv.ChiSquared{K: float64(p)}.Survival(global)
	res.GlobalOK = res.GlobalP >= alpha
	return res, nil
}
