package surv

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CoxOptions bounds the Newton-Raphson maximization of the partial
// likelihood.
type CoxOptions struct {
	MaxIter int     // iteration cap; default 100
	Tol     float64 // convergence when the largest coefficient step falls below; default 1e-7
	CILevel float64 // confidence level for hazard-ratio intervals; default 0.95
}

// betaBound is the divergence guard: a coefficient walking past this
// magnitude means the partial likelihood has no interior maximum
// (complete separation), and the fit is reported as non-converged.
const betaBound = 50

func (o CoxOptions) withDefaults() CoxOptions {
	if o.MaxIter <= 0 {
		o.MaxIter = 100
	}
	if o.Tol <= 0 {
		o.Tol = 1e-7
	}
	if o.CILevel <= 0 || o.CILevel >= 1 {
		o.CILevel = 0.95
	}
	return o
}

// Coefficient is one fitted covariate effect.
type Coefficient struct {
	Name    string
	Beta    float64
	SE      float64
	Z       float64
	P       float64
	HR      float64 // exp(Beta), strictly positive
	HRLower float64
	HRUpper float64
}

// CoxModel is a converged proportional-hazards fit.
type CoxModel struct {
	Coefficients      []Coefficient
	LogLikelihood     float64 // partial log-likelihood at the fit
	NullLogLikelihood float64 // partial log-likelihood at beta = 0
	Concordance       float64 // Harrell's C over comparable pairs
	N                 int     // subjects used (complete cases)
	EventsObserved    int
	Dropped           int // complete-case exclusions, from the design
	Iterations        int
	CILevel           float64

	// Internals retained for the proportional-hazards test.
	xc     [][]float64 // centered design
	times  []float64
	events []int
	beta   []float64
	info   *mat.SymDense // observed information at the fit
}

// FitCox maximizes the Efron-approximated partial likelihood by
// Newton-Raphson with step-halving. Covariates are centered internally
// for numerical stability; coefficients are unchanged by centering.
//
// The fit fails with a *ConvergenceError on a singular information
// matrix, on divergence (see betaBound), or at the iteration cap. It
// never returns a degenerate estimate as a converged model.
func FitCox(d *Design, opts CoxOptions) (*CoxModel, error) {
	opts = opts.withDefaults()

	n := len(d.X)
	if n == 0 {
		return nil, ErrNoSubjects
	}
	p := len(d.Names)
	nEvents := 0
	for _, e := range d.Events {
		nEvents += e
	}
	if nEvents == 0 {
		return nil, ErrNoEvents
	}

	xc := centered(d.X, p)

	beta := make([]float64, p)
	ll, grad, info := efronPartial(xc, d.Times, d.Events, beta)
	nullLL := ll

	var chol mat.Cholesky
	iter := 0
	converged := false
	maxStep := math.Inf(1)
	for ; iter < opts.MaxIter; iter++ {
		if !chol.Factorize(info) {
			return nil, &ConvergenceError{
				Iterations: iter,
				MaxStep:    maxStep,
				Reason:     "singular information matrix (degenerate or collinear covariates)",
			}
		}
		delta := mat.NewVecDense(p, nil)
		if err := chol.SolveVecTo(delta, mat.NewVecDense(p, grad)); err != nil {
			return nil, &ConvergenceError{Iterations: iter, MaxStep: maxStep, Reason: "newton step failed"}
		}

		// Step-halving: shrink the step until likelihood does not drop.
		factor := 1.0
		var next []float64
		var nextLL float64
		var nextGrad []float64
		var nextInfo *mat.SymDense
		for h := 0; ; h++ {
			next = make([]float64, p)
			for j := 0; j < p; j++ {
				next[j] = beta[j] + factor*delta.AtVec(j)
			}
			nextLL, nextGrad, nextInfo = efronPartial(xc, d.Times, d.Events, next)
			if nextLL >= ll || h >= 10 {
				break
			}
			factor /= 2
		}

		maxStep = 0
		for j := 0; j < p; j++ {
			if s := math.Abs(factor * delta.AtVec(j)); s > maxStep {
				maxStep = s
			}
		}
		beta, ll, grad, info = next, nextLL, nextGrad, nextInfo

		if maxAbs(beta) > betaBound {
			return nil, &ConvergenceError{
				Iterations: iter + 1,
				MaxStep:    maxStep,
				Reason:     "coefficients diverging; possible complete separation of event times",
			}
		}
		if maxStep < opts.Tol {
			converged = true
			iter++
			break
		}
	}
	if !converged {
		return nil, &ConvergenceError{Iterations: iter, MaxStep: maxStep, Reason: "iteration limit reached"}
	}

	// Variance-covariance from the inverse information at the fit.
	if !chol.Factorize(info) {
		return nil, &ConvergenceError{Iterations: iter, MaxStep: maxStep, Reason: "singular information matrix at optimum"}
	}
	var varcov mat.SymDense
	if err := chol.InverseTo(&varcov); err != nil {
		return nil, &ConvergenceError{Iterations: iter, MaxStep: maxStep, Reason: "information matrix could not be inverted"}
	}

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	zq := norm.Quantile(1 - (1-opts.CILevel)/2)

	m := &CoxModel{
		LogLikelihood:     ll,
		NullLogLikelihood: nullLL,
		N:                 n,
		EventsObserved:    nEvents,
		Dropped:           d.Dropped,
		Iterations:        iter,
		CILevel:           opts.CILevel,
		xc:                xc,
		times:             d.Times,
		events:            d.Events,
		beta:              beta,
		info:              info,
	}
	for j := 0; j < p; j++ {
		v := varcov.At(j, j)
		if v <= 0 || math.IsNaN(v) {
			return nil, &ConvergenceError{Iterations: iter, MaxStep: maxStep, Reason: "non-positive coefficient variance at optimum"}
		}
		se := math.Sqrt(v)
		z := beta[j] / se
		m.Coefficients = append(m.Coefficients, Coefficient{
			Name:    d.Names[j],
			Beta:    beta[j],
			SE:      se,
			Z:       z,
			P:       2 * norm.Survival(math.Abs(z)),
			HR:      math.Exp(beta[j]),
			HRLower: math.Exp(beta[j] - zq*se),
			HRUpper: math.Exp(beta[j] + zq*se),
		})
	}
	m.Concordance = concordance(xc, d.Times, d.Events, beta)
	return m, nil
}

// centered returns a copy of x with column means subtracted.
func centered(x [][]float64, p int) [][]float64 {
	n := len(x)
	means := make([]float64, p)
	for _, row := range x {
		for j := 0; j < p; j++ {
			means[j] += row[j]
		}
	}
	for j := 0; j < p; j++ {
		means[j] /= float64(n)
	}
	out := make([][]float64, n)
	for i, row := range x {
		out[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			out[i][j] = row[j] - means[j]
		}
	}
	return out
}

// efronPartial evaluates the Efron-approximated partial log-likelihood,
// its gradient, and the observed information at beta.
//
// Subjects are processed in descending time order so risk-set sums
// accumulate incrementally; tied failures get the Efron fractional
// adjustment.
func efronPartial(x [][]float64, times []float64, events []int, beta []float64) (float64, []float64, *mat.SymDense) {
	n := len(x)
	p := len(beta)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return times[order[a]] > times[order[b]] })

	eta := make([]float64, n)
	theta := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			eta[i] += x[i][j] * beta[j]
		}
		theta[i] = math.Exp(eta[i])
	}

	ll := 0.0
	grad := make([]float64, p)
	info := mat.NewSymDense(p, nil)

	// Risk-set accumulators: s0 = sum theta, s1 = sum theta*x,
	// s2 = sum theta*x*x' over subjects still at risk.
	s0 := 0.0
	s1 := make([]float64, p)
	s2 := mat.NewSymDense(p, nil)

	d0 := 0.0
	d1 := make([]float64, p)
	d2 := mat.NewSymDense(p, nil)

	xbar := make([]float64, p)

	for k := 0; k < n; {
		t := times[order[k]]

		// Admit everyone with this time into the risk set; collect the
		// tied-failure sums along the way.
		dCount := 0
		d0 = 0
		for j := 0; j < p; j++ {
			d1[j] = 0
		}
		zeroSym(d2)
		for k < n && times[order[k]] == t {
			i := order[k]
			s0 += theta[i]
			for j := 0; j < p; j++ {
				s1[j] += theta[i] * x[i][j]
				for l := 0; l <= j; l++ {
					s2.SetSym(j, l, s2.At(j, l)+theta[i]*x[i][j]*x[i][l])
				}
			}
			if events[i] == 1 {
				dCount++
				d0 += theta[i]
				ll += eta[i]
				for j := 0; j < p; j++ {
					grad[j] += x[i][j]
					d1[j] += theta[i] * x[i][j]
					for l := 0; l <= j; l++ {
						d2.SetSym(j, l, d2.At(j, l)+theta[i]*x[i][j]*x[i][l])
					}
				}
			}
			k++
		}

		for f := 0; f < dCount; f++ {
			phi := float64(f) / float64(dCount)
			denom := s0 - phi*d0
			ll -= math.Log(denom)
			for j := 0; j < p; j++ {
				xbar[j] = (s1[j] - phi*d1[j]) / denom
				grad[j] -= xbar[j]
			}
			for j := 0; j < p; j++ {
				for l := 0; l <= j; l++ {
					term := (s2.At(j, l)-phi*d2.At(j, l))/denom - xbar[j]*xbar[l]
					info.SetSym(j, l, info.At(j, l)+term)
				}
			}
		}
	}
	return ll, grad, info
}

func zeroSym(m *mat.SymDense) {
	n := m.SymmetricDim()
	for j := 0; j < n; j++ {
		for l := 0; l <= j; l++ {
			m.SetSym(j, l, 0)
		}
	}
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// concordance computes Harrell's C: among comparable pairs (the subject
// with the shorter follow-up had an observed event), the fraction where
// the higher-risk subject failed first, counting risk ties as half.
func concordance(x [][]float64, times []float64, events []int, beta []float64) float64 {
	n := len(x)
	risk := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := range beta {
			risk[i] += x[i][j] * beta[j]
		}
	}
	var num, den float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || events[i] != 1 || times[i] >= times[j] {
				continue
			}
			den++
			switch {
			case risk[i] > risk[j]:
				num++
			case risk[i] == risk[j]:
				num += 0.5
			}
		}
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}
