package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"
)

// Truth is the generating model for a simulated cohort: a Weibull
// baseline hazard with log-linear covariate effects (proportional
// hazards by construction) and independent exponential censoring.
type Truth struct {
	BetaAge        float64 `yaml:"beta_age"`
	BetaSex        float64 `yaml:"beta_sex"`
	BetaBiomarker  float64 `yaml:"beta_biomarker"`
	BetaTreatmentB float64 `yaml:"beta_treatment_b"`

	WeibullShape float64 `yaml:"weibull_shape"`
	WeibullScale float64 `yaml:"weibull_scale"`

	// CensorRate is the hazard of the independent censoring process.
	CensorRate float64 `yaml:"censor_rate"`

	// AdminCutoff truncates follow-up at study end.
	AdminCutoff float64 `yaml:"admin_cutoff"`

	// MissingRate is the probability that a biomarker cell is blanked
	// (age is blanked at half this rate).
	MissingRate float64 `yaml:"missing_rate"`
}

// DefaultTruth returns the generating model used when no profile
// overrides it: treatment B protective, age and biomarker harmful.
func DefaultTruth() Truth {
	return Truth{
		BetaAge:        0.03,
		BetaSex:        0.2,
		BetaBiomarker:  0.5,
		BetaTreatmentB: -0.6,
		WeibullShape:   1.3,
		WeibullScale:   18,
		CensorRate:     0.02,
		AdminCutoff:    36,
	}
}

// Simulate draws a cohort of n subjects from the truth. The draw is
// deterministic given the seed.
func Simulate(n int, seed uint64, truth Truth) (*Table, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cohort size must be positive, got %d", n)
	}
	if truth.WeibullShape <= 0 || truth.WeibullScale <= 0 {
		return nil, fmt.Errorf("weibull shape and scale must be positive (shape=%g, scale=%g)",
			truth.WeibullShape, truth.WeibullScale)
	}

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rnd := rand.New(src)
	ageDist := distuv.Normal{Mu: 62, Sigma: 9, Src: src}
	bioDist := distuv.LogNormal{Mu: 0, Sigma: 0.5, Src: src}

	t := &Table{Subjects: make([]Subject, 0, n)}
	for i := 0; i < n; i++ {
		age := math.Round(ageDist.Rand())
		if age < 18 {
			age = 18
		}
		if age > 90 {
			age = 90
		}
		sex := 0.0
		if rnd.Float64() < 0.48 {
			sex = 1
		}
		treatment := TreatmentA
		if rnd.Float64() < 0.5 {
			treatment = TreatmentB
		}
		bio := bioDist.Rand()

		// Linear predictor on centered covariates so the baseline scale
		// stays interpretable in follow-up units.
		eta := truth.BetaAge*(age-60) + truth.BetaSex*sex + truth.BetaBiomarker*(bio-1)
		if treatment == TreatmentB {
			eta += truth.BetaTreatmentB
		}

		// Inverse-transform sampling: T^k / scale^k * exp(eta) ~ Exp(1).
		eventTime := truth.WeibullScale * math.Pow(rnd.ExpFloat64()/math.Exp(eta), 1/truth.WeibullShape)

		followUp := eventTime
		event := 1
		if truth.CensorRate > 0 {
			if c := rnd.ExpFloat64() / truth.CensorRate; c < followUp {
				followUp = c
				event = 0
			}
		}
		if truth.AdminCutoff > 0 && truth.AdminCutoff < followUp {
			followUp = truth.AdminCutoff
			event = 0
		}
		followUp = roundTo(followUp, 2)
		if followUp <= 0 {
			followUp = 0.01
		}

		if truth.MissingRate > 0 {
			if rnd.Float64() < truth.MissingRate {
				bio = math.NaN()
			}
			if rnd.Float64() < truth.MissingRate/2 {
				age = math.NaN()
			}
		}

		t.Subjects = append(t.Subjects, Subject{
			ID:        "S" + pad(i+1),
			Age:       age,
			Sex:       sex,
			Treatment: treatment,
			Biomarker: roundOptional(bio, 3),
			Time:      followUp,
			Event:     event,
		})
	}
	return t, nil
}

func roundTo(v float64, digits int) float64 {
	m := math.Pow(10, float64(digits))
	return math.Round(v*m) / m
}

func roundOptional(v float64, digits int) float64 {
	if Missing(v) {
		return v
	}
	return roundTo(v, digits)
}

func pad(i int) string {
	s := strconv.Itoa(i)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
