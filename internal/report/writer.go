// Package report renders the pipeline's text deliverables and the
// Kaplan-Meier plot into an output directory. Rendering is
// deterministic given its inputs, which keeps the text files
// golden-testable.
package report

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/describe"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/surv"
)

// Deliverable file names, matching the published analysis layout.
const (
	FileEDA            = "eda_summary.txt"
	FileKM             = "km_estimates.txt"
	FileKMPlot         = "km_plot.png"
	FileCox            = "cox_summary.txt"
	FilePH             = "ph_test.txt"
	FileInterpretation = "final_interpretation.txt"
)

// Files holds the paths of everything written for one run.
type Files struct {
	EDA            string
	KM             string
	KMPlot         string
	Cox            string
	PH             string
	Interpretation string
}

// List returns the written paths in deliverable order, skipping empties.
func (f Files) List() []string {
	var out []string
	for _, p := range []string{f.EDA, f.KM, f.KMPlot, f.Cox, f.PH, f.Interpretation} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func rule(n int) string { return strings.Repeat("=", n) }

// RenderEDA renders the descriptive-statistics report.
func RenderEDA(s *describe.Summary) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "EDA Summary\n%s\n\n", rule(40))
	fmt.Fprintf(&b, "Dataset shape: %d rows, 7 columns\n\n", s.Rows)

	fmt.Fprintf(&b, "Descriptive statistics (numeric):\n")
	fmt.Fprintf(&b, "  %-10s %7s %8s %10s %10s %10s %10s\n",
		"column", "count", "missing", "mean", "std", "min", "max")
	for _, c := range s.Numeric {
		fmt.Fprintf(&b, "  %-10s %7d %8d %10s %10s %10s %10s\n",
			c.Name, c.Count, c.Missing, num(c.Mean), num(c.Std), num(c.Min), num(c.Max))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Frequency tables (categorical):\n")
	for _, c := range s.Categorical {
		fmt.Fprintf(&b, "  %s (missing: %d)\n", c.Name, c.Missing)
		for _, l := range c.Levels {
			fmt.Fprintf(&b, "    %-6s %6d\n", l.Value, l.Count)
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Event distribution: %d events, %d censored\n", s.Events, s.Censored)
	fmt.Fprintf(&b, "Event rate: %.2f%%\n", 100*s.EventRate)
	return b.Bytes()
}

// RenderKM renders the Kaplan-Meier event table and the survival
// probabilities at the requested time points. Times past the last
// observed follow-up are annotated as extrapolated.
func RenderKM(e *surv.KMEstimate, reportTimes []float64) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Kaplan-Meier estimates (summary)\n%s\n\n", rule(40))

	fmt.Fprintf(&b, "Event table:\n")
	fmt.Fprintf(&b, "  %10s %8s %7s %9s %9s %9s %9s\n",
		"time", "at_risk", "events", "censored", "survival", "lower", "upper")
	for _, p := range e.Points {
		fmt.Fprintf(&b, "  %10.4f %8d %7d %9d %9.4f %9.4f %9.4f\n",
			p.Time, p.AtRisk, p.Events, p.Censored, p.Survival, p.Lower, p.Upper)
	}
	b.WriteString("\n")

	if med, ok := e.MedianSurvival(); ok {
		fmt.Fprintf(&b, "Median survival time: %.4f\n\n", med)
	} else {
		fmt.Fprintf(&b, "Median survival time: not reached\n\n")
	}

	fmt.Fprintf(&b, "Survival probabilities at selected times (%.0f%% CI):\n", 100*e.CILevel)
	for _, t := range reportTimes {
		p := e.SurvivalAt(t)
		fmt.Fprintf(&b, "  time %g: %.4f  [%.4f, %.4f]", t, p.Survival, p.Lower, p.Upper)
		if p.Extrapolated {
			fmt.Fprintf(&b, "  (extrapolated: beyond last observed time %.4f)", e.MaxTime())
		}
		b.WriteString("\n")
	}
	return b.Bytes()
}

// RenderCox renders the fitted model summary.
func RenderCox(m *surv.CoxModel) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Cox Proportional Hazards Model Summary\n%s\n\n", rule(60))
	fmt.Fprintf(&b, "Subjects: %d  events: %d  excluded for missing covariates: %d\n",
		m.N, m.EventsObserved, m.Dropped)
	fmt.Fprintf(&b, "Partial log-likelihood: %.4f  (null: %.4f)\n", m.LogLikelihood, m.NullLogLikelihood)
	fmt.Fprintf(&b, "Concordance: %.3f\n", m.Concordance)
	fmt.Fprintf(&b, "Newton-Raphson iterations: %d\n\n", m.Iterations)

	ci := fmt.Sprintf("%.0f%% CI", 100*m.CILevel)
	fmt.Fprintf(&b, "  %-12s %10s %10s %9s %8s %9s  %s\n",
		"covariate", "coef", "se(coef)", "z", "p", "HR", ci)
	for _, c := range m.Coefficients {
		fmt.Fprintf(&b, "  %-12s %10.4f %10.4f %9.3f %8s %9.4f  [%.4f, %.4f]\n",
			c.Name, c.Beta, c.SE, c.Z, pval(c.P), c.HR, c.HRLower, c.HRUpper)
	}
	return b.Bytes()
}

// RenderPH renders the proportional-hazards assumption test.
func RenderPH(r *surv.PHTestResult) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Proportional Hazards Test (%s time transform)\n%s\n\n", r.TimeTransform, rule(60))
	fmt.Fprintf(&b, "  %-12s %9s %8s  %s\n", "covariate", "chi2", "p", "verdict")
	for _, c := range r.Covariates {
		fmt.Fprintf(&b, "  %-12s %9.3f %8s  %s\n", c.Name, c.Stat, pval(c.P), verdict(c.OK))
	}
	fmt.Fprintf(&b, "  %-12s %9.3f %8s  %s  (df=%d)\n",
		"GLOBAL", r.GlobalStat, pval(r.GlobalP), verdict(r.GlobalOK), r.GlobalDF)
	b.WriteString("\n")
	if r.GlobalOK {
		fmt.Fprintf(&b, "The proportional-hazards assumption is not rejected at alpha=%.2f.\n", r.Alpha)
	} else {
		fmt.Fprintf(&b, "The proportional-hazards assumption is rejected at alpha=%.2f.\n", r.Alpha)
		fmt.Fprintf(&b, "Consider a stratified Cox model or time-varying covariate effects.\n")
	}
	return b.Bytes()
}

// Interpretation bundles the fitted results for the narrative summary.
type Interpretation struct {
	Summary     *describe.Summary
	KM          *surv.KMEstimate
	ReportTimes []float64
	Cox         *surv.CoxModel
	PH          *surv.PHTestResult
}

// RenderInterpretation renders the final narrative: headline numbers
// from every stage, with the treatment effect called out.
func RenderInterpretation(in Interpretation) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "Final Interpretation\n%s\n\n", rule(40))

	if in.Summary != nil {
		fmt.Fprintf(&b, "Cohort: %d subjects, event rate %.2f%% (%d events, %d censored).\n\n",
			in.Summary.Rows, 100*in.Summary.EventRate, in.Summary.Events, in.Summary.Censored)
	}
	if in.KM != nil {
		if med, ok := in.KM.MedianSurvival(); ok {
			fmt.Fprintf(&b, "Median survival: %.2f.\n", med)
		} else {
			fmt.Fprintf(&b, "Median survival: not reached within follow-up.\n")
		}
		for _, t := range in.ReportTimes {
			p := in.KM.SurvivalAt(t)
			if p.Extrapolated {
				continue
			}
			fmt.Fprintf(&b, "Survival at %g: %.1f%% (%.1f%%-%.1f%%).\n",
				t, 100*p.Survival, 100*p.Lower, 100*p.Upper)
		}
		b.WriteString("\n")
	}
	if in.Cox != nil {
		for _, c := range in.Cox.Coefficients {
			direction := "increased"
			change := 100 * (c.HR - 1)
			if c.HR < 1 {
				direction = "reduced"
				change = 100 * (1 - c.HR)
			}
			fmt.Fprintf(&b, "%s: %.1f%% %s hazard per unit (HR=%.3f, %.0f%% CI %.3f-%.3f, p=%s).\n",
				c.Name, change, direction, c.HR, 100*in.Cox.CILevel, c.HRLower, c.HRUpper, pval(c.P))
		}
		b.WriteString("\n")
	}
	if in.PH != nil {
		if in.PH.GlobalOK {
			fmt.Fprintf(&b, "The proportional-hazards assumption holds (global p=%s); the hazard ratios above are interpretable as constant relative risks.\n",
				pval(in.PH.GlobalP))
		} else {
			fmt.Fprintf(&b, "The proportional-hazards assumption is violated (global p=%s); report the hazard ratios as time-averaged effects and consider a stratified model.\n",
				pval(in.PH.GlobalP))
		}
	}
	return b.Bytes()
}

// WriteEDA writes the EDA deliverable and returns its path.
func WriteEDA(dir string, s *describe.Summary) (string, error) {
	return writeFile(dir, FileEDA, RenderEDA(s))
}

// WriteKM writes the Kaplan-Meier deliverable and returns its path.
func WriteKM(dir string, e *surv.KMEstimate, reportTimes []float64) (string, error) {
	return writeFile(dir, FileKM, RenderKM(e, reportTimes))
}

// WriteCox writes the model summary deliverable and returns its path.
func WriteCox(dir string, m *surv.CoxModel) (string, error) {
	return writeFile(dir, FileCox, RenderCox(m))
}

// WritePH writes the PH-test deliverable and returns its path.
func WritePH(dir string, r *surv.PHTestResult) (string, error) {
	return writeFile(dir, FilePH, RenderPH(r))
}

// WriteInterpretation writes the narrative deliverable and returns its path.
func WriteInterpretation(dir string, in Interpretation) (string, error) {
	return writeFile(dir, FileInterpretation, RenderInterpretation(in))
}

func writeFile(dir, name string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

// num formats a statistic, keeping NaN (all-missing columns) readable.
func num(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return fmt.Sprintf("%.4f", v)
}

// pval formats a p-value, flooring tiny values instead of printing 0.
func pval(p float64) string {
	if p < 0.0001 {
		return "<1e-04"
	}
	return fmt.Sprintf("%.4f", p)
}

func verdict(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
