package cli

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/dataset"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/pipeline"
)

// Profile is the YAML analysis profile: the analyst-chosen settings
// shared by the simulate and analysis commands. Every field has a
// default, so the file is optional and may be partial.
type Profile struct {
	// ReportTimes are the time points where KM survival is reported.
	ReportTimes []float64 `yaml:"report_times"`

	// CILevel is the confidence level for all intervals.
	CILevel float64 `yaml:"ci_level"`

	// PHAlpha is the significance level of the PH assumption test.
	PHAlpha float64 `yaml:"ph_alpha"`

	// Simulate configures the cohort simulator.
	Simulate SimulateProfile `yaml:"simulate"`
}

// SimulateProfile configures the cohort simulator.
type SimulateProfile struct {
	N     int           `yaml:"n"`
	Seed  uint64        `yaml:"seed"`
	Truth dataset.Truth `yaml:"truth"`
}

// DefaultProfile returns the profile used when no file is given.
func DefaultProfile() Profile {
	return Profile{
		ReportTimes: []float64{1, 3, 6, 12, 24, 36},
		CILevel:     0.95,
		PHAlpha:     0.05,
		Simulate: SimulateProfile{
			N:     400,
			Seed:  20240915,
			Truth: dataset.DefaultTruth(),
		},
	}
}

// LoadProfile reads and validates a profile file, filling omitted
// fields from the defaults. An empty path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	prof := DefaultProfile()
	if path == "" {
		return prof, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return prof, fmt.Errorf("read profile: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&prof); err != nil {
		return prof, fmt.Errorf("parse profile %s: %w", path, err)
	}

	if err := prof.validate(); err != nil {
		return prof, fmt.Errorf("profile %s: %w", path, err)
	}
	return prof, nil
}

func (p Profile) validate() error {
	if p.CILevel <= 0 || p.CILevel >= 1 {
		return fmt.Errorf("ci_level must be in (0, 1), got %g", p.CILevel)
	}
	if p.PHAlpha <= 0 || p.PHAlpha >= 1 {
		return fmt.Errorf("ph_alpha must be in (0, 1), got %g", p.PHAlpha)
	}
	if len(p.ReportTimes) == 0 {
		return fmt.Errorf("report_times must not be empty")
	}
	for _, t := range p.ReportTimes {
		if t < 0 {
			return fmt.Errorf("report_times must be non-negative, got %g", t)
		}
	}
	if !sort.Float64sAreSorted(p.ReportTimes) {
		return fmt.Errorf("report_times must be ascending")
	}
	if p.Simulate.N <= 0 {
		return fmt.Errorf("simulate.n must be positive, got %d", p.Simulate.N)
	}
	return nil
}

// Params converts the profile to pipeline parameters.
func (p Profile) Params() pipeline.Params {
	return pipeline.Params{
		ReportTimes: p.ReportTimes,
		CILevel:     p.CILevel,
		PHAlpha:     p.PHAlpha,
	}
}
