package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/dataset"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/pipeline"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/store"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/surv"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Input    string
	OutDir   string
	Profile  string
	Database string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analysis pipeline",
		Long: `Run all four stages against a cohort CSV: descriptive statistics,
Kaplan-Meier estimation, the Cox proportional-hazards model, and the PH
assumption test. Deliverables are written into the output directory.

Example:
  churnsurv run --input simulated_survival_data.csv --outdir results
  churnsurv run --input cohort.csv --outdir results --db runs.db --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Input, "input", "", "path to the cohort CSV (required)")
	cmd.Flags().StringVar(&opts.OutDir, "outdir", "", "directory for deliverables (required)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "path to a YAML analysis profile")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the provenance SQLite database")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("outdir")

	return cmd
}

// RunSummary is the machine-readable result of a full run.
type RunSummary struct {
	RunID     string   `json:"run_id,omitempty"`
	Input     string   `json:"input"`
	Rows      int      `json:"rows"`
	Events    int      `json:"events"`
	Dropped   int      `json:"dropped"`
	PHPass    bool     `json:"ph_pass"`
	Artifacts []string `json:"artifacts"`
}

func runPipeline(opts *RunOptions, cmd *cobra.Command) error {
	prof, err := LoadProfile(opts.Profile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load profile", err)
	}

	res, runErr := pipeline.Run(opts.Input, opts.OutDir, prof.Params(), slog.Default())

	runID := ""
	if opts.Database != "" && res != nil && res.Rows > 0 {
		runID = recordProvenance(cmd.Context(), opts, res, runErr == nil)
	}

	if runErr != nil {
		code, errCode := classifyAnalysisError(runErr)
		return WrapExitError(code, fmt.Sprintf("pipeline failed [%s]", errCode), runErr)
	}

	summary := RunSummary{
		RunID:     runID,
		Input:     res.InputPath,
		Rows:      res.Rows,
		Events:    res.Events,
		Dropped:   res.Dropped,
		PHPass:    res.PH.GlobalOK,
		Artifacts: res.Files.List(),
	}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return f.Success(summary)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis complete: %d subjects, %d events.\n", summary.Rows, summary.Events)
	fmt.Fprintf(&b, "Deliverables in %s:\n", opts.OutDir)
	for _, p := range summary.Artifacts {
		fmt.Fprintf(&b, "  %s\n", p)
	}
	if runID != "" {
		fmt.Fprintf(&b, "Recorded as run %s", runID)
	} else {
		b.WriteString("Provenance not recorded (no --db)")
	}
	return f.Success(b.String())
}

// recordProvenance writes the run record; failures are logged and
// swallowed so provenance never invalidates finished statistics.
func recordProvenance(ctx context.Context, opts *RunOptions, res *pipeline.Result, converged bool) string {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		slog.Error("provenance database unavailable", "path", opts.Database, "error", err)
		return ""
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing provenance database", "error", closeErr)
		}
	}()

	digest, err := store.DigestFile(opts.Input)
	if err != nil {
		slog.Error("could not digest input", "error", err)
		return ""
	}

	run := store.Run{
		ID:          store.NewRunID(),
		CreatedAt:   time.Now(),
		InputPath:   opts.Input,
		InputSHA256: digest,
		Rows:        res.Rows,
		Events:      res.Events,
		Dropped:     res.Dropped,
		Converged:   converged,
		Artifacts:   res.Files.List(),
	}
	if res.Cox != nil {
		run.Iterations = res.Cox.Iterations
	}
	if res.PH != nil {
		pass := res.PH.GlobalOK
		run.GlobalPHPass = &pass
	}
	if err := st.RecordRun(ctx, run); err != nil {
		slog.Error("could not record run", "error", err)
		return ""
	}
	slog.Info("run recorded", "run_id", run.ID, "db", opts.Database)
	return run.ID
}

// classifyAnalysisError maps a pipeline error to an exit code and a
// machine-readable error code.
func classifyAnalysisError(err error) (int, string) {
	switch {
	case dataset.IsFormatError(err):
		return ExitFailure, CodeSchema
	case surv.IsConvergenceError(err):
		return ExitFailure, CodeConvergence
	case errors.Is(err, os.ErrNotExist):
		return ExitCommandError, CodeInput
	default:
		return ExitCommandError, CodeIO
	}
}
