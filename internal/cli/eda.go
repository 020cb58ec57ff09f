package cli

import (
	"github.com/spf13/cobra"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/dataset"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/describe"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/report"
)

// StageOptions holds the flags shared by the single-stage commands.
type StageOptions struct {
	*RootOptions
	Input   string
	OutDir  string
	Profile string
}

func addStageFlags(cmd *cobra.Command, opts *StageOptions) {
	cmd.Flags().StringVar(&opts.Input, "input", "", "path to the cohort CSV (required)")
	cmd.Flags().StringVar(&opts.OutDir, "outdir", "", "directory for deliverables (required)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "path to a YAML analysis profile")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("outdir")
}

// loadStage loads the profile and the cohort for a single-stage command.
func loadStage(opts *StageOptions) (Profile, *dataset.Table, error) {
	prof, err := LoadProfile(opts.Profile)
	if err != nil {
		return prof, nil, WrapExitError(ExitCommandError, "failed to load profile", err)
	}
	t, err := dataset.Load(opts.Input)
	if err != nil {
		code, errCode := classifyAnalysisError(err)
		return prof, nil, WrapExitError(code, "failed to load dataset ["+errCode+"]", err)
	}
	return prof, t, nil
}

// NewEDACommand creates the eda command: descriptive statistics only.
func NewEDACommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "eda",
		Short:         "Write the descriptive-statistics deliverable",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, t, err := loadStage(opts)
			if err != nil {
				return err
			}
			path, err := report.WriteEDA(opts.OutDir, describe.Describe(t))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to write EDA summary", err)
			}
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if opts.Format == "json" {
				return f.Success(map[string]any{"path": path, "rows": t.Len()})
			}
			return f.Success(path)
		},
	}
	addStageFlags(cmd, opts)
	return cmd
}
