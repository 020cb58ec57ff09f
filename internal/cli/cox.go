package cli

import (
	"github.com/spf13/cobra"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/report"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/surv"
)

// NewCoxCommand creates the cox command: the PH regression and the PH
// assumption test, without the earlier stages.
func NewCoxCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "cox",
		Short:         "Write the Cox model summary and PH test",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, t, err := loadStage(opts)
			if err != nil {
				return err
			}
			design, err := surv.BuildDesign(t)
			if err != nil {
				return WrapExitError(ExitFailure, "design matrix failed", err)
			}
			model, err := surv.FitCox(design, surv.CoxOptions{CILevel: prof.CILevel})
			if err != nil {
				code, errCode := classifyAnalysisError(err)
				return WrapExitError(code, "cox fit failed ["+errCode+"]", err)
			}
			coxPath, err := report.WriteCox(opts.OutDir, model)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to write Cox summary", err)
			}
			ph, err := surv.TestProportionalHazards(model, prof.PHAlpha)
			if err != nil {
				return WrapExitError(ExitFailure, "ph test failed", err)
			}
			phPath, err := report.WritePH(opts.OutDir, ph)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to write PH test", err)
			}
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if opts.Format == "json" {
				return f.Success(map[string]any{
					"cox":     coxPath,
					"ph_test": phPath,
					"ph_pass": ph.GlobalOK,
				})
			}
			return f.Success(coxPath + "\n" + phPath)
		},
	}
	addStageFlags(cmd, opts)
	return cmd
}
