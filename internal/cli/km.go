package cli

import (
	"github.com/spf13/cobra"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/report"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/surv"
)

// NewKMCommand creates the km command: Kaplan-Meier estimates and plot.
func NewKMCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "km",
		Short:         "Write the Kaplan-Meier estimates and plot",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, t, err := loadStage(opts)
			if err != nil {
				return err
			}
			est, err := surv.FitKM(t.Times(), t.EventFlags(), prof.CILevel)
			if err != nil {
				return WrapExitError(ExitFailure, "kaplan-meier fit failed", err)
			}
			path, err := report.WriteKM(opts.OutDir, est, prof.ReportTimes)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to write KM estimates", err)
			}
			plotPath, err := report.WriteKMPlot(opts.OutDir, est)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to write KM plot", err)
			}
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
			if opts.Format == "json" {
				return f.Success(map[string]any{"estimates": path, "plot": plotPath})
			}
			return f.Success(path + "\n" + plotPath)
		},
	}
	addStageFlags(cmd, opts)
	return cmd
}
