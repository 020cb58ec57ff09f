package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command: list recorded runs.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		Long: `List runs recorded in the provenance database, newest first.

Example:
  churnsurv history --db runs.db
  churnsurv history --db runs.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the provenance SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// HistoryEntry is the machine-readable form of one recorded run.
type HistoryEntry struct {
	RunID     string   `json:"run_id"`
	CreatedAt string   `json:"created_at"`
	Input     string   `json:"input"`
	SHA256    string   `json:"sha256"`
	Rows      int      `json:"rows"`
	Events    int      `json:"events"`
	Converged bool     `json:"converged"`
	PHPass    *bool    `json:"ph_pass,omitempty"`
	Artifacts []string `json:"artifacts"`
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open provenance database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		entries := make([]HistoryEntry, 0, len(runs))
		for _, r := range runs {
			entries = append(entries, HistoryEntry{
				RunID:     r.ID,
				CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
				Input:     r.InputPath,
				SHA256:    r.InputSHA256,
				Rows:      r.Rows,
				Events:    r.Events,
				Converged: r.Converged,
				PHPass:    r.GlobalPHPass,
				Artifacts: r.Artifacts,
			})
		}
		return f.Success(entries)
	}

	if len(runs) == 0 {
		return f.Success("No recorded runs.")
	}
	var b strings.Builder
	for _, r := range runs {
		status := "converged"
		if !r.Converged {
			status = "NOT CONVERGED"
		}
		ph := "n/a"
		if r.GlobalPHPass != nil {
			if *r.GlobalPHPass {
				ph = "pass"
			} else {
				ph = "fail"
			}
		}
		fmt.Fprintf(&b, "%s  %s  %s  rows=%d events=%d  %s  ph=%s\n",
			r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.InputPath,
			r.Rows, r.Events, status, ph)
	}
	return f.Success(strings.TrimRight(b.String(), "\n"))
}
