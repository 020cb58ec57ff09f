// Command churnsurv is the survival-analysis pipeline CLI.
package main

import (
	"fmt"
	"os"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
