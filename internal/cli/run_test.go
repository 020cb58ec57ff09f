package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/dataset"
	"github.com/varshinir146-alt/Predicting-Customer-Churn-Survival-Analysis/internal/report"
)

// execute runs the churnsurv command tree with the given arguments and
// returns the combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestSimulateCommand tests the simulate command end to end: the CSV
// exists, conforms to the schema, and is deterministic given the seed.
func TestSimulateCommand(t *testing.T) {
	dir := t.TempDir()
	out1 := filepath.Join(dir, "a.csv")
	out2 := filepath.Join(dir, "b.csv")

	_, err := execute(t, "simulate", "--out", out1, "--n", "80", "--seed", "5")
	require.NoError(t, err)
	_, err = execute(t, "simulate", "--out", out2, "--n", "80", "--seed", "5")
	require.NoError(t, err)

	tbl, err := dataset.Load(out1)
	require.NoError(t, err)
	assert.Equal(t, 80, tbl.Len())

	b1, err := os.ReadFile(out1)
	require.NoError(t, err)
	b2, err := os.ReadFile(out2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

// TestSimulateCommand_RequiresOut tests the required flag.
func TestSimulateCommand_RequiresOut(t *testing.T) {
	_, err := execute(t, "simulate")
	assert.Error(t, err)
}

// TestRunCommand_EndToEnd tests simulate then run with provenance, then
// history against the same database.
func TestRunCommand_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cohort.csv")
	outdir := filepath.Join(dir, "results")
	db := filepath.Join(dir, "runs.db")

	_, err := execute(t, "simulate", "--out", input, "--n", "250", "--seed", "11")
	require.NoError(t, err)

	out, err := execute(t, "run", "--input", input, "--outdir", outdir, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Analysis complete")
	assert.Contains(t, out, "Recorded as run")

	for _, name := range []string{
		report.FileEDA, report.FileKM, report.FileKMPlot,
		report.FileCox, report.FilePH, report.FileInterpretation,
	} {
		assert.FileExists(t, filepath.Join(outdir, name))
	}

	hist, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, hist, input)
	assert.Contains(t, hist, "converged")
}

// TestRunCommand_JSON tests the machine-readable envelope.
func TestRunCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cohort.csv")

	_, err := execute(t, "simulate", "--out", input, "--n", "200", "--seed", "2")
	require.NoError(t, err)

	out, err := execute(t, "run", "--input", input,
		"--outdir", filepath.Join(dir, "results"), "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var summary RunSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 200, summary.Rows)
	assert.Len(t, summary.Artifacts, 6)
}

// TestRunCommand_MissingInput tests the exit code for an absent input
// file.
func TestRunCommand_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "run",
		"--input", filepath.Join(dir, "nope.csv"), "--outdir", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), CodeInput)
}

// TestRunCommand_SchemaError tests that malformed data exits with the
// analysis-failure code.
func TestRunCommand_SchemaError(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(input,
		[]byte("id,age,sex,treatment,biomarker,time,event\nS1,50,0,A,1.2,3,2\n"), 0o644))

	_, err := execute(t, "run", "--input", input, "--outdir", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), CodeSchema)
}

// TestEDACommand tests the single-stage command.
func TestEDACommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cohort.csv")
	outdir := filepath.Join(dir, "out")

	_, err := execute(t, "simulate", "--out", input, "--n", "40", "--seed", "1")
	require.NoError(t, err)

	out, err := execute(t, "eda", "--input", input, "--outdir", outdir)
	require.NoError(t, err)
	assert.Contains(t, out, report.FileEDA)
	assert.FileExists(t, filepath.Join(outdir, report.FileEDA))
}

// TestHistoryCommand_Empty tests listing against a fresh database.
func TestHistoryCommand_Empty(t *testing.T) {
	out, err := execute(t, "history", "--db", filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded runs.")
}

// TestRootCommand_InvalidFormat tests the persistent flag validation.
func TestRootCommand_InvalidFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.csv")
	_, err := execute(t, "simulate", "--out", out, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
