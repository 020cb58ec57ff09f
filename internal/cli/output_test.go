package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExitError_Error tests message formatting with and without a
// wrapped error.
func TestExitError_Error(t *testing.T) {
	bare := &ExitError{Code: ExitFailure, Message: "fit failed"}
	assert.Equal(t, "fit failed", bare.Error())

	wrapped := WrapExitError(ExitCommandError, "failed to load profile", errors.New("no such file"))
	assert.Equal(t, "failed to load profile: no such file", wrapped.Error())
	assert.Equal(t, "no such file", wrapped.Unwrap().Error())
}

// TestGetExitCode tests code extraction across error shapes.
func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil-like plain error", errors.New("boom"), ExitFailure},
		{"direct exit error", &ExitError{Code: ExitCommandError, Message: "bad flag"}, ExitCommandError},
		{"wrapped exit error", fmt.Errorf("context: %w", &ExitError{Code: ExitCommandError, Message: "x"}), ExitCommandError},
		{"analysis failure", WrapExitError(ExitFailure, "did not converge", nil), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

// TestOutputFormatter_JSON tests the response envelope in json mode.
func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]any{"rows": 42}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)

	buf.Reset()
	require.NoError(t, f.Error(CodeSchema, "bad column", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeSchema, resp.Error.Code)
}

// TestOutputFormatter_Text tests plain text mode, including verbose
// details.
func TestOutputFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success("done"))
	assert.Equal(t, "done\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Error(CodeInput, "missing input", "path was empty"))
	assert.Contains(t, buf.String(), "Error [E_INPUT]: missing input")
	assert.NotContains(t, buf.String(), "path was empty")

	buf.Reset()
	f.Verbose = true
	require.NoError(t, f.Error(CodeInput, "missing input", "path was empty"))
	assert.Contains(t, buf.String(), "Details: path was empty")
}
