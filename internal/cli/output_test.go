package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ppc/internal/store"
	"github.com/roach88/ppc/internal/suite"
	"github.com/roach88/ppc/internal/tasks"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success([]TaskInfo{{Name: "sorting_seq", DefaultSize: 16}}))

	var infos []TaskInfo
	decodeData(t, buf.String(), &infos)
	assert.Equal(t, []TaskInfo{{Name: "sorting_seq", DefaultSize: 16}}, infos)
}

func TestOutputFormatter_ErrorOnlyInJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	text := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, text.Error(ErrCodeSuite, "bad suite", nil))
	assert.Empty(t, buf.String())

	formatter := &OutputFormatter{Format: "json", Writer: buf}
	require.NoError(t, formatter.Error(ErrCodeSuite, "bad suite", []string{"benchmarks[0]: task is required"}))

	cliErr := decodeError(t, buf.String())
	assert.Equal(t, ErrCodeSuite, cliErr.Code)
	assert.Equal(t, "bad suite", cliErr.Message)
	assert.Equal(t, []interface{}{"benchmarks[0]: task is required"}, cliErr.Details)
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	assert.NoError(t, formatter.Fail(nil))
	assert.Empty(t, buf.String())

	want := NewExitError(ExitFailure, "1 of 2 benchmark runs failed").
		WithCode(ErrCodeBenchFailed).
		WithDetails(BenchResult{Passed: 1, Failed: 1})
	got := formatter.Fail(want)
	assert.Same(t, want, got)
	assert.Equal(t, ExitFailure, GetExitCode(got))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string      `json:"code"`
			Message string      `json:"message"`
			Details BenchResult `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeBenchFailed, resp.Error.Code)
	assert.Equal(t, "1 of 2 benchmark runs failed", resp.Error.Message)
	assert.Equal(t, 1, resp.Error.Details.Failed)
}

func TestOutputFormatter_FailTextWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Fail(NewExitError(ExitCommandError, "boom"))
	assert.EqualError(t, err, "boom")
	assert.Empty(t, buf.String())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain", errors.New("boom"), ErrCodeGeneric},
		{"unknown task", WrapExitError(ExitCommandError, "unknown task", fmt.Errorf("%w: %q", tasks.ErrUnknownTask, "x")), ErrCodeUnknownTask},
		{"suite load", WrapExitError(ExitCommandError, "failed to load suite", &suite.LoadError{Code: suite.CodeReadFailed}), ErrCodeSuite},
		{"suite invalid inside load", &suite.LoadError{Code: suite.CodeInvalid, Err: suite.ErrInvalid}, ErrCodeSuite},
		{"flag validation", WrapExitError(ExitCommandError, "invalid arguments", fmt.Errorf("%w: runs", suite.ErrInvalid)), ErrCodeInvalidArgs},
		{"missing run", fmt.Errorf("best: %w", store.ErrNotFound), ErrCodeDatabase},
		{"explicit code wins", WrapExitError(ExitCommandError, "metrics", tasks.ErrUnknownTask).WithCode(ErrCodeMetrics), ErrCodeMetrics},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCode(tt.err))
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Processing %s", "nightly.yaml")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Processing nightly.yaml")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("host: %s", "linux/amd64")
	assert.Empty(t, out.String())
	assert.Equal(t, "host: linux/amd64\n", errOut.String())
}
