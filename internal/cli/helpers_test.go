package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ppc/internal/hostinfo"
	"github.com/roach88/ppc/internal/store"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testOptions returns options with a frozen timer, host, clock and IDs so
// command output is byte-for-byte reproducible.
func testOptions() *RootOptions {
	return &RootOptions{
		Timer: func() float64 { return 0 },
		Host: func(context.Context) (*hostinfo.Info, error) {
			return &hostinfo.Info{OS: "linux", Arch: "amd64", GoVersion: "go1.25.0", GOMAXPROCS: 4}, nil
		},
		IDs: store.NewFixedGenerator("run-1", "run-2", "run-3", "run-4", "run-5", "run-6"),
		Now: func() time.Time { return fixedTime },
	}
}

// execute runs the root command with args and captures both streams.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// decodeData unmarshals the data field of a JSON CLIResponse into v.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// decodeError unmarshals a JSON error CLIResponse.
func decodeError(t *testing.T, out string) *CLIError {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func newGolden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
