package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ppc/internal/perf"
	"github.com/roach88/ppc/internal/store"
	"github.com/roach88/ppc/internal/tasks"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Task     string
	Mode     string
	Suite    string
	Limit    int
	Best     bool
}

// HistoryEntry is one stored run in history output.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	Suite      string    `json:"suite,omitempty"`
	Task       string    `json:"task"`
	Mode       perf.Mode `json:"mode"`
	Runs       int       `json:"runs"`
	Size       int       `json:"size"`
	MeanSec    float64   `json:"mean_sec"`
	StdevSec   float64   `json:"stdev_sec"`
	Failures   int       `json:"failures"`
	Pass       bool      `json:"pass"`
	Host       string    `json:"host,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded benchmark runs",
		Long: `List benchmark runs recorded with --db, newest first.

With --best, print only the fastest passing run for --task and --mode.

Examples:
  ppc history --db ./ppc.db
  ppc history --db ./ppc.db --task sorting_threads --mode task_run --limit 5
  ppc history --db ./ppc.db --task sorting_seq --mode pipeline --best`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newFormatter(opts.RootOptions, cmd).Fail(runHistory(opts, cmd))
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Task, "task", "", "only runs of this task")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "only runs in this mode (pipeline|task_run)")
	cmd.Flags().StringVar(&opts.Suite, "suite", "", "only runs from this suite")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs (0 for all)")
	cmd.Flags().BoolVar(&opts.Best, "best", false, "show the fastest passing run for --task and --mode")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	mode := perf.Mode(opts.Mode)
	switch mode {
	case "", perf.ModePipeline, perf.ModeTaskRun:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid mode %q: must be pipeline or task_run", opts.Mode)).WithCode(ErrCodeInvalidArgs)
	}
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "limit must not be negative").WithCode(ErrCodeInvalidArgs)
	}
	task := ""
	if opts.Task != "" {
		task = tasks.Normalize(opts.Task)
	}

	ctx := cmd.Context()
	s, err := openStore(opts.RootOptions, opts.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	var runs []store.Run
	if opts.Best {
		if task == "" || mode == "" {
			return NewExitError(ExitCommandError, "--best requires --task and --mode").WithCode(ErrCodeInvalidArgs)
		}
		best, err := s.Best(ctx, task, mode)
		if err != nil {
			return WrapExitError(ExitFailure, "no best run", err).WithCode(ErrCodeDatabase)
		}
		runs = []store.Run{best}
	} else {
		runs, err = s.ListRuns(ctx, store.Filter{Task: task, Mode: mode, Suite: opts.Suite, Limit: opts.Limit})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read history", err).WithCode(ErrCodeDatabase)
		}
	}

	entries := make([]HistoryEntry, 0, len(runs))
	for _, run := range runs {
		entries = append(entries, newHistoryEntry(run))
	}

	out := newFormatter(opts.RootOptions, cmd)
	if out.JSON() {
		return out.Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tTASK\tMODE\tRUNS\tSIZE\tMEAN\tSTDEV\tPASS\tRECORDED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%t\t%s\n",
			e.Seq, e.Task, e.Mode, e.Runs, e.Size,
			perf.FormatSeconds(e.MeanSec), perf.FormatSeconds(e.StdevSec),
			e.Pass, e.RecordedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func newHistoryEntry(run store.Run) HistoryEntry {
	st := run.Results.Stats()
	e := HistoryEntry{
		ID:         run.ID,
		Seq:        run.Seq,
		Suite:      run.Suite,
		Task:       run.Results.Name,
		Mode:       run.Results.Mode,
		Runs:       run.Results.NumRunning,
		Size:       run.Size,
		MeanSec:    st.Mean,
		StdevSec:   st.Stdev,
		Failures:   run.Results.Failures,
		Pass:       run.Results.Pass,
		RecordedAt: run.RecordedAt,
	}
	if run.Host != nil {
		e.Host = run.Host.String()
	}
	return e
}
