package perf

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	ErrNotPopulated      = errors.New("perf results not populated")
	ErrTimeLimitExceeded = errors.New("task execution time exceeds limit")
)

var timeUnits = []struct {
	scale float64
	name  string
}{
	{3600, "h"},
	{60, "m"},
	{1, "s"},
	{1e-3, "ms"},
	{1e-6, "µs"},
	{1e-9, "ns"},
}

// unitFor picks the largest unit in which sec is at least 1.
func unitFor(sec float64) (float64, string) {
	for _, u := range timeUnits {
		if sec >= u.scale {
			return u.scale, u.name
		}
	}
	return 1e-9, "ns"
}

// FormatSeconds renders sec in the largest unit that keeps it at least 1,
// e.g. "250.00 ms".
func FormatSeconds(sec float64) string {
	scale, unit := unitFor(sec)
	return fmt.Sprintf("%.2f %s", sec/scale, unit)
}

// PrintPerfStatistic writes a one-line summary of r to w:
//
//	<name>:<mode>:<mean seconds> (<mean> ± <σ>, range <min> … <max>, <n> runs)
//
// It does not modify r. After printing, it returns ErrTimeLimitExceeded if
// the mean repetition is over r.MaxTime.
func PrintPerfStatistic(w io.Writer, r *Results) error {
	if r == nil {
		return ErrNilResults
	}
	if !r.Populated() {
		return ErrNotPopulated
	}

	st := r.Stats()
	scale, unit := unitFor(st.Mean)
	line := fmt.Sprintf("%s:%s:%.10f (%s ± %s, range %s … %s, %s",
		r.Name,
		r.Mode,
		st.Mean,
		color.GreenString("%.2f %s", st.Mean/scale, unit),
		color.GreenString("%.2f %s", st.Stdev/scale, unit),
		color.CyanString("%.2f %s", st.Min/scale, unit),
		color.RedString("%.2f %s", st.Max/scale, unit),
		color.HiBlackString("%d runs", r.NumRunning),
	)
	if r.Failures > 0 {
		line += ", " + color.RedString("%d failed", r.Failures)
	}
	if _, err := fmt.Fprintln(w, line+")"); err != nil {
		return err
	}

	if r.Exceeded() {
		return fmt.Errorf("%w: %.10f s > %.1f s", ErrTimeLimitExceeded, st.Mean, r.MaxTime)
	}
	return nil
}
