package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/parcel-sim/parcel-sim/sim/trace"
)

// printTraceSummary renders a trace summary after the metrics block.
func printTraceSummary(w io.Writer, summary *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Decision Trace ===")
	fmt.Fprintf(w, "Slot Claims          : %d (%d claimed, %d failed)\n", summary.TotalClaims, summary.ClaimedCount, summary.FailedCount)
	fmt.Fprintf(w, "Pickups              : %d (%d boxes)\n", summary.Pickups, summary.BoxesPicked)
	fmt.Fprintf(w, "Admissions           : %d\n", summary.Admissions)
	fmt.Fprintf(w, "Calendar Events      : %d\n", summary.Events)

	rows := make([]int, 0, len(summary.RowDistribution))
	for row := range summary.RowDistribution {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	for _, row := range rows {
		fmt.Fprintf(w, "  row %d: %d claims\n", row, summary.RowDistribution[row])
	}

	reasons := make([]string, 0, len(summary.FailureReasons))
	for reason := range summary.FailureReasons {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  failed (%s): %d\n", reason, summary.FailureReasons[reason])
	}

	names := make([]string, 0, len(summary.EventCounts))
	for name := range summary.EventCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s: %d\n", name, summary.EventCounts[name])
	}
}
