package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalClaims     int
	ClaimedCount    int
	FailedCount     int
	Pickups         int
	BoxesPicked     int
	Admissions      int
	Events          int
	RowDistribution map[int]int    // row → successful claims
	FailureReasons  map[string]int // reason → failed claims
	EventCounts     map[string]int // event name → firings
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		RowDistribution: make(map[int]int),
		FailureReasons:  make(map[string]int),
		EventCounts:     make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalClaims = len(st.Claims)
	for _, c := range st.Claims {
		if c.Claimed {
			summary.ClaimedCount++
			summary.RowDistribution[c.Row]++
		} else {
			summary.FailedCount++
			summary.FailureReasons[c.Reason]++
		}
	}

	summary.Pickups = len(st.Pickups)
	for _, p := range st.Pickups {
		summary.BoxesPicked += p.Boxes
	}

	summary.Admissions = len(st.Admissions)
	summary.Events = len(st.Events)
	for _, e := range st.Events {
		summary.EventCounts[e.Name]++
	}

	return summary
}
