package trace

// TraceSummary aggregates statistics from a DecisionTrace.
type TraceSummary struct {
	TotalDecisions int
	// Outcomes counts decisions per engine, then per decision label.
	Outcomes map[string]map[string]int
	// TrustRaised and TrustLowered count feedback calls that moved trust.
	TrustRaised  int
	TrustLowered int
	FinalTrust   float64 // TrustAfter of the last feedback record; 0 if none
}

// Summarize computes aggregate statistics from a DecisionTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(dt *DecisionTrace) *TraceSummary {
	summary := &TraceSummary{
		Outcomes: make(map[string]map[string]int),
	}
	if dt == nil {
		return summary
	}

	summary.TotalDecisions = len(dt.Decisions)
	for _, d := range dt.Decisions {
		byLabel, ok := summary.Outcomes[d.Engine]
		if !ok {
			byLabel = make(map[string]int)
			summary.Outcomes[d.Engine] = byLabel
		}
		byLabel[d.Decision]++
	}

	for _, f := range dt.Feedback {
		switch {
		case f.TrustAfter > f.TrustBefore:
			summary.TrustRaised++
		case f.TrustAfter < f.TrustBefore:
			summary.TrustLowered++
		}
	}
	if n := len(dt.Feedback); n > 0 {
		summary.FinalTrust = dt.Feedback[n-1].TrustAfter
	}

	return summary
}
