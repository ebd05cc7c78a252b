// Package trace provides decision-trace recording for engine analysis.
// It has no dependencies on laa/ and stores pure data types.
package trace

// DecisionRecord captures a single engine decision.
type DecisionRecord struct {
	Engine     string  // engine name, e.g. "ski-rental"
	Step       int     // caller-defined step: day, access number, trial index
	Decision   string  // outcome label, e.g. "buy", "rent", "hit", "evict"
	Prediction float64 // scalar prediction used (0 when not scalar)
	Trust      float64 // trust in effect for the decision
	Detail     string  // free-form context
}

// FeedbackRecord captures an adaptive trust update.
type FeedbackRecord struct {
	Engine      string
	Prediction  float64
	Actual      float64
	TrustBefore float64
	TrustAfter  float64
}
