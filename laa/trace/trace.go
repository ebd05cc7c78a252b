package trace

import "github.com/google/uuid"

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every engine decision and feedback call.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// DecisionTrace collects decision records for one evaluation run.
// Not safe for concurrent use.
type DecisionTrace struct {
	RunID     string
	Level     TraceLevel
	Decisions []DecisionRecord
	Feedback  []FeedbackRecord
}

// NewDecisionTrace creates a DecisionTrace with a fresh run ID.
func NewDecisionTrace(level TraceLevel) *DecisionTrace {
	return &DecisionTrace{
		RunID:     uuid.NewString(),
		Level:     level,
		Decisions: make([]DecisionRecord, 0),
		Feedback:  make([]FeedbackRecord, 0),
	}
}

// Enabled reports whether records are being kept. Safe on a nil trace.
func (dt *DecisionTrace) Enabled() bool {
	return dt != nil && dt.Level == TraceLevelDecisions
}

// RecordDecision appends a decision record. No-op when tracing is disabled.
func (dt *DecisionTrace) RecordDecision(record DecisionRecord) {
	if !dt.Enabled() {
		return
	}
	dt.Decisions = append(dt.Decisions, record)
}

// RecordFeedback appends a feedback record. No-op when tracing is disabled.
func (dt *DecisionTrace) RecordFeedback(record FeedbackRecord) {
	if !dt.Enabled() {
		return
	}
	dt.Feedback = append(dt.Feedback, record)
}
