package domain

import "time"

// HistoryEntry is an audit snapshot of one completed prediction and its
// delivery outcome. History is additive bookkeeping only; the orchestrator's
// in-memory lifecycle never reads it back.
type HistoryEntry struct {
	AttemptID   string
	Selection   ModelSelection
	RiskTier    RiskTier
	Probability float64
	Delivered   bool
	CreatedAt   time.Time
}
