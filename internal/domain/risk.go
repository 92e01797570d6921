package domain

// RiskTier buckets a probability into the three-level scale used everywhere
// downstream. The integer ordering (Low < Moderate < High) is relied upon.
type RiskTier int

const (
	TierLow RiskTier = iota
	TierModerate
	TierHigh
)

// String returns the display label matching the classifier's own wording.
func (t RiskTier) String() string {
	switch t {
	case TierLow:
		return "Low Risk"
	case TierModerate:
		return "Moderate Risk"
	case TierHigh:
		return "High Risk"
	}
	return "Unknown Risk"
}

// RiskThresholds are the tier cut points. They are configuration, not
// invariants: the backend may define different canonical values.
type RiskThresholds struct {
	Low  float64
	High float64
}

// DefaultRiskThresholds mirror the observed backend behavior.
var DefaultRiskThresholds = RiskThresholds{Low: 0.33, High: 0.66}

// DeriveRiskTier maps a probability to a tier: p < Low yields TierLow,
// p < High yields TierModerate, anything else TierHigh. The same policy
// applies regardless of which model produced the probability.
func DeriveRiskTier(p float64, t RiskThresholds) RiskTier {
	switch {
	case p < t.Low:
		return TierLow
	case p < t.High:
		return TierModerate
	default:
		return TierHigh
	}
}

// ParseRiskTier maps a backend risk label onto a tier. The second return is
// false when the label is absent or unrecognized and the tier must be derived.
func ParseRiskTier(label string) (RiskTier, bool) {
	switch label {
	case "Low Risk", "Low":
		return TierLow, true
	case "Moderate Risk", "Moderate", "Medium Risk":
		return TierModerate, true
	case "High Risk", "High":
		return TierHigh, true
	}
	return TierLow, false
}
