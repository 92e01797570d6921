// Package normalize converts the classifier endpoints' heterogeneous
// response shapes into the canonical PredictionRecord. Raw shapes never
// leave this package.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"

	"CardioSense/internal/domain"
)

// MalformedResponseError means the backend response violates the canonical
// contract. It is never silently coerced; a contract break must surface.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed prediction response: %s", e.Reason)
}

// Normalizer holds the tier-derivation thresholds applied when the backend
// does not label the risk itself.
type Normalizer struct {
	thresholds domain.RiskThresholds
}

// New builds a normalizer. Thresholds must satisfy 0 < Low < High or the
// Moderate band collapses; anything else falls back to the defaults.
func New(thresholds domain.RiskThresholds) *Normalizer {
	if thresholds.Low <= 0 || thresholds.High <= thresholds.Low {
		thresholds = domain.DefaultRiskThresholds
	}
	return &Normalizer{thresholds: thresholds}
}

// modelResponse tolerates the field-name variance observed across the model
// endpoints: the outcome, probability and risk label each appear under
// different keys depending on the serving path.
type modelResponse struct {
	ModelType   string   `json:"model_type"`
	Prediction  *int     `json:"prediction"`
	Outcome     *int     `json:"outcome"`
	Probability *float64 `json:"probability"`
	Prob        *float64 `json:"prob"`
	RiskLevel   string   `json:"risk_level"`
	Risk        string   `json:"risk"`
}

type compareResponse struct {
	LogisticRegression *modelResponse `json:"logistic_regression"`
	RandomForest       *modelResponse `json:"random_forest"`
	Recommendation     string         `json:"recommendation"`
}

// Normalize maps a raw gateway response onto the canonical result for the
// requested selection: one record for a single model, two records plus the
// backend's agreement note for a comparison.
func (n *Normalizer) Normalize(raw json.RawMessage, requested domain.ModelSelection) (domain.PredictionResult, error) {
	result := domain.PredictionResult{Selection: requested}

	if requested == domain.SelectBoth {
		var resp compareResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return result, &MalformedResponseError{Reason: "compare response is not valid JSON"}
		}
		if resp.LogisticRegression == nil || resp.RandomForest == nil {
			return result, &MalformedResponseError{Reason: "compare response is missing a model result"}
		}

		lr, err := n.toRecord(*resp.LogisticRegression, domain.ModelLogistic)
		if err != nil {
			return result, err
		}
		rf, err := n.toRecord(*resp.RandomForest, domain.ModelRandomForest)
		if err != nil {
			return result, err
		}

		result.Records = []domain.PredictionRecord{lr, rf}
		result.AgreementNote = resp.Recommendation
		return result, nil
	}

	var resp modelResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return result, &MalformedResponseError{Reason: "response is not valid JSON"}
	}

	record, err := n.toRecord(resp, defaultModelName(requested))
	if err != nil {
		return result, err
	}
	result.Records = []domain.PredictionRecord{record}
	return result, nil
}

func (n *Normalizer) toRecord(resp modelResponse, fallbackName string) (domain.PredictionRecord, error) {
	var record domain.PredictionRecord

	probability, ok := firstFloat(resp.Probability, resp.Prob)
	if !ok {
		return record, &MalformedResponseError{Reason: "missing probability"}
	}
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return record, &MalformedResponseError{Reason: fmt.Sprintf("probability %v outside [0,1]", probability)}
	}

	positive := probability >= 0.5
	if outcome, ok := firstInt(resp.Prediction, resp.Outcome); ok {
		positive = outcome != 0
	}

	tier, labeled := domain.ParseRiskTier(firstString(resp.RiskLevel, resp.Risk))
	if !labeled {
		tier = domain.DeriveRiskTier(probability, n.thresholds)
	}

	name := resp.ModelType
	if name == "" {
		name = fallbackName
	}

	record = domain.PredictionRecord{
		ModelName:         name,
		PredictedPositive: positive,
		Probability:       probability,
		RiskTier:          tier,
	}
	return record, nil
}

func defaultModelName(sel domain.ModelSelection) string {
	switch sel {
	case domain.SelectLogistic:
		return domain.ModelLogistic
	case domain.SelectRandomForest:
		return domain.ModelRandomForest
	}
	return "Unknown Model"
}

func firstFloat(candidates ...*float64) (float64, bool) {
	for _, c := range candidates {
		if c != nil {
			return *c, true
		}
	}
	return 0, false
}

func firstInt(candidates ...*int) (int, bool) {
	for _, c := range candidates {
		if c != nil {
			return *c, true
		}
	}
	return 0, false
}

func firstString(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
