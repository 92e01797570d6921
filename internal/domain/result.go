package domain

// ModelSelection names which remote classifier(s) a submission targets.
type ModelSelection string

const (
	SelectLogistic     ModelSelection = "logistic"
	SelectRandomForest ModelSelection = "randomforest"
	SelectBoth         ModelSelection = "compare"
)

// Valid reports whether the selection is one of the three known values.
func (s ModelSelection) Valid() bool {
	return s == SelectLogistic || s == SelectRandomForest || s == SelectBoth
}

// Canonical model name tags carried by PredictionRecord.
const (
	ModelLogistic     = "Logistic Regression"
	ModelRandomForest = "Random Forest"
)

// PredictionRecord is the canonical result shape every downstream component
// consumes, regardless of which backend model produced it.
type PredictionRecord struct {
	ModelName         string
	PredictedPositive bool
	Probability       float64
	RiskTier          RiskTier
}

// PredictionResult is the orchestrator's Succeeded payload: one record for a
// single-model run, two plus an agreement note for a comparison run.
type PredictionResult struct {
	Selection     ModelSelection
	Records       []PredictionRecord
	AgreementNote string
}

// Primary returns the reference record used for delivery summaries. For
// comparison runs that is the random-forest record when present.
func (r PredictionResult) Primary() PredictionRecord {
	for _, rec := range r.Records {
		if rec.ModelName == ModelRandomForest {
			return rec
		}
	}
	if len(r.Records) > 0 {
		return r.Records[0]
	}
	return PredictionRecord{}
}
