package domain

import "time"

// ReportKind selects the artifact naming and subtitle for an export.
type ReportKind string

const (
	KindReport       ReportKind = "Report"
	KindComparison   ReportKind = "Comparison_Report"
	KindLogistic     ReportKind = "Logistic_Report"
	KindRandomForest ReportKind = "RandomForest_Report"
)

// KindForSelection maps a model selection onto its export kind.
func KindForSelection(sel ModelSelection) ReportKind {
	switch sel {
	case SelectLogistic:
		return KindLogistic
	case SelectRandomForest:
		return KindRandomForest
	case SelectBoth:
		return KindComparison
	}
	return KindReport
}

// KeyValueRow is one table line in a rendered section.
type KeyValueRow struct {
	Key   string
	Value string
}

// PredictionSection is the rendered table for a single canonical record.
type PredictionSection struct {
	Heading string
	Rows    []KeyValueRow
}

// ReportDocument is the fully composed, render-ready report. Section order
// is fixed: patient info (optional), predictions, recommendation, disclaimer.
type ReportDocument struct {
	Kind            ReportKind
	Title           string
	Subtitle        string
	GeneratedAt     time.Time
	PatientInfo     []KeyValueRow
	Predictions     []PredictionSection
	AgreementNote   string
	Recommendations []string
	Disclaimer      string
}

// DeliverySummary is the primary-model digest sent with an email request.
type DeliverySummary struct {
	RiskTier    RiskTier
	Probability float64
}

// DeliveryRequest carries everything the report-delivery backend needs.
type DeliveryRequest struct {
	RecipientEmail string
	RecipientName  string
	ModelKind      ModelSelection
	Patient        PatientInput
	Summary        DeliverySummary
}

// DeliveryStatus tags the three delivery outcomes.
type DeliveryStatus int

const (
	DeliverySuccess DeliveryStatus = iota
	DeliveryRestricted
	DeliveryFailure
)

// DeliveryOutcome is the classified result of one delivery attempt.
type DeliveryOutcome struct {
	Status  DeliveryStatus
	Message string
}
