// Package report composes and renders the durable prediction artifact.
package report

import (
	"fmt"
	"time"

	"CardioSense/internal/domain"
)

const (
	// ProductName brands report titles and exported file names.
	ProductName = "CardioSense"

	disclaimerText = "This is a machine learning prediction and should not replace professional " +
		"medical advice. Please consult with a healthcare provider for proper diagnosis and treatment."
)

// Fixed recommendation lists. The branch is a single two-way decision: one
// positive record anywhere selects the elevated list.
var (
	elevatedRecommendations = []string{
		"Consult a cardiologist for comprehensive evaluation",
		"Monitor blood pressure and cholesterol regularly",
		"Adopt heart-healthy diet and exercise routine",
		"Consider stress management techniques",
		"Follow prescribed medication regimen if applicable",
	}
	maintainRecommendations = []string{
		"Maintain current healthy lifestyle habits",
		"Regular annual cardiovascular check-ups",
		"Continue balanced diet and physical activity",
		"Monitor blood pressure periodically",
		"Stay informed about cardiovascular health",
	}
)

var subtitles = map[domain.ReportKind]string{
	domain.KindReport:       "AI-Powered Cardiovascular Risk Assessment",
	domain.KindComparison:   "Comparative Analysis Report",
	domain.KindLogistic:     "Logistic Regression Analysis Report",
	domain.KindRandomForest: "Random Forest Analysis Report",
}

// IncompleteDocumentError signals a report built from a result set missing
// required records. Normal UI flow never reaches this; it marks a pipeline bug.
type IncompleteDocumentError struct {
	Reason string
}

func (e *IncompleteDocumentError) Error() string {
	return fmt.Sprintf("incomplete report document: %s", e.Reason)
}

// FormatProbability renders a probability as a percentage with exactly two
// decimal places. Every surface showing a probability goes through here.
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}

// Compose deterministically builds a ReportDocument from canonical records.
// Identical inputs always produce a structurally identical document, so the
// exported and emailed artifacts for one on-screen result are reproducible.
func Compose(result domain.PredictionResult, personal domain.PersonalDetails, now time.Time) (domain.ReportDocument, error) {
	kind := domain.KindForSelection(result.Selection)

	if len(result.Records) == 0 {
		return domain.ReportDocument{}, &IncompleteDocumentError{Reason: "no prediction records"}
	}
	if result.Selection == domain.SelectBoth && len(result.Records) < 2 {
		return domain.ReportDocument{}, &IncompleteDocumentError{Reason: "comparison requires two records"}
	}

	doc := domain.ReportDocument{
		Kind:        kind,
		Title:       ProductName,
		Subtitle:    subtitles[kind],
		GeneratedAt: now,
		Disclaimer:  disclaimerText,
	}

	if !personal.Empty() {
		doc.PatientInfo = []domain.KeyValueRow{
			{Key: "Name", Value: orNA(personal.Name)},
			{Key: "Email", Value: orNA(personal.Email)},
			{Key: "Mobile", Value: orNA(personal.Phone)},
			{Key: "Address", Value: orNA(personal.Address)},
		}
	}

	for _, rec := range result.Records {
		doc.Predictions = append(doc.Predictions, domain.PredictionSection{
			Heading: rec.ModelName + " Model",
			Rows: []domain.KeyValueRow{
				{Key: "Prediction", Value: outcomeLabel(rec.PredictedPositive)},
				{Key: "Probability", Value: FormatProbability(rec.Probability)},
				{Key: "Risk Level", Value: rec.RiskTier.String()},
			},
		})
	}

	doc.AgreementNote = result.AgreementNote
	if anyPositive(result.Records) {
		doc.Recommendations = elevatedRecommendations
	} else {
		doc.Recommendations = maintainRecommendations
	}

	return doc, nil
}

func anyPositive(records []domain.PredictionRecord) bool {
	for _, rec := range records {
		if rec.PredictedPositive {
			return true
		}
	}
	return false
}

func outcomeLabel(positive bool) string {
	if positive {
		return "CVD Risk Detected"
	}
	return "No CVD Risk"
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// ArtifactName builds the export file name, e.g.
// CardioSense_Comparison_Report_2026-08-30.pdf.
func ArtifactName(kind domain.ReportKind, ext string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s.%s", ProductName, kind, t.Format("2006-01-02"), ext)
}
