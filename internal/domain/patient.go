package domain

import "fmt"

// BiologicalSex follows the classifier wire encoding: 1 female, 2 male.
type BiologicalSex int

const (
	Female BiologicalSex = 1
	Male   BiologicalSex = 2
)

// Level grades cholesterol and glucose readings on the dataset's 1-3 scale.
type Level int

const (
	LevelNormal    Level = 1
	LevelAbove     Level = 2
	LevelWellAbove Level = 3
)

// PatientInput is the full health-parameter set for one prediction request.
// It is immutable once handed to the orchestrator.
type PatientInput struct {
	Age              int
	Sex              BiologicalSex
	HeightCm         float64
	WeightKg         float64
	SystolicBP       int
	DiastolicBP      int
	Cholesterol      Level
	Glucose          Level
	Smokes           bool
	DrinksAlcohol    bool
	PhysicallyActive bool
}

// ValidationError reports a single field outside its declared range.
type ValidationError struct {
	Field string
	Hint  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Hint)
}

// Validate checks every field against the declared clinical ranges.
// The first violation wins; callers block submission on any error.
func (p PatientInput) Validate() error {
	switch {
	case p.Age < 1 || p.Age > 120:
		return &ValidationError{Field: "age", Hint: "must be between 1 and 120 years"}
	case p.Sex != Female && p.Sex != Male:
		return &ValidationError{Field: "gender", Hint: "must be female (1) or male (2)"}
	case p.HeightCm < 100 || p.HeightCm > 250:
		return &ValidationError{Field: "height", Hint: "must be between 100 and 250 cm"}
	case p.WeightKg < 30 || p.WeightKg > 200:
		return &ValidationError{Field: "weight", Hint: "must be between 30 and 200 kg"}
	case p.SystolicBP < 90 || p.SystolicBP > 200:
		return &ValidationError{Field: "ap_hi", Hint: "systolic pressure must be between 90 and 200 mmHg"}
	case p.DiastolicBP < 60 || p.DiastolicBP > 130:
		return &ValidationError{Field: "ap_lo", Hint: "diastolic pressure must be between 60 and 130 mmHg"}
	case p.Cholesterol < LevelNormal || p.Cholesterol > LevelWellAbove:
		return &ValidationError{Field: "cholesterol", Hint: "must be normal (1), above (2) or well above (3)"}
	case p.Glucose < LevelNormal || p.Glucose > LevelWellAbove:
		return &ValidationError{Field: "gluc", Hint: "must be normal (1), above (2) or well above (3)"}
	}
	return nil
}

// PersonalDetails is optional identity data attached to reports and delivery.
// Absence of every field only disables delivery, never composition.
type PersonalDetails struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Empty reports whether no personal field is set.
func (d PersonalDetails) Empty() bool {
	return d.Name == "" && d.Email == "" && d.Phone == "" && d.Address == ""
}
