package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"CardioSense/internal/domain"
)

// inputFile is the YAML shape accepted by the CLI for one prediction run.
type inputFile struct {
	Patient  patientYAML  `yaml:"patient"`
	Personal personalYAML `yaml:"personal"`
}

type patientYAML struct {
	Age         int     `yaml:"age"`
	Gender      string  `yaml:"gender"`
	Height      float64 `yaml:"height"`
	Weight      float64 `yaml:"weight"`
	ApHi        int     `yaml:"ap_hi"`
	ApLo        int     `yaml:"ap_lo"`
	Cholesterol string  `yaml:"cholesterol"`
	Gluc        string  `yaml:"gluc"`
	Smoke       bool    `yaml:"smoke"`
	Alco        bool    `yaml:"alco"`
	Active      bool    `yaml:"active"`
}

type personalYAML struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
}

// LoadPatientFile reads and converts a patient YAML file. Range validation
// happens later, at submission.
func LoadPatientFile(path string) (domain.PatientInput, domain.PersonalDetails, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.PatientInput{}, domain.PersonalDetails{}, fmt.Errorf("read input file: %w", err)
	}

	var file inputFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.PatientInput{}, domain.PersonalDetails{}, fmt.Errorf("parse input file: %w", err)
	}

	sex, err := parseSex(file.Patient.Gender)
	if err != nil {
		return domain.PatientInput{}, domain.PersonalDetails{}, err
	}
	cholesterol, err := parseLevel("cholesterol", file.Patient.Cholesterol)
	if err != nil {
		return domain.PatientInput{}, domain.PersonalDetails{}, err
	}
	glucose, err := parseLevel("gluc", file.Patient.Gluc)
	if err != nil {
		return domain.PatientInput{}, domain.PersonalDetails{}, err
	}

	input := domain.PatientInput{
		Age:              file.Patient.Age,
		Sex:              sex,
		HeightCm:         file.Patient.Height,
		WeightKg:         file.Patient.Weight,
		SystolicBP:       file.Patient.ApHi,
		DiastolicBP:      file.Patient.ApLo,
		Cholesterol:      cholesterol,
		Glucose:          glucose,
		Smokes:           file.Patient.Smoke,
		DrinksAlcohol:    file.Patient.Alco,
		PhysicallyActive: file.Patient.Active,
	}
	personal := domain.PersonalDetails{
		Name:    file.Personal.Name,
		Email:   file.Personal.Email,
		Phone:   file.Personal.Phone,
		Address: file.Personal.Address,
	}
	return input, personal, nil
}

func parseSex(value string) (domain.BiologicalSex, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "female", "f", "1":
		return domain.Female, nil
	case "male", "m", "2":
		return domain.Male, nil
	}
	return 0, fmt.Errorf("unknown gender %q (use male or female)", value)
}

func parseLevel(field, value string) (domain.Level, error) {
	if strings.TrimSpace(value) == "" {
		return 0, fmt.Errorf("missing %s level (use normal, above or well_above)", field)
	}
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", "_")) {
	case "normal", "1":
		return domain.LevelNormal, nil
	case "above", "above_normal", "2":
		return domain.LevelAbove, nil
	case "well_above", "well_above_normal", "3":
		return domain.LevelWellAbove, nil
	}
	return 0, fmt.Errorf("unknown %s level %q (use normal, above or well_above)", field, value)
}

// ParseSelection maps the CLI model flag onto a selection.
func ParseSelection(value string) (domain.ModelSelection, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "logistic", "lr":
		return domain.SelectLogistic, nil
	case "randomforest", "rf":
		return domain.SelectRandomForest, nil
	case "both", "compare", "":
		return domain.SelectBoth, nil
	}
	return "", fmt.Errorf("unknown model %q (use logistic, randomforest or both)", value)
}
