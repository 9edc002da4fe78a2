package domain

import "time"

// FieldOfApplication lists the areas a customer is interested in.
type FieldOfApplication struct {
	Health            []string `json:"health"`
	SportsAndFitness  []string `json:"sports_and_fitness"`
	BeautyAndWellness []string `json:"beauty_and_wellness"`
}

// HealthCondition is one yes/no item of the intake questionnaire.
type HealthCondition struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
	Note    string `json:"note,omitempty"`
}

// MedicalHistory is the intake form answered by a customer.
type MedicalHistory struct {
	ID                 string
	CustomerID         string
	BranchID           string
	FieldOfApplication FieldOfApplication
	Pregnancy          bool
	Diseases           []HealthCondition
	HealthIssues       []HealthCondition
	DrugsAndImplants   []HealthCondition
	GenericNote        string
	TermsAccepted      bool
	Signature          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
