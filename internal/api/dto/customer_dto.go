package dto

import (
	"time"

	"github.com/wahid-dev1/semina/internal/domain"
)

// CustomerRequest payload for customer create and update.
type CustomerRequest struct {
	Firstname string `json:"first_name"`
	Lastname  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BranchID  string `json:"branch_id"`
}

// CustomerResponse representation.
type CustomerResponse struct {
	ID               string     `json:"id"`
	Firstname        string     `json:"first_name"`
	Lastname         string     `json:"last_name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	BranchID         string     `json:"branch_id"`
	Enabled          bool       `json:"enabled"`
	LastVisit        *time.Time `json:"last_visit,omitempty"`
	QRCodeID         *string    `json:"qr_code_id,omitempty"`
	MedicalHistoryID *string    `json:"medical_history_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MedicalFormRequest is the public intake form.
type MedicalFormRequest struct {
	BranchID           string                    `json:"branch_id"`
	Firstname          string                    `json:"first_name"`
	Lastname           string                    `json:"last_name"`
	Email              string                    `json:"email"`
	Phone              string                    `json:"phone"`
	FieldOfApplication domain.FieldOfApplication `json:"field_of_application"`
	Pregnancy          bool                      `json:"pregnancy"`
	Diseases           []domain.HealthCondition  `json:"diseases"`
	HealthIssues       []domain.HealthCondition  `json:"health_issues"`
	DrugsAndImplants   []domain.HealthCondition  `json:"drugs_and_implants"`
	GenericNote        string                    `json:"generic_note"`
	TermsAccepted      bool                      `json:"terms_accepted"`
	Signature          string                    `json:"digital_signature"`
}

// MedicalHistoryResponse representation.
type MedicalHistoryResponse struct {
	ID                 string                    `json:"id"`
	CustomerID         string                    `json:"customer_id"`
	BranchID           string                    `json:"branch_id"`
	FieldOfApplication domain.FieldOfApplication `json:"field_of_application"`
	Pregnancy          bool                      `json:"pregnancy"`
	Diseases           []domain.HealthCondition  `json:"diseases"`
	HealthIssues       []domain.HealthCondition  `json:"health_issues"`
	DrugsAndImplants   []domain.HealthCondition  `json:"drugs_and_implants"`
	GenericNote        string                    `json:"generic_note,omitempty"`
	TermsAccepted      bool                      `json:"terms_accepted"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// MedicalFormResponse is returned after a successful submission.
type MedicalFormResponse struct {
	Customer       CustomerResponse       `json:"customer"`
	MedicalHistory MedicalHistoryResponse `json:"medical_history"`
	QRCode         QRCodeResponse         `json:"qr_code"`
}
