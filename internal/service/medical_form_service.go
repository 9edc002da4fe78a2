package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// MedicalFormInput is a public intake form submission.
type MedicalFormInput struct {
	BranchID           string
	Firstname          string
	Lastname           string
	Email              string
	Phone              string
	FieldOfApplication domain.FieldOfApplication
	Pregnancy          bool
	Diseases           []domain.HealthCondition
	HealthIssues       []domain.HealthCondition
	DrugsAndImplants   []domain.HealthCondition
	GenericNote        string
	TermsAccepted      bool
	Signature          string
}

// MedicalFormResult is the registered customer and their first login code.
type MedicalFormResult struct {
	Customer *domain.Customer
	History  *domain.MedicalHistory
	QRCode   *domain.QRCode
}

// FormBranch is a branch offered on the intake form.
type FormBranch struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// FormOptions are the choices rendered by the intake form client.
type FormOptions struct {
	Branches          []FormBranch `json:"branches"`
	Health            []string     `json:"health_options"`
	SportsAndFitness  []string     `json:"sports_and_fitness_options"`
	BeautyAndWellness []string     `json:"beauty_and_wellness_options"`
	Diseases          []string     `json:"disease_options"`
	HealthIssues      []string     `json:"health_issue_options"`
	DrugsAndImplants  []string     `json:"drug_implant_options"`
}

// MedicalFormService registers customers from the public intake form.
type MedicalFormService struct {
	customers repository.CustomerRepository
	branches  repository.BranchRepository
	histories repository.MedicalHistoryRepository
	auth      *AuthService
	tx        persistence.TxManager
	audit     *AuditService
}

// MedicalFormDependencies bundles collaborators for the medical form service.
type MedicalFormDependencies struct {
	CustomerRepo       repository.CustomerRepository
	BranchRepo         repository.BranchRepository
	MedicalHistoryRepo repository.MedicalHistoryRepository
	Auth               *AuthService
	TxManager          persistence.TxManager
	Audit              *AuditService
}

// NewMedicalFormService constructs the service.
func NewMedicalFormService(deps MedicalFormDependencies) *MedicalFormService {
	return &MedicalFormService{
		customers: deps.CustomerRepo,
		branches:  deps.BranchRepo,
		histories: deps.MedicalHistoryRepo,
		auth:      deps.Auth,
		tx:        deps.TxManager,
		audit:     deps.Audit,
	}
}

// Submit creates the customer, their medical history and a one-time login
// code in one transaction.
func (s *MedicalFormService) Submit(ctx context.Context, in MedicalFormInput, client ClientInfo) (*MedicalFormResult, error) {
	details := map[string]any{}
	if strings.TrimSpace(in.BranchID) == "" {
		details["branch_id"] = "required"
	}
	if strings.TrimSpace(in.Firstname) == "" {
		details["first_name"] = "required"
	}
	if !strings.Contains(in.Email, "@") {
		details["email"] = "must be a valid email"
	}
	if !in.TermsAccepted {
		details["terms_accepted"] = "must be accepted"
	}
	if strings.TrimSpace(in.Signature) == "" {
		details["digital_signature"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid medical form", details)
	}

	branch, err := s.branches.GetByID(ctx, in.BranchID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if branch == nil || !branch.Enabled {
		return nil, apperrors.NewNotFound("branch", map[string]any{"id": in.BranchID})
	}

	email := normalizeEmail(in.Email)
	exists, err := s.customers.ExistsByEmailInBranch(ctx, branch.ID, email, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("customer with this email already exists in this branch", nil)
	}

	result := &MedicalFormResult{}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		customer := &domain.Customer{
			Firstname: strings.TrimSpace(in.Firstname),
			Lastname:  strings.TrimSpace(in.Lastname),
			Email:     email,
			Phone:     strings.TrimSpace(in.Phone),
			BranchID:  branch.ID,
			Enabled:   true,
		}
		if err := s.customers.Create(ctx, customer); err != nil {
			return err
		}

		history := &domain.MedicalHistory{
			CustomerID:         customer.ID,
			BranchID:           branch.ID,
			FieldOfApplication: in.FieldOfApplication,
			Pregnancy:          in.Pregnancy,
			Diseases:           in.Diseases,
			HealthIssues:       in.HealthIssues,
			DrugsAndImplants:   in.DrugsAndImplants,
			GenericNote:        strings.TrimSpace(in.GenericNote),
			TermsAccepted:      in.TermsAccepted,
			Signature:          in.Signature,
		}
		if err := s.histories.Create(ctx, history); err != nil {
			return err
		}
		customer.MedicalHistoryID = &history.ID

		qr, err := s.auth.issueQRCode(ctx, customer)
		if err != nil {
			return err
		}
		result.Customer, result.History, result.QRCode = customer, history, qr
		return nil
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("customer with this email already exists in this branch", nil)
		}
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionMedicalFormSubmit,
		Entity:     domain.EntityCustomer,
		EntityID:   result.Customer.ID,
		CustomerID: &result.Customer.ID,
		BranchID:   &branch.ID,
		NewValues: map[string]any{
			"customer":         customerSnapshot(result.Customer),
			"medicalHistoryId": result.History.ID,
			"qrCodeId":         result.QRCode.ID,
		},
		Client: client,
	})
	return result, nil
}

// GetHistory returns the latest medical history of a customer.
func (s *MedicalFormService) GetHistory(ctx context.Context, actor Actor, customerID string) (*domain.MedicalHistory, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if customer == nil || !actor.CanAccess(customer.BranchID) {
		return nil, apperrors.NewNotFound("customer", map[string]any{"id": customerID})
	}
	history, err := s.histories.GetByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("medical history", map[string]any{"customer_id": customerID})
		}
		return nil, err
	}
	return history, nil
}

// Options returns the enabled branches and the questionnaire choices.
func (s *MedicalFormService) Options(ctx context.Context) (*FormOptions, error) {
	enabled := true
	branches, err := s.branches.List(ctx, repository.BranchFilter{Enabled: &enabled})
	if err != nil {
		return nil, err
	}
	opts := &FormOptions{
		Branches:          make([]FormBranch, 0, len(branches)),
		Health:            healthOptions,
		SportsAndFitness:  sportsAndFitnessOptions,
		BeautyAndWellness: beautyAndWellnessOptions,
		Diseases:          diseaseOptions,
		HealthIssues:      healthIssueOptions,
		DrugsAndImplants:  drugImplantOptions,
	}
	for _, b := range branches {
		opts.Branches = append(opts.Branches, FormBranch{ID: b.ID, Name: b.Name, City: b.City, Phone: b.Phone, Email: b.Email})
	}
	return opts, nil
}

var (
	healthOptions = []string{
		"Skin diseases", "Arthritis", "Diabetes", "Hypertension", "Heart disease",
		"Asthma", "Cancer", "Epilepsy", "Chronic pain", "Autoimmune diseases", "Other",
	}
	sportsAndFitnessOptions = []string{
		"Weight training", "Cardio", "Yoga", "Pilates", "Swimming", "Running",
		"Cycling", "Team sports", "Martial arts", "Dance", "Other",
	}
	beautyAndWellnessOptions = []string{
		"Facial treatments", "Body massage", "Sauna", "Cryotherapy", "Skin care",
		"Hair treatments", "Nail care", "Spa treatments", "Wellness consultation", "Other",
	}
	diseaseOptions = []string{
		"Diabetes", "Hypertension", "Heart disease", "Asthma", "Arthritis", "Cancer",
		"Epilepsy", "Autoimmune diseases", "Mental health conditions", "Other",
	}
	healthIssueOptions = []string{
		"Back pain", "Joint stiffness", "Muscle tension", "Stress", "Insomnia", "Headaches",
		"Circulation problems", "Digestive issues", "Respiratory problems", "Other",
	}
	drugImplantOptions = []string{
		"Insulin pump", "Pacemaker", "Joint replacement", "Dental implants", "Hearing aid",
		"Medication", "Contraceptive device", "Other",
	}
)
