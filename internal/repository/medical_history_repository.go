package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// MedicalHistoryRepository stores intake forms.
type MedicalHistoryRepository interface {
	Create(ctx context.Context, history *domain.MedicalHistory) error
	GetByCustomer(ctx context.Context, customerID string) (*domain.MedicalHistory, error)
}

type medicalHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewMedicalHistoryRepository instantiates the repository.
func NewMedicalHistoryRepository(pool *pgxpool.Pool) MedicalHistoryRepository {
	return &medicalHistoryRepository{pool: pool}
}

func (r *medicalHistoryRepository) Create(ctx context.Context, h *domain.MedicalHistory) error {
	const query = `
        INSERT INTO medical_histories (customer_id, branch_id, field_of_application, pregnancy, diseases,
                                       health_issues, drugs_and_implants, generic_note, terms_accepted, signature)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		h.CustomerID,
		h.BranchID,
		h.FieldOfApplication,
		h.Pregnancy,
		h.Diseases,
		h.HealthIssues,
		h.DrugsAndImplants,
		h.GenericNote,
		h.TermsAccepted,
		h.Signature,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
}

func (r *medicalHistoryRepository) GetByCustomer(ctx context.Context, customerID string) (*domain.MedicalHistory, error) {
	const query = `
        SELECT id, customer_id, branch_id, field_of_application, pregnancy, diseases, health_issues,
               drugs_and_implants, generic_note, terms_accepted, signature, created_at, updated_at
        FROM medical_histories WHERE customer_id=$1 ORDER BY created_at DESC LIMIT 1`

	var h domain.MedicalHistory
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, customerID).Scan(
		&h.ID,
		&h.CustomerID,
		&h.BranchID,
		&h.FieldOfApplication,
		&h.Pregnancy,
		&h.Diseases,
		&h.HealthIssues,
		&h.DrugsAndImplants,
		&h.GenericNote,
		&h.TermsAccepted,
		&h.Signature,
		&h.CreatedAt,
		&h.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &h, nil
}
