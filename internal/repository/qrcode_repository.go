package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// QRCodeRepository stores one-time login codes.
type QRCodeRepository interface {
	Create(ctx context.Context, code *domain.QRCode) error
	// Redeem marks a valid unexpired code used and returns it. Unknown,
	// expired and already used codes all yield pgx.ErrNoRows.
	Redeem(ctx context.Context, code string, at time.Time) (*domain.QRCode, error)
	GetByCode(ctx context.Context, code string) (*domain.QRCode, error)
	InvalidateForCustomer(ctx context.Context, customerID string) error
}

type qrCodeRepository struct {
	pool *pgxpool.Pool
}

// NewQRCodeRepository instantiates the repository.
func NewQRCodeRepository(pool *pgxpool.Pool) QRCodeRepository {
	return &qrCodeRepository{pool: pool}
}

const qrCodeColumns = `id, code, customer_id, branch_id, expires_at, is_valid, used_at, created_at`

func scanQRCode(row pgx.Row) (*domain.QRCode, error) {
	var q domain.QRCode
	if err := row.Scan(
		&q.ID,
		&q.Code,
		&q.CustomerID,
		&q.BranchID,
		&q.ExpiresAt,
		&q.Valid,
		&q.UsedAt,
		&q.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *qrCodeRepository) Create(ctx context.Context, q *domain.QRCode) error {
	const query = `
        INSERT INTO qr_codes (code, customer_id, branch_id, expires_at, is_valid)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		q.Code,
		q.CustomerID,
		q.BranchID,
		q.ExpiresAt,
		q.Valid,
	).Scan(&q.ID, &q.CreatedAt)
}

func (r *qrCodeRepository) Redeem(ctx context.Context, code string, at time.Time) (*domain.QRCode, error) {
	query := `
        UPDATE qr_codes SET is_valid=false, used_at=$2
        WHERE code=$1 AND is_valid AND used_at IS NULL AND expires_at > $2
        RETURNING ` + qrCodeColumns

	return scanQRCode(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, code, at))
}

func (r *qrCodeRepository) GetByCode(ctx context.Context, code string) (*domain.QRCode, error) {
	query := `SELECT ` + qrCodeColumns + ` FROM qr_codes WHERE code=$1`
	return scanQRCode(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, code))
}

func (r *qrCodeRepository) InvalidateForCustomer(ctx context.Context, customerID string) error {
	_, err := persistence.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE qr_codes SET is_valid=false WHERE customer_id=$1 AND is_valid AND used_at IS NULL`, customerID)
	return err
}
