package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// BranchRepository handles persistence for branches.
type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) error
	Update(ctx context.Context, branch *domain.Branch) error
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	List(ctx context.Context, filter BranchFilter) ([]domain.Branch, error)
	AddService(ctx context.Context, branchID, serviceID string) error
	RemoveService(ctx context.Context, serviceID string) error
}

// BranchFilter defines query params for branch listing.
type BranchFilter struct {
	CompanyID *string
	IDs       []string
	Enabled   *bool
	Limit     int
	Offset    int
}

type branchRepository struct {
	pool *pgxpool.Pool
}

// NewBranchRepository instantiates the repository.
func NewBranchRepository(pool *pgxpool.Pool) BranchRepository {
	return &branchRepository{pool: pool}
}

const branchColumns = `id, company_id, name, contact_person, email, phone, street, postcode, city, country,
        timezone, service_ids, enabled, visible_to_others, created_at, updated_at`

func scanBranch(row pgx.Row) (*domain.Branch, error) {
	var b domain.Branch
	if err := row.Scan(
		&b.ID,
		&b.CompanyID,
		&b.Name,
		&b.ContactPerson,
		&b.Email,
		&b.Phone,
		&b.Street,
		&b.Postcode,
		&b.City,
		&b.Country,
		&b.Timezone,
		&b.ServiceIDs,
		&b.Enabled,
		&b.VisibleToOthers,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *branchRepository) Create(ctx context.Context, b *domain.Branch) error {
	const query = `
        INSERT INTO branches (company_id, name, contact_person, email, phone, street, postcode, city, country,
                              timezone, enabled, visible_to_others)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		b.CompanyID,
		b.Name,
		b.ContactPerson,
		b.Email,
		b.Phone,
		b.Street,
		b.Postcode,
		b.City,
		b.Country,
		b.Timezone,
		b.Enabled,
		b.VisibleToOthers,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *branchRepository) Update(ctx context.Context, b *domain.Branch) error {
	const query = `
        UPDATE branches
        SET name=$1, contact_person=$2, email=$3, phone=$4, street=$5, postcode=$6, city=$7, country=$8,
            timezone=$9, enabled=$10, visible_to_others=$11, updated_at=NOW()
        WHERE id=$12
        RETURNING updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		b.Name,
		b.ContactPerson,
		b.Email,
		b.Phone,
		b.Street,
		b.Postcode,
		b.City,
		b.Country,
		b.Timezone,
		b.Enabled,
		b.VisibleToOthers,
		b.ID,
	).Scan(&b.UpdatedAt)
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id=$1`
	return scanBranch(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *branchRepository) List(ctx context.Context, filter BranchFilter) ([]domain.Branch, error) {
	w := &whereBuilder{}
	if filter.CompanyID != nil {
		w.add("company_id=$%d", *filter.CompanyID)
	}
	if filter.IDs != nil {
		w.add("id::text = ANY($%d)", filter.IDs)
	}
	if filter.Enabled != nil {
		w.add("enabled=$%d", *filter.Enabled)
	}
	query := `SELECT ` + branchColumns + ` FROM branches` + w.sql() + ` ORDER BY name`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

func (r *branchRepository) AddService(ctx context.Context, branchID, serviceID string) error {
	const query = `
        UPDATE branches SET service_ids = array_append(service_ids, $2::uuid), updated_at=NOW()
        WHERE id=$1 AND NOT ($2::uuid = ANY(service_ids))`
	_, err := persistence.Conn(ctx, r.pool).Exec(ctx, query, branchID, serviceID)
	return err
}

func (r *branchRepository) RemoveService(ctx context.Context, serviceID string) error {
	const query = `
        UPDATE branches SET service_ids = array_remove(service_ids, $1::uuid), updated_at=NOW()
        WHERE $1::uuid = ANY(service_ids)`
	_, err := persistence.Conn(ctx, r.pool).Exec(ctx, query, serviceID)
	return err
}
