package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// ServiceRepository handles persistence for the treatment catalog.
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.Service) error
	Update(ctx context.Context, service *domain.Service) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	ExistsByNameInBranch(ctx context.Context, branchID, name, excludeID string) (bool, error)
	List(ctx context.Context, filter ServiceFilter) ([]domain.Service, error)
}

// ServiceFilter defines query params for catalog listing.
type ServiceFilter struct {
	BranchID *string
	Type     *domain.ServiceType
	Active   *bool
	Limit    int
	Offset   int
}

type serviceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository instantiates the repository.
func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

const serviceColumns = `id, name, description, type, price, duration_minutes, color, active, branch_id, created_at, updated_at`

func scanService(row pgx.Row) (*domain.Service, error) {
	var s domain.Service
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Description,
		&s.Type,
		&s.Price,
		&s.DurationMinutes,
		&s.Color,
		&s.Active,
		&s.BranchID,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepository) Create(ctx context.Context, s *domain.Service) error {
	const query = `
        INSERT INTO services (name, description, type, price, duration_minutes, color, active, branch_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		s.Name,
		s.Description,
		s.Type,
		s.Price,
		s.DurationMinutes,
		s.Color,
		s.Active,
		s.BranchID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *serviceRepository) Update(ctx context.Context, s *domain.Service) error {
	const query = `
        UPDATE services
        SET name=$1, description=$2, type=$3, price=$4, duration_minutes=$5, color=$6, active=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		s.Name,
		s.Description,
		s.Type,
		s.Price,
		s.DurationMinutes,
		s.Color,
		s.Active,
		s.ID,
	).Scan(&s.UpdatedAt)
}

func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM services WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id=$1`
	return scanService(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *serviceRepository) ExistsByNameInBranch(ctx context.Context, branchID, name, excludeID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM services
            WHERE branch_id=$1 AND LOWER(name)=LOWER($2) AND ($3 = '' OR id::text <> $3)
        )`
	var exists bool
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, branchID, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *serviceRepository) List(ctx context.Context, filter ServiceFilter) ([]domain.Service, error) {
	w := &whereBuilder{}
	if filter.BranchID != nil {
		w.add("branch_id=$%d", *filter.BranchID)
	}
	if filter.Type != nil {
		w.add("type=$%d", *filter.Type)
	}
	if filter.Active != nil {
		w.add("active=$%d", *filter.Active)
	}
	query := `SELECT ` + serviceColumns + ` FROM services` + w.sql() + ` ORDER BY name`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}
