package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// CompanyRepository handles persistence for companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetByName(ctx context.Context, name string) (*domain.Company, error)
	List(ctx context.Context, limit, offset int) ([]domain.Company, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository instantiates the repository.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

const companyColumns = `id, name, contact_person, email, phone, address, enabled, created_at, updated_at`

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.ContactPerson,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.Enabled,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepository) Create(ctx context.Context, c *domain.Company) error {
	const query = `
        INSERT INTO companies (name, contact_person, email, phone, address, enabled)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.Name,
		c.ContactPerson,
		c.Email,
		c.Phone,
		c.Address,
		c.Enabled,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *companyRepository) Update(ctx context.Context, c *domain.Company) error {
	const query = `
        UPDATE companies
        SET name=$1, contact_person=$2, email=$3, phone=$4, address=$5, enabled=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.Name,
		c.ContactPerson,
		c.Email,
		c.Phone,
		c.Address,
		c.Enabled,
		c.ID,
	).Scan(&c.UpdatedAt)
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id=$1`
	return scanCompany(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *companyRepository) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE LOWER(name)=LOWER($1)`
	return scanCompany(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, name))
}

func (r *companyRepository) List(ctx context.Context, limit, offset int) ([]domain.Company, error) {
	limit, offset = Page(limit, offset)
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}
