package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// CustomerRepository handles persistence for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	ExistsByEmailInBranch(ctx context.Context, branchID, email, excludeID string) (bool, error)
	TouchLastVisit(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error)
}

// CustomerFilter defines query params for customer listing.
type CustomerFilter struct {
	BranchID *string
	Search   string
	Enabled  *bool
	Limit    int
	Offset   int
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates the repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerColumns = `id, firstname, lastname, email, phone, branch_id, enabled, last_visit,
        qr_code_id, medical_history_id, created_at, updated_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(
		&c.ID,
		&c.Firstname,
		&c.Lastname,
		&c.Email,
		&c.Phone,
		&c.BranchID,
		&c.Enabled,
		&c.LastVisit,
		&c.QRCodeID,
		&c.MedicalHistoryID,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	const query = `
        INSERT INTO customers (firstname, lastname, email, phone, branch_id, enabled)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.Firstname,
		c.Lastname,
		c.Email,
		c.Phone,
		c.BranchID,
		c.Enabled,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	const query = `
        UPDATE customers
        SET firstname=$1, lastname=$2, email=$3, phone=$4, branch_id=$5, enabled=$6,
            qr_code_id=$7, medical_history_id=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.Firstname,
		c.Lastname,
		c.Email,
		c.Phone,
		c.BranchID,
		c.Enabled,
		c.QRCodeID,
		c.MedicalHistoryID,
		c.ID,
	).Scan(&c.UpdatedAt)
}

func (r *customerRepository) Delete(ctx context.Context, id string) error {
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id=$1`
	return scanCustomer(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *customerRepository) ExistsByEmailInBranch(ctx context.Context, branchID, email, excludeID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM customers
            WHERE branch_id=$1 AND LOWER(email)=LOWER($2) AND ($3 = '' OR id::text <> $3)
        )`
	var exists bool
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, branchID, email, excludeID).Scan(&exists)
	return exists, err
}

func (r *customerRepository) TouchLastVisit(ctx context.Context, id string, at time.Time) error {
	_, err := persistence.Conn(ctx, r.pool).Exec(ctx, `UPDATE customers SET last_visit=$2 WHERE id=$1`, id, at)
	return err
}

func (r *customerRepository) List(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error) {
	w := &whereBuilder{}
	if filter.BranchID != nil {
		w.add("branch_id=$%d", *filter.BranchID)
	}
	if filter.Enabled != nil {
		w.add("enabled=$%d", *filter.Enabled)
	}
	if filter.Search != "" {
		w.add("(firstname || ' ' || lastname || ' ' || email) ILIKE '%%' || $%d || '%%'", filter.Search)
	}
	query := `SELECT ` + customerColumns + ` FROM customers` + w.sql() + ` ORDER BY created_at DESC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}
