package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// ProductRepository handles persistence for products and bundle counters.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	// Update writes catalog fields only; used_quantity is owned by
	// AtomicIncrementUsed. It returns ErrProductInUse when the stored
	// used_quantity exceeds the new quantity, or is non-zero and the
	// service changes.
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ExistsByNameInBranch(ctx context.Context, branchID, name, excludeID string) (bool, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	// AtomicIncrementUsed adds delta to used_quantity only if the result stays
	// within both the stored quantity and maxTotal. It reports whether the
	// increment was applied.
	AtomicIncrementUsed(ctx context.Context, id string, delta, maxTotal int) (bool, error)
}

// ErrProductInUse is returned when a catalog write conflicts with recorded usage.
var ErrProductInUse = errors.New("product in use")

// ProductFilter defines query params for product listing.
type ProductFilter struct {
	BranchID *string
	Type     *domain.ProductType
	Active   *bool
	Limit    int
	Offset   int
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates the repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, description, type, price, active, branch_id, company_id, service_id,
        quantity, used_quantity, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Type,
		&p.Price,
		&p.Active,
		&p.BranchID,
		&p.CompanyID,
		&p.ServiceID,
		&p.Quantity,
		&p.UsedQuantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	const query = `
        INSERT INTO products (name, description, type, price, active, branch_id, company_id, service_id, quantity, used_quantity)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.Type,
		p.Price,
		p.Active,
		p.BranchID,
		p.CompanyID,
		p.ServiceID,
		p.Quantity,
		p.UsedQuantity,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	const query = `
        UPDATE products
        SET name=$1, description=$2, price=$3, active=$4, service_id=$5, quantity=$6, updated_at=NOW()
        WHERE id=$7
          AND used_quantity <= $6
          AND (used_quantity = 0 OR service_id IS NOT DISTINCT FROM $5)
        RETURNING used_quantity, updated_at`

	conn := persistence.Conn(ctx, r.pool)
	err := conn.QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.Price,
		p.Active,
		p.ServiceID,
		p.Quantity,
		p.ID,
	).Scan(&p.UsedQuantity, &p.UpdatedAt)
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var exists bool
	if err := conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, p.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrProductInUse
	}
	return pgx.ErrNoRows
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id=$1`
	return scanProduct(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *productRepository) ExistsByNameInBranch(ctx context.Context, branchID, name, excludeID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM products
            WHERE branch_id=$1 AND LOWER(name)=LOWER($2) AND ($3 = '' OR id::text <> $3)
        )`
	var exists bool
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, branchID, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
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
	query := `SELECT ` + productColumns + ` FROM products` + w.sql() + ` ORDER BY name`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *productRepository) AtomicIncrementUsed(ctx context.Context, id string, delta, maxTotal int) (bool, error) {
	const query = `
        UPDATE products SET used_quantity = used_quantity + $2, updated_at=NOW()
        WHERE id=$1 AND type='bundle' AND $2 > 0
          AND used_quantity + $2 <= LEAST(quantity, $3)`

	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, query, id, delta, maxTotal)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}
