package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// ServiceUsageRepository records bundle redemptions.
type ServiceUsageRepository interface {
	Create(ctx context.Context, usage *domain.ServiceUsage) error
	ListByProduct(ctx context.Context, productID string) ([]domain.ServiceUsage, error)
}

type serviceUsageRepository struct {
	pool *pgxpool.Pool
}

// NewServiceUsageRepository instantiates the repository.
func NewServiceUsageRepository(pool *pgxpool.Pool) ServiceUsageRepository {
	return &serviceUsageRepository{pool: pool}
}

func (r *serviceUsageRepository) Create(ctx context.Context, u *domain.ServiceUsage) error {
	const query = `
        INSERT INTO service_usages (customer_id, order_id, product_id, service_id, service_name, quantity_used, branch_id, employee_id, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		u.CustomerID,
		u.OrderID,
		u.ProductID,
		u.ServiceID,
		u.ServiceName,
		u.QuantityUsed,
		u.BranchID,
		u.EmployeeID,
		u.Notes,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *serviceUsageRepository) ListByProduct(ctx context.Context, productID string) ([]domain.ServiceUsage, error) {
	const query = `
        SELECT id, customer_id, order_id, product_id, service_id, service_name, quantity_used, branch_id, employee_id, notes, created_at
        FROM service_usages WHERE product_id=$1 ORDER BY created_at ASC`

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceUsage
	for rows.Next() {
		var u domain.ServiceUsage
		if err := rows.Scan(
			&u.ID,
			&u.CustomerID,
			&u.OrderID,
			&u.ProductID,
			&u.ServiceID,
			&u.ServiceName,
			&u.QuantityUsed,
			&u.BranchID,
			&u.EmployeeID,
			&u.Notes,
			&u.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
