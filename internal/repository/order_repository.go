package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// OrderRepository handles persistence for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	Count(ctx context.Context, filter OrderFilter) (int, error)
}

// ErrOrderLocked is returned when a write matched an order whose status
// forbids it at the moment of the write.
var ErrOrderLocked = errors.New("order locked by status")

// OrderFilter defines query params for order listing and counting.
type OrderFilter struct {
	BranchID   *string
	CustomerID *string
	EmployeeID *string
	ProductID  *string
	ServiceID  *string
	Status     *domain.OrderStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates the repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, customer_id, customer_name, branch_id, item_type, service_id, product_id, item_name,
        included_service_ids, price, quantity, total_price, payment_method, status, appointment_date,
        appointment_time, employee_id, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.CustomerName,
		&o.BranchID,
		&o.ItemType,
		&o.ServiceID,
		&o.ProductID,
		&o.ItemName,
		&o.IncludedServiceIDs,
		&o.Price,
		&o.Quantity,
		&o.TotalPrice,
		&o.PaymentMethod,
		&o.Status,
		&o.AppointmentDate,
		&o.AppointmentTime,
		&o.EmployeeID,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	const query = `
        INSERT INTO orders (customer_id, customer_name, branch_id, item_type, service_id, product_id, item_name,
                            included_service_ids, price, quantity, total_price, payment_method, status,
                            appointment_date, appointment_time, employee_id, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING id, created_at, updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		o.CustomerID,
		o.CustomerName,
		o.BranchID,
		o.ItemType,
		o.ServiceID,
		o.ProductID,
		o.ItemName,
		o.IncludedServiceIDs,
		o.Price,
		o.Quantity,
		o.TotalPrice,
		o.PaymentMethod,
		o.Status,
		o.AppointmentDate,
		o.AppointmentTime,
		o.EmployeeID,
		o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *orderRepository) Update(ctx context.Context, o *domain.Order) error {
	const query = `
        UPDATE orders
        SET item_name=$1, price=$2, quantity=$3, total_price=$4, payment_method=$5, appointment_date=$6,
            appointment_time=$7, employee_id=$8, notes=$9, updated_at=NOW()
        WHERE id=$10 AND status NOT IN ('paid','canceled')
        RETURNING updated_at`

	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		o.ItemName,
		o.Price,
		o.Quantity,
		o.TotalPrice,
		o.PaymentMethod,
		o.AppointmentDate,
		o.AppointmentTime,
		o.EmployeeID,
		o.Notes,
		o.ID,
	).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.lockedOrMissing(ctx, o.ID)
	}
	return err
}

// lockedOrMissing resolves a guarded write that matched no row.
func (r *orderRepository) lockedOrMissing(ctx context.Context, id string) error {
	var exists bool
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrOrderLocked
	}
	return pgx.ErrNoRows
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM orders WHERE id=$1 AND status <> 'paid'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.lockedOrMissing(ctx, id)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func orderWhere(filter OrderFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter.BranchID != nil {
		w.add("branch_id=$%d", *filter.BranchID)
	}
	if filter.CustomerID != nil {
		w.add("customer_id=$%d", *filter.CustomerID)
	}
	if filter.EmployeeID != nil {
		w.add("employee_id=$%d", *filter.EmployeeID)
	}
	if filter.ProductID != nil {
		w.add("product_id=$%d", *filter.ProductID)
	}
	if filter.ServiceID != nil {
		w.add("(service_id=$%[1]d OR $%[1]d = ANY(included_service_ids))", *filter.ServiceID)
	}
	if filter.Status != nil {
		w.add("status=$%d", *filter.Status)
	}
	if filter.From != nil {
		w.add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("created_at <= $%d", *filter.To)
	}
	return w
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	w := orderWhere(filter)
	query := `SELECT ` + orderColumns + ` FROM orders` + w.sql() + ` ORDER BY created_at DESC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func (r *orderRepository) Count(ctx context.Context, filter OrderFilter) (int, error) {
	w := orderWhere(filter)
	var count int
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM orders`+w.sql(), w.args...).Scan(&count)
	return count, err
}
