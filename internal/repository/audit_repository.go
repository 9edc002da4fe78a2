package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// AuditRepository is the append-only audit store. It has no update or
// delete path.
type AuditRepository interface {
	Append(ctx context.Context, record *domain.AuditRecord) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditRecord, int, error)
	Stats(ctx context.Context, filter AuditFilter) (*AuditStats, error)
}

// AuditFilter narrows audit queries.
type AuditFilter struct {
	Action     *domain.AuditAction
	Entity     *string
	EntityID   *string
	EmployeeID *string
	CustomerID *string
	BranchID   *string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AuditStats aggregates audit records.
type AuditStats struct {
	Total    int                        `json:"total"`
	ByAction map[domain.AuditAction]int `json:"by_action"`
	ByEntity map[string]int             `json:"by_entity"`
	Timeline []AuditDay                 `json:"timeline"`
}

// AuditDay is the number of records on one calendar day (UTC).
type AuditDay struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository instantiates the repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Append(ctx context.Context, rec *domain.AuditRecord) error {
	const query = `
        INSERT INTO audit_logs (id, action, entity, entity_id, employee_id, customer_id, branch_id, order_id,
                                old_values, new_values, ip_address, user_agent, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err := persistence.Conn(ctx, r.pool).Exec(ctx, query,
		rec.ID,
		rec.Action,
		rec.Entity,
		rec.EntityID,
		rec.EmployeeID,
		rec.CustomerID,
		rec.BranchID,
		rec.OrderID,
		rec.OldValues,
		rec.NewValues,
		rec.IPAddress,
		rec.UserAgent,
		rec.CreatedAt,
	)
	return err
}

func auditWhere(filter AuditFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter.Action != nil {
		w.add("action=$%d", *filter.Action)
	}
	if filter.Entity != nil {
		w.add("entity=$%d", *filter.Entity)
	}
	if filter.EntityID != nil {
		w.add("entity_id=$%d", *filter.EntityID)
	}
	if filter.EmployeeID != nil {
		w.add("employee_id=$%d", *filter.EmployeeID)
	}
	if filter.CustomerID != nil {
		w.add("customer_id=$%d", *filter.CustomerID)
	}
	if filter.BranchID != nil {
		w.add("branch_id=$%d", *filter.BranchID)
	}
	if filter.From != nil {
		w.add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		w.add("created_at <= $%d", *filter.To)
	}
	return w
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditRecord, int, error) {
	conn := persistence.Conn(ctx, r.pool)
	w := auditWhere(filter)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT id, action, entity, entity_id, employee_id, customer_id, branch_id, order_id,
               old_values, new_values, ip_address, user_agent, created_at
        FROM audit_logs` + w.sql() + ` ORDER BY created_at DESC, id DESC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := conn.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Action,
			&rec.Entity,
			&rec.EntityID,
			&rec.EmployeeID,
			&rec.CustomerID,
			&rec.BranchID,
			&rec.OrderID,
			&rec.OldValues,
			&rec.NewValues,
			&rec.IPAddress,
			&rec.UserAgent,
			&rec.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, rec)
	}
	return result, total, rows.Err()
}

func (r *auditRepository) Stats(ctx context.Context, filter AuditFilter) (*AuditStats, error) {
	conn := persistence.Conn(ctx, r.pool)
	where := auditWhere(filter)
	stats := &AuditStats{
		ByAction: map[domain.AuditAction]int{},
		ByEntity: map[string]int{},
	}

	rows, err := conn.Query(ctx, `SELECT action, entity, COUNT(*) FROM audit_logs`+where.sql()+` GROUP BY action, entity`, where.args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			action domain.AuditAction
			entity string
			count  int
		)
		if err := rows.Scan(&action, &entity, &count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByAction[action] += count
		stats.ByEntity[entity] += count
		stats.Total += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = conn.Query(ctx, `SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, COUNT(*)
        FROM audit_logs`+where.sql()+` GROUP BY day ORDER BY day`, where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d AuditDay
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		stats.Timeline = append(stats.Timeline, d)
	}
	return stats, rows.Err()
}
