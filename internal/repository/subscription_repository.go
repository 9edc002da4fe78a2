package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// SubscriptionRepository handles persistence for company subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Update(ctx context.Context, sub *domain.Subscription) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	List(ctx context.Context, filter SubscriptionFilter) ([]domain.Subscription, error)
	// LockCompany serializes subscription writes for one company until the
	// surrounding transaction ends. It must run inside RunInTx.
	LockCompany(ctx context.Context, companyID string) error
	// FindOverlapping returns an active subscription of companyID whose
	// period intersects [start, end], ignoring excludeID.
	FindOverlapping(ctx context.Context, companyID string, start, end time.Time, excludeID string) (*domain.Subscription, error)
	// Stats aggregates subscriptions of companyID, or of every company when
	// nil, as seen at now.
	Stats(ctx context.Context, companyID *string, now time.Time) (*domain.SubscriptionStats, error)
}

// SubscriptionExpiryWindow is how far ahead an active subscription counts as
// expiring soon.
const SubscriptionExpiryWindow = 30 * 24 * time.Hour

// SubscriptionFilter defines query params for subscription listing.
type SubscriptionFilter struct {
	CompanyID *string
	Active    *bool
	// CurrentAt keeps active subscriptions whose period contains the instant.
	CurrentAt *time.Time
	Limit     int
	Offset    int
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository instantiates the repository.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

const subscriptionColumns = `id, company_id, product_ids, start_date, end_date, active, created_at, updated_at`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	if err := row.Scan(
		&s.ID,
		&s.CompanyID,
		&s.ProductIDs,
		&s.StartDate,
		&s.EndDate,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (company_id, product_ids, start_date, end_date, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		s.CompanyID,
		s.ProductIDs,
		s.StartDate,
		s.EndDate,
		s.Active,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *subscriptionRepository) Update(ctx context.Context, s *domain.Subscription) error {
	const query = `
        UPDATE subscriptions
        SET company_id=$1, product_ids=$2, start_date=$3, end_date=$4, active=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		s.CompanyID,
		s.ProductIDs,
		s.StartDate,
		s.EndDate,
		s.Active,
		s.ID,
	).Scan(&s.UpdatedAt)
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM subscriptions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id=$1`
	return scanSubscription(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *subscriptionRepository) List(ctx context.Context, filter SubscriptionFilter) ([]domain.Subscription, error) {
	w := &whereBuilder{}
	if filter.CompanyID != nil {
		w.add("company_id=$%d", *filter.CompanyID)
	}
	if filter.Active != nil {
		w.add("active=$%d", *filter.Active)
	}
	if filter.CurrentAt != nil {
		w.add("active AND $%d BETWEEN start_date AND end_date", *filter.CurrentAt)
	}
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions` + w.sql() + ` ORDER BY start_date DESC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *subscriptionRepository) LockCompany(ctx context.Context, companyID string) error {
	_, err := persistence.Conn(ctx, r.pool).Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext('subscriptions:' || $1::text))`, companyID)
	return err
}

func (r *subscriptionRepository) FindOverlapping(ctx context.Context, companyID string, start, end time.Time, excludeID string) (*domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
        WHERE company_id=$1 AND active AND start_date <= $3 AND end_date >= $2
          AND ($4 = '' OR id::text <> $4)
        LIMIT 1`
	return scanSubscription(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, companyID, start, end, excludeID))
}

func (r *subscriptionRepository) Stats(ctx context.Context, companyID *string, now time.Time) (*domain.SubscriptionStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE active),
               COUNT(*) FILTER (WHERE NOT active),
               COUNT(*) FILTER (WHERE active AND $2 BETWEEN start_date AND end_date),
               COUNT(*) FILTER (WHERE active AND end_date > $2 AND end_date <= $3),
               COALESCE(AVG(EXTRACT(EPOCH FROM (end_date - start_date)) / 86400), 0)
        FROM subscriptions
        WHERE ($1::uuid IS NULL OR company_id = $1::uuid)`

	var stats domain.SubscriptionStats
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, companyID, now, now.Add(SubscriptionExpiryWindow)).Scan(
		&stats.Total,
		&stats.Active,
		&stats.Inactive,
		&stats.Current,
		&stats.ExpiringSoon,
		&stats.AverageDurationDays,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
