package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// SessionRepository is the durable session store.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// FindActiveByToken returns pgx.ErrNoRows unless the session is active and unexpired.
	FindActiveByToken(ctx context.Context, token string) (*domain.Session, error)
	// Deactivate flips an active, unexpired session to inactive and reports
	// whether this call performed the transition.
	Deactivate(ctx context.Context, token string) (bool, error)
	ListActiveByPrincipal(ctx context.Context, principalID string) ([]domain.Session, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionColumns = `id, token, principal_id, principal_kind, expires_at, is_active, last_activity, ip_address, user_agent, created_at`

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	const query = `
        INSERT INTO sessions (token, principal_id, principal_kind, expires_at, is_active, last_activity, ip_address, user_agent)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		s.Token,
		s.PrincipalID,
		s.Kind,
		s.ExpiresAt,
		s.Active,
		s.LastActivity,
		s.IPAddress,
		s.UserAgent,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *sessionRepository) FindActiveByToken(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE token=$1 AND is_active AND expires_at > NOW()`

	var s domain.Session
	if err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, token).Scan(
		&s.ID,
		&s.Token,
		&s.PrincipalID,
		&s.Kind,
		&s.ExpiresAt,
		&s.Active,
		&s.LastActivity,
		&s.IPAddress,
		&s.UserAgent,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Deactivate(ctx context.Context, token string) (bool, error) {
	const query = `
        UPDATE sessions SET is_active=false, last_activity=NOW()
        WHERE token=$1 AND is_active AND expires_at > NOW()`

	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, query, token)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *sessionRepository) ListActiveByPrincipal(ctx context.Context, principalID string) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
        WHERE principal_id=$1 AND is_active AND expires_at > NOW() ORDER BY created_at DESC`

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID,
			&s.Token,
			&s.PrincipalID,
			&s.Kind,
			&s.ExpiresAt,
			&s.Active,
			&s.LastActivity,
			&s.IPAddress,
			&s.UserAgent,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
