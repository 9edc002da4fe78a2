package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
)

// EmployeeRepository handles persistence for staff principals.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	Update(ctx context.Context, employee *domain.Employee) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	FindEnabledByEmail(ctx context.Context, email string) (*domain.Employee, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email, excludeID string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error)
}

// EmployeeFilter defines query params for employee listing.
type EmployeeFilter struct {
	BranchID *string
	Role     *domain.StaffRole
	Enabled  *bool
	Limit    int
	Offset   int
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates the repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeColumns = `id, username, firstname, lastname, email, phone, password_hash, personal_pin,
        role, branch_id, enabled, language, last_login, created_at, updated_at`

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var (
		e        domain.Employee
		role     domain.StaffRole
		branchID *string
	)
	if err := row.Scan(
		&e.ID,
		&e.Username,
		&e.Firstname,
		&e.Lastname,
		&e.Email,
		&e.Phone,
		&e.PasswordHash,
		&e.PersonalPin,
		&role,
		&branchID,
		&e.Enabled,
		&e.Language,
		&e.LastLogin,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	scope, err := domain.NewStaffScope(role, deref(branchID))
	if err != nil {
		return nil, err
	}
	e.Scope = scope
	return &e, nil
}

func (r *employeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	const query = `
        INSERT INTO employees (username, firstname, lastname, email, phone, password_hash, personal_pin, role, branch_id, enabled, language)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`

	return persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		e.Username,
		e.Firstname,
		e.Lastname,
		e.Email,
		e.Phone,
		e.PasswordHash,
		e.PersonalPin,
		e.Role(),
		nullable(e.BranchID()),
		e.Enabled,
		e.Language,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *employeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	const query = `
        UPDATE employees
        SET username=$1, firstname=$2, lastname=$3, email=$4, phone=$5, password_hash=$6, personal_pin=$7,
            role=$8, branch_id=$9, enabled=$10, language=$11, updated_at=NOW()
        WHERE id=$12
        RETURNING updated_at`

	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query,
		e.Username,
		e.Firstname,
		e.Lastname,
		e.Email,
		e.Phone,
		e.PasswordHash,
		e.PersonalPin,
		e.Role(),
		nullable(e.BranchID()),
		e.Enabled,
		e.Language,
		e.ID,
	).Scan(&e.UpdatedAt)
	return err
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	cmd, err := persistence.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id=$1`
	return scanEmployee(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *employeeRepository) FindEnabledByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE LOWER(email)=LOWER($1) AND enabled`
	return scanEmployee(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, email))
}

func (r *employeeRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email, excludeID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM employees
            WHERE (LOWER(username)=LOWER($1) OR LOWER(email)=LOWER($2))
              AND ($3 = '' OR id::text <> $3)
        )`
	var exists bool
	err := persistence.Conn(ctx, r.pool).QueryRow(ctx, query, username, email, excludeID).Scan(&exists)
	return exists, err
}

func (r *employeeRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := persistence.Conn(ctx, r.pool).Exec(ctx, `UPDATE employees SET last_login=$2 WHERE id=$1`, id, at)
	return err
}

func (r *employeeRepository) List(ctx context.Context, filter EmployeeFilter) ([]domain.Employee, error) {
	w := &whereBuilder{}
	if filter.BranchID != nil {
		w.add("branch_id=$%d", *filter.BranchID)
	}
	if filter.Role != nil {
		w.add("role=$%d", *filter.Role)
	}
	if filter.Enabled != nil {
		w.add("enabled=$%d", *filter.Enabled)
	}
	query := `SELECT ` + employeeColumns + ` FROM employees` + w.sql() + ` ORDER BY lastname, firstname`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := persistence.Conn(ctx, r.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
