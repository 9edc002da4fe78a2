package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/auth"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

const (
	minPasswordLength = 8
	defaultPin        = "0000"
	defaultLanguage   = "en"
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// EmployeeInput describes a new employee.
type EmployeeInput struct {
	Username    string
	Firstname   string
	Lastname    string
	Email       string
	Phone       string
	Password    string
	PersonalPin string
	Role        domain.StaffRole
	BranchID    string
	Language    string
}

// EmployeeUpdateInput holds editable employee fields; nil means unchanged.
type EmployeeUpdateInput struct {
	Username    *string
	Firstname   *string
	Lastname    *string
	Email       *string
	Phone       *string
	Password    *string
	PersonalPin *string
	Role        *domain.StaffRole
	BranchID    *string
	Language    *string
}

// EmployeeService manages staff accounts.
type EmployeeService struct {
	employees repository.EmployeeRepository
	branches  repository.BranchRepository
	orders    repository.OrderRepository
	hasher    *auth.PasswordHasher
	audit     *AuditService
}

// EmployeeDependencies bundles collaborators for the employee service.
type EmployeeDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	BranchRepo   repository.BranchRepository
	OrderRepo    repository.OrderRepository
	Hasher       *auth.PasswordHasher
	Audit        *AuditService
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	return &EmployeeService{
		employees: deps.EmployeeRepo,
		branches:  deps.BranchRepo,
		orders:    deps.OrderRepo,
		hasher:    deps.Hasher,
		audit:     deps.Audit,
	}
}

// Create adds an employee. Non-senior roles must be bound to a branch and
// only a super-admin may create another super-admin.
func (s *EmployeeService) Create(ctx context.Context, actor Actor, in EmployeeInput) (*domain.Employee, error) {
	scope, err := s.resolveScope(ctx, actor, in.Role, in.BranchID)
	if err != nil {
		return nil, err
	}

	details := map[string]any{}
	if strings.TrimSpace(in.Username) == "" {
		details["username"] = "required"
	}
	if strings.TrimSpace(in.Firstname) == "" {
		details["firstname"] = "required"
	}
	if !strings.Contains(in.Email, "@") {
		details["email"] = "must be a valid email"
	}
	if len(in.Password) < minPasswordLength {
		details["password"] = "too short"
	}
	pin := strings.TrimSpace(in.PersonalPin)
	if pin == "" {
		pin = defaultPin
	}
	if !pinPattern.MatchString(pin) {
		details["personal_pin"] = "must be 4 digits"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid employee", details)
	}

	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)
	exists, err := s.employees.ExistsByUsernameOrEmail(ctx, username, email, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("employee with this username or email already exists", nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = defaultLanguage
	}

	emp := &domain.Employee{
		Username:     username,
		Firstname:    strings.TrimSpace(in.Firstname),
		Lastname:     strings.TrimSpace(in.Lastname),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		PersonalPin:  pin,
		Scope:        scope,
		Enabled:      true,
		Language:     language,
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("employee with this username or email already exists", nil)
		}
		return nil, err
	}

	s.record(ctx, actor, domain.ActionCreate, emp, nil, employeeSnapshot(emp))
	return emp, nil
}

// Get returns an employee visible to the actor.
func (s *EmployeeService) Get(ctx context.Context, actor Actor, id string) (*domain.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"id": id})
		}
		return nil, err
	}
	if emp.ID != actor.EmployeeID && !s.visible(actor, emp) {
		return nil, apperrors.NewNotFound("employee", map[string]any{"id": id})
	}
	return emp, nil
}

// List returns employees in the actor's scope.
func (s *EmployeeService) List(ctx context.Context, actor Actor, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	filter.BranchID = actor.BranchFilter(filter.BranchID)
	list, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := list[:0]
	for _, emp := range list {
		if s.visible(actor, &emp) {
			result = append(result, emp)
		}
	}
	return result, nil
}

// Update edits an employee.
func (s *EmployeeService) Update(ctx context.Context, actor Actor, id string, in EmployeeUpdateInput) (*domain.Employee, error) {
	emp, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := employeeSnapshot(emp)

	role := emp.Role()
	branchID := emp.BranchID()
	if in.Role != nil {
		role = *in.Role
	}
	if in.BranchID != nil {
		branchID = strings.TrimSpace(*in.BranchID)
	}
	if role != emp.Role() || branchID != emp.BranchID() {
		scope, err := s.resolveScope(ctx, actor, role, branchID)
		if err != nil {
			return nil, err
		}
		emp.Scope = scope
	}

	username := emp.Username
	email := emp.Email
	if in.Username != nil {
		username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
	}
	if username == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("invalid employee", map[string]any{"username": username, "email": email})
	}
	if username != emp.Username || email != emp.Email {
		exists, err := s.employees.ExistsByUsernameOrEmail(ctx, username, email, emp.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewConflict("employee with this username or email already exists", nil)
		}
	}
	emp.Username = username
	emp.Email = email

	if in.Firstname != nil {
		emp.Firstname = strings.TrimSpace(*in.Firstname)
	}
	if in.Lastname != nil {
		emp.Lastname = strings.TrimSpace(*in.Lastname)
	}
	if in.Phone != nil {
		emp.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Language != nil {
		emp.Language = strings.TrimSpace(*in.Language)
	}
	if in.PersonalPin != nil {
		if !pinPattern.MatchString(*in.PersonalPin) {
			return nil, apperrors.NewValidationError("invalid employee", map[string]any{"personal_pin": "must be 4 digits"})
		}
		emp.PersonalPin = *in.PersonalPin
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLength {
			return nil, apperrors.NewValidationError("invalid employee", map[string]any{"password": "too short"})
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		emp.PasswordHash = hash
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("employee with this username or email already exists", nil)
		}
		return nil, err
	}

	s.record(ctx, actor, domain.ActionUpdate, emp, old, employeeSnapshot(emp))
	return emp, nil
}

// ToggleStatus enables or disables an employee. Employees cannot disable
// themselves.
func (s *EmployeeService) ToggleStatus(ctx context.Context, actor Actor, id string) (*domain.Employee, error) {
	emp, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if emp.ID == actor.EmployeeID {
		return nil, apperrors.NewConflict("cannot change the status of your own account", nil)
	}
	old := employeeSnapshot(emp)
	emp.Enabled = !emp.Enabled
	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, err
	}
	s.record(ctx, actor, domain.ActionToggleStatus, emp, old, employeeSnapshot(emp))
	return emp, nil
}

// Delete removes an employee with no orders. Employees cannot delete
// themselves.
func (s *EmployeeService) Delete(ctx context.Context, actor Actor, id string) error {
	emp, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if emp.ID == actor.EmployeeID {
		return apperrors.NewConflict("cannot delete your own account", nil)
	}
	count, err := s.orders.Count(ctx, repository.OrderFilter{EmployeeID: &emp.ID})
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("cannot delete employee with existing orders", map[string]any{"orders": count})
	}
	if err := s.employees.Delete(ctx, emp.ID); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return apperrors.NewConflict("employee is still referenced", nil)
		}
		return err
	}
	s.record(ctx, actor, domain.ActionDelete, emp, employeeSnapshot(emp), nil)
	return nil
}

// resolveScope validates a role and branch assignment made by actor.
func (s *EmployeeService) resolveScope(ctx context.Context, actor Actor, role domain.StaffRole, branchID string) (domain.StaffScope, error) {
	if !role.Valid() {
		return domain.StaffScope{}, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	if role == domain.RoleSuperAdmin && !actor.Scope.IsSenior() {
		return domain.StaffScope{}, apperrors.NewForbidden("only a super-admin may assign the super-admin role")
	}
	branchID = strings.TrimSpace(branchID)
	if branchID != "" {
		if !actor.CanAccess(branchID) {
			return domain.StaffScope{}, apperrors.NewNotFound("branch", map[string]any{"id": branchID})
		}
		if _, err := s.branches.GetByID(ctx, branchID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.StaffScope{}, apperrors.NewNotFound("branch", map[string]any{"id": branchID})
			}
			return domain.StaffScope{}, err
		}
	}
	scope, err := domain.NewStaffScope(role, branchID)
	if err != nil {
		if errors.Is(err, domain.ErrBranchRequired) {
			return domain.StaffScope{}, apperrors.NewValidationError("branch is required for non super-admin employees", nil)
		}
		return domain.StaffScope{}, apperrors.NewValidationError(err.Error(), nil)
	}
	return scope, nil
}

func (s *EmployeeService) visible(actor Actor, emp *domain.Employee) bool {
	if actor.Scope.IsSenior() {
		return true
	}
	return !emp.Scope.IsSenior() && actor.CanAccess(emp.BranchID())
}

func (s *EmployeeService) record(ctx context.Context, actor Actor, action domain.AuditAction, emp *domain.Employee, old, next map[string]any) {
	s.audit.Record(ctx, AuditEntry{
		Action:     action,
		Entity:     domain.EntityEmployee,
		EntityID:   emp.ID,
		EmployeeID: actor.employeeRef(),
		BranchID:   strPtr(emp.BranchID()),
		OldValues:  old,
		NewValues:  next,
		Client:     actor.Client,
	})
}
