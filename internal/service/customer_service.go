package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// CustomerInput carries customer fields for create and update.
type CustomerInput struct {
	Firstname string
	Lastname  string
	Email     string
	Phone     string
	BranchID  string
}

// CustomerService manages branch customers.
type CustomerService struct {
	customers repository.CustomerRepository
	branches  repository.BranchRepository
	orders    repository.OrderRepository
	audit     *AuditService
}

// CustomerDependencies bundles repositories for the customer service.
type CustomerDependencies struct {
	CustomerRepo repository.CustomerRepository
	BranchRepo   repository.BranchRepository
	OrderRepo    repository.OrderRepository
	Audit        *AuditService
}

// NewCustomerService constructs the service.
func NewCustomerService(deps CustomerDependencies) *CustomerService {
	return &CustomerService{
		customers: deps.CustomerRepo,
		branches:  deps.BranchRepo,
		orders:    deps.OrderRepo,
		audit:     deps.Audit,
	}
}

// Create registers a customer. Emails are unique per branch.
func (s *CustomerService) Create(ctx context.Context, actor Actor, in CustomerInput) (*domain.Customer, error) {
	branchID, err := actor.ResolveBranch(in.BranchID)
	if err != nil {
		return nil, err
	}
	if err := s.requireBranch(ctx, branchID); err != nil {
		return nil, err
	}
	if err := validateCustomerInput(in); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	exists, err := s.customers.ExistsByEmailInBranch(ctx, branchID, email, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("customer with this email already exists in this branch", nil)
	}

	customer := &domain.Customer{
		Firstname: strings.TrimSpace(in.Firstname),
		Lastname:  strings.TrimSpace(in.Lastname),
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		BranchID:  branchID,
		Enabled:   true,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("customer with this email already exists in this branch", nil)
		}
		return nil, err
	}

	s.record(ctx, actor, domain.ActionCreate, customer, nil, customerSnapshot(customer))
	return customer, nil
}

// Get returns a customer visible to the actor.
func (s *CustomerService) Get(ctx context.Context, actor Actor, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"id": id})
		}
		return nil, err
	}
	if !actor.CanAccess(customer.BranchID) {
		return nil, apperrors.NewNotFound("customer", map[string]any{"id": id})
	}
	return customer, nil
}

// List returns customers in the actor's scope.
func (s *CustomerService) List(ctx context.Context, actor Actor, filter repository.CustomerFilter) ([]domain.Customer, error) {
	filter.BranchID = actor.BranchFilter(filter.BranchID)
	return s.customers.List(ctx, filter)
}

// Update changes customer fields.
func (s *CustomerService) Update(ctx context.Context, actor Actor, id string, in CustomerInput) (*domain.Customer, error) {
	customer, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := validateCustomerInput(in); err != nil {
		return nil, err
	}
	old := customerSnapshot(customer)

	branchID := customer.BranchID
	if in.BranchID != "" && in.BranchID != customer.BranchID {
		if branchID, err = actor.ResolveBranch(in.BranchID); err != nil {
			return nil, err
		}
		if err := s.requireBranch(ctx, branchID); err != nil {
			return nil, err
		}
	}

	email := normalizeEmail(in.Email)
	if email != customer.Email || branchID != customer.BranchID {
		exists, err := s.customers.ExistsByEmailInBranch(ctx, branchID, email, customer.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewConflict("customer with this email already exists in this branch", nil)
		}
	}

	customer.Firstname = strings.TrimSpace(in.Firstname)
	customer.Lastname = strings.TrimSpace(in.Lastname)
	customer.Email = email
	customer.Phone = strings.TrimSpace(in.Phone)
	customer.BranchID = branchID
	if err := s.customers.Update(ctx, customer); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("customer with this email already exists in this branch", nil)
		}
		return nil, err
	}

	s.record(ctx, actor, domain.ActionUpdate, customer, old, customerSnapshot(customer))
	return customer, nil
}

// ToggleStatus flips the enabled flag.
func (s *CustomerService) ToggleStatus(ctx context.Context, actor Actor, id string) (*domain.Customer, error) {
	customer, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := customerSnapshot(customer)
	customer.Enabled = !customer.Enabled
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	s.record(ctx, actor, domain.ActionToggleStatus, customer, old, customerSnapshot(customer))
	return customer, nil
}

// Delete removes a customer that has no orders.
func (s *CustomerService) Delete(ctx context.Context, actor Actor, id string) error {
	customer, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	count, err := s.orders.Count(ctx, repository.OrderFilter{CustomerID: &customer.ID})
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("cannot delete customer with existing orders", map[string]any{"orders": count})
	}
	if err := s.customers.Delete(ctx, customer.ID); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return apperrors.NewConflict("customer is still referenced", nil)
		}
		return err
	}
	s.record(ctx, actor, domain.ActionDelete, customer, customerSnapshot(customer), nil)
	return nil
}

func (s *CustomerService) requireBranch(ctx context.Context, branchID string) error {
	branch, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("branch", map[string]any{"id": branchID})
		}
		return err
	}
	if !branch.Enabled {
		return apperrors.NewNotFound("branch", map[string]any{"id": branchID})
	}
	return nil
}

func (s *CustomerService) record(ctx context.Context, actor Actor, action domain.AuditAction, c *domain.Customer, old, next map[string]any) {
	s.audit.Record(ctx, AuditEntry{
		Action:     action,
		Entity:     domain.EntityCustomer,
		EntityID:   c.ID,
		EmployeeID: actor.employeeRef(),
		CustomerID: &c.ID,
		BranchID:   &c.BranchID,
		OldValues:  old,
		NewValues:  next,
		Client:     actor.Client,
	})
}

func validateCustomerInput(in CustomerInput) error {
	details := map[string]any{}
	if strings.TrimSpace(in.Firstname) == "" {
		details["firstname"] = "required"
	}
	if !strings.Contains(in.Email, "@") {
		details["email"] = "must be a valid email"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid customer", details)
	}
	return nil
}
