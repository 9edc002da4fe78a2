package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/persistence"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// ServiceInput describes a bookable treatment.
type ServiceInput struct {
	Name            string
	Description     string
	Type            domain.ServiceType
	Price           float64
	DurationMinutes int
	Color           string
	BranchID        string
}

// CatalogService manages the treatments a branch offers.
type CatalogService struct {
	services repository.ServiceRepository
	branches repository.BranchRepository
	orders   repository.OrderRepository
	tx       persistence.TxManager
	audit    *AuditService
}

// CatalogDependencies bundles collaborators for the catalog service.
type CatalogDependencies struct {
	ServiceRepo repository.ServiceRepository
	BranchRepo  repository.BranchRepository
	OrderRepo   repository.OrderRepository
	TxManager   persistence.TxManager
	Audit       *AuditService
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		services: deps.ServiceRepo,
		branches: deps.BranchRepo,
		orders:   deps.OrderRepo,
		tx:       deps.TxManager,
		audit:    deps.Audit,
	}
}

// Create adds a service and enables it on its branch.
func (s *CatalogService) Create(ctx context.Context, actor Actor, in ServiceInput) (*domain.Service, error) {
	branchID, err := actor.ResolveBranch(in.BranchID)
	if err != nil {
		return nil, err
	}
	if err := validateServiceInput(in); err != nil {
		return nil, err
	}
	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("branch", map[string]any{"id": branchID})
		}
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	exists, err := s.services.ExistsByNameInBranch(ctx, branchID, name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("service with this name already exists in this branch", nil)
	}

	svc := &domain.Service{
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		Type:            in.Type,
		Price:           in.Price,
		DurationMinutes: in.DurationMinutes,
		Color:           in.Color,
		Active:          true,
		BranchID:        branchID,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.services.Create(ctx, svc); err != nil {
			return err
		}
		return s.branches.AddService(ctx, branchID, svc.ID)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("service with this name already exists in this branch", nil)
		}
		return nil, err
	}

	s.record(ctx, actor, domain.ActionCreate, svc, nil, serviceSnapshot(svc))
	return svc, nil
}

// Get returns a service visible to the actor.
func (s *CatalogService) Get(ctx context.Context, actor Actor, id string) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"id": id})
		}
		return nil, err
	}
	if !actor.CanAccess(svc.BranchID) {
		return nil, apperrors.NewNotFound("service", map[string]any{"id": id})
	}
	return svc, nil
}

// List returns services in the actor's scope.
func (s *CatalogService) List(ctx context.Context, actor Actor, filter repository.ServiceFilter) ([]domain.Service, error) {
	filter.BranchID = actor.BranchFilter(filter.BranchID)
	return s.services.List(ctx, filter)
}

// Update edits a service. The branch cannot change.
func (s *CatalogService) Update(ctx context.Context, actor Actor, id string, in ServiceInput) (*domain.Service, error) {
	svc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := validateServiceInput(in); err != nil {
		return nil, err
	}
	old := serviceSnapshot(svc)

	name := strings.TrimSpace(in.Name)
	if !strings.EqualFold(name, svc.Name) {
		exists, err := s.services.ExistsByNameInBranch(ctx, svc.BranchID, name, svc.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewConflict("service with this name already exists in this branch", nil)
		}
	}

	svc.Name = name
	svc.Description = strings.TrimSpace(in.Description)
	svc.Type = in.Type
	svc.Price = in.Price
	svc.DurationMinutes = in.DurationMinutes
	svc.Color = in.Color
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}

	s.record(ctx, actor, domain.ActionUpdate, svc, old, serviceSnapshot(svc))
	return svc, nil
}

// ToggleStatus flips the active flag.
func (s *CatalogService) ToggleStatus(ctx context.Context, actor Actor, id string) (*domain.Service, error) {
	svc, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := serviceSnapshot(svc)
	svc.Active = !svc.Active
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}
	s.record(ctx, actor, domain.ActionToggleStatus, svc, old, serviceSnapshot(svc))
	return svc, nil
}

// Delete removes a service that no order references and detaches it from
// every branch.
func (s *CatalogService) Delete(ctx context.Context, actor Actor, id string) error {
	svc, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	count, err := s.orders.Count(ctx, repository.OrderFilter{ServiceID: &svc.ID})
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("cannot delete service with existing orders", map[string]any{"orders": count})
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.branches.RemoveService(ctx, svc.ID); err != nil {
			return err
		}
		return s.services.Delete(ctx, svc.ID)
	})
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return apperrors.NewConflict("service is still referenced", nil)
		}
		return err
	}

	s.record(ctx, actor, domain.ActionDelete, svc, serviceSnapshot(svc), nil)
	return nil
}

func (s *CatalogService) record(ctx context.Context, actor Actor, action domain.AuditAction, svc *domain.Service, old, next map[string]any) {
	s.audit.Record(ctx, AuditEntry{
		Action:     action,
		Entity:     domain.EntityService,
		EntityID:   svc.ID,
		EmployeeID: actor.employeeRef(),
		BranchID:   &svc.BranchID,
		OldValues:  old,
		NewValues:  next,
		Client:     actor.Client,
	})
}

func validateServiceInput(in ServiceInput) error {
	details := map[string]any{}
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = "required"
	}
	if !in.Type.Valid() {
		details["type"] = "must be treatment, consultation, wellness or custom"
	}
	if in.Price < 0 {
		details["price"] = "must not be negative"
	}
	if in.DurationMinutes <= 0 {
		details["duration"] = "must be positive"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid service", details)
	}
	return nil
}
