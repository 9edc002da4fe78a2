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

// ProductInput describes a sellable product.
type ProductInput struct {
	Name        string
	Description string
	Type        domain.ProductType
	Price       float64
	BranchID    string
	ServiceID   string
	Quantity    int
}

// ProductService manages products and bundles.
type ProductService struct {
	products repository.ProductRepository
	services repository.ServiceRepository
	branches repository.BranchRepository
	orders   repository.OrderRepository
	audit    *AuditService
}

// ProductDependencies bundles collaborators for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	ServiceRepo repository.ServiceRepository
	BranchRepo  repository.BranchRepository
	OrderRepo   repository.OrderRepository
	Audit       *AuditService
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	return &ProductService{
		products: deps.ProductRepo,
		services: deps.ServiceRepo,
		branches: deps.BranchRepo,
		orders:   deps.OrderRepo,
		audit:    deps.Audit,
	}
}

// Create adds a product. A bundle must include a service of the same branch
// and grant a positive quantity.
func (s *ProductService) Create(ctx context.Context, actor Actor, in ProductInput) (*domain.Product, error) {
	branchID, err := actor.ResolveBranch(in.BranchID)
	if err != nil {
		return nil, err
	}
	branch, err := s.branches.GetByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("branch", map[string]any{"id": branchID})
		}
		return nil, err
	}
	if err := s.validate(ctx, branchID, in); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	exists, err := s.products.ExistsByNameInBranch(ctx, branchID, name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewConflict("product with this name already exists in this branch", nil)
	}

	product := &domain.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		Price:       in.Price,
		Active:      true,
		BranchID:    branchID,
		CompanyID:   strPtr(branch.CompanyID),
	}
	if in.Type == domain.ProductTypeBundle {
		serviceID := in.ServiceID
		product.ServiceID = &serviceID
		product.Quantity = in.Quantity
	}
	if err := s.products.Create(ctx, product); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("product with this name already exists in this branch", nil)
		}
		return nil, err
	}

	s.record(ctx, actor, domain.ActionCreate, product, nil, productSnapshot(product))
	return product, nil
}

// Get returns a product visible to the actor.
func (s *ProductService) Get(ctx context.Context, actor Actor, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
		}
		return nil, err
	}
	if !actor.CanAccess(product.BranchID) {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	return product, nil
}

// List returns products in the actor's scope.
func (s *ProductService) List(ctx context.Context, actor Actor, filter repository.ProductFilter) ([]domain.Product, error) {
	filter.BranchID = actor.BranchFilter(filter.BranchID)
	return s.products.List(ctx, filter)
}

// Update edits catalog fields. The type and branch are fixed, and a bundle's
// quantity cannot drop below what has been used.
func (s *ProductService) Update(ctx context.Context, actor Actor, id string, in ProductInput) (*domain.Product, error) {
	product, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.Type = product.Type
	if err := s.validate(ctx, product.BranchID, in); err != nil {
		return nil, err
	}
	old := productSnapshot(product)

	name := strings.TrimSpace(in.Name)
	if !strings.EqualFold(name, product.Name) {
		exists, err := s.products.ExistsByNameInBranch(ctx, product.BranchID, name, product.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.NewConflict("product with this name already exists in this branch", nil)
		}
	}

	if product.IsBundle() {
		if in.Quantity < product.UsedQuantity {
			return nil, apperrors.NewConflict("quantity is below the used quantity", map[string]any{
				"used_quantity": product.UsedQuantity,
			})
		}
		if product.UsedQuantity > 0 && !product.IncludesService(in.ServiceID) {
			return nil, apperrors.NewConflict("cannot change the service of a bundle in use", nil)
		}
		serviceID := in.ServiceID
		product.ServiceID = &serviceID
		product.Quantity = in.Quantity
	}
	product.Name = name
	product.Description = strings.TrimSpace(in.Description)
	product.Price = in.Price

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductInUse) {
			return nil, apperrors.NewConflict("bundle usage changed, reload and retry", nil)
		}
		return nil, err
	}

	s.record(ctx, actor, domain.ActionUpdate, product, old, productSnapshot(product))
	return product, nil
}

// ToggleStatus flips the active flag.
func (s *ProductService) ToggleStatus(ctx context.Context, actor Actor, id string) (*domain.Product, error) {
	product, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := productSnapshot(product)
	product.Active = !product.Active
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.record(ctx, actor, domain.ActionToggleStatus, product, old, productSnapshot(product))
	return product, nil
}

// Delete removes a product no order references.
func (s *ProductService) Delete(ctx context.Context, actor Actor, id string) error {
	product, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	count, err := s.orders.Count(ctx, repository.OrderFilter{ProductID: &product.ID})
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("cannot delete product with existing orders", map[string]any{"orders": count})
	}
	if err := s.products.Delete(ctx, product.ID); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return apperrors.NewConflict("product is still referenced", nil)
		}
		return err
	}
	s.record(ctx, actor, domain.ActionDelete, product, productSnapshot(product), nil)
	return nil
}

func (s *ProductService) validate(ctx context.Context, branchID string, in ProductInput) error {
	details := map[string]any{}
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = "required"
	}
	if in.Price < 0 {
		details["price"] = "must not be negative"
	}
	switch in.Type {
	case domain.ProductTypeService:
	case domain.ProductTypeBundle:
		if in.Quantity <= 0 {
			details["quantity"] = "must be positive for bundles"
		}
		if in.ServiceID == "" {
			details["service_id"] = "required for bundles"
		}
	default:
		details["type"] = "must be service or bundle"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product", details)
	}

	if in.Type == domain.ProductTypeBundle {
		svc, err := s.services.GetByID(ctx, in.ServiceID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if svc == nil || svc.BranchID != branchID {
			return apperrors.NewNotFound("service", map[string]any{"id": in.ServiceID})
		}
	}
	return nil
}

func (s *ProductService) record(ctx context.Context, actor Actor, action domain.AuditAction, p *domain.Product, old, next map[string]any) {
	s.audit.Record(ctx, AuditEntry{
		Action:     action,
		Entity:     domain.EntityProduct,
		EntityID:   p.ID,
		EmployeeID: actor.employeeRef(),
		BranchID:   &p.BranchID,
		OldValues:  old,
		NewValues:  next,
		Client:     actor.Client,
	})
}
