package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/observability"
	"github.com/wahid-dev1/semina/internal/persistence"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// UseServiceInput describes one redemption against a bundle.
type UseServiceInput struct {
	ProductID  string
	ServiceID  string
	Quantity   int
	CustomerID string
	OrderID    string
	BranchID   string
	Notes      string
}

// UsageResult is the bundle balance after a redemption.
type UsageResult struct {
	Usage     domain.ServiceUsage
	Product   domain.Product
	Remaining int
}

// RemainingServices is the balance of a product's included service.
type RemainingServices struct {
	ProductID         string
	ProductName       string
	IsBundle          bool
	Message           string
	ServiceID         string
	ServiceName       string
	ServiceType       domain.ServiceType
	TotalQuantity     int
	UsedQuantity      int
	RemainingQuantity int
}

// LedgerService enforces bundle balances.
type LedgerService struct {
	products repository.ProductRepository
	services repository.ServiceRepository
	orders   repository.OrderRepository
	usages   repository.ServiceUsageRepository
	tx       persistence.TxManager
	audit    *AuditService
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// LedgerDependencies bundles collaborators for the ledger.
type LedgerDependencies struct {
	ProductRepo      repository.ProductRepository
	ServiceRepo      repository.ServiceRepository
	OrderRepo        repository.OrderRepository
	ServiceUsageRepo repository.ServiceUsageRepository
	TxManager        persistence.TxManager
	Audit            *AuditService
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// NewLedgerService constructs the service.
func NewLedgerService(deps LedgerDependencies) *LedgerService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		products: deps.ProductRepo,
		services: deps.ServiceRepo,
		orders:   deps.OrderRepo,
		usages:   deps.ServiceUsageRepo,
		tx:       deps.TxManager,
		audit:    deps.Audit,
		metrics:  deps.Metrics,
		logger:   logger,
	}
}

// UseService consumes quantity units of serviceID from a bundle. The balance
// check and the increment are a single conditional update.
func (s *LedgerService) UseService(ctx context.Context, actor Actor, in UseServiceInput) (*UsageResult, error) {
	if in.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", map[string]any{"quantity": in.Quantity})
	}
	if in.CustomerID == "" || in.OrderID == "" {
		return nil, apperrors.NewValidationError("customer_id and order_id are required", nil)
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": in.ProductID})
		}
		return nil, err
	}
	if !actor.CanAccess(product.BranchID) {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": in.ProductID})
	}
	if !product.IsBundle() {
		return nil, apperrors.NewConflict("product is not a bundle", map[string]any{"product_id": product.ID})
	}
	if !product.IncludesService(in.ServiceID) {
		return nil, apperrors.NewDomainError(apperrors.CodeNotFound, "service not part of this product", http.StatusNotFound,
			map[string]any{"service_id": in.ServiceID})
	}

	branchID := in.BranchID
	if branchID == "" {
		branchID = product.BranchID
	}
	serviceName := ""
	if svc, err := s.services.GetByID(ctx, in.ServiceID); err == nil {
		serviceName = svc.Name
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	usage := domain.ServiceUsage{
		CustomerID:   in.CustomerID,
		OrderID:      in.OrderID,
		ProductID:    &product.ID,
		ServiceID:    in.ServiceID,
		ServiceName:  serviceName,
		QuantityUsed: in.Quantity,
		BranchID:     branchID,
		EmployeeID:   actor.employeeRef(),
		Notes:        in.Notes,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		applied, err := s.products.AtomicIncrementUsed(ctx, product.ID, in.Quantity, product.Quantity)
		if err != nil {
			return err
		}
		if !applied {
			return apperrors.NewConflict("not enough remaining quantity", map[string]any{
				"requested": in.Quantity,
			})
		}
		return s.usages.Create(ctx, &usage)
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeConflict) {
			s.metrics.RecordRedemption("insufficient")
		} else {
			s.metrics.RecordRedemption("error")
		}
		return nil, err
	}
	s.metrics.RecordRedemption("ok")

	updated, err := s.products.GetByID(ctx, product.ID)
	if err != nil {
		s.logger.Warn("reload product after usage", zap.String("product_id", product.ID), zap.Error(err))
		updated = product
		updated.UsedQuantity += in.Quantity
	}

	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionUseService,
		Entity:     domain.EntityProduct,
		EntityID:   product.ID,
		EmployeeID: actor.employeeRef(),
		CustomerID: strPtr(in.CustomerID),
		BranchID:   strPtr(branchID),
		OrderID:    strPtr(in.OrderID),
		OldValues:  map[string]any{"usedQuantity": product.UsedQuantity},
		NewValues:  map[string]any{"serviceId": in.ServiceID, "quantityUsed": in.Quantity},
		Client:     actor.Client,
	})

	return &UsageResult{Usage: usage, Product: *updated, Remaining: updated.Remaining()}, nil
}

// UseServiceFromOrder consumes serviceID from the bundle an order bought.
func (s *LedgerService) UseServiceFromOrder(ctx context.Context, actor Actor, orderID, serviceID string, quantity int, notes string) (*UsageResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": orderID})
		}
		return nil, err
	}
	if !actor.CanAccess(order.BranchID) {
		return nil, apperrors.NewNotFound("order", map[string]any{"id": orderID})
	}
	productID, ok := order.BundleFor(serviceID)
	if !ok {
		return nil, apperrors.NewDomainError(apperrors.CodeNotFound, "service not part of this order", http.StatusNotFound,
			map[string]any{"service_id": serviceID})
	}

	return s.UseService(ctx, actor, UseServiceInput{
		ProductID:  productID,
		ServiceID:  serviceID,
		Quantity:   quantity,
		CustomerID: order.CustomerID,
		OrderID:    order.ID,
		BranchID:   order.BranchID,
		Notes:      notes,
	})
}

// GetRemainingServices reports the balance of a product. Products that are
// not bundles get an explanatory result instead of an error.
func (s *LedgerService) GetRemainingServices(ctx context.Context, actor Actor, productID string) (*RemainingServices, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": productID})
		}
		return nil, err
	}
	if !actor.CanAccess(product.BranchID) {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": productID})
	}

	result := &RemainingServices{
		ProductID:   product.ID,
		ProductName: product.Name,
		IsBundle:    product.IsBundle(),
	}
	if !product.IsBundle() || product.ServiceID == nil {
		result.Message = "product is not a bundle and has no service balance"
		return result, nil
	}

	result.ServiceID = *product.ServiceID
	if svc, err := s.services.GetByID(ctx, *product.ServiceID); err == nil {
		result.ServiceName = svc.Name
		result.ServiceType = svc.Type
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	result.TotalQuantity = product.Quantity
	result.UsedQuantity = product.UsedQuantity
	result.RemainingQuantity = product.Remaining()
	return result, nil
}

// ListUsages returns the redemptions recorded against a product.
func (s *LedgerService) ListUsages(ctx context.Context, actor Actor, productID string) ([]domain.ServiceUsage, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": productID})
		}
		return nil, err
	}
	if !actor.CanAccess(product.BranchID) {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": productID})
	}
	return s.usages.ListByProduct(ctx, productID)
}
