package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

var paymentMethods = map[string]bool{
	"cash":          true,
	"card":          true,
	"bank_transfer": true,
	"qr_payment":    true,
}

// OrderCreateInput describes a new order.
type OrderCreateInput struct {
	CustomerID      string
	BranchID        string
	ItemType        domain.OrderItemType
	ServiceID       string
	ProductID       string
	Quantity        int
	Price           *float64
	PaymentMethod   string
	AppointmentDate time.Time
	AppointmentTime string
	Notes           string
}

// OrderUpdateInput holds editable order fields; nil means unchanged.
type OrderUpdateInput struct {
	Price           *float64
	Quantity        *int
	PaymentMethod   *string
	AppointmentDate *time.Time
	AppointmentTime *string
	Notes           *string
}

// OrderService coordinates order workflows.
type OrderService struct {
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	services  repository.ServiceRepository
	audit     *AuditService
	logger    *zap.Logger
}

// OrderDependencies bundles repositories for the order service.
type OrderDependencies struct {
	OrderRepo    repository.OrderRepository
	CustomerRepo repository.CustomerRepository
	ProductRepo  repository.ProductRepository
	ServiceRepo  repository.ServiceRepository
	Audit        *AuditService
	Logger       *zap.Logger
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:    deps.OrderRepo,
		customers: deps.CustomerRepo,
		products:  deps.ProductRepo,
		services:  deps.ServiceRepo,
		audit:     deps.Audit,
		logger:    logger,
	}
}

// Create places a pending order for a customer of the actor's branch.
func (s *OrderService) Create(ctx context.Context, actor Actor, in OrderCreateInput) (*domain.Order, error) {
	branchID, err := actor.ResolveBranch(in.BranchID)
	if err != nil {
		return nil, err
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", nil)
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, apperrors.NewValidationError("price must not be negative", nil)
	}
	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if !paymentMethods[method] {
		return nil, apperrors.NewValidationError("invalid payment method", map[string]any{"payment_method": in.PaymentMethod})
	}

	customer, err := s.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("customer", map[string]any{"id": in.CustomerID})
		}
		return nil, err
	}
	if customer.BranchID != branchID {
		return nil, apperrors.NewNotFound("customer", map[string]any{"id": in.CustomerID})
	}

	order := &domain.Order{
		CustomerID:      customer.ID,
		CustomerName:    customer.FullName(),
		BranchID:        branchID,
		ItemType:        in.ItemType,
		Quantity:        in.Quantity,
		PaymentMethod:   method,
		Status:          domain.OrderPending,
		AppointmentDate: in.AppointmentDate,
		AppointmentTime: in.AppointmentTime,
		EmployeeID:      actor.employeeRef(),
		Notes:           strings.TrimSpace(in.Notes),
	}
	if order.AppointmentDate.IsZero() {
		order.AppointmentDate = time.Now().UTC()
	}

	switch in.ItemType {
	case domain.OrderItemService:
		svc, err := s.services.GetByID(ctx, in.ServiceID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if svc == nil || !svc.Active || svc.BranchID != branchID {
			return nil, apperrors.NewNotFound("service", map[string]any{"id": in.ServiceID})
		}
		order.ServiceID = &svc.ID
		order.ItemName = svc.Name
		order.Price = svc.Price
	case domain.OrderItemProduct:
		product, err := s.products.GetByID(ctx, in.ProductID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if product == nil || !product.Active || product.BranchID != branchID {
			return nil, apperrors.NewNotFound("product", map[string]any{"id": in.ProductID})
		}
		order.ProductID = &product.ID
		order.ItemName = product.Name
		order.Price = product.Price
		if product.IsBundle() && product.ServiceID != nil {
			order.IncludedServiceIDs = []string{*product.ServiceID}
		}
	default:
		return nil, apperrors.NewValidationError("item_type must be service or product", nil)
	}
	if in.Price != nil {
		order.Price = *in.Price
	}
	order.TotalPrice = order.Price * float64(order.Quantity)

	if err := s.orders.Create(ctx, order); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, apperrors.NewNotFound("referenced entity", nil)
		}
		return nil, err
	}

	if err := s.customers.TouchLastVisit(ctx, customer.ID, time.Now()); err != nil {
		s.logger.Warn("update last visit", zap.String("customer_id", customer.ID), zap.Error(err))
	}

	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionCreate,
		Entity:     domain.EntityOrder,
		EntityID:   order.ID,
		EmployeeID: actor.employeeRef(),
		CustomerID: &order.CustomerID,
		BranchID:   &order.BranchID,
		OrderID:    &order.ID,
		NewValues:  orderSnapshot(order),
		Client:     actor.Client,
	})
	return order, nil
}

// Get returns an order visible to the actor.
func (s *OrderService) Get(ctx context.Context, actor Actor, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"id": id})
		}
		return nil, err
	}
	if !actor.CanAccess(order.BranchID) {
		return nil, apperrors.NewNotFound("order", map[string]any{"id": id})
	}
	return order, nil
}

// List returns a page of orders and the unpaged total.
func (s *OrderService) List(ctx context.Context, actor Actor, filter repository.OrderFilter) ([]domain.Order, int, error) {
	filter.BranchID = actor.BranchFilter(filter.BranchID)
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Update edits order fields. Paid and canceled orders are locked.
func (s *OrderService) Update(ctx context.Context, actor Actor, id string, in OrderUpdateInput) (*domain.Order, error) {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.FieldsLocked() {
		return nil, apperrors.NewConflict("cannot update paid or canceled order", map[string]any{"status": order.Status})
	}
	old := orderSnapshot(order)

	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperrors.NewValidationError("price must not be negative", nil)
		}
		order.Price = *in.Price
	}
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, apperrors.NewValidationError("quantity must be positive", nil)
		}
		order.Quantity = *in.Quantity
	}
	if in.PaymentMethod != nil {
		method := strings.ToLower(strings.TrimSpace(*in.PaymentMethod))
		if !paymentMethods[method] {
			return nil, apperrors.NewValidationError("invalid payment method", map[string]any{"payment_method": *in.PaymentMethod})
		}
		order.PaymentMethod = method
	}
	if in.AppointmentDate != nil {
		order.AppointmentDate = *in.AppointmentDate
	}
	if in.AppointmentTime != nil {
		order.AppointmentTime = *in.AppointmentTime
	}
	if in.Notes != nil {
		order.Notes = strings.TrimSpace(*in.Notes)
	}
	order.TotalPrice = order.Price * float64(order.Quantity)

	if err := s.orders.Update(ctx, order); err != nil {
		if errors.Is(err, repository.ErrOrderLocked) {
			return nil, apperrors.NewConflict("cannot update paid or canceled order", nil)
		}
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionUpdate,
		Entity:     domain.EntityOrder,
		EntityID:   order.ID,
		EmployeeID: actor.employeeRef(),
		CustomerID: &order.CustomerID,
		BranchID:   &order.BranchID,
		OrderID:    &order.ID,
		OldValues:  old,
		NewValues:  orderSnapshot(order),
		Client:     actor.Client,
	})
	return order, nil
}

// UpdateStatus moves an order to status. Any status is reachable from any
// other; only field edits are locked by terminal states.
func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid order status", map[string]any{"status": status})
	}
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := orderSnapshot(order)

	if err := s.orders.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, err
	}
	order.Status = status

	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionUpdateStatus,
		Entity:     domain.EntityOrder,
		EntityID:   order.ID,
		EmployeeID: actor.employeeRef(),
		CustomerID: &order.CustomerID,
		BranchID:   &order.BranchID,
		OrderID:    &order.ID,
		OldValues:  old,
		NewValues:  orderSnapshot(order),
		Client:     actor.Client,
	})
	return order, nil
}

// Delete removes an order unless it has been paid.
func (s *OrderService) Delete(ctx context.Context, actor Actor, id string) error {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !order.Deletable() {
		return apperrors.NewConflict("cannot delete paid order", map[string]any{"status": order.Status})
	}

	if err := s.orders.Delete(ctx, order.ID); err != nil {
		if errors.Is(err, repository.ErrOrderLocked) {
			return apperrors.NewConflict("cannot delete paid order", nil)
		}
		if repository.IsForeignKeyViolation(err) {
			return apperrors.NewConflict("order has recorded service usages", nil)
		}
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Action:     domain.ActionDelete,
		Entity:     domain.EntityOrder,
		EntityID:   order.ID,
		EmployeeID: actor.employeeRef(),
		CustomerID: &order.CustomerID,
		BranchID:   &order.BranchID,
		OrderID:    &order.ID,
		OldValues:  orderSnapshot(order),
		Client:     actor.Client,
	})
	return nil
}
