package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/repository/repofakes"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

func TestCreateOrderForBundleCarriesIncludedService(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	operator := h.seedEmployee(t, "op@example.com", domain.RoleOperator, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	bundle := h.seedBundle(t, "Massage card", branch.ID, svc.ID, 10)

	order, err := h.order.Create(context.Background(), actorFor(t, operator), OrderCreateInput{
		CustomerID:    customer.ID,
		ItemType:      domain.OrderItemProduct,
		ProductID:     bundle.ID,
		Quantity:      2,
		PaymentMethod: "Card",
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderPending, order.Status)
	require.Equal(t, branch.ID, order.BranchID)
	require.Equal(t, "card", order.PaymentMethod)
	require.Equal(t, []string{svc.ID}, order.IncludedServiceIDs)
	require.Equal(t, 600.0, order.TotalPrice)
	require.Equal(t, operator.ID, *order.EmployeeID)

	records := h.audits.ByAction(domain.ActionCreate)
	require.Len(t, records, 1)
	require.Equal(t, domain.EntityOrder, records[0].Entity)
}

func TestCreateOrderValidation(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	other := h.seedBranch(t, "other")
	operator := h.seedEmployee(t, "op@example.com", domain.RoleOperator, branch.ID)
	stranger := h.seedCustomer(t, "s@example.com", other.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	actor := actorFor(t, operator)

	_, err := h.order.Create(context.Background(), actor, OrderCreateInput{
		CustomerID: customer.ID, ItemType: domain.OrderItemService, ServiceID: svc.ID, PaymentMethod: "bitcoin",
	})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = h.order.Create(context.Background(), actor, OrderCreateInput{
		CustomerID: stranger.ID, ItemType: domain.OrderItemService, ServiceID: svc.ID, PaymentMethod: "cash",
	})
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = h.order.Create(context.Background(), actor, OrderCreateInput{
		CustomerID: customer.ID, ItemType: "gift", PaymentMethod: "cash",
	})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = h.order.Create(context.Background(), actor, OrderCreateInput{
		CustomerID: customer.ID, BranchID: other.ID, ItemType: domain.OrderItemService, ServiceID: svc.ID, PaymentMethod: "cash",
	})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestPaidOrderIsImmutable(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "m@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	bundle := h.seedBundle(t, "Massage card", branch.ID, svc.ID, 10)
	order := h.seedOrder(t, customer, bundle, domain.OrderPending)
	actor := actorFor(t, manager)

	notes := "bring towel"
	updated, err := h.order.Update(context.Background(), actor, order.ID, OrderUpdateInput{Notes: &notes})
	require.NoError(t, err)
	require.Equal(t, notes, updated.Notes)

	_, err = h.order.UpdateStatus(context.Background(), actor, order.ID, domain.OrderPaid)
	require.NoError(t, err)

	price := 1.0
	_, err = h.order.Update(context.Background(), actor, order.ID, OrderUpdateInput{Price: &price})
	requireCode(t, err, apperrors.CodeConflict)

	err = h.order.Delete(context.Background(), actor, order.ID)
	requireCode(t, err, apperrors.CodeConflict)

	stored, err := h.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, bundle.Price, stored.Price)
	require.Equal(t, domain.OrderPaid, stored.Status)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "m@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	bundle := h.seedBundle(t, "Massage card", branch.ID, svc.ID, 10)
	order := h.seedOrder(t, customer, bundle, domain.OrderPaid)
	actor := actorFor(t, manager)

	for _, status := range []domain.OrderStatus{domain.OrderCanceled, domain.OrderPending, domain.OrderCompleted, domain.OrderPaid} {
		got, err := h.order.UpdateStatus(context.Background(), actor, order.ID, status)
		require.NoError(t, err)
		require.Equal(t, status, got.Status)
	}

	_, err := h.order.UpdateStatus(context.Background(), actor, order.ID, "refunded")
	requireCode(t, err, apperrors.CodeValidation)
	require.Len(t, h.audits.ByAction(domain.ActionUpdateStatus), 4)
}

func TestCanceledOrderCanBeDeleted(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "m@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	bundle := h.seedBundle(t, "Massage card", branch.ID, svc.ID, 10)
	order := h.seedOrder(t, customer, bundle, domain.OrderCanceled)
	actor := actorFor(t, manager)

	notes := "late"
	_, err := h.order.Update(context.Background(), actor, order.ID, OrderUpdateInput{Notes: &notes})
	requireCode(t, err, apperrors.CodeConflict)

	require.NoError(t, h.order.Delete(context.Background(), actor, order.ID))
	_, err = h.order.Get(context.Background(), actor, order.ID)
	requireCode(t, err, apperrors.CodeNotFound)
	require.Len(t, h.audits.ByAction(domain.ActionDelete), 1)
}

func TestListOrdersIsBranchScoped(t *testing.T) {
	h := newHarness(t)
	home := h.seedBranch(t, "home")
	other := h.seedBranch(t, "other")
	manager := h.seedEmployee(t, "m@example.com", domain.RoleManager, home.ID)
	svcHome := h.seedService(t, "Massage", home.ID)
	svcOther := h.seedService(t, "Sauna", other.ID)
	h.seedOrder(t, h.seedCustomer(t, "a@example.com", home.ID), h.seedBundle(t, "A", home.ID, svcHome.ID, 3), domain.OrderPending)
	h.seedOrder(t, h.seedCustomer(t, "b@example.com", other.ID), h.seedBundle(t, "B", other.ID, svcOther.ID, 3), domain.OrderPending)

	orders, total, err := h.order.List(context.Background(), actorFor(t, manager), repository.OrderFilter{BranchID: &other.ID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, orders, 1)
	require.Equal(t, home.ID, orders[0].BranchID)
}

// payOnReadOrderRepo marks an order paid right after it is read, the way a
// concurrent payment would land between the service's check and its write.
type payOnReadOrderRepo struct {
	*repofakes.FakeOrderRepo
}

func (r payOnReadOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := r.FakeOrderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.FakeOrderRepo.UpdateStatus(ctx, id, domain.OrderPaid); err != nil {
		return nil, err
	}
	return o, nil
}

func TestOrderWritesRecheckStatusAtWriteTime(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "m@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	bundle := h.seedBundle(t, "Massage card", branch.ID, svc.ID, 10)
	order := h.seedOrder(t, customer, bundle, domain.OrderPending)
	actor := actorFor(t, manager)

	racing := NewOrderService(OrderDependencies{
		OrderRepo:    payOnReadOrderRepo{h.orders},
		CustomerRepo: h.customers,
		ProductRepo:  h.products,
		ServiceRepo:  h.services,
		Audit:        h.audit,
	})

	price := 1.0
	_, err := racing.Update(context.Background(), actor, order.ID, OrderUpdateInput{Price: &price})
	requireCode(t, err, apperrors.CodeConflict)

	err = racing.Delete(context.Background(), actor, order.ID)
	requireCode(t, err, apperrors.CodeConflict)

	stored, err := h.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, bundle.Price, stored.Price)
	require.Equal(t, domain.OrderPaid, stored.Status)
	require.Empty(t, h.audits.ByAction(domain.ActionUpdate))
	require.Empty(t, h.audits.ByAction(domain.ActionDelete))
}

func TestFakeOrderRepoGuardsLockedWrites(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	bundle := h.seedBundle(t, "Massage card", branch.ID, svc.ID, 10)
	canceled := h.seedOrder(t, customer, bundle, domain.OrderCanceled)
	paid := h.seedOrder(t, customer, bundle, domain.OrderPaid)

	require.ErrorIs(t, h.orders.Update(context.Background(), canceled), repository.ErrOrderLocked)
	require.ErrorIs(t, h.orders.Update(context.Background(), paid), repository.ErrOrderLocked)
	require.ErrorIs(t, h.orders.Delete(context.Background(), paid.ID), repository.ErrOrderLocked)
	require.NoError(t, h.orders.Delete(context.Background(), canceled.ID))
}
