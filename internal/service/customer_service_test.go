package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

func TestCustomerEmailUniquePerBranch(t *testing.T) {
	h := newHarness(t)
	home := h.seedBranch(t, "home")
	other := h.seedBranch(t, "other")
	admin := h.seedEmployee(t, "boss@example.com", domain.RoleSuperAdmin, "")
	actor := actorFor(t, admin)

	_, err := h.customer.Create(context.Background(), actor, CustomerInput{BranchID: home.ID, Firstname: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = h.customer.Create(context.Background(), actor, CustomerInput{BranchID: home.ID, Firstname: "Ada", Email: "ADA@example.com"})
	requireCode(t, err, apperrors.CodeConflict)

	_, err = h.customer.Create(context.Background(), actor, CustomerInput{BranchID: other.ID, Firstname: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
}

func TestCustomerScopeForBranchStaff(t *testing.T) {
	h := newHarness(t)
	home := h.seedBranch(t, "home")
	other := h.seedBranch(t, "other")
	operator := h.seedEmployee(t, "op@example.com", domain.RoleOperator, home.ID)
	foreign := h.seedCustomer(t, "f@example.com", other.ID)
	actor := actorFor(t, operator)

	created, err := h.customer.Create(context.Background(), actor, CustomerInput{Firstname: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	require.Equal(t, home.ID, created.BranchID)

	_, err = h.customer.Create(context.Background(), actor, CustomerInput{BranchID: other.ID, Firstname: "Eve", Email: "eve@example.com"})
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = h.customer.Get(context.Background(), actor, foreign.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	list, err := h.customer.List(context.Background(), actor, repository.CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, created.ID, list[0].ID)
}

func TestCustomerDeleteBlockedByOrders(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "m@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	h.seedOrder(t, customer, h.seedBundle(t, "card", branch.ID, svc.ID, 2), domain.OrderPending)
	idle := h.seedCustomer(t, "idle@example.com", branch.ID)
	actor := actorFor(t, manager)

	err := h.customer.Delete(context.Background(), actor, customer.ID)
	requireCode(t, err, apperrors.CodeConflict)

	require.NoError(t, h.customer.Delete(context.Background(), actor, idle.ID))
	_, err = h.customer.Get(context.Background(), actor, idle.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestCustomerToggleAndUpdate(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	manager := h.seedEmployee(t, "m@example.com", domain.RoleManager, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	h.seedCustomer(t, "taken@example.com", branch.ID)
	actor := actorFor(t, manager)

	toggled, err := h.customer.ToggleStatus(context.Background(), actor, customer.ID)
	require.NoError(t, err)
	require.False(t, toggled.Enabled)

	_, err = h.customer.Update(context.Background(), actor, customer.ID, CustomerInput{Firstname: "Cara", Email: "taken@example.com"})
	requireCode(t, err, apperrors.CodeConflict)

	updated, err := h.customer.Update(context.Background(), actor, customer.ID, CustomerInput{Firstname: "Cara", Lastname: "New", Email: "x@example.com"})
	require.NoError(t, err)
	require.Equal(t, "New", updated.Lastname)

	updates := h.audits.ByAction(domain.ActionUpdate)
	require.Len(t, updates, 1)
	require.Equal(t, "Customer", updates[0].OldValues["lastname"])
	require.Equal(t, "New", updates[0].NewValues["lastname"])
}
