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

func TestCatalogServiceLifecycle(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	admin := h.seedEmployee(t, "admin@example.com", domain.RoleAdmin, branch.ID)
	actor := actorFor(t, admin)

	in := ServiceInput{Name: "Facial", Type: domain.ServiceTypeWellness, Price: 60, DurationMinutes: 45}
	svc, err := h.catalog.Create(context.Background(), actor, in)
	require.NoError(t, err)
	require.Equal(t, branch.ID, svc.BranchID)

	stored, err := h.branches.GetByID(context.Background(), branch.ID)
	require.NoError(t, err)
	require.True(t, stored.OffersService(svc.ID))

	_, err = h.catalog.Create(context.Background(), actor, ServiceInput{Name: "facial", Type: domain.ServiceTypeWellness, DurationMinutes: 30})
	requireCode(t, err, apperrors.CodeConflict)

	_, err = h.catalog.Create(context.Background(), actor, ServiceInput{Name: "Odd", Type: "magic", DurationMinutes: 30})
	requireCode(t, err, apperrors.CodeValidation)

	require.NoError(t, h.catalog.Delete(context.Background(), actor, svc.ID))
	stored, err = h.branches.GetByID(context.Background(), branch.ID)
	require.NoError(t, err)
	require.False(t, stored.OffersService(svc.ID))
}

func TestCatalogDeleteBlockedByOrders(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	admin := h.seedEmployee(t, "admin@example.com", domain.RoleAdmin, branch.ID)
	customer := h.seedCustomer(t, "x@example.com", branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	h.seedOrder(t, customer, h.seedBundle(t, "card", branch.ID, svc.ID, 3), domain.OrderPending)

	err := h.catalog.Delete(context.Background(), actorFor(t, admin), svc.ID)
	requireCode(t, err, apperrors.CodeConflict)
}

func TestProductBundleRules(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	other := h.seedBranch(t, "other")
	admin := h.seedEmployee(t, "admin@example.com", domain.RoleAdmin, branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	foreignSvc := h.seedService(t, "Sauna", other.ID)
	actor := actorFor(t, admin)

	_, err := h.product.Create(context.Background(), actor, ProductInput{Name: "card", Type: domain.ProductTypeBundle, Price: 100, ServiceID: svc.ID})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = h.product.Create(context.Background(), actor, ProductInput{Name: "card", Type: domain.ProductTypeBundle, Price: 100, ServiceID: foreignSvc.ID, Quantity: 5})
	requireCode(t, err, apperrors.CodeNotFound)

	bundle, err := h.product.Create(context.Background(), actor, ProductInput{Name: "card", Type: domain.ProductTypeBundle, Price: 100, ServiceID: svc.ID, Quantity: 5})
	require.NoError(t, err)
	require.Equal(t, 5, bundle.Quantity)
	require.Zero(t, bundle.UsedQuantity)

	applied, err := h.products.AtomicIncrementUsed(context.Background(), bundle.ID, 3, bundle.Quantity)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = h.product.Update(context.Background(), actor, bundle.ID, ProductInput{Name: "card", Price: 100, ServiceID: svc.ID, Quantity: 2})
	requireCode(t, err, apperrors.CodeConflict)

	yoga := h.seedService(t, "Yoga", branch.ID)
	_, err = h.product.Update(context.Background(), actor, bundle.ID, ProductInput{Name: "card", Price: 100, ServiceID: yoga.ID, Quantity: 5})
	requireCode(t, err, apperrors.CodeConflict)

	updated, err := h.product.Update(context.Background(), actor, bundle.ID, ProductInput{Name: "card", Type: domain.ProductTypeService, Price: 120, ServiceID: svc.ID, Quantity: 8})
	require.NoError(t, err)
	require.Equal(t, domain.ProductTypeBundle, updated.Type)
	require.Equal(t, 8, updated.Quantity)
	require.Equal(t, 3, updated.UsedQuantity)
}

// redeemOnReadProductRepo records usage against a bundle right after it is
// read, the way a concurrent redemption would land between the service's
// quantity check and its write.
type redeemOnReadProductRepo struct {
	*repofakes.FakeProductRepo
	delta int
}

func (r redeemOnReadProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := r.FakeProductRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.FakeProductRepo.AtomicIncrementUsed(ctx, id, r.delta, p.Quantity); err != nil {
		return nil, err
	}
	return p, nil
}

func TestProductUpdateRechecksUsageAtWriteTime(t *testing.T) {
	h := newHarness(t)
	branch := h.seedBranch(t, "main")
	admin := h.seedEmployee(t, "admin@example.com", domain.RoleAdmin, branch.ID)
	svc := h.seedService(t, "Massage", branch.ID)
	bundle := h.seedBundle(t, "card", branch.ID, svc.ID, 10)
	actor := actorFor(t, admin)

	racing := NewProductService(ProductDependencies{
		ProductRepo: redeemOnReadProductRepo{FakeProductRepo: h.products, delta: 4},
		ServiceRepo: h.services,
		BranchRepo:  h.branches,
		OrderRepo:   h.orders,
		Audit:       h.audit,
	})

	_, err := racing.Update(context.Background(), actor, bundle.ID, ProductInput{Name: "card", Price: 300, ServiceID: svc.ID, Quantity: 3})
	requireCode(t, err, apperrors.CodeConflict)

	stored, err := h.products.GetByID(context.Background(), bundle.ID)
	require.NoError(t, err)
	require.Equal(t, 10, stored.Quantity)
	require.Equal(t, 4, stored.UsedQuantity)
	require.Empty(t, h.audits.ByAction(domain.ActionUpdate))

	shrunk := *stored
	shrunk.Quantity = 3
	require.ErrorIs(t, h.products.Update(context.Background(), &shrunk), repository.ErrProductInUse)
	yoga := h.seedService(t, "Yoga", branch.ID)
	moved := *stored
	moved.ServiceID = &yoga.ID
	require.ErrorIs(t, h.products.Update(context.Background(), &moved), repository.ErrProductInUse)
}

func TestTenantCompanyAndBranchRules(t *testing.T) {
	h := newHarness(t)
	senior := h.seedEmployee(t, "root@example.com", domain.RoleSuperAdmin, "")
	actor := actorFor(t, senior)

	company, err := h.tenant.CreateCompany(context.Background(), actor, CompanyInput{Name: "Acme Wellness", Email: "Info@Acme.example"})
	require.NoError(t, err)
	require.Equal(t, "info@acme.example", company.Email)

	_, err = h.tenant.CreateCompany(context.Background(), actor, CompanyInput{Name: "acme wellness"})
	requireCode(t, err, apperrors.CodeConflict)

	branch, err := h.tenant.CreateBranch(context.Background(), actor, BranchInput{CompanyID: company.ID, Name: "Downtown", City: "Graz"})
	require.NoError(t, err)
	require.True(t, branch.Enabled)

	manager := h.seedEmployee(t, "m@example.com", domain.RoleManager, branch.ID)
	managerActor := actorFor(t, manager)
	_, err = h.tenant.CreateCompany(context.Background(), managerActor, CompanyInput{Name: "Other"})
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = h.tenant.ToggleBranch(context.Background(), managerActor, branch.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	second, err := h.tenant.CreateBranch(context.Background(), actor, BranchInput{CompanyID: company.ID, Name: "Uptown"})
	require.NoError(t, err)
	visible, err := h.tenant.ListBranches(context.Background(), managerActor, repository.BranchFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, branch.ID, visible[0].ID)

	toggled, err := h.tenant.ToggleBranch(context.Background(), actor, second.ID)
	require.NoError(t, err)
	require.False(t, toggled.Enabled)
	public, err := h.tenant.PublicBranches(context.Background())
	require.NoError(t, err)
	require.Len(t, public, 1)
}
