package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wahid-dev1/semina/internal/auth"
	"github.com/wahid-dev1/semina/internal/config"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/events"
	"github.com/wahid-dev1/semina/internal/observability"
	"github.com/wahid-dev1/semina/internal/repository/repofakes"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

const testPassword = "correct-horse"

var testClient = ClientInfo{IPAddress: "10.0.0.7", UserAgent: "go-test"}

// harness wires every service against in-memory fakes.
type harness struct {
	employees *repofakes.FakeEmployeeRepo
	customers *repofakes.FakeCustomerRepo
	sessions  *repofakes.FakeSessionRepo
	cache     *repofakes.FakeSessionCache
	qrCodes   *repofakes.FakeQRCodeRepo
	audits    *repofakes.FakeAuditRepo
	products  *repofakes.FakeProductRepo
	services  *repofakes.FakeServiceRepo
	orders    *repofakes.FakeOrderRepo
	usages    *repofakes.FakeServiceUsageRepo
	branches  *repofakes.FakeBranchRepo
	companies *repofakes.FakeCompanyRepo
	histories *repofakes.FakeMedicalHistoryRepo
	subs      *repofakes.FakeSubscriptionRepo
	tx        *repofakes.FakeTxManager
	metrics   *observability.Metrics
	hasher    *auth.PasswordHasher

	audit        *AuditService
	auth         *AuthService
	ledger       *LedgerService
	order        *OrderService
	customer     *CustomerService
	employee     *EmployeeService
	catalog      *CatalogService
	product      *ProductService
	tenant       *TenantService
	medical      *MedicalFormService
	subscription *SubscriptionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		employees: repofakes.NewFakeEmployeeRepo(),
		customers: repofakes.NewFakeCustomerRepo(),
		sessions:  repofakes.NewFakeSessionRepo(),
		cache:     repofakes.NewFakeSessionCache(),
		qrCodes:   repofakes.NewFakeQRCodeRepo(),
		audits:    repofakes.NewFakeAuditRepo(),
		products:  repofakes.NewFakeProductRepo(),
		services:  repofakes.NewFakeServiceRepo(),
		orders:    repofakes.NewFakeOrderRepo(),
		usages:    repofakes.NewFakeServiceUsageRepo(),
		branches:  repofakes.NewFakeBranchRepo(),
		companies: repofakes.NewFakeCompanyRepo(),
		histories: repofakes.NewFakeMedicalHistoryRepo(),
		subs:      repofakes.NewFakeSubscriptionRepo(),
		tx:        repofakes.NewFakeTxManager(),
		metrics:   observability.NewMetrics(),
	}

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:  "test-secret",
		Issuer:     "semina-test",
		BcryptCost: 4,
	}}

	h.audit = NewAuditService(AuditDependencies{
		AuditRepo:  h.audits,
		Dispatcher: events.NewInMemoryDispatcher(nil),
		Metrics:    h.metrics,
	})
	h.auth = NewAuthService(cfg, AuthDependencies{
		EmployeeRepo: h.employees,
		CustomerRepo: h.customers,
		SessionRepo:  h.sessions,
		SessionCache: h.cache,
		QRCodeRepo:   h.qrCodes,
		TxManager:    h.tx,
		Audit:        h.audit,
		Metrics:      h.metrics,
	})
	h.hasher = h.auth.Hasher()
	h.ledger = NewLedgerService(LedgerDependencies{
		ProductRepo:      h.products,
		ServiceRepo:      h.services,
		OrderRepo:        h.orders,
		ServiceUsageRepo: h.usages,
		TxManager:        h.tx,
		Audit:            h.audit,
		Metrics:          h.metrics,
	})
	h.order = NewOrderService(OrderDependencies{
		OrderRepo:    h.orders,
		CustomerRepo: h.customers,
		ProductRepo:  h.products,
		ServiceRepo:  h.services,
		Audit:        h.audit,
	})
	h.customer = NewCustomerService(CustomerDependencies{
		CustomerRepo: h.customers,
		BranchRepo:   h.branches,
		OrderRepo:    h.orders,
		Audit:        h.audit,
	})
	h.employee = NewEmployeeService(EmployeeDependencies{
		EmployeeRepo: h.employees,
		BranchRepo:   h.branches,
		OrderRepo:    h.orders,
		Hasher:       h.hasher,
		Audit:        h.audit,
	})
	h.catalog = NewCatalogService(CatalogDependencies{
		ServiceRepo: h.services,
		BranchRepo:  h.branches,
		OrderRepo:   h.orders,
		TxManager:   h.tx,
		Audit:       h.audit,
	})
	h.product = NewProductService(ProductDependencies{
		ProductRepo: h.products,
		ServiceRepo: h.services,
		BranchRepo:  h.branches,
		OrderRepo:   h.orders,
		Audit:       h.audit,
	})
	h.tenant = NewTenantService(TenantDependencies{
		CompanyRepo: h.companies,
		BranchRepo:  h.branches,
		Audit:       h.audit,
	})
	h.subscription = NewSubscriptionService(SubscriptionDependencies{
		SubscriptionRepo: h.subs,
		CompanyRepo:      h.companies,
		BranchRepo:       h.branches,
		ProductRepo:      h.products,
		TxManager:        h.tx,
		Audit:            h.audit,
	})
	h.medical = NewMedicalFormService(MedicalFormDependencies{
		CustomerRepo:       h.customers,
		BranchRepo:         h.branches,
		MedicalHistoryRepo: h.histories,
		Auth:               h.auth,
		TxManager:          h.tx,
		Audit:              h.audit,
	})
	return h
}

func (h *harness) seedBranch(t *testing.T, name string) *domain.Branch {
	t.Helper()
	b := &domain.Branch{Name: name, Email: name + "@example.com", City: "Vienna", Enabled: true}
	require.NoError(t, h.branches.Create(context.Background(), b))
	return b
}

func (h *harness) seedEmployee(t *testing.T, email string, role domain.StaffRole, branchID string) *domain.Employee {
	t.Helper()
	hash, err := h.hasher.Hash(testPassword)
	require.NoError(t, err)
	scope, err := domain.NewStaffScope(role, branchID)
	require.NoError(t, err)
	e := &domain.Employee{
		Username:     email,
		Firstname:    "Test",
		Email:        email,
		PasswordHash: hash,
		PersonalPin:  "1234",
		Scope:        scope,
		Enabled:      true,
		Language:     "en",
	}
	require.NoError(t, h.employees.Create(context.Background(), e))
	return e
}

func (h *harness) seedCustomer(t *testing.T, email, branchID string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{Firstname: "Cara", Lastname: "Customer", Email: email, BranchID: branchID, Enabled: true}
	require.NoError(t, h.customers.Create(context.Background(), c))
	return c
}

func (h *harness) seedService(t *testing.T, name, branchID string) *domain.Service {
	t.Helper()
	s := &domain.Service{Name: name, Type: domain.ServiceTypeTreatment, Price: 40, DurationMinutes: 30, Active: true, BranchID: branchID}
	require.NoError(t, h.services.Create(context.Background(), s))
	require.NoError(t, h.branches.AddService(context.Background(), branchID, s.ID))
	return s
}

func (h *harness) seedBundle(t *testing.T, name, branchID, serviceID string, quantity int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:      name,
		Type:      domain.ProductTypeBundle,
		Price:     300,
		Active:    true,
		BranchID:  branchID,
		ServiceID: &serviceID,
		Quantity:  quantity,
	}
	require.NoError(t, h.products.Create(context.Background(), p))
	return p
}

func (h *harness) seedOrder(t *testing.T, customer *domain.Customer, product *domain.Product, status domain.OrderStatus) *domain.Order {
	t.Helper()
	o := &domain.Order{
		CustomerID:      customer.ID,
		CustomerName:    customer.FullName(),
		BranchID:        customer.BranchID,
		ItemType:        domain.OrderItemProduct,
		ProductID:       &product.ID,
		ItemName:        product.Name,
		Price:           product.Price,
		Quantity:        1,
		TotalPrice:      product.Price,
		PaymentMethod:   "card",
		Status:          status,
		AppointmentDate: time.Now().UTC(),
	}
	if product.ServiceID != nil {
		o.IncludedServiceIDs = []string{*product.ServiceID}
	}
	require.NoError(t, h.orders.Create(context.Background(), o))
	return o
}

func actorFor(t *testing.T, e *domain.Employee) Actor {
	t.Helper()
	actor, err := NewActor(employeePrincipal(e), testClient)
	require.NoError(t, err)
	return actor
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, code), "want %s, got %v", code, err)
}

func counterValue(t *testing.T, m *observability.Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}
