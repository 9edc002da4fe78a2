package repofakes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
)

var _ repository.OrderRepository = (*FakeOrderRepo)(nil)

type FakeOrderRepo struct {
	orders map[string]*domain.Order
	lock   sync.RWMutex
}

func NewFakeOrderRepo() *FakeOrderRepo {
	return &FakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *FakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *FakeOrderRepo) Update(_ context.Context, o *domain.Order) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.orders[o.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.FieldsLocked() {
		return repository.ErrOrderLocked
	}
	o.Status = stored.Status
	o.UpdatedAt = time.Now()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *FakeOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (r *FakeOrderRepo) Delete(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if !stored.Deletable() {
		return repository.ErrOrderLocked
	}
	delete(r.orders, id)
	return nil
}

func (r *FakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func matchOrder(o *domain.Order, f repository.OrderFilter) bool {
	ptrEq := func(want *string, got *string) bool {
		return want == nil || (got != nil && *got == *want)
	}
	if f.BranchID != nil && o.BranchID != *f.BranchID {
		return false
	}
	if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
		return false
	}
	if !ptrEq(f.EmployeeID, o.EmployeeID) || !ptrEq(f.ProductID, o.ProductID) {
		return false
	}
	if f.ServiceID != nil {
		found := o.ServiceID != nil && *o.ServiceID == *f.ServiceID
		for _, id := range o.IncludedServiceIDs {
			found = found || id == *f.ServiceID
		}
		if !found {
			return false
		}
	}
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	if f.From != nil && o.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && o.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func (r *FakeOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.Order
	for _, o := range r.orders {
		if matchOrder(o, filter) {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *FakeOrderRepo) Count(_ context.Context, filter repository.OrderFilter) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	n := 0
	for _, o := range r.orders {
		if matchOrder(o, filter) {
			n++
		}
	}
	return n, nil
}
