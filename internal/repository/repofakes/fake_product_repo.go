package repofakes

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
)

var _ repository.ProductRepository = (*FakeProductRepo)(nil)

type FakeProductRepo struct {
	products map[string]*domain.Product
	lock     sync.RWMutex
}

func NewFakeProductRepo() *FakeProductRepo {
	return &FakeProductRepo{products: make(map[string]*domain.Product)}
}

func (r *FakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *FakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.products[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.UsedQuantity > p.Quantity {
		return repository.ErrProductInUse
	}
	if stored.UsedQuantity > 0 && !sameService(stored.ServiceID, p.ServiceID) {
		return repository.ErrProductInUse
	}
	p.UsedQuantity = stored.UsedQuantity
	p.UpdatedAt = time.Now()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *FakeProductRepo) Delete(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.products[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.products, id)
	return nil
}

func (r *FakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (r *FakeProductRepo) ExistsByNameInBranch(_ context.Context, branchID, name, excludeID string) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for id, p := range r.products {
		if id != excludeID && p.BranchID == branchID && strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *FakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.Product
	for _, p := range r.products {
		if filter.BranchID != nil && p.BranchID != *filter.BranchID {
			continue
		}
		if filter.Type != nil && p.Type != *filter.Type {
			continue
		}
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (r *FakeProductRepo) AtomicIncrementUsed(_ context.Context, id string, delta, maxTotal int) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, ok := r.products[id]
	if !ok || !p.IsBundle() || delta <= 0 {
		return false, nil
	}
	limit := p.Quantity
	if maxTotal < limit {
		limit = maxTotal
	}
	if p.UsedQuantity+delta > limit {
		return false, nil
	}
	p.UsedQuantity += delta
	p.UpdatedAt = time.Now()
	return true, nil
}

func sameService(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
