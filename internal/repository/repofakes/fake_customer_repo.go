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

var _ repository.CustomerRepository = (*FakeCustomerRepo)(nil)

type FakeCustomerRepo struct {
	customers map[string]*domain.Customer
	lock      sync.RWMutex
}

func NewFakeCustomerRepo() *FakeCustomerRepo {
	return &FakeCustomerRepo{customers: make(map[string]*domain.Customer)}
}

func (r *FakeCustomerRepo) Create(_ context.Context, c *domain.Customer) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *FakeCustomerRepo) Update(_ context.Context, c *domain.Customer) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.customers[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	c.UpdatedAt = time.Now()
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *FakeCustomerRepo) Delete(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.customers[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.customers, id)
	return nil
}

func (r *FakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (r *FakeCustomerRepo) ExistsByEmailInBranch(_ context.Context, branchID, email, excludeID string) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for id, c := range r.customers {
		if id != excludeID && c.BranchID == branchID && strings.EqualFold(c.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *FakeCustomerRepo) TouchLastVisit(_ context.Context, id string, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if c, ok := r.customers[id]; ok {
		c.LastVisit = &at
	}
	return nil
}

func (r *FakeCustomerRepo) List(_ context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.Customer
	for _, c := range r.customers {
		if filter.BranchID != nil && c.BranchID != *filter.BranchID {
			continue
		}
		if filter.Enabled != nil && c.Enabled != *filter.Enabled {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(c.FullName()+" "+c.Email), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}
