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

var (
	_ repository.ServiceRepository        = (*FakeServiceRepo)(nil)
	_ repository.BranchRepository         = (*FakeBranchRepo)(nil)
	_ repository.CompanyRepository        = (*FakeCompanyRepo)(nil)
	_ repository.MedicalHistoryRepository = (*FakeMedicalHistoryRepo)(nil)
)

type FakeServiceRepo struct {
	services map[string]*domain.Service
	lock     sync.RWMutex
}

func NewFakeServiceRepo() *FakeServiceRepo {
	return &FakeServiceRepo{services: make(map[string]*domain.Service)}
}

func (r *FakeServiceRepo) Create(_ context.Context, s *domain.Service) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *FakeServiceRepo) Update(_ context.Context, s *domain.Service) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.services[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.UpdatedAt = time.Now()
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *FakeServiceRepo) Delete(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.services[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.services, id)
	return nil
}

func (r *FakeServiceRepo) GetByID(_ context.Context, id string) (*domain.Service, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	s, ok := r.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (r *FakeServiceRepo) ExistsByNameInBranch(_ context.Context, branchID, name, excludeID string) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for id, s := range r.services {
		if id != excludeID && s.BranchID == branchID && strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *FakeServiceRepo) List(_ context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.Service
	for _, s := range r.services {
		if filter.BranchID != nil && s.BranchID != *filter.BranchID {
			continue
		}
		if filter.Type != nil && s.Type != *filter.Type {
			continue
		}
		if filter.Active != nil && s.Active != *filter.Active {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

type FakeBranchRepo struct {
	branches map[string]*domain.Branch
	lock     sync.RWMutex
}

func NewFakeBranchRepo() *FakeBranchRepo {
	return &FakeBranchRepo{branches: make(map[string]*domain.Branch)}
}

func (r *FakeBranchRepo) Create(_ context.Context, b *domain.Branch) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	cp.ServiceIDs = append([]string(nil), b.ServiceIDs...)
	r.branches[b.ID] = &cp
	return nil
}

func (r *FakeBranchRepo) Update(_ context.Context, b *domain.Branch) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	stored, ok := r.branches[b.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	b.ServiceIDs = append([]string(nil), stored.ServiceIDs...)
	b.UpdatedAt = time.Now()
	cp := *b
	r.branches[b.ID] = &cp
	return nil
}

func (r *FakeBranchRepo) GetByID(_ context.Context, id string) (*domain.Branch, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	b, ok := r.branches[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	cp.ServiceIDs = append([]string(nil), b.ServiceIDs...)
	return &cp, nil
}

func (r *FakeBranchRepo) List(_ context.Context, filter repository.BranchFilter) ([]domain.Branch, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.Branch
	for _, b := range r.branches {
		if filter.CompanyID != nil && b.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Enabled != nil && b.Enabled != *filter.Enabled {
			continue
		}
		if filter.IDs != nil && !contains(filter.IDs, b.ID) {
			continue
		}
		result = append(result, *b)
	}
	return result, nil
}

func (r *FakeBranchRepo) AddService(_ context.Context, branchID, serviceID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if b, ok := r.branches[branchID]; ok && !contains(b.ServiceIDs, serviceID) {
		b.ServiceIDs = append(b.ServiceIDs, serviceID)
	}
	return nil
}

func (r *FakeBranchRepo) RemoveService(_ context.Context, serviceID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, b := range r.branches {
		kept := b.ServiceIDs[:0]
		for _, id := range b.ServiceIDs {
			if id != serviceID {
				kept = append(kept, id)
			}
		}
		b.ServiceIDs = kept
	}
	return nil
}

type FakeCompanyRepo struct {
	companies map[string]*domain.Company
	lock      sync.RWMutex
}

func NewFakeCompanyRepo() *FakeCompanyRepo {
	return &FakeCompanyRepo{companies: make(map[string]*domain.Company)}
}

func (r *FakeCompanyRepo) Create(_ context.Context, c *domain.Company) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *FakeCompanyRepo) Update(_ context.Context, c *domain.Company) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.companies[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	c.UpdatedAt = time.Now()
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *FakeCompanyRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	c, ok := r.companies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (r *FakeCompanyRepo) GetByName(_ context.Context, name string) (*domain.Company, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, c := range r.companies {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *FakeCompanyRepo) List(_ context.Context, _, _ int) ([]domain.Company, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.Company
	for _, c := range r.companies {
		result = append(result, *c)
	}
	return result, nil
}

type FakeMedicalHistoryRepo struct {
	histories map[string]*domain.MedicalHistory // keyed by customer id
	lock      sync.RWMutex
}

func NewFakeMedicalHistoryRepo() *FakeMedicalHistoryRepo {
	return &FakeMedicalHistoryRepo{histories: make(map[string]*domain.MedicalHistory)}
}

func (r *FakeMedicalHistoryRepo) Create(_ context.Context, h *domain.MedicalHistory) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	h.ID = uuid.NewString()
	now := time.Now()
	h.CreatedAt, h.UpdatedAt = now, now
	cp := *h
	r.histories[h.CustomerID] = &cp
	return nil
}

func (r *FakeMedicalHistoryRepo) GetByCustomer(_ context.Context, customerID string) (*domain.MedicalHistory, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	h, ok := r.histories[customerID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *h
	return &cp, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
