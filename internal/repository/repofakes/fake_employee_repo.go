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

var _ repository.EmployeeRepository = (*FakeEmployeeRepo)(nil)

type FakeEmployeeRepo struct {
	employees map[string]*domain.Employee
	lock      sync.RWMutex
}

func NewFakeEmployeeRepo() *FakeEmployeeRepo {
	return &FakeEmployeeRepo{employees: make(map[string]*domain.Employee)}
}

func (r *FakeEmployeeRepo) Create(_ context.Context, e *domain.Employee) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	cp := *e
	r.employees[e.ID] = &cp
	return nil
}

func (r *FakeEmployeeRepo) Update(_ context.Context, e *domain.Employee) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.employees[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	e.UpdatedAt = time.Now()
	cp := *e
	r.employees[e.ID] = &cp
	return nil
}

func (r *FakeEmployeeRepo) Delete(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.employees[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.employees, id)
	return nil
}

func (r *FakeEmployeeRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (r *FakeEmployeeRepo) FindEnabledByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, e := range r.employees {
		if e.Enabled && strings.EqualFold(e.Email, email) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *FakeEmployeeRepo) ExistsByUsernameOrEmail(_ context.Context, username, email, excludeID string) (bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for id, e := range r.employees {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(e.Username, username) || strings.EqualFold(e.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *FakeEmployeeRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if e, ok := r.employees[id]; ok {
		e.LastLogin = &at
	}
	return nil
}

func (r *FakeEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.Employee
	for _, e := range r.employees {
		if filter.BranchID != nil && e.BranchID() != *filter.BranchID {
			continue
		}
		if filter.Role != nil && e.Role() != *filter.Role {
			continue
		}
		if filter.Enabled != nil && e.Enabled != *filter.Enabled {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}
