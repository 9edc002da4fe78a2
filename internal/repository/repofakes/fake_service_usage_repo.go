package repofakes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
)

var _ repository.ServiceUsageRepository = (*FakeServiceUsageRepo)(nil)

type FakeServiceUsageRepo struct {
	usages []domain.ServiceUsage
	lock   sync.RWMutex
}

func NewFakeServiceUsageRepo() *FakeServiceUsageRepo {
	return &FakeServiceUsageRepo{}
}

func (r *FakeServiceUsageRepo) Create(_ context.Context, u *domain.ServiceUsage) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	r.usages = append(r.usages, *u)
	return nil
}

func (r *FakeServiceUsageRepo) ListByProduct(_ context.Context, productID string) ([]domain.ServiceUsage, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.ServiceUsage
	for _, u := range r.usages {
		if u.ProductID != nil && *u.ProductID == productID {
			result = append(result, u)
		}
	}
	return result, nil
}
