package repofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
)

var _ repository.SubscriptionRepository = (*FakeSubscriptionRepo)(nil)

type FakeSubscriptionRepo struct {
	subs map[string]*domain.Subscription
	lock sync.RWMutex
	// Locked records every company passed to LockCompany.
	Locked []string
}

func NewFakeSubscriptionRepo() *FakeSubscriptionRepo {
	return &FakeSubscriptionRepo{subs: make(map[string]*domain.Subscription)}
}

func cloneSubscription(s *domain.Subscription) *domain.Subscription {
	cp := *s
	cp.ProductIDs = append([]string(nil), s.ProductIDs...)
	return &cp
}

func (r *FakeSubscriptionRepo) Create(ctx context.Context, s *domain.Subscription) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	r.subs[s.ID] = cloneSubscription(s)
	id := s.ID
	onRollback(ctx, func() {
		r.lock.Lock()
		defer r.lock.Unlock()
		delete(r.subs, id)
	})
	return nil
}

func (r *FakeSubscriptionRepo) Update(_ context.Context, s *domain.Subscription) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.subs[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	s.UpdatedAt = time.Now()
	r.subs[s.ID] = cloneSubscription(s)
	return nil
}

func (r *FakeSubscriptionRepo) Delete(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.subs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.subs, id)
	return nil
}

func (r *FakeSubscriptionRepo) GetByID(_ context.Context, id string) (*domain.Subscription, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	s, ok := r.subs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneSubscription(s), nil
}

func (r *FakeSubscriptionRepo) List(_ context.Context, filter repository.SubscriptionFilter) ([]domain.Subscription, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.Subscription
	for _, s := range r.subs {
		if filter.CompanyID != nil && s.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Active != nil && s.Active != *filter.Active {
			continue
		}
		if filter.CurrentAt != nil && !s.CurrentAt(*filter.CurrentAt) {
			continue
		}
		result = append(result, *cloneSubscription(s))
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })

	limit, offset := repository.Page(filter.Limit, filter.Offset)
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (r *FakeSubscriptionRepo) Stats(_ context.Context, companyID *string, now time.Time) (*domain.SubscriptionStats, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	stats := &domain.SubscriptionStats{}
	var totalDays float64
	soon := now.Add(repository.SubscriptionExpiryWindow)
	for _, s := range r.subs {
		if companyID != nil && s.CompanyID != *companyID {
			continue
		}
		stats.Total++
		totalDays += s.EndDate.Sub(s.StartDate).Hours() / 24
		if !s.Active {
			stats.Inactive++
			continue
		}
		stats.Active++
		if s.CurrentAt(now) {
			stats.Current++
		}
		if s.EndDate.After(now) && !s.EndDate.After(soon) {
			stats.ExpiringSoon++
		}
	}
	if stats.Total > 0 {
		stats.AverageDurationDays = totalDays / float64(stats.Total)
	}
	return stats, nil
}

func (r *FakeSubscriptionRepo) LockCompany(_ context.Context, companyID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.Locked = append(r.Locked, companyID)
	return nil
}

func (r *FakeSubscriptionRepo) FindOverlapping(_ context.Context, companyID string, start, end time.Time, excludeID string) (*domain.Subscription, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	for _, s := range r.subs {
		if s.ID == excludeID || s.CompanyID != companyID || !s.Active {
			continue
		}
		if s.Overlaps(start, end) {
			return cloneSubscription(s), nil
		}
	}
	return nil, pgx.ErrNoRows
}
