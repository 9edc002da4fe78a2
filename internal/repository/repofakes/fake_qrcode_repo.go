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

var _ repository.QRCodeRepository = (*FakeQRCodeRepo)(nil)

type FakeQRCodeRepo struct {
	codes map[string]*domain.QRCode // keyed by code
	lock  sync.RWMutex
}

func NewFakeQRCodeRepo() *FakeQRCodeRepo {
	return &FakeQRCodeRepo{codes: make(map[string]*domain.QRCode)}
}

func (r *FakeQRCodeRepo) Create(_ context.Context, q *domain.QRCode) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = time.Now()
	cp := *q
	r.codes[q.Code] = &cp
	return nil
}

func (r *FakeQRCodeRepo) Redeem(ctx context.Context, code string, at time.Time) (*domain.QRCode, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	q, ok := r.codes[code]
	if !ok || !q.Usable(at) {
		return nil, pgx.ErrNoRows
	}
	onRollback(ctx, func() {
		r.lock.Lock()
		defer r.lock.Unlock()
		q.Valid = true
		q.UsedAt = nil
	})
	q.Valid = false
	q.UsedAt = &at
	cp := *q
	return &cp, nil
}

func (r *FakeQRCodeRepo) GetByCode(_ context.Context, code string) (*domain.QRCode, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	q, ok := r.codes[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	return &cp, nil
}

func (r *FakeQRCodeRepo) InvalidateForCustomer(_ context.Context, customerID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for _, q := range r.codes {
		if q.CustomerID == customerID && q.UsedAt == nil {
			q.Valid = false
		}
	}
	return nil
}
