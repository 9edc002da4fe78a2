package repofakes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
)

var _ repository.SessionRepository = (*FakeSessionRepo)(nil)

type FakeSessionRepo struct {
	sessions map[string]*domain.Session // keyed by token
	lock     sync.RWMutex
	// FailCreate makes Create return an error, to exercise issuance failures.
	FailCreate bool
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *FakeSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.FailCreate {
		return errors.New("session store unavailable")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = time.Now()
	cp := *s
	r.sessions[s.Token] = &cp
	token := s.Token
	onRollback(ctx, func() {
		r.lock.Lock()
		defer r.lock.Unlock()
		delete(r.sessions, token)
	})
	return nil
}

func (r *FakeSessionRepo) FindActiveByToken(_ context.Context, token string) (*domain.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	s, ok := r.sessions[token]
	if !ok || !s.IsValid(time.Now()) {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (r *FakeSessionRepo) Deactivate(ctx context.Context, token string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	s, ok := r.sessions[token]
	if !ok || !s.IsValid(time.Now()) {
		return false, nil
	}
	onRollback(ctx, func() {
		r.lock.Lock()
		defer r.lock.Unlock()
		s.Active = true
	})
	s.Active = false
	s.LastActivity = time.Now()
	return true, nil
}

func (r *FakeSessionRepo) ListActiveByPrincipal(_ context.Context, principalID string) ([]domain.Session, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var result []domain.Session
	for _, s := range r.sessions {
		if s.PrincipalID == principalID && s.IsValid(time.Now()) {
			result = append(result, *s)
		}
	}
	return result, nil
}

// Get returns the stored session regardless of state.
func (r *FakeSessionRepo) Get(token string) (*domain.Session, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, false
	}
	cp := *s
	return &cp, true
}
