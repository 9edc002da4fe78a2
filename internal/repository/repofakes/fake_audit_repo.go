package repofakes

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
)

var _ repository.AuditRepository = (*FakeAuditRepo)(nil)

type FakeAuditRepo struct {
	records []domain.AuditRecord
	lock    sync.RWMutex
	// FailAppend makes Append return an error.
	FailAppend bool
}

func NewFakeAuditRepo() *FakeAuditRepo {
	return &FakeAuditRepo{}
}

func (r *FakeAuditRepo) Append(_ context.Context, rec *domain.AuditRecord) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.FailAppend {
		return errors.New("audit store unavailable")
	}
	r.records = append(r.records, *rec)
	return nil
}

func matchAudit(rec domain.AuditRecord, f repository.AuditFilter) bool {
	eq := func(want *string, got *string) bool {
		return want == nil || (got != nil && *got == *want)
	}
	switch {
	case f.Action != nil && rec.Action != *f.Action:
		return false
	case f.Entity != nil && rec.Entity != *f.Entity:
		return false
	case f.EntityID != nil && rec.EntityID != *f.EntityID:
		return false
	case !eq(f.EmployeeID, rec.EmployeeID), !eq(f.CustomerID, rec.CustomerID), !eq(f.BranchID, rec.BranchID):
		return false
	case f.From != nil && rec.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && rec.CreatedAt.After(*f.To):
		return false
	}
	return true
}

func (r *FakeAuditRepo) List(_ context.Context, filter repository.AuditFilter) ([]domain.AuditRecord, int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	var matched []domain.AuditRecord
	for _, rec := range r.records {
		if matchAudit(rec, filter) {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	limit, offset := repository.Page(filter.Limit, filter.Offset)
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *FakeAuditRepo) Stats(_ context.Context, filter repository.AuditFilter) (*repository.AuditStats, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	stats := &repository.AuditStats{
		ByAction: map[domain.AuditAction]int{},
		ByEntity: map[string]int{},
	}
	days := map[int64]int{}
	for _, rec := range r.records {
		if !matchAudit(rec, filter) {
			continue
		}
		stats.Total++
		stats.ByAction[rec.Action]++
		stats.ByEntity[rec.Entity]++
		day := rec.CreatedAt.UTC().Truncate(24 * time.Hour)
		days[day.Unix()]++
	}
	keys := make([]int64, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		stats.Timeline = append(stats.Timeline, repository.AuditDay{Day: time.Unix(k, 0).UTC(), Count: days[k]})
	}
	return stats, nil
}

// Records returns a copy of everything appended.
func (r *FakeAuditRepo) Records() []domain.AuditRecord {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]domain.AuditRecord(nil), r.records...)
}

// ByAction returns appended records with the given action.
func (r *FakeAuditRepo) ByAction(action domain.AuditAction) []domain.AuditRecord {
	var out []domain.AuditRecord
	for _, rec := range r.Records() {
		if rec.Action == action {
			out = append(out, rec)
		}
	}
	return out
}
