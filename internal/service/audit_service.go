package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/events"
	"github.com/wahid-dev1/semina/internal/ids"
	"github.com/wahid-dev1/semina/internal/observability"
	"github.com/wahid-dev1/semina/internal/repository"
)

// RedactedValue replaces secret fields in audit snapshots.
const RedactedValue = "[HIDDEN]"

// AuditEntry is one state transition to be recorded.
type AuditEntry struct {
	Action     domain.AuditAction
	Entity     string
	EntityID   string
	EmployeeID *string
	CustomerID *string
	BranchID   *string
	OrderID    *string
	OldValues  map[string]any
	NewValues  map[string]any
	Client     ClientInfo
}

// AuditService is the append-only audit recorder.
type AuditService struct {
	repo       repository.AuditRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// AuditDependencies bundles collaborators for the audit service.
type AuditDependencies struct {
	AuditRepo  repository.AuditRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(deps AuditDependencies) *AuditService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		repo:       deps.AuditRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Record redacts and appends entry. It must be called after the mutation it
// describes has committed. Failures are logged and counted, never returned,
// so a committed mutation is not reported as failed.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	now := s.now().UTC()
	rec := &domain.AuditRecord{
		ID:         ids.NewAt(now),
		Action:     entry.Action,
		Entity:     entry.Entity,
		EntityID:   entry.EntityID,
		EmployeeID: entry.EmployeeID,
		CustomerID: entry.CustomerID,
		BranchID:   entry.BranchID,
		OrderID:    entry.OrderID,
		OldValues:  Redact(entry.OldValues),
		NewValues:  Redact(entry.NewValues),
		IPAddress:  entry.Client.IPAddress,
		UserAgent:  entry.Client.UserAgent,
		CreatedAt:  now,
	}

	if err := s.repo.Append(context.WithoutCancel(ctx), rec); err != nil {
		s.metrics.RecordAuditFailure()
		s.logger.Error("audit write failed after committed mutation",
			zap.String("action", string(rec.Action)),
			zap.String("entity", rec.Entity),
			zap.String("entity_id", rec.EntityID),
			zap.Error(err))
		return
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        rec.ID,
			Type:      events.EventAuditRecorded,
			EntityID:  rec.EntityID,
			Timestamp: rec.CreatedAt,
			Payload:   events.AuditRecordedPayload{Record: *rec},
		})
	}
}

// List returns a page of audit records and the unpaged total.
func (s *AuditService) List(ctx context.Context, actor Actor, filter repository.AuditFilter) ([]domain.AuditRecord, int, error) {
	filter.BranchID = actor.BranchFilter(filter.BranchID)
	return s.repo.List(ctx, filter)
}

// Stats aggregates audit records by action, entity and day.
func (s *AuditService) Stats(ctx context.Context, actor Actor, filter repository.AuditFilter) (*repository.AuditStats, error) {
	filter.BranchID = actor.BranchFilter(filter.BranchID)
	return s.repo.Stats(ctx, filter)
}

// Redact returns a deep copy of values with every secret field replaced by
// RedactedValue. Keys are matched case-insensitively, ignoring separators.
func Redact(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		if isSecretKey(k) {
			out[k] = RedactedValue
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Redact(t)
	case []any:
		cp := make([]any, len(t))
		for i, item := range t {
			cp[i] = redactValue(item)
		}
		return cp
	case []map[string]any:
		cp := make([]any, len(t))
		for i, item := range t {
			cp[i] = Redact(item)
		}
		return cp
	default:
		return v
	}
}

func isSecretKey(key string) bool {
	k := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(key))
	switch {
	case strings.Contains(k, "password"), strings.Contains(k, "secret"):
		return true
	case k == "pin", k == "personalpin", k == "refreshtoken", k == "accesstoken":
		return true
	}
	return false
}
