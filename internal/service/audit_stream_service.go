package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wahid-dev1/semina/internal/events"
)

// AuditStreamService forwards committed audit records to an external topic.
type AuditStreamService struct {
	dispatcher events.Dispatcher
	publisher  events.Publisher
	logger     *zap.Logger
}

// NewAuditStreamService creates the service.
func NewAuditStreamService(dispatcher events.Dispatcher, publisher events.Publisher, logger *zap.Logger) *AuditStreamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AuditStreamService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditStreamService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventAuditRecorded, a.handleAuditRecorded)
}

func (a *AuditStreamService) handleAuditRecorded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AuditRecordedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	a.logger.Debug("AuditRecorded",
		zap.String("audit_id", payload.Record.ID),
		zap.String("action", string(payload.Record.Action)),
		zap.String("entity", payload.Record.Entity))
	return a.publisher.Publish(ctx, event.EntityID, payload.Record)
}
