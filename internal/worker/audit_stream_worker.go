package worker

import (
	"github.com/wahid-dev1/semina/internal/service"
)

// StartAuditStreamWorker registers the audit stream handlers.
func StartAuditStreamWorker(stream *service.AuditStreamService) {
	if stream == nil {
		return
	}
	stream.RegisterHandlers()
}
