package event

import (
	"context"
	"encoding/json"

	"github.com/facturar/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// JournalHandler writes every ledger event to the structured log
type JournalHandler struct {
	logger *zap.Logger
}

// NewJournalHandler creates a journal writing through logger
func NewJournalHandler(logger *zap.Logger) *JournalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalHandler{logger: logger.Named("journal")}
}

// Handle logs the event with its JSON payload
func (h *JournalHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.logger.Info("ledger event",
		zap.String("event_type", ev.EventType()),
		zap.String("event_id", ev.EventID().String()),
		zap.String("tenant_id", ev.TenantID().String()),
		zap.String("aggregate_type", ev.AggregateType()),
		zap.String("aggregate_id", ev.AggregateID().String()),
		zap.Time("occurred_at", ev.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

// EventTypes is empty so the journal receives every event
func (h *JournalHandler) EventTypes() []string {
	return nil
}
