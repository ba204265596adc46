package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/remedyhub/entitlement/internal/app/service/changelog"
	models "github.com/remedyhub/entitlement/internal/models"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/tool"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// EventHandler is the intake for processor events: every event is logged as
// received, then updated to handled, ignored or handle_failed.
type EventHandler struct {
	changelog *changelog.Service
	subSvc    *Service
	Logger    *zap.SugaredLogger
}

func NewEventHandler(cl *changelog.Service, sub *Service, log *zap.SugaredLogger) *EventHandler {
	return &EventHandler{changelog: cl, subSvc: sub, Logger: log}
}

// HandleEvent applies ev. A stale event is not an error for the caller: it
// was already superseded, applied is false and the returned record is current.
func (h *EventHandler) HandleEvent(ctx context.Context, ev Event) (rec *models.UserEntitlement, applied bool, resErr error) {
	dataBytes, _ := json.Marshal(ev)
	row := &models.SubscriptionEventLog{
		ID:          tool.GenerateUUIDV7(),
		EventID:     ev.EventID,
		UserID:      ev.UserID,
		TraceID:     logctx.TraceID(ctx),
		EffectiveAt: ev.EffectiveAt,
		Data:        datatypes.JSON(dataBytes),
		Status:      models.SubscriptionEventLogStatusReceived,
	}
	h.changelog.SaveEventLog(ctx, row)

	defer func() {
		resMap := map[string]any{"entitlement": rec}
		status := models.SubscriptionEventLogStatusHandled
		switch {
		case resErr == nil && !applied:
			status = models.SubscriptionEventLogStatusIgnored
		case resErr != nil:
			status = models.SubscriptionEventLogStatusHandleFailed
			resMap["error"] = resErr.Error()
		}
		resBytes, _ := json.Marshal(resMap)
		result := datatypes.JSON(resBytes)
		final := *row
		final.Result = &result
		final.Status = status
		h.changelog.SaveEventLog(ctx, &final)
	}()

	rec, err := h.subSvc.ApplyEvent(ctx, ev)
	if errors.Is(err, ErrStaleEvent) {
		return rec, false, nil
	}
	if err != nil {
		logctx.FromCtx(ctx, h.Logger).Errorw("failed to handle subscription event", "event_id", ev.EventID, "user_id", ev.UserID, "error", err)
		return nil, false, fmt.Errorf("failed to handle subscription event: %w", err)
	}
	return rec, true, nil
}
