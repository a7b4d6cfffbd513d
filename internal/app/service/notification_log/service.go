package notification_log

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/logctx"
	"github.com/eduforge/coursepay/pkg/tool"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Record creates a received-state log entry for a raw webhook delivery and
// returns its id so the handler can settle it later. Persisting is
// best-effort; a failed insert never blocks webhook handling.
func (s *Service) Record(ctx context.Context, provider, traceID string, payload []byte) string {
	id := tool.GenerateUUIDV7()
	entry := &models.PaymentNotificationLog{
		ID:               id,
		Provider:         provider,
		TraceID:          traceID,
		NotificationTime: time.Now(),
		Data:             datatypes.JSON(payload),
		Status:           models.PaymentNotificationLogStatusReceived,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to save notification log: %v", err)
	}
	return id
}

// Settle asynchronously updates a recorded delivery with its handling outcome.
func (s *Service) Settle(ctx context.Context, id, transactionID string, status models.PaymentNotificationLogStatus, result any) {
	go func() {
		if id == "" {
			return
		}
		updates := map[string]any{"status": status}
		if transactionID != "" {
			updates["transaction_id"] = transactionID
		}
		if result != nil {
			if raw, err := json.Marshal(result); err == nil {
				updates["result"] = datatypes.JSON(raw)
			}
		}
		err := s.db.Model(&models.PaymentNotificationLog{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to settle notification log: %v", err)
		}
	}()
}
