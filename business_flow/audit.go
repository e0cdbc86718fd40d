package businessflow

import (
	"context"
	"encoding/json"

	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/repository"
	"github.com/amirphl/lead-connect/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// auditRecorder appends action log entries on behalf of the flows.
// Failures are logged and swallowed so an audit problem never undoes a committed write.
type auditRecorder struct {
	repo   repository.ActionLogRepository
	logger *zap.Logger
}

func newAuditRecorder(repo repository.ActionLogRepository, logger *zap.Logger) *auditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &auditRecorder{repo: repo, logger: logger}
}

// recordAction logs one action. oldValues and newValues are JSON encoded; nil means no snapshot.
func (a *auditRecorder) recordAction(ctx context.Context, actor models.Actor, action models.ActionType, table, recordID string, oldValues, newValues any) {
	if a == nil || a.repo == nil {
		return
	}
	entry := &models.ActionLogEntry{
		LogID:           uuid.New().String(),
		UserID:          actor.UserID,
		ActionType:      action,
		TableName:       table,
		RecordID:        recordID,
		OldValues:       a.encode(oldValues),
		NewValues:       a.encode(newValues),
		ActionTimestamp: utils.TruncateToSecond(utils.UTCNow()),
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		a.logger.Warn("failed to append action log",
			zap.String("action", action.String()),
			zap.String("table", table),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}

func (a *auditRecorder) encode(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		a.logger.Warn("failed to encode action log values", zap.Error(err))
		return nil
	}
	return b
}
