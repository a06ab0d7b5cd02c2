package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
)

const (
	TargetComplaint = "complaint"
	TargetUser      = "user"
	TargetPayment   = "payment"
	TargetTask      = "generation"
)

type Repo interface {
	Save(context.Context, model.Audit) error
	ListRecent(context.Context, int) ([]model.Audit, error)
}

// Service records moderator actions. Writing is best effort: a failed save
// is logged and never reaches the caller.
type Service struct {
	repo    Repo
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(repo Repo, enabled bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		enabled: enabled,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) LogDecision(ctx context.Context, actorTGID int64, outcome model.DecisionOutcome) {
	action := enums.AuditActionComplaintReject
	if outcome.Status == enums.ComplaintStatusAccepted {
		action = enums.AuditActionComplaintAccept
	}
	s.logWithPayload(ctx, action, actorTGID, TargetComplaint, outcome.ComplaintID, map[string]interface{}{
		"user_id": outcome.UserID,
		"cost":    outcome.Cost,
		"status":  string(outcome.Status),
	})
}

func (s *Service) LogRelease(ctx context.Context, actorTGID, userID int64, outcome model.ReleaseOutcome) {
	s.logWithPayload(ctx, enums.AuditActionReserveRelease, actorTGID, TargetUser, userID, map[string]interface{}{
		"success": outcome.Success,
		"kind":    string(outcome.Kind),
		"amount":  outcome.Amount,
	})
}

func (s *Service) LogPaymentRecheck(ctx context.Context, actorTGID, paymentID int64, shownStatus string, updated bool) {
	s.logWithPayload(ctx, enums.AuditActionPaymentRecheck, actorTGID, TargetPayment, paymentID, map[string]interface{}{
		"shown_status": shownStatus,
		"updated":      updated,
	})
}

func (s *Service) LogResend(ctx context.Context, actorTGID, userID, generationID int64, delivered bool) {
	s.logWithPayload(ctx, enums.AuditActionResultResend, actorTGID, TargetTask, generationID, map[string]interface{}{
		"user_id":   userID,
		"delivered": delivered,
	})
}

func (s *Service) LogLookup(ctx context.Context, actorTGID int64, query string, targetUserID int64) {
	s.logWithPayload(ctx, enums.AuditActionLookupUser, actorTGID, TargetUser, targetUserID, map[string]interface{}{
		"query": query,
	})
}

func (s *Service) ListRecent(ctx context.Context, limit int) ([]model.Audit, error) {
	if s.repo == nil {
		return []model.Audit{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *Service) logWithPayload(ctx context.Context, action enums.AuditAction, actorTGID int64, targetType string, targetID int64, data map[string]interface{}) {
	if !s.enabled || s.repo == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		payload = json.RawMessage(`{}`)
	}

	entry := model.Audit{
		ActorTGID:  actorTGID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Payload:    payload,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Save(ctx, entry); err != nil {
		s.logger.Warn("save moderator audit",
			zap.String("action", string(action)),
			zap.Int64("target_id", targetID),
			zap.Error(err),
		)
	}
}
