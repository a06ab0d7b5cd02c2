package access

import (
	"context"

	"go.uber.org/zap"
)

type AdminsRepo interface {
	IsActiveAdmin(context.Context, int64) (bool, error)
}

type Service struct {
	repo   AdminsRepo
	logger *zap.Logger
}

func NewService(repo AdminsRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// IsModerator reports whether tgID is an active admin. A failed lookup
// denies access.
func (s *Service) IsModerator(ctx context.Context, tgID int64) bool {
	if s.repo == nil || tgID == 0 {
		return false
	}

	ok, err := s.repo.IsActiveAdmin(ctx, tgID)
	if err != nil {
		s.logger.Warn("moderator check failed", zap.Int64("tg_id", tgID), zap.Error(err))
		return false
	}
	return ok
}
