package reserve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"moderator_bot/internal/domain/model"
	"moderator_bot/internal/infra/lock"
	pgrepo "moderator_bot/internal/repo/postgres"
)

const (
	MessageUserNotFound = "❌ Пользователь не найден"
	MessageNothing      = "ℹ️ Резервов нет"
	MessageActive       = "⚠️ Есть активные генерации, резерв снять нельзя"
	MessageFailed       = "❌ Не удалось снять резерв"
	messageReleased     = "🧹 Снято %d зарезервированных кредитов."
)

type Repo interface {
	GetByID(context.Context, int64) (model.User, error)
	HasActiveGenerations(context.Context, int64) (bool, error)
	ResetReserved(context.Context, int64) (int64, error)
}

type Service struct {
	repo   Repo
	locker lock.Locker
	logger *zap.Logger
}

func NewService(repo Repo, locker lock.Locker, logger *zap.Logger) *Service {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, locker: locker, logger: logger}
}

// Release zeroes the user's reserved balance unless generation work is still
// in flight. A returned error always comes with a failed outcome.
func (s *Service) Release(ctx context.Context, userID int64) (model.ReleaseOutcome, error) {
	unlock, err := s.locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		return failed(model.ReleaseKindFailed, 0, MessageFailed), err
	}
	defer unlock()

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return failed(model.ReleaseKindNotFound, 0, MessageUserNotFound), nil
		}
		return failed(model.ReleaseKindFailed, 0, MessageFailed), fmt.Errorf("load user %d: %w", userID, err)
	}

	if user.ReservedBalance <= 0 {
		return failed(model.ReleaseKindNothing, 0, MessageNothing), nil
	}

	active, err := s.repo.HasActiveGenerations(ctx, userID)
	if err != nil {
		s.logger.Warn("active generation check failed, refusing release", zap.Int64("user_id", userID), zap.Error(err))
		active = true
	}
	if active {
		return failed(model.ReleaseKindActive, user.ReservedBalance, MessageActive), nil
	}

	released, err := s.repo.ResetReserved(ctx, userID)
	if err != nil {
		return failed(model.ReleaseKindFailed, 0, MessageFailed), fmt.Errorf("reset reserved for user %d: %w", userID, err)
	}
	if released <= 0 {
		return failed(model.ReleaseKindFailed, 0, MessageFailed), nil
	}

	return model.ReleaseOutcome{
		Success: true,
		Kind:    model.ReleaseKindReleased,
		Amount:  released,
		Message: fmt.Sprintf(messageReleased, released),
	}, nil
}

func failed(kind model.ReleaseKind, amount int64, message string) model.ReleaseOutcome {
	return model.ReleaseOutcome{
		Kind:      kind,
		Amount:    amount,
		Message:   message,
		AlertText: message,
	}
}
