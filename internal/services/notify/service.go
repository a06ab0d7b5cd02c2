package notify

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"moderator_bot/internal/domain/model"
	"moderator_bot/internal/infra/media"
)

const botHashLength = 12

var ErrNoActiveBot = errors.New("no active bot")

type BotsRepo interface {
	ListActive(context.Context) ([]model.BotRecord, error)
}

// Transport delivers on behalf of a user-facing bot identified by token.
type Transport interface {
	SendText(token string, chatID int64, text string) error
	SendVideo(token string, chatID int64, source media.Source, caption string) error
}

type Service struct {
	bots      BotsRepo
	transport Transport
	logger    *zap.Logger
}

func NewService(bots BotsRepo, transport Transport, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{bots: bots, transport: transport, logger: logger}
}

// TokenHash is the short bot identifier stored on complaints and tasks.
func TokenHash(token string) string {
	sum := md5.Sum([]byte(token))
	return hex.EncodeToString(sum[:])[:botHashLength]
}

// SelectBot picks the active bot whose token hashes to hint, or the newest
// active bot when nothing matches.
func (s *Service) SelectBot(ctx context.Context, hint string) (model.BotRecord, error) {
	if s.bots == nil {
		return model.BotRecord{}, ErrNoActiveBot
	}

	bots, err := s.bots.ListActive(ctx)
	if err != nil {
		return model.BotRecord{}, fmt.Errorf("list active bots: %w", err)
	}
	if len(bots) == 0 {
		return model.BotRecord{}, ErrNoActiveBot
	}

	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint != "" {
		for _, bot := range bots {
			if TokenHash(bot.Token) == hint {
				return bot, nil
			}
		}
	}
	return bots[0], nil
}

func (s *Service) Notify(ctx context.Context, userID int64, hint, text string) error {
	bot, err := s.SelectBot(ctx, hint)
	if err != nil {
		s.logger.Error("no bot for user notification", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}

	if err := s.transport.SendText(bot.Token, userID, text); err != nil {
		s.logger.Error("notify user",
			zap.Int64("user_id", userID),
			zap.Int64("bot_id", bot.ID),
			zap.Error(err),
		)
		return fmt.Errorf("notify user %d: %w", userID, err)
	}
	return nil
}

func (s *Service) SendVideo(ctx context.Context, userID int64, hint string, source media.Source, caption string) error {
	bot, err := s.SelectBot(ctx, hint)
	if err != nil {
		s.logger.Error("no bot for result resend", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}

	if err := s.transport.SendVideo(bot.Token, userID, source, caption); err != nil {
		s.logger.Error("resend result",
			zap.Int64("user_id", userID),
			zap.Int64("bot_id", bot.ID),
			zap.String("media", source.Expected),
			zap.Error(err),
		)
		return fmt.Errorf("send video to user %d: %w", userID, err)
	}
	return nil
}
