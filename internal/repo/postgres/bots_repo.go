package postgres

import (
	"context"
	"fmt"

	"moderator_bot/internal/domain/model"
)

type BotsRepo struct {
	gw *Gateway
}

func NewBotsRepo(gw *Gateway) *BotsRepo {
	return &BotsRepo{gw: gw}
}

// ListActive returns active bots, newest first.
func (r *BotsRepo) ListActive(ctx context.Context) ([]model.BotRecord, error) {
	if r.gw == nil {
		return []model.BotRecord{}, nil
	}

	result := make([]model.BotRecord, 0)
	err := r.gw.WithConn(ctx, "list active bots", func(ctx context.Context, q Querier) error {
		rows, err := q.Query(ctx, `
			SELECT id,
			       COALESCE(name, ''),
			       COALESCE(token, ''),
			       COALESCE(is_active, FALSE),
			       created_at,
			       updated_at
			FROM bot
			WHERE is_active = TRUE
			ORDER BY created_at DESC
		`)
		if err != nil {
			return fmt.Errorf("list active bots: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var bot model.BotRecord
			if err := rows.Scan(&bot.ID, &bot.Name, &bot.Token, &bot.IsActive, &bot.CreatedAt, &bot.UpdatedAt); err != nil {
				return fmt.Errorf("scan bot: %w", err)
			}
			result = append(result, bot)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
