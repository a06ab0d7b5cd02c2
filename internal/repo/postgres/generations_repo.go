package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
)

var ErrTaskNotFound = errors.New("generation task not found")
var ErrSubcategoryNotFound = errors.New("active subcategory not found")

type GenerationsRepo struct {
	gw *Gateway
}

func NewGenerationsRepo(gw *Gateway) *GenerationsRepo {
	return &GenerationsRepo{gw: gw}
}

// ListSuccessful returns the latest successful generations, newest first.
func (r *GenerationsRepo) ListSuccessful(ctx context.Context, userID int64, limit int) ([]model.Generation, error) {
	if r.gw == nil {
		return []model.Generation{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	result := make([]model.Generation, 0, limit)
	err := r.gw.WithConn(ctx, "list user generations", func(ctx context.Context, q Querier) error {
		rows, err := q.Query(ctx, `
			SELECT gq.id,
			       COALESCE(gq.category, ''),
			       COALESCE(gq.status::text, ''),
			       gq.created_at,
			       gq.updated_at,
			       COALESCE(gq.image_path, ''),
			       COALESCE(gq.bot_id::text, ''),
			       gq.subcategory_id
			FROM generation_queue gq
			WHERE gq.user_id = $1 AND gq.status = $2
			ORDER BY gq.updated_at DESC NULLS LAST, gq.id DESC
			LIMIT $3
		`, userID, string(enums.GenerationStatusSuccess), limit)
		if err != nil {
			return fmt.Errorf("list user generations: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var generation model.Generation
			var status string
			if err := rows.Scan(
				&generation.ID,
				&generation.Category,
				&status,
				&generation.CreatedAt,
				&generation.CompletedAt,
				&generation.MediaPath,
				&generation.BotHash,
				&generation.SubcategoryID,
			); err != nil {
				return fmt.Errorf("scan generation: %w", err)
			}
			generation.Status = enums.GenerationStatus(status)
			result = append(result, generation)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *GenerationsRepo) GetTask(ctx context.Context, taskID int64) (model.Task, error) {
	if r.gw == nil || taskID <= 0 {
		return model.Task{}, ErrTaskNotFound
	}

	var task model.Task
	err := r.gw.WithConn(ctx, "get generation task", func(ctx context.Context, q Querier) error {
		err := q.QueryRow(ctx, `
			SELECT id,
			       user_id,
			       priority,
			       COALESCE(category, ''),
			       COALESCE(image_path, ''),
			       COALESCE(comfy_url, ''),
			       COALESCE(is_finished, FALSE),
			       created_at,
			       updated_at,
			       COALESCE(bot_id::text, ''),
			       subcategory_id,
			       cost
			FROM generation_queue
			WHERE id = $1
		`, taskID).Scan(
			&task.ID,
			&task.UserID,
			&task.Priority,
			&task.Category,
			&task.ImagePath,
			&task.ComfyURL,
			&task.IsFinished,
			&task.CreatedAt,
			&task.UpdatedAt,
			&task.BotHash,
			&task.SubcategoryID,
			&task.Cost,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("get generation task: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// SubcategoryPricing reads the cost policy input for an active subcategory.
func (r *GenerationsRepo) SubcategoryPricing(ctx context.Context, subcategoryID int64) (model.SubcategoryPricing, error) {
	if r.gw == nil {
		return model.SubcategoryPricing{}, ErrGatewayUnavailable
	}

	var pricing model.SubcategoryPricing
	err := r.gw.WithConn(ctx, "get subcategory pricing", func(ctx context.Context, q Querier) error {
		err := q.QueryRow(ctx, `
			SELECT s.duration,
			       s.price,
			       COALESCE(sc.difficulty::text, '')
			FROM subcategories s
			JOIN scenario sc ON s.scenario_id = sc.id
			WHERE s.id = $1 AND s.is_active = TRUE
		`, subcategoryID).Scan(&pricing.Duration, &pricing.Price, &pricing.Difficulty)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrSubcategoryNotFound
			}
			return fmt.Errorf("get subcategory pricing: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.SubcategoryPricing{}, err
	}
	return pricing, nil
}
