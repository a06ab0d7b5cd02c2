package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
)

type AuditRepo struct {
	gw *Gateway
}

func NewAuditRepo(gw *Gateway) *AuditRepo {
	return &AuditRepo{gw: gw}
}

func (r *AuditRepo) Save(ctx context.Context, entry model.Audit) error {
	if r.gw == nil {
		return nil
	}

	payload := entry.Payload
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	return r.gw.WithConn(ctx, "save moderator audit", func(ctx context.Context, q Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO moderator_audit (actor_tg_id, action, target_type, target_id, payload, created_at)
			VALUES ($1, $2, $3, $4, $5::jsonb, $6)
		`, entry.ActorTGID, string(entry.Action), entry.TargetType, entry.TargetID, string(payload), entry.CreatedAt)
		return err
	})
}

func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]model.Audit, error) {
	if r.gw == nil {
		return []model.Audit{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	result := make([]model.Audit, 0, limit)
	err := r.gw.WithConn(ctx, "list moderator audit", func(ctx context.Context, q Querier) error {
		rows, err := q.Query(ctx, `
			SELECT id::text, actor_tg_id, action, COALESCE(target_type, ''), COALESCE(target_id, 0), payload, created_at
			FROM moderator_audit
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
		if err != nil {
			return fmt.Errorf("list recent moderator audit: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var entry model.Audit
			var action string
			var payload []byte
			if err := rows.Scan(&entry.ID, &entry.ActorTGID, &action, &entry.TargetType, &entry.TargetID, &payload, &entry.CreatedAt); err != nil {
				return fmt.Errorf("scan moderator audit row: %w", err)
			}
			entry.Action = enums.AuditAction(action)
			entry.Payload = json.RawMessage(payload)
			result = append(result, entry)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate moderator audit rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
