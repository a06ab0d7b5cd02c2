package postgres

import (
	"context"
	"fmt"

	"moderator_bot/internal/domain/model"
)

type PaymentsRepo struct {
	gw *Gateway
}

func NewPaymentsRepo(gw *Gateway) *PaymentsRepo {
	return &PaymentsRepo{gw: gw}
}

func (r *PaymentsRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Payment, error) {
	if r.gw == nil {
		return []model.Payment{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	result := make([]model.Payment, 0, limit)
	err := r.gw.WithConn(ctx, "list user payments", func(ctx context.Context, q Querier) error {
		rows, err := q.Query(ctx, `
			SELECT id,
			       user_id,
			       COALESCE(amount, 0),
			       COALESCE(payment_provider, ''),
			       COALESCE(status, ''),
			       created_at,
			       updated_at,
			       COALESCE(external_payment_id, ''),
			       bot_owner_id,
			       bot_id,
			       COALESCE(payment_url, '')
			FROM payments
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`, userID, limit)
		if err != nil {
			return fmt.Errorf("list user payments: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var payment model.Payment
			if err := rows.Scan(
				&payment.ID,
				&payment.UserID,
				&payment.Amount,
				&payment.Provider,
				&payment.Status,
				&payment.CreatedAt,
				&payment.UpdatedAt,
				&payment.ExternalPaymentID,
				&payment.BotOwnerID,
				&payment.BotID,
				&payment.PaymentURL,
			); err != nil {
				return fmt.Errorf("scan payment: %w", err)
			}
			result = append(result, payment)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus reports false when no payment has the given id.
func (r *PaymentsRepo) UpdateStatus(ctx context.Context, paymentID int64, status string) (bool, error) {
	if r.gw == nil {
		return false, ErrGatewayUnavailable
	}

	updated := false
	err := r.gw.WithConn(ctx, "update payment status", func(ctx context.Context, q Querier) error {
		tag, err := q.Exec(ctx, `
			UPDATE payments
			SET status = $2,
			    updated_at = NOW()
			WHERE id = $1
		`, paymentID, status)
		if err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}
		updated = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}
