package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `
	user_id,
	referrer_id,
	COALESCE(lang, ''),
	COALESCE(balance, 0),
	joined_at,
	COALESCE(access_code_used::text, ''),
	terms_accepted_at,
	COALESCE(username, ''),
	COALESCE(reserved_balance, 0),
	channel_subscribed_at
`

type UsersRepo struct {
	gw *Gateway
}

func NewUsersRepo(gw *Gateway) *UsersRepo {
	return &UsersRepo{gw: gw}
}

func (r *UsersRepo) GetByID(ctx context.Context, userID int64) (model.User, error) {
	if r.gw == nil {
		return model.User{}, ErrUserNotFound
	}

	var user model.User
	err := r.gw.WithConn(ctx, "get user", func(ctx context.Context, q Querier) error {
		row := q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
		scanned, err := scanUser(row)
		if err != nil {
			return err
		}
		user = scanned
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// GetByUsername matches case-insensitively and ignores a leading "@".
func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	if r.gw == nil {
		return model.User{}, ErrUserNotFound
	}

	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
	if normalized == "" {
		return model.User{}, ErrUserNotFound
	}

	var user model.User
	err := r.gw.WithConn(ctx, "get user by username", func(ctx context.Context, q Querier) error {
		row := q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = $1 LIMIT 1`, normalized)
		scanned, err := scanUser(row)
		if err != nil {
			return err
		}
		user = scanned
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (r *UsersRepo) HasActiveGenerations(ctx context.Context, userID int64) (bool, error) {
	if r.gw == nil {
		return false, ErrGatewayUnavailable
	}

	terminal := make([]string, 0, len(enums.TerminalGenerationStatuses))
	for _, status := range enums.TerminalGenerationStatuses {
		terminal = append(terminal, string(status))
	}

	var exists bool
	err := r.gw.WithConn(ctx, "check active generations", func(ctx context.Context, q Querier) error {
		return q.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1
				FROM generation_queue
				WHERE user_id = $1
				  AND COALESCE(status::text, $2::text) <> ALL($3::text[])
			)
		`, userID, string(enums.GenerationStatusProcessing), terminal).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("check active generations: %w", err)
	}
	return exists, nil
}

// ResetReserved zeroes a positive reserved balance and returns the amount
// that was held. Zero means nothing was released.
func (r *UsersRepo) ResetReserved(ctx context.Context, userID int64) (int64, error) {
	if r.gw == nil {
		return 0, ErrGatewayUnavailable
	}

	var released int64
	err := r.gw.WithConn(ctx, "reset reserved balance", func(ctx context.Context, q Querier) error {
		err := q.QueryRow(ctx, `
			WITH prev AS (
				SELECT user_id, COALESCE(reserved_balance, 0) AS reserved
				FROM users
				WHERE user_id = $1
				FOR UPDATE
			)
			UPDATE users u
			SET reserved_balance = 0,
			    updated_at = NOW()
			FROM prev
			WHERE u.user_id = prev.user_id
			  AND prev.reserved > 0
			RETURNING prev.reserved
		`, userID).Scan(&released)
		if errors.Is(err, pgx.ErrNoRows) {
			released = 0
			return nil
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("reset reserved balance: %w", err)
	}
	return released, nil
}

// addCredits creates the user row when missing and applies delta.
func addCredits(ctx context.Context, q Querier, userID int64, delta int64) error {
	if _, err := q.Exec(ctx, `
		INSERT INTO users (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return fmt.Errorf("ensure user row: %w", err)
	}

	if _, err := q.Exec(ctx, `
		UPDATE users
		SET balance = COALESCE(balance, 0) + $2
		WHERE user_id = $1
	`, userID, delta); err != nil {
		return fmt.Errorf("apply credit delta: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.UserID,
		&user.ReferrerID,
		&user.Lang,
		&user.Balance,
		&user.JoinedAt,
		&user.AccessCodeUsed,
		&user.TermsAcceptedAt,
		&user.Username,
		&user.ReservedBalance,
		&user.ChannelSubscribedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}
