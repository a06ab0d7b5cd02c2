package postgres

import (
	"context"
	"fmt"
	"strconv"
)

type AdminsRepo struct {
	gw *Gateway
}

func NewAdminsRepo(gw *Gateway) *AdminsRepo {
	return &AdminsRepo{gw: gw}
}

// IsActiveAdmin compares against admins.user_id as text, so both text and
// numeric columns match.
func (r *AdminsRepo) IsActiveAdmin(ctx context.Context, userID int64) (bool, error) {
	if r.gw == nil {
		return false, nil
	}

	var count int64
	err := r.gw.WithConn(ctx, "check admin", func(ctx context.Context, q Querier) error {
		return q.QueryRow(ctx, `
			SELECT COUNT(*)
			FROM admins
			WHERE user_id::text = $1 AND is_active = TRUE
		`, strconv.FormatInt(userID, 10)).Scan(&count)
	})
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return count > 0, nil
}
