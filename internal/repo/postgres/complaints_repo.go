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

var ErrComplaintNotFound = errors.New("complaint not found")
var ErrComplaintAlreadyDecided = errors.New("complaint is already decided")

const complaintColumns = `
	c.id,
	c.user_id,
	c.message_id,
	COALESCE(c.file_path, ''),
	COALESCE(gq.image_path, ''),
	COALESCE(c.category, ''),
	COALESCE(c.bot_id::text, ''),
	c.subcategory_id,
	COALESCE(c.status::text, 'pending'),
	COALESCE(c.dispatched, FALSE),
	c.created_at,
	c.generation_id
`

type ComplaintsRepo struct {
	gw *Gateway
}

func NewComplaintsRepo(gw *Gateway) *ComplaintsRepo {
	return &ComplaintsRepo{gw: gw}
}

func (r *ComplaintsRepo) GetByID(ctx context.Context, complaintID int64) (model.Complaint, error) {
	if r.gw == nil {
		return model.Complaint{}, ErrComplaintNotFound
	}
	if complaintID <= 0 {
		return model.Complaint{}, ErrComplaintNotFound
	}

	var complaint model.Complaint
	err := r.gw.WithConn(ctx, "get complaint", func(ctx context.Context, q Querier) error {
		row := q.QueryRow(ctx, `
			SELECT `+complaintColumns+`
			FROM complaints c
			LEFT JOIN generation_queue gq ON c.generation_id = gq.id
			WHERE c.id = $1
		`, complaintID)
		scanned, err := scanComplaint(row)
		if err != nil {
			return err
		}
		complaint = scanned
		return nil
	})
	if err != nil {
		return model.Complaint{}, err
	}
	return complaint, nil
}

// ListPending returns pending complaints oldest first. A non-positive limit
// means no limit.
func (r *ComplaintsRepo) ListPending(ctx context.Context, notDispatchedOnly bool, limit int) ([]model.Complaint, error) {
	if r.gw == nil {
		return []model.Complaint{}, nil
	}

	query := `
		SELECT ` + complaintColumns + `
		FROM complaints c
		LEFT JOIN generation_queue gq ON c.generation_id = gq.id
		WHERE c.status = 'pending'`
	if notDispatchedOnly {
		query += ` AND COALESCE(c.dispatched, FALSE) = FALSE`
	}
	query += ` ORDER BY c.created_at ASC, c.id ASC`

	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	return r.list(ctx, "list pending complaints", query, args...)
}

func (r *ComplaintsRepo) ListPendingByUser(ctx context.Context, userID int64, limit int) ([]model.Complaint, error) {
	if r.gw == nil {
		return []model.Complaint{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	return r.list(ctx, "list user pending complaints", `
		SELECT `+complaintColumns+`
		FROM complaints c
		LEFT JOIN generation_queue gq ON c.generation_id = gq.id
		WHERE c.user_id = $1 AND c.status = 'pending'
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2
	`, userID, limit)
}

// MarkDispatched is idempotent; already dispatched ids are updated again.
func (r *ComplaintsRepo) MarkDispatched(ctx context.Context, ids []int64) error {
	if r.gw == nil || len(ids) == 0 {
		return nil
	}

	return r.gw.WithConn(ctx, "mark complaints dispatched", func(ctx context.Context, q Querier) error {
		_, err := q.Exec(ctx, `
			UPDATE complaints
			SET dispatched = TRUE,
			    updated_at = NOW()
			WHERE id = ANY($1::bigint[])
		`, ids)
		if err != nil {
			return fmt.Errorf("mark complaints dispatched: %w", err)
		}
		return nil
	})
}

// ApplyDecision updates the complaint status and the owner's balance in one
// transaction. The complaint row stays locked until commit.
func (r *ComplaintsRepo) ApplyDecision(ctx context.Context, write model.DecisionWrite) error {
	if r.gw == nil {
		return ErrGatewayUnavailable
	}

	return r.gw.WithTx(ctx, "apply complaint decision", func(ctx context.Context, tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, `
			SELECT COALESCE(status::text, 'pending')
			FROM complaints
			WHERE id = $1
			FOR UPDATE
		`, write.ComplaintID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrComplaintNotFound
			}
			return fmt.Errorf("lock complaint: %w", err)
		}

		status := enums.ComplaintStatus(strings.ToLower(strings.TrimSpace(current)))
		if write.RequirePending && status.IsDecided() {
			return ErrComplaintAlreadyDecided
		}

		if _, err := tx.Exec(ctx, `
			UPDATE complaints
			SET status = $2,
			    updated_at = NOW()
			WHERE id = $1
		`, write.ComplaintID, string(write.Status)); err != nil {
			return fmt.Errorf("update complaint status: %w", err)
		}

		return addCredits(ctx, tx, write.UserID, write.Delta)
	})
}

func (r *ComplaintsRepo) list(ctx context.Context, op string, query string, args ...any) ([]model.Complaint, error) {
	result := make([]model.Complaint, 0)
	err := r.gw.WithConn(ctx, op, func(ctx context.Context, q Querier) error {
		rows, err := q.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		defer rows.Close()

		for rows.Next() {
			complaint, err := scanComplaint(rows)
			if err != nil {
				return err
			}
			result = append(result, complaint)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate complaints: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func scanComplaint(row pgx.Row) (model.Complaint, error) {
	var complaint model.Complaint
	var status string
	err := row.Scan(
		&complaint.ID,
		&complaint.UserID,
		&complaint.MessageID,
		&complaint.FilePath,
		&complaint.SourcePath,
		&complaint.Category,
		&complaint.BotHash,
		&complaint.SubcategoryID,
		&status,
		&complaint.Dispatched,
		&complaint.CreatedAt,
		&complaint.GenerationID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Complaint{}, ErrComplaintNotFound
		}
		return model.Complaint{}, fmt.Errorf("scan complaint: %w", err)
	}
	complaint.Status = enums.ComplaintStatus(strings.ToLower(strings.TrimSpace(status)))
	return complaint, nil
}
