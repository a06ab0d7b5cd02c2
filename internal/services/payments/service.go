package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
)

const ListLimit = 10

var ErrPaymentNotFound = errors.New("payment not found")

type Repo interface {
	ListByUser(context.Context, int64, int) ([]model.Payment, error)
	UpdateStatus(context.Context, int64, string) (bool, error)
}

type RecheckResult int

const (
	RecheckAlreadyCompleted RecheckResult = iota
	RecheckMovedToPending
)

type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64) ([]model.Payment, error) {
	if s.repo == nil {
		return []model.Payment{}, nil
	}
	items, err := s.repo.ListByUser(ctx, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list payments of user %d: %w", userID, err)
	}
	return items, nil
}

// Recheck puts a payment back to pending so the provider poller picks it up
// again. The status shown on the button is trusted: a completed payment is
// left untouched without a store round trip.
func (s *Service) Recheck(ctx context.Context, paymentID int64, shownStatus string) (RecheckResult, error) {
	if strings.TrimSpace(shownStatus) == enums.PaymentStatusCompleted {
		return RecheckAlreadyCompleted, nil
	}
	if s.repo == nil {
		return RecheckMovedToPending, ErrPaymentNotFound
	}

	updated, err := s.repo.UpdateStatus(ctx, paymentID, enums.PaymentStatusPending)
	if err != nil {
		return RecheckMovedToPending, fmt.Errorf("set payment %d pending: %w", paymentID, err)
	}
	if !updated {
		return RecheckMovedToPending, ErrPaymentNotFound
	}
	return RecheckMovedToPending, nil
}
