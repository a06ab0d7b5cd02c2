package complaints

import (
	"context"
	"errors"
	"fmt"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
	"moderator_bot/internal/infra/lock"
	pgrepo "moderator_bot/internal/repo/postgres"
)

var (
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrAlreadyDecided    = errors.New("complaint already decided")
	ErrInvalidVerdict    = errors.New("invalid verdict")
)

const (
	defaultPageSize     = 5
	defaultUserPageSize = 5
)

type Repo interface {
	GetByID(context.Context, int64) (model.Complaint, error)
	ListPending(context.Context, bool, int) ([]model.Complaint, error)
	ListPendingByUser(context.Context, int64, int) ([]model.Complaint, error)
	MarkDispatched(context.Context, []int64) error
	ApplyDecision(context.Context, model.DecisionWrite) error
}

type CostResolver interface {
	CostForSubcategory(context.Context, *int64) (int64, error)
}

type decisionPolicy struct {
	status           enums.ComplaintStatus
	sign             int64
	userMessage      string
	moderatorSuccess string
	moderatorWarning string
}

var decisionPolicies = map[enums.Verdict]decisionPolicy{
	enums.VerdictAccept: {
		status:           enums.ComplaintStatusAccepted,
		sign:             1,
		userMessage:      "✅ <b>Ваша жалоба была рассмотрена и принята</b>\n\nВернули %d кредитов за генерацию на ваш баланс.\nID жалобы: #%d",
		moderatorSuccess: "✅ Жалоба принята, пользователь уведомлен",
		moderatorWarning: "✅ Жалоба принята, но ошибка уведомления пользователя",
	},
	enums.VerdictReject: {
		status:           enums.ComplaintStatusRejected,
		sign:             -1,
		userMessage:      "❌ <b>Ваша жалоба была отклонена</b>\n\nС баланса списали %d кредитов (двойная плата за генерацию).\nID жалобы: #%d",
		moderatorSuccess: "❌ Жалоба отклонена, пользователь уведомлен",
		moderatorWarning: "❌ Жалоба отклонена, но ошибка уведомления пользователя",
	},
}

type Options struct {
	// AllowRedecide re-applies the credit delta to already decided
	// complaints instead of refusing them.
	AllowRedecide bool
	PageSize      int
}

type Service struct {
	repo          Repo
	costs         CostResolver
	locker        lock.Locker
	allowRedecide bool
	pageSize      int
}

func NewService(repo Repo, costs CostResolver, locker lock.Locker, opts Options) *Service {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Service{
		repo:          repo,
		costs:         costs,
		locker:        locker,
		allowRedecide: opts.AllowRedecide,
		pageSize:      pageSize,
	}
}

// Decide applies a verdict. The status change and the credit delta commit
// together; delivering the user message is left to the caller.
func (s *Service) Decide(ctx context.Context, complaintID int64, verdict enums.Verdict) (model.DecisionOutcome, error) {
	policy, ok := decisionPolicies[verdict]
	if !ok {
		return model.DecisionOutcome{}, ErrInvalidVerdict
	}

	unlock, err := s.locker.Lock(ctx, lock.ComplaintKey(complaintID))
	if err != nil {
		return model.DecisionOutcome{}, err
	}
	defer unlock()

	complaint, err := s.repo.GetByID(ctx, complaintID)
	if err != nil {
		return model.DecisionOutcome{}, mapRepoError(err)
	}
	if complaint.Status.IsDecided() && !s.allowRedecide {
		return model.DecisionOutcome{}, ErrAlreadyDecided
	}

	cost, err := s.costs.CostForSubcategory(ctx, complaint.SubcategoryID)
	if err != nil {
		return model.DecisionOutcome{}, err
	}

	err = s.repo.ApplyDecision(ctx, model.DecisionWrite{
		ComplaintID:    complaint.ID,
		UserID:         complaint.UserID,
		Status:         policy.status,
		Delta:          cost * policy.sign,
		RequirePending: !s.allowRedecide,
	})
	if err != nil {
		return model.DecisionOutcome{}, mapRepoError(err)
	}

	return model.DecisionOutcome{
		ComplaintID:      complaint.ID,
		UserID:           complaint.UserID,
		BotHash:          complaint.BotHash,
		Cost:             cost,
		Status:           policy.status,
		UserMessage:      fmt.Sprintf(policy.userMessage, cost, complaint.ID),
		ModeratorSuccess: policy.moderatorSuccess,
		ModeratorWarning: policy.moderatorWarning,
	}, nil
}

func (s *Service) ListPending(ctx context.Context) ([]model.Complaint, error) {
	return s.repo.ListPending(ctx, false, s.pageSize)
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]model.Complaint, error) {
	return s.repo.ListPendingByUser(ctx, userID, defaultUserPageSize)
}

func (s *Service) MarkDispatched(ctx context.Context, complaintIDs []int64) error {
	if len(complaintIDs) == 0 {
		return nil
	}
	return s.repo.MarkDispatched(ctx, complaintIDs)
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, pgrepo.ErrComplaintNotFound):
		return ErrComplaintNotFound
	case errors.Is(err, pgrepo.ErrComplaintAlreadyDecided):
		return ErrAlreadyDecided
	default:
		return err
	}
}
