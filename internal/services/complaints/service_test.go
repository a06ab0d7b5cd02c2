package complaints

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
	pgrepo "moderator_bot/internal/repo/postgres"
)

type fakeStore struct {
	mu         sync.Mutex
	complaints map[int64]model.Complaint
	balances   map[int64]int64
	dispatched []int64
	applyErr   error
	applyCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		complaints: make(map[int64]model.Complaint),
		balances:   make(map[int64]int64),
	}
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (model.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	complaint, ok := f.complaints[id]
	if !ok {
		return model.Complaint{}, pgrepo.ErrComplaintNotFound
	}
	return complaint, nil
}

func (f *fakeStore) ListPending(_ context.Context, _ bool, limit int) ([]model.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []model.Complaint{}
	for _, complaint := range f.complaints {
		if complaint.Status == enums.ComplaintStatusPending && len(result) < limit {
			result = append(result, complaint)
		}
	}
	return result, nil
}

func (f *fakeStore) ListPendingByUser(_ context.Context, userID int64, limit int) ([]model.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []model.Complaint{}
	for _, complaint := range f.complaints {
		if complaint.UserID == userID && complaint.Status == enums.ComplaintStatusPending && len(result) < limit {
			result = append(result, complaint)
		}
	}
	return result, nil
}

func (f *fakeStore) MarkDispatched(_ context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, ids...)
	return nil
}

func (f *fakeStore) ApplyDecision(_ context.Context, write model.DecisionWrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyCalls++
	if f.applyErr != nil {
		return f.applyErr
	}
	complaint, ok := f.complaints[write.ComplaintID]
	if !ok {
		return pgrepo.ErrComplaintNotFound
	}
	if write.RequirePending && complaint.Status.IsDecided() {
		return pgrepo.ErrComplaintAlreadyDecided
	}
	complaint.Status = write.Status
	f.complaints[write.ComplaintID] = complaint
	f.balances[write.UserID] += write.Delta
	return nil
}

type fixedCost struct {
	cost int64
	err  error
}

func (f fixedCost) CostForSubcategory(_ context.Context, subcategoryID *int64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if subcategoryID == nil {
		return 200, nil
	}
	return f.cost, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestDecideAcceptRefundsCost(t *testing.T) {
	store := newFakeStore()
	store.complaints[1] = model.Complaint{ID: 1, UserID: 42, BotHash: "abc123def456", SubcategoryID: int64Ptr(9), Status: enums.ComplaintStatusPending}
	store.balances[42] = 10

	svc := NewService(store, fixedCost{cost: 130}, nil, Options{})
	outcome, err := svc.Decide(context.Background(), 1, enums.VerdictAccept)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	if store.complaints[1].Status != enums.ComplaintStatusAccepted {
		t.Fatalf("expected accepted status, got %s", store.complaints[1].Status)
	}
	if store.balances[42] != 140 {
		t.Fatalf("expected balance 140, got %d", store.balances[42])
	}
	if outcome.UserID != 42 || outcome.BotHash != "abc123def456" || outcome.Cost != 130 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if !strings.Contains(outcome.UserMessage, "Вернули 130 кредитов") || !strings.Contains(outcome.UserMessage, "#1") {
		t.Fatalf("unexpected user message: %q", outcome.UserMessage)
	}
	if outcome.ModeratorSuccess != "✅ Жалоба принята, пользователь уведомлен" {
		t.Fatalf("unexpected success ack: %q", outcome.ModeratorSuccess)
	}
	if outcome.ModeratorWarning != "✅ Жалоба принята, но ошибка уведомления пользователя" {
		t.Fatalf("unexpected warning ack: %q", outcome.ModeratorWarning)
	}
}

func TestDecideRejectChargesCostAndAllowsNegativeBalance(t *testing.T) {
	store := newFakeStore()
	store.complaints[2] = model.Complaint{ID: 2, UserID: 7, Status: enums.ComplaintStatusPending}

	svc := NewService(store, fixedCost{cost: 90}, nil, Options{})
	outcome, err := svc.Decide(context.Background(), 2, enums.VerdictReject)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	if store.complaints[2].Status != enums.ComplaintStatusRejected {
		t.Fatalf("expected rejected status, got %s", store.complaints[2].Status)
	}
	if store.balances[7] != -200 {
		t.Fatalf("expected balance -200 for default cost, got %d", store.balances[7])
	}
	if !strings.Contains(outcome.UserMessage, "списали 200 кредитов") {
		t.Fatalf("unexpected user message: %q", outcome.UserMessage)
	}
}

func TestDecideUnknownComplaintIsNotFound(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fixedCost{cost: 90}, nil, Options{})

	_, err := svc.Decide(context.Background(), 404, enums.VerdictAccept)
	if !errors.Is(err, ErrComplaintNotFound) {
		t.Fatalf("expected ErrComplaintNotFound, got %v", err)
	}
	if store.applyCalls != 0 || len(store.balances) != 0 {
		t.Fatalf("expected no mutation, apply calls=%d balances=%v", store.applyCalls, store.balances)
	}
}

func TestDecideRefusesAlreadyDecided(t *testing.T) {
	store := newFakeStore()
	store.complaints[3] = model.Complaint{ID: 3, UserID: 5, Status: enums.ComplaintStatusAccepted}

	svc := NewService(store, fixedCost{cost: 110}, nil, Options{})
	_, err := svc.Decide(context.Background(), 3, enums.VerdictReject)
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	if store.balances[5] != 0 {
		t.Fatalf("expected untouched balance, got %d", store.balances[5])
	}
}

func TestDecideAllowRedecideReappliesDelta(t *testing.T) {
	store := newFakeStore()
	store.complaints[4] = model.Complaint{ID: 4, UserID: 8, SubcategoryID: int64Ptr(1), Status: enums.ComplaintStatusAccepted}

	svc := NewService(store, fixedCost{cost: 110}, nil, Options{AllowRedecide: true})
	if _, err := svc.Decide(context.Background(), 4, enums.VerdictReject); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if store.complaints[4].Status != enums.ComplaintStatusRejected {
		t.Fatalf("expected rejected, got %s", store.complaints[4].Status)
	}
	if store.balances[8] != -110 {
		t.Fatalf("expected -110, got %d", store.balances[8])
	}
}

func TestDecideConcurrentSameComplaintAppliesOnce(t *testing.T) {
	store := newFakeStore()
	store.complaints[5] = model.Complaint{ID: 5, UserID: 9, Status: enums.ComplaintStatusPending}

	svc := NewService(store, fixedCost{cost: 70}, nil, Options{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Decide(context.Background(), 5, enums.VerdictAccept); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one successful decision, got %d", succeeded)
	}
	if store.balances[9] != 200 {
		t.Fatalf("expected a single refund of 200, got %d", store.balances[9])
	}
}

func TestDecidePropagatesPersistenceFailure(t *testing.T) {
	store := newFakeStore()
	store.complaints[6] = model.Complaint{ID: 6, UserID: 1, Status: enums.ComplaintStatusPending}
	store.applyErr = &pgrepo.ConnectivityError{Attempts: 5, Err: errors.New("refused")}

	svc := NewService(store, fixedCost{cost: 70}, nil, Options{})
	_, err := svc.Decide(context.Background(), 6, enums.VerdictAccept)

	var connectivityErr *pgrepo.ConnectivityError
	if !errors.As(err, &connectivityErr) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}

func TestDecideRejectsUnknownVerdict(t *testing.T) {
	svc := NewService(newFakeStore(), fixedCost{}, nil, Options{})
	if _, err := svc.Decide(context.Background(), 1, enums.Verdict("maybe")); !errors.Is(err, ErrInvalidVerdict) {
		t.Fatalf("expected ErrInvalidVerdict, got %v", err)
	}
}

func TestListPendingUsesPageSize(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 8; i++ {
		store.complaints[i] = model.Complaint{ID: i, UserID: 1, Status: enums.ComplaintStatusPending}
	}

	svc := NewService(store, fixedCost{}, nil, Options{PageSize: 3})
	items, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 complaints, got %d", len(items))
	}

	if err := svc.MarkDispatched(context.Background(), nil); err != nil {
		t.Fatalf("mark empty: %v", err)
	}
	if err := svc.MarkDispatched(context.Background(), []int64{1, 2}); err != nil {
		t.Fatalf("mark dispatched: %v", err)
	}
	if len(store.dispatched) != 2 {
		t.Fatalf("expected 2 dispatched ids, got %v", store.dispatched)
	}
}
