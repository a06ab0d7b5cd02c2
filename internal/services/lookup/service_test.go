package lookup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"moderator_bot/internal/domain/model"
	pgrepo "moderator_bot/internal/repo/postgres"
)

type fakeUsers struct {
	byID          map[int64]model.User
	idCalls       []int64
	usernameCalls []string
	err           error
}

func (f *fakeUsers) GetByID(_ context.Context, userID int64) (model.User, error) {
	f.idCalls = append(f.idCalls, userID)
	if f.err != nil {
		return model.User{}, f.err
	}
	user, ok := f.byID[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	f.usernameCalls = append(f.usernameCalls, username)
	if f.err != nil {
		return model.User{}, f.err
	}
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
	for _, user := range f.byID {
		if strings.ToLower(user.Username) == normalized {
			return user, nil
		}
	}
	return model.User{}, pgrepo.ErrUserNotFound
}

type fakeGenerations struct {
	generations []model.Generation
	tasks       map[int64]model.Task
	limit       int
}

func (f *fakeGenerations) ListSuccessful(_ context.Context, _ int64, limit int) ([]model.Generation, error) {
	f.limit = limit
	return f.generations, nil
}

func (f *fakeGenerations) GetTask(_ context.Context, taskID int64) (model.Task, error) {
	task, ok := f.tasks[taskID]
	if !ok {
		return model.Task{}, pgrepo.ErrTaskNotFound
	}
	return task, nil
}

type fakeResults map[int64]string

func (f fakeResults) FindResultVideo(taskID int64) string {
	return f[taskID]
}

func newUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]model.User{
		100: {UserID: 100, Username: "Alice", Balance: 300},
		777: {UserID: 777, Username: "123abc"},
	}}
}

func TestFindUserRules(t *testing.T) {
	testCases := []struct {
		name          string
		query         string
		wantID        int64
		wantErr       error
		wantUsernames int
		wantIDLookups int
	}{
		{name: "numeric id", query: "100", wantID: 100, wantIDLookups: 1},
		{name: "at username case insensitive", query: "@aLiCe", wantID: 100, wantUsernames: 1},
		{name: "bare username", query: " alice ", wantID: 100, wantUsernames: 1},
		{name: "username that looks numeric-ish", query: "123abc", wantID: 777, wantUsernames: 1},
		{name: "negative id falls back to id", query: "-5", wantErr: ErrUserNotFound, wantUsernames: 1, wantIDLookups: 1},
		{name: "at never falls back to id", query: "@100", wantErr: ErrUserNotFound, wantUsernames: 1},
		{name: "unknown id", query: "5", wantErr: ErrUserNotFound, wantIDLookups: 1},
		{name: "empty", query: "  ", wantErr: ErrUserNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			users := newUsers()
			service := NewService(users, nil, nil)

			user, err := service.FindUser(context.Background(), tc.query)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("find user: %v", err)
				}
				if user.UserID != tc.wantID {
					t.Fatalf("expected user %d, got %d", tc.wantID, user.UserID)
				}
			}
			if len(users.usernameCalls) != tc.wantUsernames || len(users.idCalls) != tc.wantIDLookups {
				t.Fatalf("unexpected lookups: usernames=%v ids=%v", users.usernameCalls, users.idCalls)
			}
		})
	}
}

func TestFindUserIDAndUsernameAgree(t *testing.T) {
	service := NewService(newUsers(), nil, nil)

	byID, err := service.FindUser(context.Background(), "100")
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	byName, err := service.FindUser(context.Background(), "@ALICE")
	if err != nil {
		t.Fatalf("by username: %v", err)
	}
	if byID.UserID != byName.UserID {
		t.Fatalf("lookups disagree: %d vs %d", byID.UserID, byName.UserID)
	}
}

func TestFindUserPropagatesStoreErrors(t *testing.T) {
	users := newUsers()
	users.err = &pgrepo.ConnectivityError{Attempts: 5, Err: errors.New("refused")}
	service := NewService(users, nil, nil)

	_, err := service.FindUser(context.Background(), "100")
	var connectivityErr *pgrepo.ConnectivityError
	if !errors.As(err, &connectivityErr) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}

func TestGenerationsPreferRenderedResult(t *testing.T) {
	generations := &fakeGenerations{generations: []model.Generation{
		{ID: 1, MediaPath: "videos/1.mp4"},
		{ID: 2, MediaPath: " videos/2.mp4 "},
	}}
	service := NewService(newUsers(), generations, fakeResults{1: "/srv/output/1_result_a.mp4"})

	views, err := service.Generations(context.Background(), 100)
	if err != nil {
		t.Fatalf("generations: %v", err)
	}
	if generations.limit != GenerationsLimit {
		t.Fatalf("expected limit %d, got %d", GenerationsLimit, generations.limit)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].MediaPath != "/srv/output/1_result_a.mp4" {
		t.Fatalf("expected rendered result, got %q", views[0].MediaPath)
	}
	if views[1].MediaPath != "videos/2.mp4" {
		t.Fatalf("expected stored path, got %q", views[1].MediaPath)
	}
}

func TestResendTarget(t *testing.T) {
	generations := &fakeGenerations{tasks: map[int64]model.Task{
		10: {ID: 10, UserID: 100, ImagePath: "videos/10.mp4", BotHash: "abc"},
		11: {ID: 11, UserID: 100},
		12: {ID: 12, UserID: 200, ImagePath: "videos/12.mp4"},
	}}
	service := NewService(newUsers(), generations, fakeResults{})

	target, err := service.ResendTarget(context.Background(), 100, 10)
	if err != nil {
		t.Fatalf("resend target: %v", err)
	}
	if target.MediaPath != "videos/10.mp4" || target.Task.BotHash != "abc" {
		t.Fatalf("unexpected target: %+v", target)
	}

	if _, err := service.ResendTarget(context.Background(), 100, 99); !errors.Is(err, ErrGenerationNotFound) {
		t.Fatalf("expected ErrGenerationNotFound for missing task, got %v", err)
	}
	if _, err := service.ResendTarget(context.Background(), 100, 11); !errors.Is(err, ErrGenerationNotFound) {
		t.Fatalf("expected ErrGenerationNotFound without media, got %v", err)
	}
	if _, err := service.ResendTarget(context.Background(), 100, 12); !errors.Is(err, ErrUserMismatch) {
		t.Fatalf("expected ErrUserMismatch, got %v", err)
	}
}
