package lookup

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"moderator_bot/internal/domain/model"
	pgrepo "moderator_bot/internal/repo/postgres"
)

const GenerationsLimit = 5

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrGenerationNotFound = errors.New("generation not found")
	ErrUserMismatch       = errors.New("generation belongs to another user")
)

type UsersRepo interface {
	GetByID(context.Context, int64) (model.User, error)
	GetByUsername(context.Context, string) (model.User, error)
}

type GenerationsRepo interface {
	ListSuccessful(context.Context, int64, int) ([]model.Generation, error)
	GetTask(context.Context, int64) (model.Task, error)
}

// ResultLocator finds rendered result files for a task id.
type ResultLocator interface {
	FindResultVideo(int64) string
}

type GenerationView struct {
	Generation model.Generation
	MediaPath  string
}

type ResendTarget struct {
	Task      model.Task
	MediaPath string
}

type Service struct {
	users       UsersRepo
	generations GenerationsRepo
	results     ResultLocator
}

func NewService(users UsersRepo, generations GenerationsRepo, results ResultLocator) *Service {
	return &Service{users: users, generations: generations, results: results}
}

// FindUser resolves moderator input. "@name" is always a username, a plain
// number is always an id, anything else is tried as a username first and
// then as an id when it parses.
func (s *Service) FindUser(ctx context.Context, query string) (model.User, error) {
	if s.users == nil {
		return model.User{}, ErrUserNotFound
	}

	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return model.User{}, ErrUserNotFound
	}

	if strings.HasPrefix(normalized, "@") {
		return s.byUsername(ctx, normalized)
	}
	if isDigits(normalized) {
		userID, err := strconv.ParseInt(normalized, 10, 64)
		if err != nil {
			return model.User{}, ErrUserNotFound
		}
		return s.GetUser(ctx, userID)
	}

	user, err := s.byUsername(ctx, normalized)
	if err == nil || !errors.Is(err, ErrUserNotFound) {
		return user, err
	}

	userID, parseErr := strconv.ParseInt(normalized, 10, 64)
	if parseErr != nil {
		return model.User{}, ErrUserNotFound
	}
	return s.GetUser(ctx, userID)
}

func (s *Service) GetUser(ctx context.Context, userID int64) (model.User, error) {
	if s.users == nil {
		return model.User{}, ErrUserNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user %d: %w", userID, err)
	}
	return user, nil
}

func (s *Service) byUsername(ctx context.Context, username string) (model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// Generations returns the latest successful generations with the best known
// media path for each: a rendered result first, the stored path otherwise.
func (s *Service) Generations(ctx context.Context, userID int64) ([]GenerationView, error) {
	generations, err := s.listSuccessful(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]GenerationView, 0, len(generations))
	for _, generation := range generations {
		views = append(views, GenerationView{
			Generation: generation,
			MediaPath:  s.mediaPath(generation.ID, generation.MediaPath),
		})
	}
	return views, nil
}

func (s *Service) ResendCandidates(ctx context.Context, userID int64) ([]model.Generation, error) {
	return s.listSuccessful(ctx, userID)
}

// ResendTarget loads a task for re-delivery and checks it belongs to
// userID. A task without any media path counts as not found.
func (s *Service) ResendTarget(ctx context.Context, userID, generationID int64) (ResendTarget, error) {
	if s.generations == nil {
		return ResendTarget{}, ErrGenerationNotFound
	}

	task, err := s.generations.GetTask(ctx, generationID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrTaskNotFound) {
			return ResendTarget{}, ErrGenerationNotFound
		}
		return ResendTarget{}, fmt.Errorf("get task %d: %w", generationID, err)
	}

	mediaPath := s.mediaPath(task.ID, task.ImagePath)
	if mediaPath == "" {
		return ResendTarget{}, ErrGenerationNotFound
	}
	if task.UserID != userID {
		return ResendTarget{Task: task, MediaPath: mediaPath}, ErrUserMismatch
	}
	return ResendTarget{Task: task, MediaPath: mediaPath}, nil
}

func (s *Service) listSuccessful(ctx context.Context, userID int64) ([]model.Generation, error) {
	if s.generations == nil {
		return []model.Generation{}, nil
	}
	generations, err := s.generations.ListSuccessful(ctx, userID, GenerationsLimit)
	if err != nil {
		return nil, fmt.Errorf("list generations of user %d: %w", userID, err)
	}
	return generations, nil
}

func (s *Service) mediaPath(taskID int64, stored string) string {
	if s.results != nil {
		if found := s.results.FindResultVideo(taskID); found != "" {
			return found
		}
	}
	return strings.TrimSpace(stored)
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
