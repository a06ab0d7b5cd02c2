package pricing

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
	pgrepo "moderator_bot/internal/repo/postgres"
)

const (
	DefaultCost           int64 = 200
	UnknownDifficultyCost int64 = 110
	defaultDurationMin    int64 = 10
)

// costMatrix is keyed by duration tier in minutes.
var costMatrix = map[int64]map[enums.Difficulty]int64{
	5:  {enums.DifficultyLow: 70, enums.DifficultyMedium: 90, enums.DifficultyHigh: 110},
	10: {enums.DifficultyLow: 90, enums.DifficultyMedium: 110, enums.DifficultyHigh: 130},
	15: {enums.DifficultyLow: 110, enums.DifficultyMedium: 130, enums.DifficultyHigh: 150},
}

type Repo interface {
	SubcategoryPricing(context.Context, int64) (model.SubcategoryPricing, error)
}

type Service struct {
	repo   Repo
	logger *zap.Logger
}

func NewService(repo Repo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// CostForSubcategory resolves the generation cost. Complaints without a
// subcategory, inactive or unknown subcategories and failed lookups all
// cost DefaultCost; the error result is always nil.
func (s *Service) CostForSubcategory(ctx context.Context, subcategoryID *int64) (int64, error) {
	if subcategoryID == nil || *subcategoryID == 0 || s.repo == nil {
		return DefaultCost, nil
	}

	input, err := s.repo.SubcategoryPricing(ctx, *subcategoryID)
	if err != nil {
		if !errors.Is(err, pgrepo.ErrSubcategoryNotFound) {
			s.logger.Warn("subcategory cost lookup failed, using default cost",
				zap.Int64("subcategory_id", *subcategoryID),
				zap.Error(err),
			)
		}
		return DefaultCost, nil
	}
	return Cost(input), nil
}

// Cost prices a generation. A difficulty tag wins over the legacy price.
func Cost(input model.SubcategoryPricing) int64 {
	duration := defaultDurationMin
	if input.Duration != nil && *input.Duration != 0 {
		duration = *input.Duration
	}

	difficulty := enums.NormalizeDifficulty(input.Difficulty)
	if difficulty != "" {
		cost, ok := costMatrix[DurationTier(duration)][difficulty]
		if !ok {
			return UnknownDifficultyCost
		}
		return cost
	}

	if input.Price != nil && *input.Price != 0 {
		return *input.Price
	}
	return DefaultCost
}

func DurationTier(minutes int64) int64 {
	switch {
	case minutes <= 5:
		return 5
	case minutes <= 10:
		return 10
	default:
		return 15
	}
}
