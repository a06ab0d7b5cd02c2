package model

import (
	"time"

	"moderator_bot/internal/domain/enums"
)

type Task struct {
	ID            int64
	UserID        int64
	Priority      *int64
	Category      string
	ImagePath     string
	ComfyURL      string
	IsFinished    bool
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	BotHash       string
	SubcategoryID *int64
	Cost          *int64
}

type Generation struct {
	ID            int64
	Category      string
	Status        enums.GenerationStatus
	CreatedAt     *time.Time
	CompletedAt   *time.Time
	MediaPath     string
	BotHash       string
	SubcategoryID *int64
}

// SubcategoryPricing is the raw input of the cost policy.
type SubcategoryPricing struct {
	Duration   *int64
	Price      *int64
	Difficulty string
}
