package model

import (
	"time"

	"moderator_bot/internal/domain/enums"
)

type Complaint struct {
	ID            int64
	UserID        int64
	MessageID     *int64
	FilePath      string
	SourcePath    string
	Category      string
	BotHash       string
	SubcategoryID *int64
	Status        enums.ComplaintStatus
	Dispatched    bool
	CreatedAt     *time.Time
	GenerationID  *int64
}

// DecisionWrite is applied as one unit: status change plus credit delta.
type DecisionWrite struct {
	ComplaintID    int64
	UserID         int64
	Status         enums.ComplaintStatus
	Delta          int64
	RequirePending bool
}
