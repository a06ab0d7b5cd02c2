package model

import "time"

type BotRecord struct {
	ID        int64
	Name      string
	Token     string
	IsActive  bool
	CreatedAt *time.Time
	UpdatedAt *time.Time
}
