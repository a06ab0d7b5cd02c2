package model

import "time"

type Payment struct {
	ID                int64
	UserID            int64
	Amount            int64
	Provider          string
	Status            string
	CreatedAt         *time.Time
	UpdatedAt         *time.Time
	ExternalPaymentID string
	BotOwnerID        *int64
	BotID             *int64
	PaymentURL        string
}
