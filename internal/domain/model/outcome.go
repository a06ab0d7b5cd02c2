package model

import "moderator_bot/internal/domain/enums"

type DecisionOutcome struct {
	ComplaintID      int64
	UserID           int64
	BotHash          string
	Cost             int64
	Status           enums.ComplaintStatus
	UserMessage      string
	ModeratorSuccess string
	ModeratorWarning string
}

type ReleaseKind string

const (
	ReleaseKindReleased ReleaseKind = "released"
	ReleaseKindNotFound ReleaseKind = "not_found"
	ReleaseKindNothing  ReleaseKind = "nothing"
	ReleaseKindActive   ReleaseKind = "active"
	ReleaseKindFailed   ReleaseKind = "failed"
)

type ReleaseOutcome struct {
	Success   bool
	Kind      ReleaseKind
	Amount    int64
	Message   string
	AlertText string
}
