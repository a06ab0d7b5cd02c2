package model

import (
	"encoding/json"
	"time"

	"moderator_bot/internal/domain/enums"
)

type Audit struct {
	ID         string
	ActorTGID  int64
	Action     enums.AuditAction
	TargetType string
	TargetID   int64
	Payload    json.RawMessage
	CreatedAt  time.Time
}
