package telegram

type State string

const (
	StateIdle              State = "IDLE"
	StateWaitingUserLookup State = "WAITING_USER_LOOKUP"
)
