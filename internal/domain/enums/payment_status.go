package enums

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)
