package enums

type ComplaintStatus string

const (
	ComplaintStatusPending  ComplaintStatus = "pending"
	ComplaintStatusAccepted ComplaintStatus = "accepted"
	ComplaintStatusRejected ComplaintStatus = "rejected"
)

func (s ComplaintStatus) IsDecided() bool {
	return s == ComplaintStatusAccepted || s == ComplaintStatusRejected
}
