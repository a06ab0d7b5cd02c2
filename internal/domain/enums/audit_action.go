package enums

type AuditAction string

const (
	AuditActionComplaintAccept AuditAction = "COMPLAINT_ACCEPT"
	AuditActionComplaintReject AuditAction = "COMPLAINT_REJECT"
	AuditActionReserveRelease  AuditAction = "RESERVE_RELEASE"
	AuditActionPaymentRecheck  AuditAction = "PAYMENT_RECHECK"
	AuditActionResultResend    AuditAction = "RESULT_RESEND"
	AuditActionLookupUser      AuditAction = "LOOKUP_USER"
)
