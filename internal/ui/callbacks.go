package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"moderator_bot/internal/domain/enums"
)

const (
	CallbackComplaintsList      = "complaints_list"
	CallbackComplaintAccept     = "complaint_accept:"
	CallbackComplaintReject     = "complaint_reject:"
	CallbackComplaintStatus     = "complaint_status_"
	CallbackUserComplaints      = "user_complaints:"
	CallbackUserGenerations     = "user_generations:"
	CallbackUserResend          = "user_resend:"
	CallbackUserPayments        = "user_payments:"
	CallbackUserReleaseReserved = "user_release_reserved:"
	CallbackResendGeneration    = "resend_generation:"
	CallbackPaymentRecheck      = "payment_recheck:"
)

var ErrInvalidCallback = errors.New("invalid callback data")

func ComplaintDecisionData(verdict enums.Verdict, complaintID int64) string {
	if verdict == enums.VerdictAccept {
		return CallbackComplaintAccept + strconv.FormatInt(complaintID, 10)
	}
	return CallbackComplaintReject + strconv.FormatInt(complaintID, 10)
}

func ComplaintStatusData(status enums.ComplaintStatus, complaintID int64) string {
	return fmt.Sprintf("%s%s:%d", CallbackComplaintStatus, status, complaintID)
}

func UserActionData(prefix string, userID int64) string {
	return prefix + strconv.FormatInt(userID, 10)
}

func ResendGenerationData(userID, generationID int64) string {
	return fmt.Sprintf("%s%d:%d", CallbackResendGeneration, userID, generationID)
}

func PaymentRecheckData(paymentID int64, status string) string {
	return fmt.Sprintf("%s%d:%s", CallbackPaymentRecheck, paymentID, status)
}

// ParseCallbackID reads the integer after the first ":".
func ParseCallbackID(data string) (int64, error) {
	_, raw, ok := strings.Cut(data, ":")
	if !ok {
		return 0, ErrInvalidCallback
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, ErrInvalidCallback
	}
	return id, nil
}

func ParseResendData(data string) (int64, int64, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return 0, 0, ErrInvalidCallback
	}
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, ErrInvalidCallback
	}
	generationID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, 0, ErrInvalidCallback
	}
	return userID, generationID, nil
}

// ParsePaymentRecheck returns the payment id and the status the button was
// rendered with. The status is free text and may itself contain ":".
func ParsePaymentRecheck(data string) (int64, string, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return 0, "", ErrInvalidCallback
	}
	paymentID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", ErrInvalidCallback
	}
	return paymentID, parts[2], nil
}
