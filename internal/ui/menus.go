package ui

import (
	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/infra/telegram"
)

const (
	ButtonComplaints = "📋 Жалобы"
	ButtonUser       = "👤 Пользователь"
)

func MainMenu() [][]string {
	return [][]string{
		{ButtonComplaints},
		{ButtonUser},
	}
}

func ComplaintModerationButtons(complaintID int64) [][]telegram.InlineButton {
	return [][]telegram.InlineButton{{
		{Text: "✅ Принять", Data: ComplaintDecisionData(enums.VerdictAccept, complaintID)},
		{Text: "❌ Отклонить", Data: ComplaintDecisionData(enums.VerdictReject, complaintID)},
	}}
}

// ComplaintStatusButtons replaces the decision buttons once a complaint is
// decided. A pending status yields no buttons.
func ComplaintStatusButtons(complaintID int64, status enums.ComplaintStatus) [][]telegram.InlineButton {
	switch status {
	case enums.ComplaintStatusAccepted:
		return [][]telegram.InlineButton{{{Text: "✅ Жалоба одобрена", Data: ComplaintStatusData(status, complaintID)}}}
	case enums.ComplaintStatusRejected:
		return [][]telegram.InlineButton{{{Text: "❌ Жалоба отклонена", Data: ComplaintStatusData(status, complaintID)}}}
	default:
		return [][]telegram.InlineButton{}
	}
}

func UserActionButtons(userID int64) [][]telegram.InlineButton {
	return [][]telegram.InlineButton{
		{{Text: "📋 Жалобы", Data: UserActionData(CallbackUserComplaints, userID)}},
		{{Text: "🎬 Генерации", Data: UserActionData(CallbackUserGenerations, userID)}},
		{{Text: "🔄 Переотправка результата", Data: UserActionData(CallbackUserResend, userID)}},
		{{Text: "💳 Проверка платежей", Data: UserActionData(CallbackUserPayments, userID)}},
		{{Text: "🧹 Снять резерв", Data: UserActionData(CallbackUserReleaseReserved, userID)}},
	}
}

func ResendButtons(userID, generationID int64) [][]telegram.InlineButton {
	return [][]telegram.InlineButton{{{Text: "🔁 Переотправить", Data: ResendGenerationData(userID, generationID)}}}
}

func PaymentRecheckButtons(paymentID int64, status string) [][]telegram.InlineButton {
	return [][]telegram.InlineButton{{{Text: "🔎 Перепроверить", Data: PaymentRecheckData(paymentID, status)}}}
}
