package app

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"moderator_bot/internal/ui"
)

type messageRoute struct {
	name  string
	match func(*App, *tgbotapi.Message) bool
	// denied is sent to non-moderators. Empty means the message is dropped.
	denied string
	handle func(*App, context.Context, *tgbotapi.Message)
}

type callbackRoute struct {
	name   string
	data   string
	exact  bool
	public bool
	denied string
	handle func(*App, context.Context, int64, *tgbotapi.CallbackQuery) (string, bool)
}

func (r callbackRoute) matches(data string) bool {
	if r.exact {
		return data == r.data
	}
	return strings.HasPrefix(data, r.data)
}

// Router maps updates to handlers. Routes are tried in order and the first
// match wins.
type Router struct {
	app       *App
	messages  []messageRoute
	callbacks []callbackRoute
}

func NewRouter(a *App) *Router {
	return &Router{
		app: a,
		messages: []messageRoute{
			{name: "start", match: isCommand("start"), denied: ui.NoAccessMessage, handle: (*App).handleStart},
			{name: "complaints_button", match: hasText(ui.ButtonComplaints), handle: (*App).handleComplaintsButton},
			{name: "user_button", match: hasText(ui.ButtonUser), handle: (*App).handleUserButton},
			{name: "user_lookup_input", match: (*App).awaitingLookup, handle: (*App).handleLookupInput},
			{name: "menu_hint", match: anyMessage, handle: (*App).handleMenuHint},
		},
		callbacks: []callbackRoute{
			{name: "complaints_list", data: ui.CallbackComplaintsList, exact: true, denied: ui.NoAccessMessage, handle: (*App).handleComplaintsListCallback},
			{name: "complaint_accept", data: ui.CallbackComplaintAccept, handle: (*App).handleComplaintAccept},
			{name: "complaint_reject", data: ui.CallbackComplaintReject, handle: (*App).handleComplaintReject},
			{name: "complaint_status", data: ui.CallbackComplaintStatus, public: true, handle: (*App).handleComplaintStatus},
			{name: "user_complaints", data: ui.CallbackUserComplaints, handle: (*App).handleUserComplaints},
			{name: "user_generations", data: ui.CallbackUserGenerations, handle: (*App).handleUserGenerations},
			{name: "user_resend", data: ui.CallbackUserResend, handle: (*App).handleUserResend},
			{name: "user_payments", data: ui.CallbackUserPayments, handle: (*App).handleUserPayments},
			{name: "user_release_reserved", data: ui.CallbackUserReleaseReserved, handle: (*App).handleReleaseReserved},
			{name: "resend_generation", data: ui.CallbackResendGeneration, handle: (*App).handleResendGeneration},
			{name: "payment_recheck", data: ui.CallbackPaymentRecheck, handle: (*App).handlePaymentRecheck},
		},
	}
}

func (r *Router) Dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		r.dispatchMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		r.dispatchCallback(ctx, update.CallbackQuery)
	default:
		r.app.log(ctx).Debug("update ignored", zap.Int("update_id", update.UpdateID))
	}
}

func (r *Router) dispatchMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil {
		return
	}

	for _, route := range r.messages {
		if !route.match(r.app, message) {
			continue
		}
		if !r.app.accessService.IsModerator(ctx, message.From.ID) {
			if route.denied != "" {
				r.app.sendText(ctx, message.Chat.ID, route.denied)
			}
			return
		}
		r.app.log(ctx).Debug("message routed", zap.String("route", route.name), zap.Int64("tg_id", message.From.ID))
		route.handle(r.app, ctx, message)
		return
	}
}

func (r *Router) dispatchCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}

	ackText := ""
	ackAlert := false
	defer func() {
		r.app.answerCallback(ctx, query.ID, ackText, ackAlert)
	}()

	for _, route := range r.callbacks {
		if !route.matches(query.Data) {
			continue
		}
		if !route.public && !r.app.accessService.IsModerator(ctx, query.From.ID) {
			ackText = defaultText(route.denied, ui.NoAccessAlert)
			return
		}
		chatID, ok := callbackChatID(query)
		if !ok {
			return
		}
		r.app.log(ctx).Debug("callback routed", zap.String("route", route.name), zap.Int64("tg_id", query.From.ID))
		ackText, ackAlert = route.handle(r.app, ctx, chatID, query)
		return
	}
}

func isCommand(command string) func(*App, *tgbotapi.Message) bool {
	return func(_ *App, message *tgbotapi.Message) bool {
		return message.IsCommand() && message.Command() == command
	}
}

func hasText(text string) func(*App, *tgbotapi.Message) bool {
	return func(_ *App, message *tgbotapi.Message) bool {
		return strings.TrimSpace(message.Text) == text
	}
}

func anyMessage(*App, *tgbotapi.Message) bool {
	return true
}

func callbackChatID(query *tgbotapi.CallbackQuery) (int64, bool) {
	if query == nil || query.Message == nil || query.Message.Chat == nil {
		return 0, false
	}
	return query.Message.Chat.ID, true
}

func callbackMessageID(query *tgbotapi.CallbackQuery) int {
	if query == nil || query.Message == nil {
		return 0
	}
	return query.Message.MessageID
}

func defaultText(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
