package app

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/infra/telegram"
	"moderator_bot/internal/services/lookup"
	"moderator_bot/internal/services/payments"
	"moderator_bot/internal/ui"
)

func (a *App) handleStart(ctx context.Context, message *tgbotapi.Message) {
	deleteLookupInputState(a, message.Chat.ID)
	a.sendWithMenu(ctx, message.Chat.ID, ui.StartMessage)
}

func (a *App) handleMenuHint(ctx context.Context, message *tgbotapi.Message) {
	a.sendWithMenu(ctx, message.Chat.ID, ui.MenuHintMessage)
}

func (a *App) handleUserButton(ctx context.Context, message *tgbotapi.Message) {
	setLookupInputState(a, message.Chat.ID, telegram.StateWaitingUserLookup)
	a.sendWithMenu(ctx, message.Chat.ID, ui.LookupPrompt)
}

func (a *App) awaitingLookup(message *tgbotapi.Message) bool {
	return getLookupInputState(a, message.Chat.ID) == telegram.StateWaitingUserLookup
}

// handleLookupInput treats the text as a user id or username. The chat stays
// in lookup mode until a user is found.
func (a *App) handleLookupInput(ctx context.Context, message *tgbotapi.Message) {
	query := strings.TrimSpace(message.Text)

	user, err := a.lookupService.FindUser(ctx, query)
	if errors.Is(err, lookup.ErrUserNotFound) {
		a.sendWithMenu(ctx, message.Chat.ID, ui.LookupNotFound)
		return
	}
	if err != nil {
		a.log(ctx).Error("find user", zap.String("query", query), zap.Error(err))
		a.sendWithMenu(ctx, message.Chat.ID, ui.LookupFailed)
		return
	}

	deleteLookupInputState(a, message.Chat.ID)
	a.auditService.LogLookup(ctx, message.From.ID, query, user.UserID)
	a.sendInline(ctx, message.Chat.ID, ui.RenderUserInfo(user), ui.UserActionButtons(user.UserID))
}

func (a *App) handleUserGenerations(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, bool) {
	userID, err := ui.ParseCallbackID(query.Data)
	if err != nil {
		return ui.AckInvalidID, false
	}

	views, err := a.lookupService.Generations(ctx, userID)
	if err != nil {
		a.log(ctx).Error("list user generations", zap.Int64("user_id", userID), zap.Error(err))
		return ui.AckTemporaryFailure, true
	}
	if len(views) == 0 {
		return ui.AckNoGenerations, false
	}

	for _, view := range views {
		caption := ui.RenderGenerationCaption(view.Generation)
		source, err := a.media.Resolve(ctx, view.MediaPath)
		if err != nil {
			a.log(ctx).Warn("resolve generation media", zap.Int64("generation_id", view.Generation.ID), zap.Error(err))
		}
		if !source.Found() {
			a.sendText(ctx, chatID, ui.GenerationWithoutVideo(caption))
			continue
		}
		if err := a.sendVideo(chatID, source, caption); err != nil {
			a.log(ctx).Warn("send generation video", zap.Int64("generation_id", view.Generation.ID), zap.Error(err))
			a.sendText(ctx, chatID, ui.GenerationVideoFailed(caption, view.MediaPath))
		}
	}
	return ui.GenerationsShown(len(views)), false
}

func (a *App) handleUserResend(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, bool) {
	userID, err := ui.ParseCallbackID(query.Data)
	if err != nil {
		return ui.AckInvalidID, false
	}

	generations, err := a.lookupService.ResendCandidates(ctx, userID)
	if err != nil {
		a.log(ctx).Error("list resend candidates", zap.Int64("user_id", userID), zap.Error(err))
		return ui.AckTemporaryFailure, true
	}
	if len(generations) == 0 {
		return ui.AckNoResendResults, false
	}

	for _, generation := range generations {
		a.sendInline(ctx, chatID, ui.RenderResendCaption(generation), ui.ResendButtons(userID, generation.ID))
	}
	return ui.ResendShown(len(generations)), false
}

func (a *App) handleResendGeneration(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, bool) {
	userID, generationID, err := ui.ParseResendData(query.Data)
	if err != nil {
		return ui.AckInvalidData, true
	}

	target, err := a.lookupService.ResendTarget(ctx, userID, generationID)
	switch {
	case errors.Is(err, lookup.ErrGenerationNotFound):
		return ui.AckGenerationNotFound, true
	case errors.Is(err, lookup.ErrUserMismatch):
		return ui.AckUserMismatch, true
	case err != nil:
		a.log(ctx).Error("load resend target", zap.Int64("generation_id", generationID), zap.Error(err))
		return ui.AckTemporaryFailure, true
	}

	source, err := a.media.Resolve(ctx, target.MediaPath)
	if err != nil {
		a.log(ctx).Warn("resolve resend media", zap.Int64("generation_id", generationID), zap.Error(err))
	}
	if !source.Found() {
		a.sendText(ctx, chatID, ui.GenerationFileMissingNotice(defaultText(source.Expected, target.MediaPath)))
		return ui.AckFileNotFound, true
	}

	err = a.notifyService.SendVideo(ctx, target.Task.UserID, target.Task.BotHash, source, ui.RenderResendToUser(target.Task))
	a.auditService.LogResend(ctx, query.From.ID, target.Task.UserID, generationID, err == nil)
	if err != nil {
		return ui.AckResendFailed, true
	}
	return ui.AckResendDone, false
}

func (a *App) handleUserPayments(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, bool) {
	userID, err := ui.ParseCallbackID(query.Data)
	if err != nil {
		return ui.AckInvalidID, false
	}

	items, err := a.paymentsService.List(ctx, userID)
	if err != nil {
		a.log(ctx).Error("list user payments", zap.Int64("user_id", userID), zap.Error(err))
		return ui.AckTemporaryFailure, true
	}
	if len(items) == 0 {
		return ui.AckNoPayments, false
	}

	a.sendText(ctx, chatID, ui.PaymentsHeader)
	for _, payment := range items {
		a.sendInline(ctx, chatID, ui.RenderPayment(payment), ui.PaymentRecheckButtons(payment.ID, payment.Status))
	}
	return ui.PaymentsShown(len(items)), false
}

func (a *App) handlePaymentRecheck(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, bool) {
	paymentID, shownStatus, err := ui.ParsePaymentRecheck(query.Data)
	if err != nil {
		return ui.AckInvalidData, true
	}

	result, err := a.paymentsService.Recheck(ctx, paymentID, shownStatus)
	if err != nil {
		if !errors.Is(err, payments.ErrPaymentNotFound) {
			a.log(ctx).Error("recheck payment", zap.Int64("payment_id", paymentID), zap.Error(err))
		}
		a.auditService.LogPaymentRecheck(ctx, query.From.ID, paymentID, shownStatus, false)
		return ui.AckPaymentFailed, true
	}
	if result == payments.RecheckAlreadyCompleted {
		return ui.AckPaymentCompleted, false
	}

	a.auditService.LogPaymentRecheck(ctx, query.From.ID, paymentID, shownStatus, true)
	a.editButtons(ctx, chatID, callbackMessageID(query), ui.PaymentRecheckButtons(paymentID, enums.PaymentStatusPending))
	return ui.AckPaymentPending, false
}

func (a *App) handleReleaseReserved(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, bool) {
	userID, err := ui.ParseCallbackID(query.Data)
	if err != nil {
		return ui.AckInvalidID, true
	}

	outcome, err := a.reserveService.Release(ctx, userID)
	if err != nil {
		a.log(ctx).Error("release reserved balance", zap.Int64("user_id", userID), zap.Error(err))
	}
	a.auditService.LogRelease(ctx, query.From.ID, userID, outcome)
	if !outcome.Success {
		return defaultText(outcome.AlertText, outcome.Message), true
	}

	a.log(ctx).Info("reserved balance released",
		zap.Int64("user_id", userID),
		zap.Int64("amount", outcome.Amount),
		zap.Int64("moderator_tg_id", query.From.ID),
	)
	a.sendText(ctx, chatID, outcome.Message)
	return ui.AckReserveCleared, false
}
