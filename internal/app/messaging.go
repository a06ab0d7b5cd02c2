package app

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"moderator_bot/internal/infra/media"
	"moderator_bot/internal/infra/telegram"
	"moderator_bot/internal/ui"
)

type correlationKey struct{}

func withCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// log returns the app logger tagged with the update's correlation id.
func (a *App) log(ctx context.Context) *zap.Logger {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return a.logger.With(zap.String("correlation_id", id))
	}
	return a.logger
}

func (a *App) sendText(ctx context.Context, chatID int64, text string) {
	a.send(ctx, chatID, text, nil)
}

func (a *App) sendWithMenu(ctx context.Context, chatID int64, text string) {
	a.send(ctx, chatID, text, telegram.BuildReplyKeyboard(ui.MainMenu()))
}

func (a *App) sendInline(ctx context.Context, chatID int64, text string, rows [][]telegram.InlineButton) {
	a.send(ctx, chatID, text, telegram.BuildInlineKeyboard(rows))
}

func (a *App) send(ctx context.Context, chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = telegram.ParseModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := a.tg.Send(msg); err != nil {
		a.log(ctx).Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (a *App) sendVideo(chatID int64, source media.Source, caption string) error {
	file, err := telegram.InputFile(source)
	if err != nil {
		return err
	}
	video := tgbotapi.NewVideo(chatID, file)
	video.Caption = caption
	video.ParseMode = telegram.ParseModeHTML
	_, err = a.tg.Send(video)
	return err
}

// sendPhotoAndVideo posts the source photo and the result video as one
// album. The complaint text rides on the video.
func (a *App) sendPhotoAndVideo(chatID int64, photo, video media.Source, caption string) error {
	photoFile, err := telegram.InputFile(photo)
	if err != nil {
		return err
	}
	videoFile, err := telegram.InputFile(video)
	if err != nil {
		return err
	}

	photoItem := tgbotapi.NewInputMediaPhoto(photoFile)
	photoItem.Caption = ui.SourcePhotoCaption
	photoItem.ParseMode = telegram.ParseModeHTML

	videoItem := tgbotapi.NewInputMediaVideo(videoFile)
	videoItem.Caption = caption
	videoItem.ParseMode = telegram.ParseModeHTML

	return a.tg.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, []interface{}{photoItem, videoItem}))
}

func (a *App) answerCallback(ctx context.Context, callbackID, text string, alert bool) {
	cfg := tgbotapi.NewCallback(callbackID, text)
	cfg.ShowAlert = alert
	if err := a.tg.Request(cfg); err != nil {
		a.log(ctx).Warn("answer callback", zap.Error(err))
	}
}

// editButtons swaps the inline keyboard under a sent message. Telegram
// refuses edits that change nothing, so failures are only logged.
func (a *App) editButtons(ctx context.Context, chatID int64, messageID int, rows [][]telegram.InlineButton) {
	if messageID == 0 {
		return
	}
	if err := a.tg.Request(telegram.EditInlineKeyboard(chatID, messageID, rows)); err != nil {
		a.log(ctx).Debug("edit reply markup", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func setLookupInputState(a *App, chatID int64, state telegram.State) {
	a.lookupInputMu.Lock()
	defer a.lookupInputMu.Unlock()
	a.lookupInputByChat[chatID] = state
}

func getLookupInputState(a *App, chatID int64) telegram.State {
	a.lookupInputMu.Lock()
	defer a.lookupInputMu.Unlock()
	state, ok := a.lookupInputByChat[chatID]
	if !ok {
		return telegram.StateIdle
	}
	return state
}

func deleteLookupInputState(a *App, chatID int64) {
	a.lookupInputMu.Lock()
	defer a.lookupInputMu.Unlock()
	delete(a.lookupInputByChat, chatID)
}
