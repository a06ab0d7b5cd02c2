package app

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
	"moderator_bot/internal/services/complaints"
	"moderator_bot/internal/ui"
)

type complaintListing struct {
	header         string
	includeUserID  bool
	markDispatched bool
}

var (
	pendingListing = complaintListing{header: ui.HeaderNewComplaint, includeUserID: true, markDispatched: true}
	userListing    = complaintListing{header: ui.HeaderUserComplaint}
)

func (a *App) handleComplaintsButton(ctx context.Context, message *tgbotapi.Message) {
	deleteLookupInputState(a, message.Chat.ID)
	a.sendText(ctx, message.Chat.ID, a.sendPendingComplaints(ctx, message.Chat.ID))
}

func (a *App) handleComplaintsListCallback(ctx context.Context, chatID int64, _ *tgbotapi.CallbackQuery) (string, bool) {
	return a.sendPendingComplaints(ctx, chatID), false
}

func (a *App) sendPendingComplaints(ctx context.Context, chatID int64) string {
	items, err := a.complaintsService.ListPending(ctx)
	if err != nil {
		a.log(ctx).Error("list pending complaints", zap.Error(err))
		return ui.AckTemporaryFailure
	}
	return a.sendComplaints(ctx, chatID, items, pendingListing)
}

func (a *App) handleUserComplaints(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, bool) {
	userID, err := ui.ParseCallbackID(query.Data)
	if err != nil {
		return ui.AckInvalidID, false
	}

	items, err := a.complaintsService.ListForUser(ctx, userID)
	if err != nil {
		a.log(ctx).Error("list user complaints", zap.Int64("user_id", userID), zap.Error(err))
		return ui.AckTemporaryFailure, true
	}
	return a.sendComplaints(ctx, chatID, items, userListing), false
}

// sendComplaints posts one card per complaint and returns the summary
// acknowledgement.
func (a *App) sendComplaints(ctx context.Context, chatID int64, items []model.Complaint, listing complaintListing) string {
	if len(items) == 0 {
		return ui.AckNoComplaints
	}

	ids := make([]int64, 0, len(items))
	for _, complaint := range items {
		text := ui.RenderComplaint(complaint, a.userLabel(ctx, complaint.UserID), listing.includeUserID, listing.header)
		a.sendComplaintCard(ctx, chatID, complaint, text)
		ids = append(ids, complaint.ID)
	}

	if listing.markDispatched {
		if err := a.complaintsService.MarkDispatched(ctx, ids); err != nil {
			a.log(ctx).Error("mark complaints dispatched", zap.Int64s("complaint_ids", ids), zap.Error(err))
		}
	}
	return ui.ComplaintsShown(len(items))
}

func (a *App) sendComplaintCard(ctx context.Context, chatID int64, complaint model.Complaint, text string) {
	missingVideo := a.sendComplaintMedia(ctx, chatID, complaint, text)
	a.sendInline(ctx, chatID, text, ui.ComplaintModerationButtons(complaint.ID))
	if missingVideo != "" {
		a.sendText(ctx, chatID, ui.VideoMissingNotice(missingVideo))
	}
}

// sendComplaintMedia sends the evidence video, paired with the source photo
// when that resolves too. It returns the expected video path when the video
// could not be found.
func (a *App) sendComplaintMedia(ctx context.Context, chatID int64, complaint model.Complaint, text string) string {
	video, err := a.media.Resolve(ctx, complaint.FilePath)
	if err != nil {
		a.log(ctx).Warn("resolve complaint video", zap.Int64("complaint_id", complaint.ID), zap.Error(err))
	}
	if !video.Found() {
		if complaint.FilePath == "" {
			return ""
		}
		return defaultText(video.Expected, complaint.FilePath)
	}

	photo, err := a.media.Resolve(ctx, complaint.SourcePath)
	if err != nil {
		a.log(ctx).Warn("resolve complaint source photo", zap.Int64("complaint_id", complaint.ID), zap.Error(err))
	}

	if photo.Found() {
		err := a.sendPhotoAndVideo(chatID, photo, video, text)
		if err == nil {
			return ""
		}
		a.log(ctx).Warn("send complaint media group", zap.Int64("complaint_id", complaint.ID), zap.Error(err))
	}

	if err := a.sendVideo(chatID, video, text); err != nil {
		a.log(ctx).Warn("send complaint video", zap.Int64("complaint_id", complaint.ID), zap.Error(err))
		return ""
	}
	if !photo.Found() && complaint.SourcePath != "" {
		a.sendText(ctx, chatID, ui.PhotoMissingNotice(defaultText(photo.Expected, complaint.SourcePath)))
	}
	return ""
}

func (a *App) userLabel(ctx context.Context, userID int64) string {
	user, err := a.lookupService.GetUser(ctx, userID)
	if err != nil {
		return ui.UsernameDisplay(nil, userID)
	}
	return ui.UsernameDisplay(&user, userID)
}

func (a *App) handleComplaintAccept(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, bool) {
	return a.decideComplaint(ctx, chatID, query, enums.VerdictAccept)
}

func (a *App) handleComplaintReject(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery) (string, bool) {
	return a.decideComplaint(ctx, chatID, query, enums.VerdictReject)
}

func (a *App) decideComplaint(ctx context.Context, chatID int64, query *tgbotapi.CallbackQuery, verdict enums.Verdict) (string, bool) {
	complaintID, err := ui.ParseCallbackID(query.Data)
	if err != nil {
		return ui.AckComplaintError, false
	}

	outcome, err := a.complaintsService.Decide(ctx, complaintID, verdict)
	switch {
	case errors.Is(err, complaints.ErrComplaintNotFound):
		return ui.AckComplaintNotFound, false
	case errors.Is(err, complaints.ErrAlreadyDecided):
		return ui.AckComplaintDecided, false
	case err != nil:
		a.log(ctx).Error("decide complaint",
			zap.Int64("complaint_id", complaintID),
			zap.String("verdict", string(verdict)),
			zap.Error(err),
		)
		return ui.AckTemporaryFailure, true
	}

	a.log(ctx).Info("complaint decided",
		zap.Int64("complaint_id", outcome.ComplaintID),
		zap.Int64("user_id", outcome.UserID),
		zap.String("status", string(outcome.Status)),
		zap.Int64("cost", outcome.Cost),
		zap.Int64("moderator_tg_id", query.From.ID),
	)
	a.auditService.LogDecision(ctx, query.From.ID, outcome)

	notified := a.notifyService.Notify(ctx, outcome.UserID, outcome.BotHash, outcome.UserMessage) == nil
	a.editButtons(ctx, chatID, callbackMessageID(query), ui.ComplaintStatusButtons(outcome.ComplaintID, outcome.Status))

	if notified {
		return outcome.ModeratorSuccess, false
	}
	return outcome.ModeratorWarning, false
}

func (a *App) handleComplaintStatus(context.Context, int64, *tgbotapi.CallbackQuery) (string, bool) {
	return ui.AckComplaintDecided, false
}
