package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"moderator_bot/internal/domain/model"
)

const (
	HeaderNewComplaint  = "Поступила жалоба #%d"
	HeaderUserComplaint = "Жалоба #%d"

	dateTimeLayout = "2006-01-02 15:04"
	emptyValue     = "—"
)

var moscow = time.FixedZone("MSK", 3*60*60)

// FormatDateTime renders t in Moscow time.
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return emptyValue
	}
	return t.In(moscow).Format(dateTimeLayout)
}

// UsernameDisplay is "@name", or user_{id} for users without a username.
func UsernameDisplay(user *model.User, fallbackID int64) string {
	if user != nil {
		if name := strings.TrimSpace(user.Username); name != "" {
			return "@" + name
		}
	}
	return "user_" + strconv.FormatInt(fallbackID, 10)
}

func RenderComplaint(complaint model.Complaint, userLabel string, includeUserID bool, header string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>%s</b>\n\n", fmt.Sprintf(header, complaint.ID))
	if includeUserID {
		fmt.Fprintf(&b, "👤 <b>Пользователь:</b> %s (ID: %d)\n", userLabel, complaint.UserID)
	} else {
		fmt.Fprintf(&b, "👤 <b>Пользователь:</b> %s\n", userLabel)
	}
	fmt.Fprintf(&b, "📁 <b>Категория:</b> %s\n", defaultText(complaint.Category, "Не указана"))
	fmt.Fprintf(&b, "🤖 <b>Бот:</b> %s\n", defaultText(complaint.BotHash, "Не указан"))
	fmt.Fprintf(&b, "🕒 <b>Время:</b> %s\n", FormatDateTime(complaint.CreatedAt))
	fmt.Fprintf(&b, "🗂 <b>Файл:</b> %s\n", defaultText(baseName(complaint.FilePath), "Не указан"))
	return b.String()
}

func RenderUserInfo(user model.User) string {
	username := emptyValue
	if name := strings.TrimSpace(user.Username); name != "" {
		username = "@" + name
	}

	return fmt.Sprintf(
		"👤 <b>Информация о пользователе</b>\n\n"+
			"🆔 <b>ID:</b> %d\n"+
			"🔗 <b>Username:</b> %s\n"+
			"🌐 <b>Язык:</b> %s\n"+
			"📅 <b>Зарегистрирован:</b> %s\n\n"+
			"💰 <b>Баланс:</b> %d кредитов\n"+
			"⛔ <b>Зарезервировано:</b> %d кредитов\n",
		user.UserID,
		username,
		defaultText(user.Lang, emptyValue),
		FormatDateTime(user.JoinedAt),
		user.Balance,
		user.ReservedBalance,
	)
}

func RenderGenerationCaption(generation model.Generation) string {
	return fmt.Sprintf(
		"🎬 <b>Генерация #%d</b>\n\n"+
			"📁 <b>Категория:</b> %s\n"+
			"🕒 <b>Создано:</b> %s\n"+
			"✅ <b>Завершено:</b> %s\n",
		generation.ID,
		defaultText(generation.Category, emptyValue),
		FormatDateTime(generation.CreatedAt),
		FormatDateTime(generation.CompletedAt),
	)
}

func GenerationWithoutVideo(caption string) string {
	return caption + "\n⚠️ <b>Видео не найдено или не сохранено.</b>"
}

func GenerationVideoFailed(caption, path string) string {
	return caption + "\n" + VideoMissingNotice(path)
}

func RenderResendCaption(generation model.Generation) string {
	subcategory := emptyValue
	if generation.SubcategoryID != nil && *generation.SubcategoryID != 0 {
		subcategory = strconv.FormatInt(*generation.SubcategoryID, 10)
	}

	return fmt.Sprintf(
		"🔄 <b>Переотправка результата #%d</b>\n\n"+
			"📁 <b>Категория:</b> %s\n"+
			"🧩 <b>Subcategory ID:</b> %s\n"+
			"🤖 <b>Бот:</b> %s\n"+
			"🕒 <b>Создано:</b> %s\n"+
			"✅ <b>Завершено:</b> %s\n",
		generation.ID,
		defaultText(generation.Category, emptyValue),
		subcategory,
		defaultText(generation.BotHash, emptyValue),
		FormatDateTime(generation.CreatedAt),
		FormatDateTime(generation.CompletedAt),
	)
}

// RenderResendToUser is the caption on a result delivered again to its owner.
func RenderResendToUser(task model.Task) string {
	return fmt.Sprintf("🎬 <b>Переотправка результата #%d</b>\n\n📁 <b>Категория:</b> %s", task.ID, defaultText(task.Category, emptyValue))
}

func RenderPayment(payment model.Payment) string {
	return fmt.Sprintf(
		"• <b>#%d</b> — %d кредитов\n"+
			"  Провайдер: %s\n"+
			"  Статус: %s\n"+
			"  Создан: %s\n"+
			"  Обновлён: %s\n"+
			"  External ID: %s",
		payment.ID,
		payment.Amount,
		defaultText(payment.Provider, emptyValue),
		PaymentStatusLabel(payment.Status),
		FormatDateTime(payment.CreatedAt),
		FormatDateTime(payment.UpdatedAt),
		defaultText(payment.ExternalPaymentID, emptyValue),
	)
}

// PaymentStatusLabel is also what the recheck button carries.
func PaymentStatusLabel(status string) string {
	return defaultText(status, emptyValue)
}

func baseName(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	return filepath.Base(trimmed)
}

func defaultText(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
