package ui

import "fmt"

const (
	StartMessage       = "🛡 <b>Бот модерации жалоб</b>\n\nНажмите кнопку «📋 Жалобы», чтобы получить список новых обращений."
	NoAccessMessage    = "❌ У вас нет доступа к этому боту"
	NoAccessAlert      = "❌ Нет доступа"
	MenuHintMessage    = "Используйте кнопки меню: «📋 Жалобы» или «👤 Пользователь»."
	LookupPrompt       = "Введите user_id или @username, чтобы посмотреть баланс пользователя."
	LookupNotFound     = "❌ Пользователь не найден. Проверьте введённый ID или username."
	LookupFailed       = "❌ Не удалось выполнить поиск. Попробуйте позже."
	SourcePhotoCaption = "🖼 <b>Исходное фото</b>"

	AckComplaintError     = "❌ Ошибка обработки жалобы"
	AckComplaintNotFound  = "❌ Жалоба не найдена"
	AckComplaintDecided   = "ℹ️ Статус жалобы уже установлен"
	AckInvalidID          = "❌ Некорректный ID"
	AckInvalidData        = "❌ Некорректные данные"
	AckNoComplaints       = "📋 Жалоб пока нет"
	AckNoGenerations      = "🎬 У пользователя нет завершённых генераций."
	AckNoResendResults    = "🔄 У пользователя нет доступных результатов для переотправки."
	AckNoPayments         = "💳 У пользователя пока нет платежей."
	AckGenerationNotFound = "❌ Генерация не найдена"
	AckUserMismatch       = "⚠️ Пользователь не совпадает"
	AckFileNotFound       = "⚠️ Файл не найден"
	AckResendDone         = "✅ Результат отправлен"
	AckResendFailed       = "❌ Не удалось отправить результат"
	AckReserveCleared     = "✅ Резерв очищен"
	AckPaymentCompleted   = "✅ Платеж уже completed"
	AckPaymentPending     = "🔄 Статус изменён на pending"
	AckPaymentFailed      = "❌ Не удалось обновить статус"
	AckTemporaryFailure   = "❌ Ошибка, попробуйте позже"

	PaymentsHeader = "💳 <b>Платежи пользователя</b>"
)

func ComplaintsShown(n int) string {
	return fmt.Sprintf("📋 Показано %d жалоб", n)
}

func GenerationsShown(n int) string {
	return fmt.Sprintf("🎬 Показано %d генераций", n)
}

func ResendShown(n int) string {
	return fmt.Sprintf("🔄 Показано %d результатов", n)
}

func PaymentsShown(n int) string {
	return fmt.Sprintf("💳 Показано %d платежей", n)
}

func VideoMissingNotice(path string) string {
	return fmt.Sprintf("⚠️ <b>Видео не найдено:</b> %s", path)
}

func PhotoMissingNotice(path string) string {
	return fmt.Sprintf("⚠️ <b>Исходное фото недоступно:</b> %s", path)
}

func GenerationFileMissingNotice(path string) string {
	return fmt.Sprintf("⚠️ <b>Файл генерации не найден:</b> %s", defaultText(path, "—"))
}
