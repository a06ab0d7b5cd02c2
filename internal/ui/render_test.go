package ui

import (
	"strings"
	"testing"
	"time"

	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
)

func TestFormatDateTime(t *testing.T) {
	utc := time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)
	if got := FormatDateTime(&utc); got != "2024-03-02 01:30" {
		t.Fatalf("expected Moscow time, got %q", got)
	}

	local := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", -5*60*60))
	if got := FormatDateTime(&local); got != "2024-03-01 20:00" {
		t.Fatalf("expected offset-aware conversion, got %q", got)
	}

	if got := FormatDateTime(nil); got != "—" {
		t.Fatalf("expected dash for nil, got %q", got)
	}
}

func TestUsernameDisplay(t *testing.T) {
	if got := UsernameDisplay(&model.User{Username: "alice"}, 1); got != "@alice" {
		t.Fatalf("got %q", got)
	}
	if got := UsernameDisplay(&model.User{}, 42); got != "user_42" {
		t.Fatalf("got %q", got)
	}
	if got := UsernameDisplay(nil, 7); got != "user_7" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderComplaint(t *testing.T) {
	created := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	complaint := model.Complaint{
		ID:        15,
		UserID:    42,
		FilePath:  "videos/2024/15_result.mp4",
		Category:  "dance",
		BotHash:   "a1b2c3d4e5f6",
		CreatedAt: &created,
	}

	text := RenderComplaint(complaint, "@alice", true, HeaderNewComplaint)
	want := "📋 <b>Поступила жалоба #15</b>\n\n" +
		"👤 <b>Пользователь:</b> @alice (ID: 42)\n" +
		"📁 <b>Категория:</b> dance\n" +
		"🤖 <b>Бот:</b> a1b2c3d4e5f6\n" +
		"🕒 <b>Время:</b> 2024-05-10 12:00\n" +
		"🗂 <b>Файл:</b> 15_result.mp4\n"
	if text != want {
		t.Fatalf("unexpected render:\n%s\nwant:\n%s", text, want)
	}

	bare := RenderComplaint(model.Complaint{ID: 3, UserID: 9}, "user_9", false, HeaderUserComplaint)
	for _, fragment := range []string{"Жалоба #3", "👤 <b>Пользователь:</b> user_9\n", "Не указана", "🤖 <b>Бот:</b> Не указан", "🗂 <b>Файл:</b> Не указан", "🕒 <b>Время:</b> —"} {
		if !strings.Contains(bare, fragment) {
			t.Fatalf("expected %q in %q", fragment, bare)
		}
	}
}

func TestRenderUserInfo(t *testing.T) {
	text := RenderUserInfo(model.User{UserID: 100, Username: "Alice", Balance: -20, ReservedBalance: 150})
	for _, fragment := range []string{
		"🆔 <b>ID:</b> 100\n",
		"🔗 <b>Username:</b> @Alice\n",
		"🌐 <b>Язык:</b> —\n",
		"💰 <b>Баланс:</b> -20 кредитов\n",
		"⛔ <b>Зарезервировано:</b> 150 кредитов\n",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in %q", fragment, text)
		}
	}

	if !strings.Contains(RenderUserInfo(model.User{UserID: 1}), "🔗 <b>Username:</b> —\n") {
		t.Fatal("expected dash for missing username")
	}
}

func TestRenderResendCaption(t *testing.T) {
	subcategory := int64(12)
	text := RenderResendCaption(model.Generation{ID: 8, Category: "fx", SubcategoryID: &subcategory, Status: enums.GenerationStatusSuccess})
	for _, fragment := range []string{"#8</b>", "🧩 <b>Subcategory ID:</b> 12\n", "🤖 <b>Бот:</b> —\n"} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in %q", fragment, text)
		}
	}

	if got := RenderResendToUser(model.Task{ID: 8}); got != "🎬 <b>Переотправка результата #8</b>\n\n📁 <b>Категория:</b> —" {
		t.Fatalf("unexpected user caption %q", got)
	}
}

func TestRenderPayment(t *testing.T) {
	text := RenderPayment(model.Payment{ID: 5, Amount: 500, Provider: "yookassa", Status: "failed", ExternalPaymentID: "ext-1"})
	want := "• <b>#5</b> — 500 кредитов\n" +
		"  Провайдер: yookassa\n" +
		"  Статус: failed\n" +
		"  Создан: —\n" +
		"  Обновлён: —\n" +
		"  External ID: ext-1"
	if text != want {
		t.Fatalf("unexpected render:\n%s", text)
	}
}
