package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"moderator_bot/internal/config"
	"moderator_bot/internal/domain/enums"
	"moderator_bot/internal/domain/model"
	"moderator_bot/internal/infra/lock"
	"moderator_bot/internal/infra/media"
	"moderator_bot/internal/infra/telegram"
	pgrepo "moderator_bot/internal/repo/postgres"
	"moderator_bot/internal/services/access"
	"moderator_bot/internal/services/audit"
	"moderator_bot/internal/services/complaints"
	"moderator_bot/internal/services/lookup"
	"moderator_bot/internal/services/notify"
	"moderator_bot/internal/services/payments"
	"moderator_bot/internal/services/pricing"
	"moderator_bot/internal/services/reserve"
)

const moderatorID int64 = 900

type fakeDB struct {
	mu          sync.Mutex
	admins      map[int64]bool
	users       map[int64]model.User
	complaints  map[int64]model.Complaint
	tasks       map[int64]model.Task
	generations map[int64][]model.Generation
	payments    map[int64]model.Payment
	active      map[int64]bool
	bots        []model.BotRecord
	dispatched  []int64
	audits      []model.Audit
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		admins:      map[int64]bool{moderatorID: true},
		users:       map[int64]model.User{},
		complaints:  map[int64]model.Complaint{},
		tasks:       map[int64]model.Task{},
		generations: map[int64][]model.Generation{},
		payments:    map[int64]model.Payment{},
		active:      map[int64]bool{},
		bots:        []model.BotRecord{{ID: 1, Token: "user-bot-token", IsActive: true}},
	}
}

func (f *fakeDB) IsActiveAdmin(_ context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admins[userID], nil
}

func (f *fakeDB) ListActive(context.Context) ([]model.BotRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.BotRecord(nil), f.bots...), nil
}

func (f *fakeDB) ListByUser(_ context.Context, userID int64, limit int) ([]model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []model.Payment{}
	for _, payment := range f.payments {
		if payment.UserID == userID && len(result) < limit {
			result = append(result, payment)
		}
	}
	return result, nil
}

func (f *fakeDB) UpdateStatus(_ context.Context, paymentID int64, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return false, nil
	}
	payment.Status = status
	f.payments[paymentID] = payment
	return true, nil
}

func (f *fakeDB) Save(_ context.Context, entry model.Audit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, entry)
	return nil
}

func (f *fakeDB) ListRecent(_ context.Context, limit int) ([]model.Audit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.audits) < limit {
		limit = len(f.audits)
	}
	return append([]model.Audit(nil), f.audits[:limit]...), nil
}

func (f *fakeDB) user(id int64) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

func (f *fakeDB) complaint(id int64) model.Complaint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.complaints[id]
}

type fakeUsers struct{ *fakeDB }

func (f fakeUsers) GetByID(_ context.Context, userID int64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	normalized := strings.TrimPrefix(strings.TrimSpace(username), "@")
	for _, user := range f.users {
		if user.Username != "" && strings.EqualFold(user.Username, normalized) {
			return user, nil
		}
	}
	return model.User{}, pgrepo.ErrUserNotFound
}

func (f fakeUsers) HasActiveGenerations(_ context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[userID], nil
}

func (f fakeUsers) ResetReserved(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.users[userID]
	released := user.ReservedBalance
	user.ReservedBalance = 0
	f.users[userID] = user
	return released, nil
}

type fakeComplaints struct{ *fakeDB }

func (f fakeComplaints) GetByID(_ context.Context, complaintID int64) (model.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	complaint, ok := f.complaints[complaintID]
	if !ok {
		return model.Complaint{}, pgrepo.ErrComplaintNotFound
	}
	return complaint, nil
}

func (f fakeComplaints) ListPending(_ context.Context, _ bool, limit int) ([]model.Complaint, error) {
	return f.pending(0, limit), nil
}

func (f fakeComplaints) ListPendingByUser(_ context.Context, userID int64, limit int) ([]model.Complaint, error) {
	return f.pending(userID, limit), nil
}

func (f fakeComplaints) pending(userID int64, limit int) []model.Complaint {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []model.Complaint{}
	for id := int64(1); id <= 100 && len(result) < limit; id++ {
		complaint, ok := f.complaints[id]
		if !ok || complaint.Status != enums.ComplaintStatusPending {
			continue
		}
		if userID != 0 && complaint.UserID != userID {
			continue
		}
		result = append(result, complaint)
	}
	return result
}

func (f fakeComplaints) MarkDispatched(_ context.Context, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, ids...)
	return nil
}

func (f fakeComplaints) ApplyDecision(_ context.Context, write model.DecisionWrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	complaint, ok := f.complaints[write.ComplaintID]
	if !ok {
		return pgrepo.ErrComplaintNotFound
	}
	if write.RequirePending && complaint.Status.IsDecided() {
		return pgrepo.ErrComplaintAlreadyDecided
	}
	complaint.Status = write.Status
	f.complaints[write.ComplaintID] = complaint
	user := f.users[write.UserID]
	user.Balance += write.Delta
	f.users[write.UserID] = user
	return nil
}

type fakeGenerations struct{ *fakeDB }

func (f fakeGenerations) ListSuccessful(_ context.Context, userID int64, limit int) ([]model.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.generations[userID]
	if len(items) > limit {
		items = items[:limit]
	}
	return append([]model.Generation(nil), items...), nil
}

func (f fakeGenerations) GetTask(_ context.Context, taskID int64) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok {
		return model.Task{}, pgrepo.ErrTaskNotFound
	}
	return task, nil
}

func (f fakeGenerations) SubcategoryPricing(context.Context, int64) (model.SubcategoryPricing, error) {
	return model.SubcategoryPricing{}, pgrepo.ErrSubcategoryNotFound
}

type fakeMessenger struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	groups    []tgbotapi.MediaGroupConfig
	panicSend bool
}

func (m *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m.panicSend {
		panic("send exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, c)
	return tgbotapi.Message{MessageID: len(m.sent)}, nil
}

func (m *fakeMessenger) Request(c tgbotapi.Chattable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, c)
	return nil
}

func (m *fakeMessenger) SendMediaGroup(group tgbotapi.MediaGroupConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = append(m.groups, group)
	return nil
}

func (m *fakeMessenger) messages() []tgbotapi.MessageConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []tgbotapi.MessageConfig{}
	for _, c := range m.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			result = append(result, msg)
		}
	}
	return result
}

func (m *fakeMessenger) texts() []string {
	result := []string{}
	for _, msg := range m.messages() {
		result = append(result, msg.Text)
	}
	return result
}

func (m *fakeMessenger) videos() []tgbotapi.VideoConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []tgbotapi.VideoConfig{}
	for _, c := range m.sent {
		if video, ok := c.(tgbotapi.VideoConfig); ok {
			result = append(result, video)
		}
	}
	return result
}

func (m *fakeMessenger) answer(t *testing.T) tgbotapi.CallbackConfig {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.requests) - 1; i >= 0; i-- {
		if cb, ok := m.requests[i].(tgbotapi.CallbackConfig); ok {
			return cb
		}
	}
	t.Fatalf("callback was not answered")
	return tgbotapi.CallbackConfig{}
}

func (m *fakeMessenger) edits() []tgbotapi.EditMessageReplyMarkupConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []tgbotapi.EditMessageReplyMarkupConfig{}
	for _, c := range m.requests {
		if edit, ok := c.(tgbotapi.EditMessageReplyMarkupConfig); ok {
			result = append(result, edit)
		}
	}
	return result
}

type delivery struct {
	token  string
	chatID int64
	text   string
	media  media.Source
}

type fakeTransport struct {
	mu         sync.Mutex
	deliveries []delivery
	err        error
}

func (f *fakeTransport) SendText(token string, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deliveries = append(f.deliveries, delivery{token: token, chatID: chatID, text: text})
	return nil
}

func (f *fakeTransport) SendVideo(token string, chatID int64, source media.Source, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deliveries = append(f.deliveries, delivery{token: token, chatID: chatID, text: caption, media: source})
	return nil
}

var errDeliveryFailed = errors.New("delivery failed")

type testEnv struct {
	app       *App
	db        *fakeDB
	tg        *fakeMessenger
	transport *fakeTransport
	root      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newFakeDB()
	tg := &fakeMessenger{}
	transport := &fakeTransport{}
	root := t.TempDir()
	logger := zap.NewNop()
	locker := lock.NewKeyedMutex()
	resolver := media.NewResolver(root, "", nil, 0)

	cfg := config.Default()
	cfg.ProjectRoot = root

	a := &App{
		cfg:               cfg,
		logger:            logger,
		tg:                tg,
		media:             resolver,
		accessService:     access.NewService(db, logger),
		complaintsService: complaints.NewService(fakeComplaints{db}, pricing.NewService(fakeGenerations{db}, zap.NewNop()), locker, complaints.Options{}),
		reserveService:    reserve.NewService(fakeUsers{db}, locker, logger),
		lookupService:     lookup.NewService(fakeUsers{db}, fakeGenerations{db}, resolver),
		paymentsService:   payments.NewService(db),
		notifyService:     notify.NewService(db, transport, logger),
		auditService:      audit.NewService(db, true, logger),
		lookupInputByChat: make(map[int64]telegram.State),
	}
	a.router = NewRouter(a)

	return &testEnv{app: a, db: db, tg: tg, transport: transport, root: root}
}

// writeFile creates rel under the env root and returns its absolute path.
func (e *testEnv) writeFile(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(e.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func textMessage(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 10,
			From:      &tgbotapi.User{ID: from},
			Chat:      &tgbotapi.Chat{ID: from},
			Text:      text,
		},
	}
}

func commandMessage(from int64, command string) tgbotapi.Update {
	update := textMessage(from, "/"+command)
	update.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	return update
}

func callback(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: from},
			Message: &tgbotapi.Message{MessageID: 55, Chat: &tgbotapi.Chat{ID: from}},
			Data:    data,
		},
	}
}
