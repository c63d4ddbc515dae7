package bot

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/repository"
	"github.com/KarlovS28/botgotoviy/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Схема для тестовой базы sqlite, повторяющая migrations/001_init.sql.
const testSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    telegram_id BIGINT,
    username TEXT NOT NULL DEFAULT '',
    full_name TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'employee',
    is_admin BOOLEAN NOT NULL DEFAULT 0,
    is_registered BOOLEAN NOT NULL DEFAULT 0,
    password_hash TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE permissions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    category TEXT NOT NULL,
    allowed BOOLEAN NOT NULL DEFAULT 0,
    UNIQUE (user_id, category)
);
CREATE TABLE equipment (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    inventory_number TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    eq_type TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'storage',
    assigned_to INTEGER,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE equipment_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    equipment_id INTEGER NOT NULL,
    actor_id INTEGER,
    action TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'new',
    created_by INTEGER NOT NULL,
    assigned_to INTEGER,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE task_comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id INTEGER NOT NULL,
    author_id INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE secure_notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sender_id INTEGER NOT NULL,
    receiver_id INTEGER NOT NULL,
    title TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE bot_settings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    welcome_message TEXT NOT NULL DEFAULT '',
    notify_chat_id BIGINT NOT NULL DEFAULT 0,
    admin_usernames TEXT NOT NULL DEFAULT '',
    bot_token TEXT NOT NULL DEFAULT ''
);
INSERT INTO bot_settings (welcome_message) VALUES ('Добро пожаловать!');
`

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) lastText() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Text
}

type botEnv struct {
	dispatcher *Dispatcher
	sender     *fakeSender
	db         *sqlx.DB
	users      *service.UserService
	access     *service.AccessService
	equipment  *service.EquipmentService
	notes      *service.NoteService
}

func newBotEnv(t *testing.T) *botEnv {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.MustExec(testSchema)

	log := slog.Default()
	sender := &fakeSender{}
	userRepo := repository.NewUserRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	access := service.NewAccessService(permRepo)
	auth := service.NewAuthService(userRepo)
	users := service.NewUserService(userRepo, access)
	equipment := service.NewEquipmentService(equipmentRepo, userRepo)
	tasks := service.NewTaskService(taskRepo, userRepo, nopNotifier{}, log)
	notes := service.NewNoteService(noteRepo, userRepo, nopNotifier{}, log)
	settings := service.NewSettingsService(settingsRepo, nil, log)

	dispatcher := NewDispatcher(sender, auth, users, access, equipment, tasks, notes, settings, log)
	return &botEnv{
		dispatcher: dispatcher,
		sender:     sender,
		db:         db,
		users:      users,
		access:     access,
		equipment:  equipment,
		notes:      notes,
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(chatID int64, text string) {}

// makeUpdate собирает входящее сообщение; команды получают entity,
// как их присылает Telegram.
func makeUpdate(tgID int64, username, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		Text: text,
		From: &tgbotapi.User{ID: tgID, UserName: username, FirstName: "Иван", LastName: "Иванов"},
		Chat: &tgbotapi.Chat{ID: tgID},
	}
	if strings.HasPrefix(text, "/") {
		length := len(text)
		if i := strings.Index(text, " "); i > 0 {
			length = i
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return tgbotapi.Update{Message: msg}
}

func (e *botEnv) send(tgID int64, username, text string) {
	e.dispatcher.HandleUpdate(makeUpdate(tgID, username, text))
}

// register проходит сценарий регистрации за сотрудника.
func (e *botEnv) register(t *testing.T, tgID int64, username, roleLabel string) *model.User {
	t.Helper()
	e.send(tgID, username, "/start")
	e.send(tgID, username, roleLabel)
	user, err := e.users.GetByUsername(username)
	require.NoError(t, err)
	require.True(t, user.IsRegistered)
	return user
}

func TestStartShowsRoleKeyboard(t *testing.T) {
	e := newBotEnv(t)
	e.send(100, "ivanov", "/start")

	require.NotEmpty(t, e.sender.sent)
	last := e.sender.sent[len(e.sender.sent)-1]
	assert.Contains(t, last.Text, "должность")
	_, hasKeyboard := last.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.True(t, hasKeyboard, "ожидается клавиатура выбора должности")
}

func TestRegistrationFlow(t *testing.T) {
	e := newBotEnv(t)
	user := e.register(t, 100, "ivanov", "Менеджер")
	assert.Equal(t, model.RoleManager, user.Role)
	assert.Contains(t, e.sender.lastText(), "Регистрация завершена")

	// Менеджер получает пароли и задачи, но не оборудование
	allowed, err := e.access.HasAccess(user.ID, model.CategoryPasswords)
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, err = e.access.HasAccess(user.ID, model.CategoryEquipment)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Повторный /start не начинает регистрацию заново
	e.send(100, "ivanov", "/start")
	assert.Contains(t, e.sender.lastText(), "уже зарегистрированы")
}

func TestUnknownRoleLabelReprompts(t *testing.T) {
	e := newBotEnv(t)
	e.send(100, "ivanov", "/start")
	e.send(100, "ivanov", "Директор")
	assert.Contains(t, e.sender.lastText(), "Выберите должность")

	user, err := e.users.GetByUsername("ivanov")
	require.NoError(t, err)
	assert.False(t, user.IsRegistered, "без ответа с клавиатуры регистрация не завершается")
}

func TestCommandsRequireRegistration(t *testing.T) {
	e := newBotEnv(t)
	e.send(200, "petrov", "/inventory")
	assert.Contains(t, e.sender.lastText(), "/start")
}

func TestAccessDeniedForRoleWithoutCategory(t *testing.T) {
	e := newBotEnv(t)
	e.register(t, 100, "ivanov", "Сотрудник")
	e.send(100, "ivanov", "/inventory")
	assert.Contains(t, e.sender.lastText(), "нет доступа")
}

func TestInventoryCommands(t *testing.T) {
	e := newBotEnv(t)
	user := e.register(t, 100, "ivanov", "Системный администратор")

	_, err := e.equipment.Create(&model.Equipment{
		InventoryNumber: "INV-1", Name: "Ноутбук", Status: model.EquipmentActive,
		AssignedTo: &user.ID,
	}, user.ID)
	require.NoError(t, err)

	e.send(100, "ivanov", "/inventory")
	assert.Contains(t, e.sender.lastText(), "INV-1")

	e.send(100, "ivanov", "/inventory_number INV-1")
	assert.Contains(t, e.sender.lastText(), "Ноутбук")

	e.send(100, "ivanov", "/inventory_user @ivanov")
	assert.Contains(t, e.sender.lastText(), "INV-1")

	e.send(100, "ivanov", "/inventory_number NO-SUCH")
	assert.Contains(t, e.sender.lastText(), "не найдено")
}

func TestTasksCommands(t *testing.T) {
	e := newBotEnv(t)
	e.register(t, 100, "ivanov", "Менеджер")

	e.send(100, "ivanov", "/new_task Починить принтер | Кабинет 12")
	assert.Contains(t, e.sender.lastText(), "создана")

	e.send(100, "ivanov", "/tasks")
	assert.Contains(t, e.sender.lastText(), "Починить принтер")
}

func TestSendAndReadPassword(t *testing.T) {
	e := newBotEnv(t)
	e.register(t, 100, "ivanov", "Системный администратор")
	e.register(t, 200, "petrov", "Менеджер")

	e.send(100, "ivanov", "/send_password petrov wifi | secret123")
	assert.Contains(t, e.sender.lastText(), "передан")

	e.send(200, "petrov", "/passwords")
	assert.Contains(t, e.sender.lastText(), "wifi")

	e.send(200, "petrov", "/password 1")
	assert.Contains(t, e.sender.lastText(), "secret123")

	// После прочтения список непрочитанных пуст
	e.send(200, "petrov", "/passwords")
	assert.Contains(t, e.sender.lastText(), "нет")
}

func TestPasswordOfAnotherReceiverHidden(t *testing.T) {
	e := newBotEnv(t)
	e.register(t, 100, "ivanov", "Системный администратор")
	e.register(t, 200, "petrov", "Менеджер")
	e.register(t, 300, "sidorov", "Менеджер")

	e.send(100, "ivanov", "/send_password petrov wifi | secret123")

	e.send(300, "sidorov", "/password 1")
	assert.Contains(t, e.sender.lastText(), "не найден")
}

func TestLogout(t *testing.T) {
	e := newBotEnv(t)
	e.register(t, 100, "ivanov", "Системный администратор")

	e.send(100, "ivanov", "/logout")
	assert.Contains(t, e.sender.lastText(), "вышли")

	e.send(100, "ivanov", "/inventory")
	assert.Contains(t, e.sender.lastText(), "/start")
}

func TestUnknownCommand(t *testing.T) {
	e := newBotEnv(t)
	e.send(100, "ivanov", "/weather")
	assert.Contains(t, e.sender.lastText(), "/help")
}
