package service

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"testing"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/repository"

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

type fakeNotifier struct {
	chats []int64
	texts []string
}

func (f *fakeNotifier) Notify(chatID int64, text string) {
	f.chats = append(f.chats, chatID)
	f.texts = append(f.texts, text)
}

type env struct {
	db        *sqlx.DB
	userRepo  *repository.UserRepository
	access    *AccessService
	auth      *AuthService
	users     *UserService
	equipment *EquipmentService
	tasks     *TaskService
	notes     *NoteService
	notifier  *fakeNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.MustExec(testSchema)

	log := slog.Default()
	notifier := &fakeNotifier{}
	userRepo := repository.NewUserRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	access := NewAccessService(permRepo)
	return &env{
		db:        db,
		userRepo:  userRepo,
		access:    access,
		auth:      NewAuthService(userRepo),
		users:     NewUserService(userRepo, access),
		equipment: NewEquipmentService(equipmentRepo, userRepo),
		tasks:     NewTaskService(taskRepo, userRepo, notifier, log),
		notes:     NewNoteService(noteRepo, userRepo, notifier, log),
		notifier:  notifier,
	}
}

func (e *env) createUser(t *testing.T, username, role string, telegramID int64) *model.User {
	t.Helper()
	user := &model.User{Username: username, FullName: username, Role: role, IsRegistered: true}
	if telegramID != 0 {
		user.TelegramID = &telegramID
	}
	id, err := e.userRepo.Create(user)
	require.NoError(t, err)
	user.ID = id
	return user
}

func TestMustValidateDefaults(t *testing.T) {
	assert.NotPanics(t, MustValidateDefaults)
}

func TestDefaultsForCoversEveryRole(t *testing.T) {
	for _, role := range model.Roles {
		defaults := DefaultsFor(role)
		for _, cat := range model.Categories {
			_, ok := defaults[cat]
			assert.True(t, ok, "роль %s, категория %s", role, cat)
		}
	}
}

func TestRegistrationAppliesRoleDefaults(t *testing.T) {
	cases := []struct {
		role string
		want map[string]bool
	}{
		{model.RoleSysadmin, map[string]bool{"equipment": true, "passwords": true, "tasks": true}},
		{model.RoleAccountant, map[string]bool{"equipment": true, "passwords": false, "tasks": false}},
		{model.RoleManager, map[string]bool{"equipment": false, "passwords": true, "tasks": true}},
		{model.RoleEmployee, map[string]bool{"equipment": false, "passwords": false, "tasks": true}},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			e := newEnv(t)
			user := e.createUser(t, "user_"+tc.role, model.RoleEmployee, 0)
			require.NoError(t, e.users.CompleteRegistration(user.ID, tc.role))

			for cat, want := range tc.want {
				got, err := e.access.HasAccess(user.ID, cat)
				require.NoError(t, err)
				assert.Equal(t, want, got, "категория %s", cat)
			}
		})
	}
}

func TestHasAccessReflectsLatestWrite(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "ivanov", model.RoleEmployee, 0)

	got, err := e.access.HasAccess(user.ID, model.CategoryEquipment)
	require.NoError(t, err)
	assert.False(t, got, "без записи доступ запрещен")

	require.NoError(t, e.access.SetPermissions(user.ID, map[string]bool{model.CategoryEquipment: true}))
	got, err = e.access.HasAccess(user.ID, model.CategoryEquipment)
	require.NoError(t, err)
	assert.True(t, got)

	require.NoError(t, e.access.SetPermissions(user.ID, map[string]bool{model.CategoryEquipment: false}))
	got, err = e.access.HasAccess(user.ID, model.CategoryEquipment)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestSetPermissionsRejectsUnknownCategory(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "ivanov", model.RoleEmployee, 0)
	err := e.access.SetPermissions(user.ID, map[string]bool{"printers": true})
	assert.Error(t, err)
}

// Сценарий из жизни: менеджер регистрируется, получает ноутбук,
// потом возвращает его на склад.
func TestEquipmentLifecycleHistory(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser(t, "admin", model.RoleAdmin, 0)
	manager := e.createUser(t, "manager", model.RoleEmployee, 0)
	require.NoError(t, e.users.CompleteRegistration(manager.ID, model.RoleManager))

	got, err := e.access.HasAccess(manager.ID, model.CategoryEquipment)
	require.NoError(t, err)
	assert.False(t, got)
	got, err = e.access.HasAccess(manager.ID, model.CategoryPasswords)
	require.NoError(t, err)
	assert.True(t, got)
	got, err = e.access.HasAccess(manager.ID, model.CategoryTasks)
	require.NoError(t, err)
	assert.True(t, got)

	eq := &model.Equipment{
		InventoryNumber: "INV-500",
		Name:            "Ноутбук Dell",
		Status:          model.EquipmentActive,
		AssignedTo:      &manager.ID,
	}
	id, err := e.equipment.Create(eq, admin.ID)
	require.NoError(t, err)

	history, err := e.equipment.History(id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Журнал отдается от новых записей к старым
	assert.Equal(t, "Выдано: manager", history[0].Action)
	assert.Equal(t, "Создано", history[1].Action)

	// Возврат на склад - ровно одна новая запись
	eq.AssignedTo = nil
	require.NoError(t, e.equipment.Update(eq, admin.ID))
	history, err = e.equipment.History(id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Возвращено на склад", history[0].Action)
}

func TestEquipmentStatusChangeAppendsOneRow(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser(t, "admin", model.RoleAdmin, 0)

	eq := &model.Equipment{InventoryNumber: "INV-600", Name: "Монитор", Status: model.EquipmentStorage}
	id, err := e.equipment.Create(eq, admin.ID)
	require.NoError(t, err)

	eq.Status = model.EquipmentRepair
	require.NoError(t, e.equipment.Update(eq, admin.ID))
	history, err := e.equipment.History(id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Смена статуса", history[0].Action)
	assert.Equal(t, "storage → repair", history[0].Details)

	// Запись того же статуса журнал не трогает
	require.NoError(t, e.equipment.Update(eq, admin.ID))
	history, err = e.equipment.History(id)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

// Запись оборудования и журнал атомарны: если журнал записать не удалось,
// не сохраняется ни запись, ни само изменение.
func TestEquipmentCreateRollsBackWhenHistoryFails(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser(t, "admin", model.RoleAdmin, 0)
	e.db.MustExec("DROP TABLE equipment_history")

	_, err := e.equipment.Create(&model.Equipment{
		InventoryNumber: "INV-700", Name: "Ноутбук", Status: model.EquipmentStorage,
	}, admin.ID)
	require.Error(t, err)

	_, err = e.equipment.GetByInventoryNumber("INV-700")
	assert.ErrorIs(t, err, sql.ErrNoRows, "оборудование без записи в журнале не ставится на учет")
}

func TestEquipmentUpdateRollsBackWhenHistoryFails(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser(t, "admin", model.RoleAdmin, 0)
	eq := &model.Equipment{InventoryNumber: "INV-701", Name: "Монитор", Status: model.EquipmentStorage}
	id, err := e.equipment.Create(eq, admin.ID)
	require.NoError(t, err)

	e.db.MustExec("DROP TABLE equipment_history")
	eq.Status = model.EquipmentRepair
	require.Error(t, e.equipment.Update(eq, admin.ID))

	got, err := e.equipment.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.EquipmentStorage, got.Status, "смена статуса без записи в журнале откатывается")
}

func TestEquipmentImportSkipsDuplicates(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser(t, "admin", model.RoleAdmin, 0)

	_, err := e.equipment.Create(&model.Equipment{InventoryNumber: "INV-1", Name: "Старый", Status: model.EquipmentStorage}, admin.ID)
	require.NoError(t, err)

	created, skipped, err := e.equipment.Import([]model.Equipment{
		{InventoryNumber: "INV-1", Name: "Дубль", Status: model.EquipmentStorage},
		{InventoryNumber: "INV-2", Name: "Новый", Status: model.EquipmentStorage},
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, skipped)
}

func TestTaskCreateNotifiesAssignee(t *testing.T) {
	e := newEnv(t)
	creator := e.createUser(t, "admin", model.RoleAdmin, 0)
	assignee := e.createUser(t, "ivanov", model.RoleEmployee, 777)

	task := &model.Task{
		Title:      "Поменять картридж",
		CreatedBy:  creator.ID,
		AssignedTo: &assignee.ID,
	}
	id, err := e.tasks.Create(task)
	require.NoError(t, err)
	assert.Positive(t, id)

	require.Len(t, e.notifier.chats, 1)
	assert.Equal(t, int64(777), e.notifier.chats[0])
	assert.Contains(t, e.notifier.texts[0], "Поменять картридж")
}

func TestTaskCreateWithoutChatSkipsNotification(t *testing.T) {
	e := newEnv(t)
	creator := e.createUser(t, "admin", model.RoleAdmin, 0)
	assignee := e.createUser(t, "ivanov", model.RoleEmployee, 0)

	_, err := e.tasks.Create(&model.Task{
		Title:      "Без чата",
		CreatedBy:  creator.ID,
		AssignedTo: &assignee.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, e.notifier.chats)
}

// Назначение на несуществующего сотрудника не валит создание задачи,
// но пропуск уведомления попадает в лог.
func TestTaskCreateWithMissingAssigneeLogsSkip(t *testing.T) {
	e := newEnv(t)
	creator := e.createUser(t, "admin", model.RoleAdmin, 0)

	var buf bytes.Buffer
	tasks := NewTaskService(repository.NewTaskRepository(e.db), e.userRepo, e.notifier,
		slog.New(slog.NewTextHandler(&buf, nil)))

	missing := 999
	_, err := tasks.Create(&model.Task{Title: "Ничья задача", CreatedBy: creator.ID, AssignedTo: &missing})
	require.NoError(t, err)

	assert.Empty(t, e.notifier.chats)
	assert.Contains(t, buf.String(), "исполнитель не найден")
}

func TestTaskReassignNotifiesNewAssignee(t *testing.T) {
	e := newEnv(t)
	creator := e.createUser(t, "admin", model.RoleAdmin, 0)
	first := e.createUser(t, "ivanov", model.RoleEmployee, 111)
	second := e.createUser(t, "petrov", model.RoleEmployee, 222)

	task := &model.Task{
		Title:      "Починить принтер",
		CreatedBy:  creator.ID,
		AssignedTo: &first.ID,
	}
	_, err := e.tasks.Create(task)
	require.NoError(t, err)

	task.AssignedTo = &second.ID
	require.NoError(t, e.tasks.Update(task))

	require.Len(t, e.notifier.chats, 2)
	assert.Equal(t, int64(222), e.notifier.chats[1])

	// Повторное сохранение без смены исполнителя уведомлений не шлет
	require.NoError(t, e.tasks.Update(task))
	assert.Len(t, e.notifier.chats, 2)
}

func TestNoteCreateNotifiesReceiver(t *testing.T) {
	e := newEnv(t)
	sender := e.createUser(t, "admin", model.RoleAdmin, 0)
	receiver := e.createUser(t, "ivanov", model.RoleEmployee, 555)

	id, err := e.notes.Create(&model.SecureNote{
		SenderID: sender.ID, ReceiverID: receiver.ID, Title: "wifi", Content: "secret",
	})
	require.NoError(t, err)

	require.Len(t, e.notifier.chats, 1)
	assert.Equal(t, int64(555), e.notifier.chats[0])
	assert.Contains(t, e.notifier.texts[0], fmt.Sprintf("/password %d", id))
}

func TestNoteMarkReadTwiceKeepsSingleEffect(t *testing.T) {
	e := newEnv(t)
	sender := e.createUser(t, "admin", model.RoleAdmin, 0)
	receiver := e.createUser(t, "ivanov", model.RoleEmployee, 555)

	id, err := e.notes.Create(&model.SecureNote{
		SenderID: sender.ID, ReceiverID: receiver.ID, Title: "wifi", Content: "secret",
	})
	require.NoError(t, err)

	require.NoError(t, e.notes.MarkRead(id))
	require.NoError(t, e.notes.MarkRead(id))

	note, err := e.notes.GetByID(id)
	require.NoError(t, err)
	assert.True(t, note.IsRead)
	assert.Empty(t, e.notifier.chats[1:], "повторное прочтение не порождает уведомлений")
}

func TestUserDeleteLeavesNoOrphans(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser(t, "admin", model.RoleAdmin, 0)
	victim := e.createUser(t, "ivanov", model.RoleEmployee, 0)
	require.NoError(t, e.users.CompleteRegistration(victim.ID, model.RoleEmployee))

	require.NoError(t, e.users.Delete(victim.ID, admin.ID))

	_, err := e.users.GetByID(victim.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	perms, err := e.access.ListPermissions(victim.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestChangeRoleRewritesDefaults(t *testing.T) {
	e := newEnv(t)
	user := e.createUser(t, "ivanov", model.RoleEmployee, 0)
	require.NoError(t, e.users.CompleteRegistration(user.ID, model.RoleEmployee))

	require.NoError(t, e.users.ChangeRole(user.ID, model.RoleAccountant))

	got, err := e.access.HasAccess(user.ID, model.CategoryEquipment)
	require.NoError(t, err)
	assert.True(t, got)
	got, err = e.access.HasAccess(user.ID, model.CategoryTasks)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestWebLogin(t *testing.T) {
	e := newEnv(t)
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	user := e.createUser(t, "admin", model.RoleAdmin, 0)
	require.NoError(t, e.userRepo.SetPasswordHash(user.ID, hash))

	got, err := e.auth.WebLogin("admin", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = e.auth.WebLogin("admin", "wrong")
	assert.Error(t, err)
	_, err = e.auth.WebLogin("nobody", "secret123")
	assert.Error(t, err)
}

type fakeRestarter struct {
	tokens []string
}

func (f *fakeRestarter) Restart(token string) error {
	f.tokens = append(f.tokens, token)
	return nil
}

func TestSettingsUpdateRestartsNotifierOnTokenChange(t *testing.T) {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.MustExec(testSchema)

	restarter := &fakeRestarter{}
	svc := NewSettingsService(repository.NewSettingsRepository(db), restarter, slog.Default())

	s, err := svc.Get()
	require.NoError(t, err)

	s.WelcomeMessage = "Привет"
	require.NoError(t, svc.Update(s))
	assert.Empty(t, restarter.tokens, "без смены токена перезапуск не нужен")

	s.BotToken = "new-token"
	require.NoError(t, svc.Update(s))
	assert.Equal(t, []string{"new-token"}, restarter.tokens)
}
