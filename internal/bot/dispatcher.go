package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender отправляет сообщения в чат. Реализуется tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// roleLabels - подписи кнопок выбора должности при регистрации.
var roleLabels = map[string]string{
	"Системный администратор": model.RoleSysadmin,
	"Бухгалтер":               model.RoleAccountant,
	"Менеджер":                model.RoleManager,
	"Сотрудник":               model.RoleEmployee,
}

const helpText = `Доступные команды:
/start - регистрация и приветствие
/inventory - оборудование, закрепленное за вами
/inventory_number <номер> - карточка оборудования по инвентарному номеру
/inventory_user <username> - оборудование сотрудника
/tasks - ваши задачи
/new_task <заголовок> | <описание> - новая задача
/passwords - ваши непрочитанные доступы
/password <id> - показать доступ и отметить прочитанным
/send_password <username> <заголовок> | <текст> - передать доступ
/logout - выйти из учета
/help - эта справка`

// Dispatcher обрабатывает входящие сообщения бота: одна команда на
// сообщение, без состояния между сообщениями. Единственный многошаговый
// сценарий - выбор должности после /start у незарегистрированного
// сотрудника; ожидание хранится в памяти до его ответа.
type Dispatcher struct {
	sender    Sender
	auth      *service.AuthService
	users     *service.UserService
	access    *service.AccessService
	equipment *service.EquipmentService
	tasks     *service.TaskService
	notes     *service.NoteService
	settings  *service.SettingsService
	log       *slog.Logger

	mu          sync.Mutex
	pendingRole map[int64]int // TelegramID -> id сотрудника, ожидающего выбор должности
}

// NewDispatcher создает новый обработчик команд бота.
func NewDispatcher(sender Sender, auth *service.AuthService, users *service.UserService,
	access *service.AccessService, equipment *service.EquipmentService,
	tasks *service.TaskService, notes *service.NoteService,
	settings *service.SettingsService, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		auth:        auth,
		users:       users,
		access:      access,
		equipment:   equipment,
		tasks:       tasks,
		notes:       notes,
		settings:    settings,
		log:         log,
		pendingRole: make(map[int64]int),
	}
}

// HandleUpdate обрабатывает одно входящее обновление.
func (d *Dispatcher) HandleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	chatID := msg.Chat.ID
	tgID := msg.From.ID

	if msg.IsCommand() {
		d.handleCommand(msg, chatID, tgID)
		return
	}

	// Ответ на клавиатуру выбора должности
	d.mu.Lock()
	userID, waiting := d.pendingRole[tgID]
	d.mu.Unlock()
	if waiting {
		d.finishRegistration(chatID, tgID, userID, strings.TrimSpace(msg.Text))
		return
	}

	d.reply(chatID, "Не понимаю. Список команд: /help")
}

func (d *Dispatcher) handleCommand(msg *tgbotapi.Message, chatID, tgID int64) {
	fullName := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)

	switch msg.Command() {
	case "start":
		user, err := d.auth.AuthUser(tgID, msg.From.UserName, fullName)
		if err != nil {
			d.reply(chatID, "Ошибка авторизации. Попробуйте позже.")
			return
		}
		welcome := "Добро пожаловать!"
		if s, err := d.settings.Get(); err == nil && s.WelcomeMessage != "" {
			welcome = s.WelcomeMessage
		}
		if user.IsRegistered {
			d.reply(chatID, fmt.Sprintf("%s\nВы уже зарегистрированы, %s. Справка: /help", welcome, user.FullName))
			return
		}
		d.mu.Lock()
		d.pendingRole[tgID] = user.ID
		d.mu.Unlock()
		d.sendRoleKeyboard(chatID, welcome)

	case "help":
		d.reply(chatID, helpText)

	case "inventory":
		user := d.registeredUser(chatID, msg)
		if user == nil || !d.requireAccess(chatID, user, model.CategoryEquipment) {
			return
		}
		items, err := d.equipment.Search("", user.ID, "")
		if err != nil {
			d.reply(chatID, "Не удалось получить оборудование.")
			return
		}
		if len(items) == 0 {
			d.reply(chatID, "За вами не закреплено оборудование.")
			return
		}
		d.reply(chatID, formatEquipmentList("Ваше оборудование:", items))

	case "inventory_number":
		user := d.registeredUser(chatID, msg)
		if user == nil || !d.requireAccess(chatID, user, model.CategoryEquipment) {
			return
		}
		number := strings.TrimSpace(msg.CommandArguments())
		if number == "" {
			d.reply(chatID, "Используйте: /inventory_number <инвентарный номер>")
			return
		}
		eq, err := d.equipment.GetByInventoryNumber(number)
		if err != nil {
			d.reply(chatID, "Оборудование с таким номером не найдено.")
			return
		}
		d.reply(chatID, d.formatEquipmentCard(eq))

	case "inventory_user":
		user := d.registeredUser(chatID, msg)
		if user == nil || !d.requireAccess(chatID, user, model.CategoryEquipment) {
			return
		}
		username := strings.TrimPrefix(strings.TrimSpace(msg.CommandArguments()), "@")
		if username == "" {
			d.reply(chatID, "Используйте: /inventory_user <username>")
			return
		}
		owner, err := d.users.GetByUsername(username)
		if err != nil {
			d.reply(chatID, "Сотрудник не найден.")
			return
		}
		items, err := d.equipment.Search("", owner.ID, "")
		if err != nil || len(items) == 0 {
			d.reply(chatID, "За сотрудником не закреплено оборудование.")
			return
		}
		d.reply(chatID, formatEquipmentList(fmt.Sprintf("Оборудование %s:", owner.FullName), items))

	case "tasks":
		user := d.registeredUser(chatID, msg)
		if user == nil || !d.requireAccess(chatID, user, model.CategoryTasks) {
			return
		}
		tasks, err := d.tasks.ListByUser(user.ID)
		if err != nil {
			d.reply(chatID, "Не удалось получить задачи.")
			return
		}
		if len(tasks) == 0 {
			d.reply(chatID, "У вас нет задач.")
			return
		}
		var b strings.Builder
		b.WriteString("Ваши задачи:\n")
		for _, t := range tasks {
			fmt.Fprintf(&b, "#%d [%s] %s\n", t.ID, t.Status, t.Title)
		}
		d.reply(chatID, b.String())

	case "new_task":
		user := d.registeredUser(chatID, msg)
		if user == nil || !d.requireAccess(chatID, user, model.CategoryTasks) {
			return
		}
		title, description := splitArgs(msg.CommandArguments())
		if title == "" {
			d.reply(chatID, "Используйте: /new_task <заголовок> | <описание>")
			return
		}
		task := &model.Task{Title: title, Description: description, CreatedBy: user.ID}
		id, err := d.tasks.Create(task)
		if err != nil {
			d.reply(chatID, "Не удалось создать задачу.")
			return
		}
		d.reply(chatID, fmt.Sprintf("Задача #%d создана.", id))

	case "passwords":
		user := d.registeredUser(chatID, msg)
		if user == nil || !d.requireAccess(chatID, user, model.CategoryPasswords) {
			return
		}
		notes, err := d.notes.ListByReceiver(user.ID, true)
		if err != nil {
			d.reply(chatID, "Не удалось получить доступы.")
			return
		}
		if len(notes) == 0 {
			d.reply(chatID, "Непрочитанных доступов нет.")
			return
		}
		var b strings.Builder
		b.WriteString("Непрочитанные доступы:\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "#%d %s\n", n.ID, n.Title)
		}
		b.WriteString("Откройте командой /password <id>")
		d.reply(chatID, b.String())

	case "password":
		user := d.registeredUser(chatID, msg)
		if user == nil || !d.requireAccess(chatID, user, model.CategoryPasswords) {
			return
		}
		var id int
		if _, err := fmt.Sscanf(strings.TrimSpace(msg.CommandArguments()), "%d", &id); err != nil {
			d.reply(chatID, "Используйте: /password <id>")
			return
		}
		note, err := d.notes.GetByID(id)
		if err != nil || note.ReceiverID != user.ID {
			d.reply(chatID, "Доступ не найден.")
			return
		}
		if err := d.notes.MarkRead(id); err != nil {
			d.log.Warn("не удалось отметить доступ прочитанным", slog.Int("note_id", id))
		}
		d.reply(chatID, fmt.Sprintf("%s\n%s", note.Title, note.Content))

	case "send_password":
		user := d.registeredUser(chatID, msg)
		if user == nil || !d.requireAccess(chatID, user, model.CategoryPasswords) {
			return
		}
		args := strings.TrimSpace(msg.CommandArguments())
		parts := strings.SplitN(args, " ", 2)
		if len(parts) < 2 {
			d.reply(chatID, "Используйте: /send_password <username> <заголовок> | <текст>")
			return
		}
		receiver, err := d.users.GetByUsername(strings.TrimPrefix(parts[0], "@"))
		if err != nil {
			d.reply(chatID, "Получатель не найден.")
			return
		}
		title, content := splitArgs(parts[1])
		if title == "" || content == "" {
			d.reply(chatID, "Используйте: /send_password <username> <заголовок> | <текст>")
			return
		}
		note := &model.SecureNote{SenderID: user.ID, ReceiverID: receiver.ID, Title: title, Content: content}
		if _, err := d.notes.Create(note); err != nil {
			d.reply(chatID, "Не удалось передать доступ.")
			return
		}
		d.reply(chatID, "Доступ передан.")

	case "logout", "exit":
		user, err := d.auth.AuthUser(tgID, msg.From.UserName, fullName)
		if err != nil || !user.IsRegistered {
			d.reply(chatID, "Вы не зарегистрированы.")
			return
		}
		if err := d.users.Logout(user.ID); err != nil {
			d.reply(chatID, "Не удалось выйти из учета.")
			return
		}
		d.reply(chatID, "Вы вышли из учета. Вернуться: /start")

	default:
		d.reply(chatID, "Неизвестная команда. Справка: /help")
	}
}

// finishRegistration завершает регистрацию: текст сообщения трактуется
// как выбранная должность с клавиатуры.
func (d *Dispatcher) finishRegistration(chatID, tgID int64, userID int, label string) {
	role, ok := roleLabels[label]
	if !ok {
		d.sendRoleKeyboard(chatID, "Выберите должность кнопкой на клавиатуре.")
		return
	}
	if err := d.users.CompleteRegistration(userID, role); err != nil {
		d.reply(chatID, "Не удалось завершить регистрацию. Попробуйте /start еще раз.")
		return
	}
	d.mu.Lock()
	delete(d.pendingRole, tgID)
	d.mu.Unlock()

	reply := tgbotapi.NewMessage(chatID, "Регистрация завершена. Справка: /help")
	reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := d.sender.Send(reply); err != nil {
		d.log.Warn("не удалось отправить сообщение", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

// registeredUser возвращает зарегистрированного сотрудника по TelegramID
// или nil, отправив подсказку про /start.
func (d *Dispatcher) registeredUser(chatID int64, msg *tgbotapi.Message) *model.User {
	fullName := strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	user, err := d.auth.AuthUser(msg.From.ID, msg.From.UserName, fullName)
	if err != nil {
		d.reply(chatID, "Ошибка авторизации. Попробуйте позже.")
		return nil
	}
	if !user.IsRegistered {
		d.reply(chatID, "Сначала зарегистрируйтесь: /start")
		return nil
	}
	return user
}

// requireAccess проверяет право сотрудника на категорию. Роль admin
// в боте привилегий не дает.
func (d *Dispatcher) requireAccess(chatID int64, user *model.User, category string) bool {
	allowed, err := d.access.HasAccess(user.ID, category)
	if err != nil {
		d.reply(chatID, "Не удалось проверить права.")
		return false
	}
	if !allowed {
		d.reply(chatID, "У вас нет доступа к этому разделу.")
		return false
	}
	return true
}

func (d *Dispatcher) sendRoleKeyboard(chatID int64, text string) {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Системный администратор")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Бухгалтер")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Менеджер")),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Сотрудник")),
	}
	msg := tgbotapi.NewMessage(chatID, text+"\nВыберите вашу должность:")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(rows...)
	if _, err := d.sender.Send(msg); err != nil {
		d.log.Warn("не удалось отправить клавиатуру", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) reply(chatID int64, text string) {
	if _, err := d.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		d.log.Warn("не удалось отправить сообщение", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}

// formatEquipmentCard собирает карточку единицы оборудования.
func (d *Dispatcher) formatEquipmentCard(eq *model.Equipment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "№ %s - %s\nСтатус: %s\n", eq.InventoryNumber, eq.Name, eq.Status)
	if eq.EqType != "" {
		fmt.Fprintf(&b, "Тип: %s\n", eq.EqType)
	}
	if eq.Location != "" {
		fmt.Fprintf(&b, "Расположение: %s\n", eq.Location)
	}
	if eq.AssignedTo != nil {
		if owner, err := d.users.GetByID(*eq.AssignedTo); err == nil {
			fmt.Fprintf(&b, "Закреплено за: %s\n", owner.FullName)
		}
	} else {
		b.WriteString("На складе\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatEquipmentList(header string, items []model.Equipment) string {
	var b strings.Builder
	b.WriteString(header + "\n")
	for _, eq := range items {
		fmt.Fprintf(&b, "№ %s - %s (%s)\n", eq.InventoryNumber, eq.Name, eq.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// splitArgs делит аргументы команды по "|" на заголовок и остальной текст.
func splitArgs(args string) (string, string) {
	parts := strings.SplitN(args, "|", 2)
	title := strings.TrimSpace(parts[0])
	rest := ""
	if len(parts) == 2 {
		rest = strings.TrimSpace(parts[1])
	}
	return title, rest
}
