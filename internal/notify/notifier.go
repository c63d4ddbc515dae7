package notify

import (
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier отправляет сотруднику уведомление в чат.
// Доставка не гарантируется: ошибка логируется и не возвращается вызывающему.
type Notifier interface {
	Notify(chatID int64, text string)
}

// TelegramNotifier отправляет уведомления через Telegram Bot API.
// Соединение принадлежит процессу: создается при старте и пересоздается
// через Restart при смене токена в настройках.
type TelegramNotifier struct {
	mu  sync.Mutex
	bot *tgbotapi.BotAPI
	log *slog.Logger
}

// NewTelegramNotifier создает диспетчер уведомлений без активного соединения.
func NewTelegramNotifier(log *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{log: log}
}

// Restart закрывает текущее соединение и открывает новое с указанным токеном.
// Пустой токен оставляет диспетчер без соединения.
func (n *TelegramNotifier) Restart(token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bot = nil
	if token == "" {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("не удалось подключить бота для уведомлений: %w", err)
	}
	n.bot = bot
	n.log.Info("диспетчер уведомлений подключен", slog.String("bot", bot.Self.UserName))
	return nil
}

// Notify отправляет текст в указанный чат. Ошибки доставки и отсутствие
// соединения логируются и отбрасываются.
func (n *TelegramNotifier) Notify(chatID int64, text string) {
	n.mu.Lock()
	bot := n.bot
	n.mu.Unlock()
	if bot == nil {
		n.log.Warn("уведомление пропущено: бот не подключен", slog.Int64("chat_id", chatID))
		return
	}
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		n.log.Warn("не удалось доставить уведомление",
			slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
	}
}
