package model

// BotSettings представляет единственную запись настроек бота.
// NotifyChatID и AdminUsernames хранятся и редактируются через панель,
// но процессами пока не читаются - зарезервированы под служебный канал
// уведомлений и допуск администраторов по username.
type BotSettings struct {
	ID             int    `db:"id" json:"id"`
	WelcomeMessage string `db:"welcome_message" json:"welcomeMessage"`
	NotifyChatID   int64  `db:"notify_chat_id" json:"notifyChatId"`
	AdminUsernames string `db:"admin_usernames" json:"adminUsernames"`
	BotToken       string `db:"bot_token" json:"botToken"`
}
