package repository

import (
	"fmt"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/jmoiron/sqlx"
)

// SettingsRepository обеспечивает доступ к единственной записи настроек бота.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository создает новый репозиторий настроек.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get возвращает запись настроек бота.
func (r *SettingsRepository) Get() (*model.BotSettings, error) {
	var s model.BotSettings
	err := r.db.Get(&s, "SELECT * FROM bot_settings ORDER BY id LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("не удалось получить настройки бота: %w", err)
	}
	return &s, nil
}

// Update сохраняет запись настроек бота.
func (r *SettingsRepository) Update(s *model.BotSettings) error {
	query := `UPDATE bot_settings SET welcome_message=$1, notify_chat_id=$2, admin_usernames=$3, bot_token=$4
	          WHERE id=$5`
	_, err := r.db.Exec(query, s.WelcomeMessage, s.NotifyChatID, s.AdminUsernames, s.BotToken, s.ID)
	if err != nil {
		return fmt.Errorf("не удалось сохранить настройки бота: %w", err)
	}
	return nil
}
