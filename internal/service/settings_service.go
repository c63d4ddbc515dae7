package service

import (
	"log/slog"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/repository"
)

// Restarter пересоздает соединение диспетчера уведомлений.
type Restarter interface {
	Restart(token string) error
}

// SettingsService содержит бизнес-логику настроек бота.
// Смена токена пересоздает соединение диспетчера уведомлений.
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	restarter    Restarter
	log          *slog.Logger
}

// NewSettingsService создает новый сервис настроек.
func NewSettingsService(settingsRepo *repository.SettingsRepository, restarter Restarter, log *slog.Logger) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo, restarter: restarter, log: log}
}

// Get возвращает запись настроек бота.
func (s *SettingsService) Get() (*model.BotSettings, error) {
	return s.settingsRepo.Get()
}

// Update сохраняет настройки. Если токен бота изменился, соединение
// диспетчера уведомлений пересоздается с новым токеном.
func (s *SettingsService) Update(settings *model.BotSettings) error {
	prior, err := s.settingsRepo.Get()
	if err != nil {
		return err
	}
	if err := s.settingsRepo.Update(settings); err != nil {
		return err
	}
	if s.restarter != nil && settings.BotToken != prior.BotToken {
		if err := s.restarter.Restart(settings.BotToken); err != nil {
			s.log.Warn("не удалось перезапустить диспетчер уведомлений", slog.String("error", err.Error()))
		}
	}
	return nil
}
