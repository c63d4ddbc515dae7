package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type patchSettingsRequest struct {
	WelcomeMessage *string `json:"welcomeMessage"`
	NotifyChatID   *int64  `json:"notifyChatId"`
	AdminUsernames *string `json:"adminUsernames"`
	BotToken       *string `json:"botToken"`
}

// GetSettings обработчик для GET /api/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.SettingsService.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить настройки"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PatchSettings обработчик для PATCH /api/settings. Смена токена бота
// пересоздает соединение диспетчера уведомлений.
func (h *Handler) PatchSettings(c *gin.Context) {
	settings, err := h.SettingsService.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить настройки"})
		return
	}
	var req patchSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное тело запроса"})
		return
	}
	if req.WelcomeMessage != nil {
		settings.WelcomeMessage = *req.WelcomeMessage
	}
	if req.NotifyChatID != nil {
		settings.NotifyChatID = *req.NotifyChatID
	}
	if req.AdminUsernames != nil {
		settings.AdminUsernames = *req.AdminUsernames
	}
	if req.BotToken != nil {
		settings.BotToken = *req.BotToken
	}
	if err := h.SettingsService.Update(settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сохранить настройки"})
		return
	}
	c.JSON(http.StatusOK, settings)
}
