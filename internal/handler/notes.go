package handler

import (
	"net/http"
	"strconv"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/gin-gonic/gin"
)

type createNoteRequest struct {
	ReceiverID int    `json:"receiverId" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Category   string `json:"category"`
	Content    string `json:"content" binding:"required"`
}

type patchNoteRequest struct {
	IsRead *bool `json:"isRead"`
}

// ListNotes обработчик для GET /api/notes. По умолчанию возвращаются
// заметки текущего сотрудника; ?all=1 доступно администратору.
func (h *Handler) ListNotes(c *gin.Context) {
	user := currentUser(c)
	if c.Query("all") == "1" && isAdmin(user) {
		notes, err := h.NoteService.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить заметки"})
			return
		}
		c.JSON(http.StatusOK, notes)
		return
	}
	notes, err := h.NoteService.ListByReceiver(user.ID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить заметки"})
		return
	}
	c.JSON(http.StatusOK, notes)
}

// CreateNote обработчик для POST /api/notes. Получателю, привязанному
// к чату, отправляется уведомление.
func (h *Handler) CreateNote(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите получателя, заголовок и содержимое"})
		return
	}
	note := &model.SecureNote{
		SenderID:   currentUser(c).ID,
		ReceiverID: req.ReceiverID,
		Title:      req.Title,
		Category:   req.Category,
		Content:    req.Content,
	}
	id, err := h.NoteService.Create(note)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	note.ID = id
	c.JSON(http.StatusCreated, note)
}

// PatchNote обработчик для PATCH /api/notes/:id - выставляет флаг прочтения.
// Повторная отметка безвредна.
func (h *Handler) PatchNote(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	var req patchNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsRead == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите поле isRead"})
		return
	}
	if !*req.IsRead {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Снять отметку о прочтении нельзя"})
		return
	}
	if err := h.NoteService.MarkRead(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Заметка не найдена"})
		return
	}
	note, err := h.NoteService.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить заметку"})
		return
	}
	c.JSON(http.StatusOK, note)
}
