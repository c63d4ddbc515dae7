package handler

import (
	"net/http"
	"strconv"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	AssignedTo  int    `json:"assignedTo"`
}

type patchTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	AssignedTo  *int    `json:"assignedTo"` // 0 снимает назначение
}

type createCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListTasks обработчик для GET /api/tasks.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.TaskService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить задачи"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask обработчик для POST /api/tasks. Исполнителю, привязанному
// к чату, отправляется уведомление.
func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите заголовок задачи"})
		return
	}
	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		CreatedBy:   currentUser(c).ID,
	}
	if req.AssignedTo > 0 {
		assignee := req.AssignedTo
		task.AssignedTo = &assignee
	}
	id, err := h.TaskService.Create(task)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task.ID = id
	c.JSON(http.StatusCreated, task)
}

// PatchTask обработчик для PATCH /api/tasks/:id.
func (h *Handler) PatchTask(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	task, err := h.TaskService.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Задача не найдена"})
		return
	}
	var req patchTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное тело запроса"})
		return
	}
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo > 0 {
			assignee := *req.AssignedTo
			task.AssignedTo = &assignee
		} else {
			task.AssignedTo = nil
		}
	}
	if err := h.TaskService.Update(task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

// ListComments обработчик для GET /api/tasks/:id/comments.
func (h *Handler) ListComments(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	comments, err := h.TaskService.Comments(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить комментарии"})
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment обработчик для POST /api/tasks/:id/comments.
func (h *Handler) CreateComment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Комментарий не может быть пустым"})
		return
	}
	commentID, err := h.TaskService.AddComment(id, currentUser(c).ID, req.Content)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": commentID})
}
