package handler

import (
	"net/http"
	"strconv"

	"github.com/KarlovS28/botgotoviy/internal/service"

	"github.com/gin-gonic/gin"
)

type patchUserRequest struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
	IsAdmin  *bool   `json:"isAdmin"`
	Password *string `json:"password"`
}

// ListUsers обработчик для GET /api/users - возвращает всех сотрудников.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.UserService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить сотрудников"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// PatchUser обработчик для PATCH /api/users/:id. Смена роли перезаписывает
// права сотрудника набором по умолчанию для новой роли.
func (h *Handler) PatchUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	user, err := h.UserService.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сотрудник не найден"})
		return
	}
	var req patchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное тело запроса"})
		return
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if err := h.UserService.Update(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сохранить сотрудника"})
		return
	}
	if req.Role != nil && *req.Role != user.Role {
		if err := h.UserService.ChangeRole(id, *req.Role); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user.Role = *req.Role
	}
	if req.Password != nil && *req.Password != "" {
		if err := h.setPassword(id, *req.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сохранить пароль"})
			return
		}
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser обработчик для DELETE /api/users/:id - каскадное удаление.
// Закрепленное оборудование возвращается на склад, назначенные задачи
// снимаются с назначения; при ошибке не сохраняется ни одно изменение.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	if _, err := h.UserService.GetByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сотрудник не найден"})
		return
	}
	if err := h.UserService.Delete(id, currentUser(c).ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось удалить сотрудника"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PutPermissions обработчик для PUT /api/users/:id/permissions -
// записывает сотруднику произвольный набор прав по категориям.
func (h *Handler) PutPermissions(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный идентификатор"})
		return
	}
	if _, err := h.UserService.GetByID(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Сотрудник не найден"})
		return
	}
	var perms map[string]bool
	if err := c.ShouldBindJSON(&perms); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректное тело запроса"})
		return
	}
	if err := h.AccessService.SetPermissions(id, perms); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.AccessService.ListPermissions(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить права"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// setPassword хеширует и сохраняет пароль сотрудника для входа в панель.
func (h *Handler) setPassword(userID int, password string) error {
	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	return h.UserService.SetPasswordHash(userID, hash)
}
