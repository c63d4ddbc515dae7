package handler

import (
	"net/http"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/gin-gonic/gin"
)

const ctxUserKey = "currentUser"

// RequireSession проверяет cookie сессии и кладет текущего сотрудника
// в контекст запроса. Без действующей сессии запрос отклоняется.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Требуется вход в систему"})
			return
		}
		userID, ok := h.Sessions.UserID(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Сессия истекла"})
			return
		}
		user, err := h.UserService.GetByID(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Сотрудник не найден"})
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RequireAdmin пропускает только администраторов панели.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !isAdmin(user) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Доступно только администратору"})
			return
		}
		c.Next()
	}
}

// RequireCategory проверяет право текущего сотрудника на категорию.
// Администраторы панели проходят без проверки.
func (h *Handler) RequireCategory(category string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Требуется вход в систему"})
			return
		}
		if isAdmin(user) {
			c.Next()
			return
		}
		allowed, err := h.AccessService.HasAccess(user.ID, category)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Не удалось проверить права"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Нет доступа к разделу"})
			return
		}
		c.Next()
	}
}

// currentUser извлекает сотрудника, положенного в контекст RequireSession.
func currentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

// isAdmin определяет суперпользователя панели: флаг is_admin или роль admin.
func isAdmin(user *model.User) bool {
	return user.IsAdmin || user.Role == model.RoleAdmin
}
