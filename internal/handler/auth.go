package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login обработчик для POST /api/auth/login - вход в панель по паролю.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Укажите имя пользователя и пароль"})
		return
	}
	user, err := h.AuthService.WebLogin(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверное имя пользователя или пароль"})
		return
	}
	token := h.Sessions.Create(user.ID)
	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, user)
}

// Logout обработчик для POST /api/auth/logout - закрывает сессию.
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		h.Sessions.Delete(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Me обработчик для GET /api/auth/me - возвращает текущего сотрудника
// и его права по категориям.
func (h *Handler) Me(c *gin.Context) {
	user := currentUser(c)
	perms, err := h.AccessService.ListPermissions(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось получить права"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "permissions": perms})
}
