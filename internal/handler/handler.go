package handler

import (
	"log/slog"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler структурирует зависимости сервисов для обработки HTTP-запросов панели.
type Handler struct {
	AuthService      *service.AuthService
	UserService      *service.UserService
	AccessService    *service.AccessService
	EquipmentService *service.EquipmentService
	TaskService      *service.TaskService
	NoteService      *service.NoteService
	SettingsService  *service.SettingsService
	Sessions         *SessionStore
	Log              *slog.Logger
}

// NewHandler создает новый Handler с внедрением зависимостей (сервисов).
func NewHandler(as *service.AuthService, us *service.UserService, acs *service.AccessService,
	es *service.EquipmentService, ts *service.TaskService, ns *service.NoteService,
	ss *service.SettingsService, sessions *SessionStore, log *slog.Logger) *Handler {
	return &Handler{
		AuthService:      as,
		UserService:      us,
		AccessService:    acs,
		EquipmentService: es,
		TaskService:      ts,
		NoteService:      ns,
		SettingsService:  ss,
		Sessions:         sessions,
		Log:              log,
	}
}

// RegisterRoutes подключает маршруты панели к роутеру.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)

		authed := api.Group("", h.RequireSession())
		{
			authed.GET("/auth/me", h.Me)

			equipment := authed.Group("/equipment", h.RequireCategory(model.CategoryEquipment))
			{
				equipment.GET("", h.ListEquipment)
				equipment.POST("", h.CreateEquipment)
				equipment.PATCH("/:id", h.PatchEquipment)
				equipment.GET("/:id/history", h.EquipmentHistory)
				equipment.GET("/template", h.EquipmentTemplate)
				equipment.POST("/import", h.ImportEquipment)
			}

			users := authed.Group("/users", h.RequireAdmin())
			{
				users.GET("", h.ListUsers)
				users.PATCH("/:id", h.PatchUser)
				users.DELETE("/:id", h.DeleteUser)
				users.PUT("/:id/permissions", h.PutPermissions)
			}

			tasks := authed.Group("/tasks", h.RequireCategory(model.CategoryTasks))
			{
				tasks.GET("", h.ListTasks)
				tasks.POST("", h.CreateTask)
				tasks.PATCH("/:id", h.PatchTask)
				tasks.GET("/:id/comments", h.ListComments)
				tasks.POST("/:id/comments", h.CreateComment)
			}

			notes := authed.Group("/notes", h.RequireCategory(model.CategoryPasswords))
			{
				notes.GET("", h.ListNotes)
				notes.POST("", h.CreateNote)
				notes.PATCH("/:id", h.PatchNote)
			}

			settings := authed.Group("/settings", h.RequireAdmin())
			{
				settings.GET("", h.GetSettings)
				settings.PATCH("", h.PatchSettings)
			}
		}
	}
}
