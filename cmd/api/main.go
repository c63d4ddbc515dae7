package main

import (
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KarlovS28/botgotoviy/internal/config"
	"github.com/KarlovS28/botgotoviy/internal/handler"
	"github.com/KarlovS28/botgotoviy/internal/notify"
	"github.com/KarlovS28/botgotoviy/internal/repository"
	"github.com/KarlovS28/botgotoviy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL драйвер
)

const (
	envLocal = "local"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	// Таблица прав по умолчанию должна быть полной до старта
	service.MustValidateDefaults()

	db, err := sqlx.Connect("postgres", cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе данных: %v", err)
	}
	runMigrations(db, logger)

	// Инициализируем репозитории
	userRepo := repository.NewUserRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Диспетчер уведомлений: соединение принадлежит процессу и
	// пересоздается при смене токена в настройках
	notifier := notify.NewTelegramNotifier(logger)
	settingsService := service.NewSettingsService(settingsRepo, notifier, logger)
	if settings, err := settingsRepo.Get(); err == nil && settings.BotToken != "" {
		if err := notifier.Restart(settings.BotToken); err != nil {
			logger.Warn("уведомления недоступны", slog.String("error", err.Error()))
		}
	}

	// Инициализируем сервисы
	accessService := service.NewAccessService(permRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, accessService)
	equipmentService := service.NewEquipmentService(equipmentRepo, userRepo)
	taskService := service.NewTaskService(taskRepo, userRepo, notifier, logger)
	noteService := service.NewNoteService(noteRepo, userRepo, notifier, logger)

	// Создаем Handler и регистрируем маршруты
	sessions := handler.NewSessionStore(cfg.SessionTTL)
	h := handler.NewHandler(authService, userService, accessService,
		equipmentService, taskService, noteService, settingsService, sessions, logger)

	if cfg.Env == envProd {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	h.RegisterRoutes(router)

	// Health-check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	logger.Info("запуск HTTP-сервера", slog.String("port", cfg.HTTPPort))
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}

// runMigrations применяет sql-файлы из каталога migrations (если есть).
func runMigrations(db *sqlx.DB, logger *slog.Logger) {
	files, err := filepath.Glob("migrations/*.sql")
	if err != nil {
		return
	}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("миграция не прочитана", slog.String("file", file), slog.String("error", err.Error()))
			continue
		}
		if _, err := db.Exec(string(content)); err != nil {
			logger.Warn("миграция завершилась ошибкой", slog.String("file", file), slog.String("error", err.Error()))
			continue
		}
		logger.Info("миграция применена", slog.String("file", file))
	}
}

// setupLogger настраивает логгер под окружение: локально - текст с debug,
// в проде - json.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
