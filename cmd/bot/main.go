package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/KarlovS28/botgotoviy/internal/bot"
	"github.com/KarlovS28/botgotoviy/internal/config"
	"github.com/KarlovS28/botgotoviy/internal/notify"
	"github.com/KarlovS28/botgotoviy/internal/repository"
	"github.com/KarlovS28/botgotoviy/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	service.MustValidateDefaults()

	db, err := sqlx.Connect("postgres", cfg.DB.DSN())
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	// Инициализация репозиториев и сервисов
	userRepo := repository.NewUserRepository(db)
	permRepo := repository.NewPermissionRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Токен берется из настроек в базе, иначе из конфигурации процесса
	token := cfg.BotToken
	if settings, err := settingsRepo.Get(); err == nil && settings.BotToken != "" {
		token = settings.BotToken
	}
	if token == "" {
		log.Fatal("Не указан токен бота (BOT_TOKEN)")
	}
	tgBot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal("Ошибка инициализации бота:", err)
	}
	logger.Info("запущен бот", slog.String("username", tgBot.Self.UserName))

	notifier := notify.NewTelegramNotifier(logger)
	if err := notifier.Restart(token); err != nil {
		logger.Warn("уведомления недоступны", slog.String("error", err.Error()))
	}

	accessService := service.NewAccessService(permRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, accessService)
	equipmentService := service.NewEquipmentService(equipmentRepo, userRepo)
	taskService := service.NewTaskService(taskRepo, userRepo, notifier, logger)
	noteService := service.NewNoteService(noteRepo, userRepo, notifier, logger)
	settingsService := service.NewSettingsService(settingsRepo, notifier, logger)

	dispatcher := bot.NewDispatcher(tgBot, authService, userService, accessService,
		equipmentService, taskService, noteService, settingsService, logger)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := tgBot.GetUpdatesChan(u)

	for update := range updates {
		dispatcher.HandleUpdate(update)
	}
}
