package service

import (
	"fmt"
	"log/slog"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/notify"
	"github.com/KarlovS28/botgotoviy/internal/repository"
)

// TaskService содержит бизнес-логику задач. Назначение задачи отправляет
// исполнителю уведомление в чат; запись в базе от доставки не зависит.
type TaskService struct {
	taskRepo *repository.TaskRepository
	userRepo *repository.UserRepository
	notifier notify.Notifier
	log      *slog.Logger
}

// NewTaskService создает новый сервис задач.
func NewTaskService(taskRepo *repository.TaskRepository, userRepo *repository.UserRepository,
	notifier notify.Notifier, log *slog.Logger) *TaskService {
	return &TaskService{taskRepo: taskRepo, userRepo: userRepo, notifier: notifier, log: log}
}

// Create создает задачу. Если указан исполнитель, после записи ему
// отправляется уведомление.
func (s *TaskService) Create(task *model.Task) (int, error) {
	if task.Title == "" {
		return 0, fmt.Errorf("у задачи должен быть заголовок")
	}
	if task.Status == "" {
		task.Status = model.TaskNew
	}
	if !model.ValidTaskStatus(task.Status) {
		return 0, fmt.Errorf("неизвестный статус задачи: %s", task.Status)
	}
	id, err := s.taskRepo.Create(task)
	if err != nil {
		return 0, err
	}
	task.ID = id
	if task.AssignedTo != nil {
		s.notifyAssignee(*task.AssignedTo, fmt.Sprintf("Вам назначена задача: %s", task.Title))
	}
	return id, nil
}

// Update сохраняет изменения задачи. Смена исполнителя отправляет
// уведомление новому исполнителю.
func (s *TaskService) Update(task *model.Task) error {
	prior, err := s.taskRepo.GetByID(task.ID)
	if err != nil {
		return fmt.Errorf("задача не найдена: %w", err)
	}
	if !model.ValidTaskStatus(task.Status) {
		return fmt.Errorf("неизвестный статус задачи: %s", task.Status)
	}
	if err := s.taskRepo.Update(task); err != nil {
		return err
	}
	if task.AssignedTo != nil && !sameAssignee(prior.AssignedTo, task.AssignedTo) {
		s.notifyAssignee(*task.AssignedTo, fmt.Sprintf("Вам назначена задача: %s", task.Title))
	}
	return nil
}

// GetByID возвращает задачу по ID.
func (s *TaskService) GetByID(id int) (*model.Task, error) {
	return s.taskRepo.GetByID(id)
}

// List возвращает все задачи.
func (s *TaskService) List() ([]model.Task, error) {
	return s.taskRepo.FindAll()
}

// ListByUser возвращает задачи сотрудника (назначенные на него или созданные им).
func (s *TaskService) ListByUser(userID int) ([]model.Task, error) {
	return s.taskRepo.FindByUser(userID)
}

// AddComment добавляет комментарий к задаче.
func (s *TaskService) AddComment(taskID, authorID int, content string) (int, error) {
	if content == "" {
		return 0, fmt.Errorf("комментарий не может быть пустым")
	}
	if _, err := s.taskRepo.GetByID(taskID); err != nil {
		return 0, fmt.Errorf("задача не найдена: %w", err)
	}
	return s.taskRepo.AddComment(&model.TaskComment{TaskID: taskID, AuthorID: authorID, Content: content})
}

// Comments возвращает комментарии задачи.
func (s *TaskService) Comments(taskID int) ([]model.TaskComment, error) {
	return s.taskRepo.GetComments(taskID)
}

// notifyAssignee отправляет уведомление сотруднику, если он привязан к чату.
func (s *TaskService) notifyAssignee(userID int, text string) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		s.log.Warn("уведомление пропущено: исполнитель не найден", slog.Int("user_id", userID))
		return
	}
	if user.TelegramID == nil {
		s.log.Debug("уведомление пропущено: исполнитель не привязан к чату", slog.Int("user_id", userID))
		return
	}
	s.notifier.Notify(*user.TelegramID, text)
}
