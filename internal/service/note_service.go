package service

import (
	"fmt"
	"log/slog"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/notify"
	"github.com/KarlovS28/botgotoviy/internal/repository"
)

// NoteService содержит бизнес-логику заметок с учетными данными.
// Получателю новой заметки отправляется уведомление в чат.
type NoteService struct {
	noteRepo *repository.NoteRepository
	userRepo *repository.UserRepository
	notifier notify.Notifier
	log      *slog.Logger
}

// NewNoteService создает новый сервис заметок.
func NewNoteService(noteRepo *repository.NoteRepository, userRepo *repository.UserRepository,
	notifier notify.Notifier, log *slog.Logger) *NoteService {
	return &NoteService{noteRepo: noteRepo, userRepo: userRepo, notifier: notifier, log: log}
}

// Create сохраняет заметку и уведомляет получателя, если он привязан к чату.
func (s *NoteService) Create(note *model.SecureNote) (int, error) {
	if note.Title == "" || note.Content == "" {
		return 0, fmt.Errorf("у заметки должны быть заголовок и содержимое")
	}
	receiver, err := s.userRepo.GetByID(note.ReceiverID)
	if err != nil {
		return 0, fmt.Errorf("получатель не найден: %w", err)
	}
	id, err := s.noteRepo.Create(note)
	if err != nil {
		return 0, err
	}
	note.ID = id
	if receiver.TelegramID == nil {
		s.log.Debug("уведомление пропущено: получатель не привязан к чату", slog.Int("user_id", note.ReceiverID))
		return id, nil
	}
	s.notifier.Notify(*receiver.TelegramID,
		fmt.Sprintf("Вам передан доступ: %s. Откройте командой /password %d", note.Title, id))
	return id, nil
}

// GetByID возвращает заметку по ID.
func (s *NoteService) GetByID(id int) (*model.SecureNote, error) {
	return s.noteRepo.GetByID(id)
}

// List возвращает все заметки.
func (s *NoteService) List() ([]model.SecureNote, error) {
	return s.noteRepo.FindAll()
}

// ListByReceiver возвращает заметки, адресованные сотруднику.
func (s *NoteService) ListByReceiver(userID int, unreadOnly bool) ([]model.SecureNote, error) {
	return s.noteRepo.FindByReceiver(userID, unreadOnly)
}

// MarkRead выставляет флаг прочтения. Повторная отметка ничего не меняет
// и не порождает побочных эффектов.
func (s *NoteService) MarkRead(id int) error {
	if _, err := s.noteRepo.GetByID(id); err != nil {
		return fmt.Errorf("заметка не найдена: %w", err)
	}
	return s.noteRepo.MarkRead(id)
}
