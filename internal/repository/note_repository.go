package repository

import (
	"fmt"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/jmoiron/sqlx"
)

// NoteRepository обеспечивает доступ к заметкам с учетными данными.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create сохраняет новую заметку. Возвращает ID созданной записи.
func (r *NoteRepository) Create(note *model.SecureNote) (int, error) {
	query := `INSERT INTO secure_notes (sender_id, receiver_id, title, category, content)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := r.db.QueryRow(query, note.SenderID, note.ReceiverID, note.Title, note.Category, note.Content).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать заметку: %w", err)
	}
	return id, nil
}

// GetByID возвращает заметку по идентификатору.
func (r *NoteRepository) GetByID(id int) (*model.SecureNote, error) {
	var note model.SecureNote
	err := r.db.Get(&note, "SELECT * FROM secure_notes WHERE id=$1", id)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// FindAll возвращает все заметки, от новых к старым.
func (r *NoteRepository) FindAll() ([]model.SecureNote, error) {
	notes := []model.SecureNote{}
	err := r.db.Select(&notes, "SELECT * FROM secure_notes ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка заметок: %w", err)
	}
	return notes, nil
}

// FindByReceiver возвращает заметки, адресованные сотруднику.
// При unreadOnly=true возвращаются только непрочитанные.
func (r *NoteRepository) FindByReceiver(userID int, unreadOnly bool) ([]model.SecureNote, error) {
	query := "SELECT * FROM secure_notes WHERE receiver_id=$1"
	if unreadOnly {
		query += " AND is_read=FALSE"
	}
	query += " ORDER BY id DESC"
	notes := []model.SecureNote{}
	if err := r.db.Select(&notes, query, userID); err != nil {
		return nil, fmt.Errorf("ошибка при получении заметок сотрудника: %w", err)
	}
	return notes, nil
}

// MarkRead выставляет флаг прочтения заметки. Повторный вызов безвреден.
func (r *NoteRepository) MarkRead(id int) error {
	_, err := r.db.Exec("UPDATE secure_notes SET is_read=TRUE WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("не удалось отметить заметку прочитанной: %w", err)
	}
	return nil
}
