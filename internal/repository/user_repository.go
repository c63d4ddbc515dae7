package repository

import (
	"fmt"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/jmoiron/sqlx"
)

// UserRepository обеспечивает доступ к данным сотрудников в базе данных.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создает новый репозиторий сотрудников.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create добавляет нового сотрудника в базу. Возвращает ID созданной записи.
func (r *UserRepository) Create(user *model.User) (int, error) {
	query := `INSERT INTO users (telegram_id, username, full_name, role, is_admin, is_registered, password_hash)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int
	err := r.db.QueryRow(query, user.TelegramID, user.Username, user.FullName,
		user.Role, user.IsAdmin, user.IsRegistered, user.PasswordHash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать сотрудника: %w", err)
	}
	return id, nil
}

// GetByID возвращает сотрудника по внутреннему идентификатору.
func (r *UserRepository) GetByID(id int) (*model.User, error) {
	var user model.User
	err := r.db.Get(&user, "SELECT * FROM users WHERE id=$1", id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByTelegramID ищет сотрудника по его Telegram ID.
// Возвращает sql.ErrNoRows, если не найдено.
func (r *UserRepository) GetByTelegramID(telegramID int64) (*model.User, error) {
	var user model.User
	err := r.db.Get(&user, "SELECT * FROM users WHERE telegram_id=$1", telegramID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername ищет сотрудника по имени пользователя.
func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Get(&user, "SELECT * FROM users WHERE username=$1", username)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll возвращает всех сотрудников, отсортированных по ФИО.
func (r *UserRepository) FindAll() ([]model.User, error) {
	users := []model.User{}
	err := r.db.Select(&users, "SELECT * FROM users ORDER BY full_name, id")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка сотрудников: %w", err)
	}
	return users, nil
}

// Update сохраняет изменяемые поля сотрудника (роль, флаги, ФИО).
func (r *UserRepository) Update(user *model.User) error {
	query := `UPDATE users SET username=$1, full_name=$2, role=$3, is_admin=$4, is_registered=$5, telegram_id=$6
	          WHERE id=$7`
	_, err := r.db.Exec(query, user.Username, user.FullName, user.Role,
		user.IsAdmin, user.IsRegistered, user.TelegramID, user.ID)
	if err != nil {
		return fmt.Errorf("не удалось обновить сотрудника: %w", err)
	}
	return nil
}

// SetRegistered выставляет флаг регистрации и роль сотрудника.
func (r *UserRepository) SetRegistered(id int, role string, registered bool) error {
	_, err := r.db.Exec("UPDATE users SET role=$1, is_registered=$2 WHERE id=$3", role, registered, id)
	if err != nil {
		return fmt.Errorf("не удалось изменить регистрацию сотрудника: %w", err)
	}
	return nil
}

// SetPasswordHash сохраняет хеш пароля сотрудника для входа в панель.
func (r *UserRepository) SetPasswordHash(id int, hash string) error {
	_, err := r.db.Exec("UPDATE users SET password_hash=$1 WHERE id=$2", hash, id)
	if err != nil {
		return fmt.Errorf("не удалось сохранить пароль сотрудника: %w", err)
	}
	return nil
}

// DeleteCascade удаляет сотрудника вместе с зависимыми записями в одной
// транзакции: заметки, где он отправитель или получатель, авторские записи
// журнала, комментарии, его права и созданные им задачи удаляются; задачи,
// назначенные на него, снимаются с назначения; закрепленное оборудование
// возвращается на склад с записью в журнале от имени actorID.
// При ошибке на любом шаге ни одно изменение не сохраняется.
func (r *UserRepository) DeleteCascade(id int, actorID int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию удаления: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM secure_notes WHERE sender_id=$1 OR receiver_id=$1", id); err != nil {
		return fmt.Errorf("не удалось удалить заметки сотрудника: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM equipment_history WHERE actor_id=$1", id); err != nil {
		return fmt.Errorf("не удалось удалить записи журнала сотрудника: %w", err)
	}

	// Возвращаем закрепленное оборудование на склад с отметкой в журнале.
	var equipmentIDs []int
	if err := tx.Select(&equipmentIDs, "SELECT id FROM equipment WHERE assigned_to=$1", id); err != nil {
		return fmt.Errorf("не удалось получить оборудование сотрудника: %w", err)
	}
	var actor *int
	if actorID != 0 && actorID != id {
		actor = &actorID
	}
	for _, eqID := range equipmentIDs {
		_, err := tx.Exec(`INSERT INTO equipment_history (equipment_id, actor_id, action, details)
		                   VALUES ($1, $2, $3, $4)`,
			eqID, actor, "Возвращено на склад", "Сотрудник удален")
		if err != nil {
			return fmt.Errorf("не удалось записать возврат оборудования: %w", err)
		}
	}
	if _, err := tx.Exec("UPDATE equipment SET assigned_to=NULL, status=$1 WHERE assigned_to=$2",
		model.EquipmentStorage, id); err != nil {
		return fmt.Errorf("не удалось снять закрепление оборудования: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM task_comments WHERE author_id=$1", id); err != nil {
		return fmt.Errorf("не удалось удалить комментарии сотрудника: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM task_comments WHERE task_id IN (SELECT id FROM tasks WHERE created_by=$1)`, id); err != nil {
		return fmt.Errorf("не удалось удалить комментарии к задачам сотрудника: %w", err)
	}
	if _, err := tx.Exec("UPDATE tasks SET assigned_to=NULL WHERE assigned_to=$1", id); err != nil {
		return fmt.Errorf("не удалось снять назначение задач: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM tasks WHERE created_by=$1", id); err != nil {
		return fmt.Errorf("не удалось удалить задачи сотрудника: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM permissions WHERE user_id=$1", id); err != nil {
		return fmt.Errorf("не удалось удалить права сотрудника: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM users WHERE id=$1", id); err != nil {
		return fmt.Errorf("не удалось удалить сотрудника: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("не удалось завершить удаление сотрудника: %w", err)
	}
	return nil
}
