package repository

import (
	"database/sql"
	"fmt"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/jmoiron/sqlx"
)

// PermissionRepository обеспечивает доступ к правам сотрудников.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository создает новый репозиторий прав.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Upsert записывает право сотрудника на категорию. Повторная запись той же
// пары (user_id, category) заменяет значение, а не создает дубликат.
func (r *PermissionRepository) Upsert(userID int, category string, allowed bool) error {
	query := `INSERT INTO permissions (user_id, category, allowed) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, category) DO UPDATE SET allowed=EXCLUDED.allowed`
	_, err := r.db.Exec(query, userID, category, allowed)
	if err != nil {
		return fmt.Errorf("не удалось записать право: %w", err)
	}
	return nil
}

// Get возвращает значение права для пары (сотрудник, категория).
// Отсутствие записи означает запрет.
func (r *PermissionRepository) Get(userID int, category string) (bool, error) {
	var allowed bool
	err := r.db.Get(&allowed, "SELECT allowed FROM permissions WHERE user_id=$1 AND category=$2", userID, category)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("ошибка при проверке права: %w", err)
	}
	return allowed, nil
}

// FindByUser возвращает все записанные права сотрудника.
func (r *PermissionRepository) FindByUser(userID int) ([]model.Permission, error) {
	perms := []model.Permission{}
	err := r.db.Select(&perms, "SELECT * FROM permissions WHERE user_id=$1 ORDER BY category", userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении прав сотрудника: %w", err)
	}
	return perms, nil
}
