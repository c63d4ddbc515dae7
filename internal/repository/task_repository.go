package repository

import (
	"fmt"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/jmoiron/sqlx"
)

// TaskRepository обеспечивает доступ к задачам и комментариям.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository создает новый репозиторий задач.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create создает новую задачу. Возвращает ID созданной записи.
func (r *TaskRepository) Create(task *model.Task) (int, error) {
	query := `INSERT INTO tasks (title, description, status, created_by, assigned_to)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := r.db.QueryRow(query, task.Title, task.Description, task.Status, task.CreatedBy, task.AssignedTo).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать задачу: %w", err)
	}
	return id, nil
}

// GetByID возвращает задачу по идентификатору.
func (r *TaskRepository) GetByID(id int) (*model.Task, error) {
	var task model.Task
	err := r.db.Get(&task, "SELECT * FROM tasks WHERE id=$1", id)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// FindAll возвращает все задачи, от новых к старым.
func (r *TaskRepository) FindAll() ([]model.Task, error) {
	tasks := []model.Task{}
	err := r.db.Select(&tasks, "SELECT * FROM tasks ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка задач: %w", err)
	}
	return tasks, nil
}

// FindByUser возвращает задачи, назначенные на сотрудника или созданные им.
func (r *TaskRepository) FindByUser(userID int) ([]model.Task, error) {
	tasks := []model.Task{}
	err := r.db.Select(&tasks,
		"SELECT * FROM tasks WHERE assigned_to=$1 OR created_by=$1 ORDER BY id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении задач сотрудника: %w", err)
	}
	return tasks, nil
}

// Update сохраняет изменяемые поля задачи и отметку времени изменения.
func (r *TaskRepository) Update(task *model.Task) error {
	query := `UPDATE tasks SET title=$1, description=$2, status=$3, assigned_to=$4, updated_at=CURRENT_TIMESTAMP
	          WHERE id=$5`
	_, err := r.db.Exec(query, task.Title, task.Description, task.Status, task.AssignedTo, task.ID)
	if err != nil {
		return fmt.Errorf("не удалось обновить задачу: %w", err)
	}
	return nil
}

// AddComment добавляет комментарий к задаче. Возвращает ID комментария.
func (r *TaskRepository) AddComment(c *model.TaskComment) (int, error) {
	query := `INSERT INTO task_comments (task_id, author_id, content) VALUES ($1, $2, $3) RETURNING id`
	var id int
	err := r.db.QueryRow(query, c.TaskID, c.AuthorID, c.Content).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось добавить комментарий: %w", err)
	}
	return id, nil
}

// GetComments возвращает комментарии задачи в порядке добавления.
func (r *TaskRepository) GetComments(taskID int) ([]model.TaskComment, error) {
	comments := []model.TaskComment{}
	err := r.db.Select(&comments, "SELECT * FROM task_comments WHERE task_id=$1 ORDER BY id", taskID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении комментариев: %w", err)
	}
	return comments, nil
}
