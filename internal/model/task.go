package model

import "time"

// Статусы задач.
const (
	TaskNew        = "new"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskUrgent     = "urgent"
)

// TaskStatuses перечисляет все допустимые статусы задач.
var TaskStatuses = []string{TaskNew, TaskInProgress, TaskCompleted, TaskUrgent}

// Task представляет задачу, поставленную одним сотрудником другому.
type Task struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	CreatedBy   int       `db:"created_by" json:"createdBy"`
	AssignedTo  *int      `db:"assigned_to" json:"assignedTo"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// ValidTaskStatus проверяет, что строка является известным статусом задачи.
func ValidTaskStatus(status string) bool {
	for _, s := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// TaskComment представляет комментарий к задаче.
type TaskComment struct {
	ID        int       `db:"id" json:"id"`
	TaskID    int       `db:"task_id" json:"taskId"`
	AuthorID  int       `db:"author_id" json:"authorId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
