package model

import "time"

// SecureNote представляет заметку с учетными данными, переданную от одного
// сотрудника другому. Доступ к заметкам закрыт категорией "passwords".
// Содержимое хранится открытым текстом.
type SecureNote struct {
	ID         int       `db:"id" json:"id"`
	SenderID   int       `db:"sender_id" json:"senderId"`
	ReceiverID int       `db:"receiver_id" json:"receiverId"`
	Title      string    `db:"title" json:"title"`
	Category   string    `db:"category" json:"category"` // произвольная метка: wifi, crm и т.п.
	Content    string    `db:"content" json:"content"`
	IsRead     bool      `db:"is_read" json:"isRead"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
