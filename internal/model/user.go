package model

import "time"

// Роли пользователей. Роль определяет набор прав по умолчанию,
// который выдается при регистрации через бота.
const (
	RoleSysadmin   = "sysadmin"
	RoleAccountant = "accountant"
	RoleManager    = "manager"
	RoleEmployee   = "employee"
	RoleAdmin      = "admin" // суперпользователь веб-панели, без особых прав в боте
)

// Roles перечисляет все допустимые роли.
var Roles = []string{RoleSysadmin, RoleAccountant, RoleManager, RoleEmployee, RoleAdmin}

// User представляет сотрудника: участника чат-бота и/или веб-панели.
type User struct {
	ID           int       `db:"id" json:"id"`
	TelegramID   *int64    `db:"telegram_id" json:"telegramId"` // NULL, пока сотрудник не писал боту
	Username     string    `db:"username" json:"username"`
	FullName     string    `db:"full_name" json:"fullName"`
	Role         string    `db:"role" json:"role"`
	IsAdmin      bool      `db:"is_admin" json:"isAdmin"`
	IsRegistered bool      `db:"is_registered" json:"isRegistered"` // сбрасывается командой /logout
	PasswordHash string    `db:"password_hash" json:"-"`            // bcrypt; пусто у пользователей только бота
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// ValidRole проверяет, что строка является одной из известных ролей.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
