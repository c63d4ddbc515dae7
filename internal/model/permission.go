package model

// Категории доступа - единица гранулярности прав.
const (
	CategoryEquipment = "equipment"
	CategoryPasswords = "passwords"
	CategoryTasks     = "tasks"
)

// Categories перечисляет все категории доступа.
var Categories = []string{CategoryEquipment, CategoryPasswords, CategoryTasks}

// Permission представляет право пользователя на категорию.
// На пару (user_id, category) существует не более одной записи;
// отсутствие записи означает запрет.
type Permission struct {
	ID       int    `db:"id" json:"id"`
	UserID   int    `db:"user_id" json:"userId"`
	Category string `db:"category" json:"category"`
	Allowed  bool   `db:"allowed" json:"allowed"`
}
