package model

import "time"

// Статусы единицы оборудования.
const (
	EquipmentActive         = "active"
	EquipmentStorage        = "storage"
	EquipmentRepair         = "repair"
	EquipmentDecommissioned = "decommissioned"
	EquipmentWrittenOff     = "written_off"
)

// EquipmentStatuses перечисляет все допустимые статусы оборудования.
var EquipmentStatuses = []string{
	EquipmentActive, EquipmentStorage, EquipmentRepair,
	EquipmentDecommissioned, EquipmentWrittenOff,
}

// Equipment представляет единицу оборудования на учете.
type Equipment struct {
	ID              int       `db:"id" json:"id"`
	InventoryNumber string    `db:"inventory_number" json:"inventoryNumber"` // уникальный инвентарный номер
	Name            string    `db:"name" json:"name"`
	EqType          string    `db:"eq_type" json:"type"`      // тип: ноутбук, монитор и т.п.
	Location        string    `db:"location" json:"location"` // кабинет или склад
	Status          string    `db:"status" json:"status"`
	AssignedTo      *int      `db:"assigned_to" json:"assignedTo"` // id сотрудника, за которым закреплено
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// ValidEquipmentStatus проверяет, что строка является известным статусом.
func ValidEquipmentStatus(status string) bool {
	for _, s := range EquipmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// EquipmentHistory представляет запись журнала изменений оборудования.
// Журнал только дополняется, записи не изменяются и не удаляются
// (кроме каскадного удаления оборудования или автора).
type EquipmentHistory struct {
	ID          int       `db:"id" json:"id"`
	EquipmentID int       `db:"equipment_id" json:"equipmentId"`
	ActorID     *int      `db:"actor_id" json:"actorId"` // кто внес изменение
	Action      string    `db:"action" json:"action"`
	Details     string    `db:"details" json:"details"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
