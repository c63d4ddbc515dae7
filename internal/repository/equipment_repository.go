package repository

import (
	"fmt"
	"strings"

	"github.com/KarlovS28/botgotoviy/internal/model"

	"github.com/jmoiron/sqlx"
)

// EquipmentRepository обеспечивает доступ к данным оборудования и его журналу.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository создает новый репозиторий оборудования.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// GetByID возвращает единицу оборудования по идентификатору.
func (r *EquipmentRepository) GetByID(id int) (*model.Equipment, error) {
	var eq model.Equipment
	err := r.db.Get(&eq, "SELECT * FROM equipment WHERE id=$1", id)
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

// GetByInventoryNumber возвращает единицу оборудования по инвентарному номеру.
func (r *EquipmentRepository) GetByInventoryNumber(number string) (*model.Equipment, error) {
	var eq model.Equipment
	err := r.db.Get(&eq, "SELECT * FROM equipment WHERE inventory_number=$1", number)
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

// FindByFilters выполняет поиск оборудования по заданным фильтрам
// (статус, закрепленный сотрудник) и ключевому слову по названию и номеру.
func (r *EquipmentRepository) FindByFilters(status string, assignedTo int, keyword string) ([]model.Equipment, error) {
	query := "SELECT * FROM equipment WHERE 1=1"
	args := []interface{}{}
	if status != "" {
		query += " AND status=?"
		args = append(args, status)
	}
	if assignedTo > 0 {
		query += " AND assigned_to=?"
		args = append(args, assignedTo)
	}
	if keyword != "" {
		kw := "%" + strings.ToLower(keyword) + "%"
		query += " AND (LOWER(name) LIKE ? OR LOWER(inventory_number) LIKE ?)"
		args = append(args, kw, kw)
	}
	query += " ORDER BY inventory_number"
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	items := []model.Equipment{}
	if err := r.db.Select(&items, query, args...); err != nil {
		return nil, fmt.Errorf("ошибка при поиске оборудования: %w", err)
	}
	return items, nil
}

// CreateWithHistory добавляет единицу оборудования вместе с записями
// журнала в одной транзакции. При ошибке на любом шаге не сохраняется
// ни сама запись, ни журнал. Возвращает ID созданной записи.
func (r *EquipmentRepository) CreateWithHistory(eq *model.Equipment, rows []model.EquipmentHistory) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO equipment (inventory_number, name, eq_type, location, status, assigned_to)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int
	if err := tx.QueryRow(query, eq.InventoryNumber, eq.Name, eq.EqType, eq.Location, eq.Status, eq.AssignedTo).Scan(&id); err != nil {
		return 0, fmt.Errorf("не удалось создать оборудование: %w", err)
	}
	for i := range rows {
		rows[i].EquipmentID = id
		if err := addHistoryTx(tx, &rows[i]); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("не удалось завершить создание оборудования: %w", err)
	}
	return id, nil
}

// UpdateWithHistory сохраняет изменяемые поля единицы оборудования и
// записи журнала в одной транзакции. При ошибке на любом шаге
// не сохраняется ни одно изменение.
func (r *EquipmentRepository) UpdateWithHistory(eq *model.Equipment, rows []model.EquipmentHistory) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE equipment SET inventory_number=$1, name=$2, eq_type=$3, location=$4, status=$5, assigned_to=$6
	          WHERE id=$7`
	if _, err := tx.Exec(query, eq.InventoryNumber, eq.Name, eq.EqType, eq.Location, eq.Status, eq.AssignedTo, eq.ID); err != nil {
		return fmt.Errorf("не удалось обновить оборудование: %w", err)
	}
	for i := range rows {
		rows[i].EquipmentID = eq.ID
		if err := addHistoryTx(tx, &rows[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("не удалось завершить обновление оборудования: %w", err)
	}
	return nil
}

func addHistoryTx(tx *sqlx.Tx, h *model.EquipmentHistory) error {
	query := `INSERT INTO equipment_history (equipment_id, actor_id, action, details) VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(query, h.EquipmentID, h.ActorID, h.Action, h.Details); err != nil {
		return fmt.Errorf("не удалось записать журнал оборудования: %w", err)
	}
	return nil
}

// GetHistory возвращает журнал изменений единицы оборудования,
// от новых записей к старым.
func (r *EquipmentRepository) GetHistory(equipmentID int) ([]model.EquipmentHistory, error) {
	rows := []model.EquipmentHistory{}
	err := r.db.Select(&rows, "SELECT * FROM equipment_history WHERE equipment_id=$1 ORDER BY id DESC", equipmentID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении журнала оборудования: %w", err)
	}
	return rows, nil
}
