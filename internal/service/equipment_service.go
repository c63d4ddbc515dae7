package service

import (
	"database/sql"
	"fmt"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/repository"
)

// Метки записей журнала оборудования.
const (
	historyCreated  = "Создано"
	historyAssigned = "Выдано"
	historyReturned = "Возвращено на склад"
	historyStatus   = "Смена статуса"
)

// EquipmentService содержит бизнес-логику учета оборудования.
// Каждое значимое изменение (статус, закрепление) дописывает ровно одну
// запись в журнал; сравнение идет с сохраненным состоянием, а не с запросом.
type EquipmentService struct {
	equipmentRepo *repository.EquipmentRepository
	userRepo      *repository.UserRepository
}

// NewEquipmentService создает новый сервис оборудования.
func NewEquipmentService(equipmentRepo *repository.EquipmentRepository, userRepo *repository.UserRepository) *EquipmentService {
	return &EquipmentService{equipmentRepo: equipmentRepo, userRepo: userRepo}
}

// Create ставит оборудование на учет. В журнал пишется запись о создании
// и, если оборудование сразу закреплено за сотрудником, запись о выдаче;
// журнал сохраняется в одной транзакции с самой записью.
func (s *EquipmentService) Create(eq *model.Equipment, actorID int) (int, error) {
	if eq.Status == "" {
		eq.Status = model.EquipmentStorage
	}
	if !model.ValidEquipmentStatus(eq.Status) {
		return 0, fmt.Errorf("неизвестный статус оборудования: %s", eq.Status)
	}
	rows := []model.EquipmentHistory{historyRow(actorID, historyCreated, eq.InventoryNumber)}
	if eq.AssignedTo != nil {
		rows = append(rows, historyRow(actorID, s.assignedAction(*eq.AssignedTo), ""))
	}
	id, err := s.equipmentRepo.CreateWithHistory(eq, rows)
	if err != nil {
		return 0, err
	}
	eq.ID = id
	return id, nil
}

// Update сохраняет изменения единицы оборудования. Смена статуса и смена
// закрепления дописывают по одной записи в журнал; запись одинакового
// значения записей не добавляет. Изменение и журнал сохраняются в одной
// транзакции.
func (s *EquipmentService) Update(eq *model.Equipment, actorID int) error {
	prior, err := s.equipmentRepo.GetByID(eq.ID)
	if err != nil {
		return fmt.Errorf("оборудование не найдено: %w", err)
	}
	if !model.ValidEquipmentStatus(eq.Status) {
		return fmt.Errorf("неизвестный статус оборудования: %s", eq.Status)
	}
	var rows []model.EquipmentHistory
	if eq.Status != prior.Status {
		rows = append(rows, historyRow(actorID, historyStatus, prior.Status+" → "+eq.Status))
	}
	if !sameAssignee(prior.AssignedTo, eq.AssignedTo) {
		if eq.AssignedTo != nil {
			rows = append(rows, historyRow(actorID, s.assignedAction(*eq.AssignedTo), ""))
		} else {
			rows = append(rows, historyRow(actorID, historyReturned, ""))
		}
	}
	return s.equipmentRepo.UpdateWithHistory(eq, rows)
}

// Import ставит на учет строки из импортированной таблицы.
// Строки с уже занятым инвентарным номером пропускаются.
// Возвращает количество созданных и пропущенных записей.
func (s *EquipmentService) Import(items []model.Equipment, actorID int) (created, skipped int, err error) {
	for i := range items {
		_, getErr := s.equipmentRepo.GetByInventoryNumber(items[i].InventoryNumber)
		if getErr == nil {
			skipped++
			continue
		}
		if getErr != sql.ErrNoRows {
			return created, skipped, getErr
		}
		if _, err := s.Create(&items[i], actorID); err != nil {
			return created, skipped, err
		}
		created++
	}
	return created, skipped, nil
}

// GetByID возвращает единицу оборудования по ID.
func (s *EquipmentService) GetByID(id int) (*model.Equipment, error) {
	return s.equipmentRepo.GetByID(id)
}

// GetByInventoryNumber возвращает единицу оборудования по инвентарному номеру.
func (s *EquipmentService) GetByInventoryNumber(number string) (*model.Equipment, error) {
	return s.equipmentRepo.GetByInventoryNumber(number)
}

// Search выполняет поиск оборудования по фильтрам.
func (s *EquipmentService) Search(status string, assignedTo int, keyword string) ([]model.Equipment, error) {
	return s.equipmentRepo.FindByFilters(status, assignedTo, keyword)
}

// History возвращает журнал изменений единицы оборудования.
func (s *EquipmentService) History(equipmentID int) ([]model.EquipmentHistory, error) {
	return s.equipmentRepo.GetHistory(equipmentID)
}

// assignedAction собирает метку выдачи с именем сотрудника.
func (s *EquipmentService) assignedAction(userID int) string {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return historyAssigned
	}
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	return historyAssigned + ": " + name
}

// historyRow собирает запись журнала без привязки к оборудованию;
// equipment_id проставляет репозиторий при записи.
func historyRow(actorID int, action, details string) model.EquipmentHistory {
	h := model.EquipmentHistory{Action: action, Details: details}
	if actorID != 0 {
		h.ActorID = &actorID
	}
	return h
}

func sameAssignee(a, b *int) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
