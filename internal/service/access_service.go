package service

import (
	"fmt"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/repository"
)

// roleDefaults - фиксированная таблица прав по умолчанию для каждой роли.
// Применяется один раз при регистрации (и при смене роли через панель);
// дальнейшие изменения прав таблицу не учитывают.
var roleDefaults = map[string]map[string]bool{
	model.RoleSysadmin: {
		model.CategoryEquipment: true,
		model.CategoryPasswords: true,
		model.CategoryTasks:     true,
	},
	model.RoleAccountant: {
		model.CategoryEquipment: true,
		model.CategoryPasswords: false,
		model.CategoryTasks:     false,
	},
	model.RoleManager: {
		model.CategoryEquipment: false,
		model.CategoryPasswords: true,
		model.CategoryTasks:     true,
	},
	model.RoleEmployee: {
		model.CategoryEquipment: false,
		model.CategoryPasswords: false,
		model.CategoryTasks:     true,
	},
	// admin - суперпользователь панели, в боте прав по умолчанию не имеет
	model.RoleAdmin: {
		model.CategoryEquipment: false,
		model.CategoryPasswords: false,
		model.CategoryTasks:     false,
	},
}

// MustValidateDefaults проверяет полноту таблицы прав по умолчанию:
// у каждой роли должно быть определено значение для каждой категории.
// Вызывается при старте процесса; неполная таблица - ошибка программиста.
func MustValidateDefaults() {
	for _, role := range model.Roles {
		defaults, ok := roleDefaults[role]
		if !ok {
			panic(fmt.Sprintf("нет прав по умолчанию для роли %q", role))
		}
		for _, cat := range model.Categories {
			if _, ok := defaults[cat]; !ok {
				panic(fmt.Sprintf("для роли %q не задано право на категорию %q", role, cat))
			}
		}
	}
}

// DefaultsFor возвращает копию набора прав по умолчанию для роли.
func DefaultsFor(role string) map[string]bool {
	defaults := make(map[string]bool, len(model.Categories))
	for cat, allowed := range roleDefaults[role] {
		defaults[cat] = allowed
	}
	return defaults
}

// AccessService отвечает на вопрос, имеет ли сотрудник доступ к категории.
type AccessService struct {
	permRepo *repository.PermissionRepository
}

// NewAccessService создает новый сервис проверки доступа.
func NewAccessService(permRepo *repository.PermissionRepository) *AccessService {
	return &AccessService{permRepo: permRepo}
}

// HasAccess возвращает значение последней записи права для пары
// (сотрудник, категория); отсутствие записи означает запрет.
func (s *AccessService) HasAccess(userID int, category string) (bool, error) {
	return s.permRepo.Get(userID, category)
}

// ApplyRoleDefaults записывает сотруднику набор прав по умолчанию для роли.
func (s *AccessService) ApplyRoleDefaults(userID int, role string) error {
	if !model.ValidRole(role) {
		return fmt.Errorf("неизвестная роль: %s", role)
	}
	for cat, allowed := range roleDefaults[role] {
		if err := s.permRepo.Upsert(userID, cat, allowed); err != nil {
			return err
		}
	}
	return nil
}

// SetPermissions записывает сотруднику произвольный набор прав.
func (s *AccessService) SetPermissions(userID int, perms map[string]bool) error {
	for cat, allowed := range perms {
		valid := false
		for _, known := range model.Categories {
			if known == cat {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("неизвестная категория: %s", cat)
		}
		if err := s.permRepo.Upsert(userID, cat, allowed); err != nil {
			return err
		}
	}
	return nil
}

// ListPermissions возвращает записанные права сотрудника.
func (s *AccessService) ListPermissions(userID int) ([]model.Permission, error) {
	return s.permRepo.FindByUser(userID)
}
