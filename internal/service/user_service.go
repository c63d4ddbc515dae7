package service

import (
	"fmt"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/repository"
)

// UserService содержит бизнес-логику, связанную с сотрудниками:
// регистрацию через бота, смену роли и каскадное удаление.
type UserService struct {
	userRepo *repository.UserRepository
	access   *AccessService
}

// NewUserService создает новый сервис сотрудников.
func NewUserService(userRepo *repository.UserRepository, access *AccessService) *UserService {
	return &UserService{userRepo: userRepo, access: access}
}

// GetByID возвращает сотрудника по ID.
func (s *UserService) GetByID(id int) (*model.User, error) {
	return s.userRepo.GetByID(id)
}

// GetByUsername возвращает сотрудника по имени пользователя.
func (s *UserService) GetByUsername(username string) (*model.User, error) {
	return s.userRepo.GetByUsername(username)
}

// List возвращает всех сотрудников.
func (s *UserService) List() ([]model.User, error) {
	return s.userRepo.FindAll()
}

// CompleteRegistration завершает регистрацию сотрудника в боте:
// фиксирует выбранную роль и выдает права по умолчанию для нее.
func (s *UserService) CompleteRegistration(userID int, role string) error {
	if !model.ValidRole(role) {
		return fmt.Errorf("неизвестная роль: %s", role)
	}
	if err := s.userRepo.SetRegistered(userID, role, true); err != nil {
		return err
	}
	return s.access.ApplyRoleDefaults(userID, role)
}

// Logout снимает флаг регистрации сотрудника. Запись и права сохраняются,
// повторный /start снова предложит выбрать роль.
func (s *UserService) Logout(userID int) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	return s.userRepo.SetRegistered(userID, user.Role, false)
}

// ChangeRole меняет роль сотрудника и перезаписывает его права
// набором по умолчанию для новой роли.
func (s *UserService) ChangeRole(userID int, role string) error {
	if !model.ValidRole(role) {
		return fmt.Errorf("неизвестная роль: %s", role)
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	return s.access.ApplyRoleDefaults(userID, role)
}

// Update сохраняет изменяемые поля сотрудника.
func (s *UserService) Update(user *model.User) error {
	return s.userRepo.Update(user)
}

// SetPasswordHash сохраняет хеш пароля сотрудника для входа в панель.
func (s *UserService) SetPasswordHash(userID int, hash string) error {
	return s.userRepo.SetPasswordHash(userID, hash)
}

// Delete удаляет сотрудника со всеми зависимыми записями в одной транзакции.
// Закрепленное оборудование возвращается на склад, назначенные задачи
// снимаются с назначения; частичное удаление невозможно.
func (s *UserService) Delete(userID int, actorID int) error {
	return s.userRepo.DeleteCascade(userID, actorID)
}
