package service

import (
	"database/sql"
	"fmt"

	"github.com/KarlovS28/botgotoviy/internal/model"
	"github.com/KarlovS28/botgotoviy/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthService отвечает за авторизацию: в боте по Telegram ID,
// в веб-панели по имени пользователя и паролю.
type AuthService struct {
	userRepo *repository.UserRepository
}

// NewAuthService создает новый сервис аутентификации.
func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// AuthUser проверяет наличие сотрудника с данным TelegramID и создает
// незарегистрированную запись, если не найден. Возвращает структуру
// сотрудника (существующего или новосозданного).
func (s *AuthService) AuthUser(telegramID int64, username, fullName string) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Первое обращение - создаем запись без регистрации
			newUser := &model.User{
				TelegramID:   &telegramID,
				Username:     username,
				FullName:     fullName,
				Role:         model.RoleEmployee,
				IsRegistered: false,
			}
			id, err := s.userRepo.Create(newUser)
			if err != nil {
				return nil, err
			}
			newUser.ID = id
			return newUser, nil
		}
		return nil, fmt.Errorf("ошибка при поиске сотрудника: %w", err)
	}
	return user, nil
}

// WebLogin проверяет имя пользователя и пароль для входа в панель.
// В панель пускаются только сотрудники с установленным паролем.
func (s *AuthService) WebLogin(username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("неверное имя пользователя или пароль")
		}
		return nil, fmt.Errorf("ошибка при поиске сотрудника: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, fmt.Errorf("неверное имя пользователя или пароль")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("неверное имя пользователя или пароль")
	}
	return user, nil
}

// HashPassword возвращает bcrypt-хеш пароля для сохранения в базе.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("не удалось захешировать пароль: %w", err)
	}
	return string(hash), nil
}
