package services

import (
	"context"
	"errors"
	"time"

	"docvault/internal/logger"
	"docvault/internal/models"
	"docvault/internal/repository"
	"docvault/internal/utils"

	"go.uber.org/zap"
)

// Одно сообщение и для неизвестного email, и для неверного пароля —
// чтобы по ответу нельзя было перебирать зарегистрированные адреса.
var ErrInvalidCredentials = errors.New("неверный email или пароль")

type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	UpdateName(ctx context.Context, id int, name string) (*models.User, error)
}

type AuthService struct {
	repo      UserRepo
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(repo UserRepo, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// RegisterUser создаёт пользователя и сразу выдаёт ему токен.
// Конфликт по email приходит из репозитория (уникальный индекс), не из предварительной проверки.
func (s *AuthService) RegisterUser(ctx context.Context, email, password, name string) (*models.User, string, error) {
	logger.Log.Info("Регистрация пользователя (service)", zap.String("email", email))

	hashed, err := utils.HashPassword(password)
	if err != nil {
		logger.Log.Error("Ошибка хеширования пароля", zap.Error(err))
		return nil, "", err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         "user",
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", err
		}
		logger.Log.Error("Ошибка создания пользователя", zap.Error(err))
		return nil, "", err
	}

	token, err := utils.GenerateToken(s.jwtSecret, user, s.tokenTTL)
	if err != nil {
		logger.Log.Error("Ошибка генерации токена", zap.Error(err))
		return nil, "", err
	}

	logger.Log.Info("Пользователь зарегистрирован (service)", zap.Int("user_id", user.ID))
	return user, token, nil
}

func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	logger.Log.Info("Попытка входа (service)", zap.String("email", email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Log.Warn("Пользователь не найден (service)", zap.String("email", email))
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Log.Warn("Неверный пароль (service)", zap.String("email", email))
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.jwtSecret, user, s.tokenTTL)
	if err != nil {
		logger.Log.Error("Ошибка генерации токена", zap.Error(err))
		return nil, "", err
	}

	logger.Log.Info("Вход выполнен (service)", zap.Int("user_id", user.ID))
	return user, token, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	logger.Log.Debug("Получение пользователя по ID (service)", zap.Int("user_id", id))
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		logger.Log.Warn("Пользователь не найден по ID (service)", zap.Int("user_id", id), zap.Error(err))
	}
	return user, err
}

func (s *AuthService) UpdateName(ctx context.Context, id int, name string) (*models.User, error) {
	logger.Log.Info("Обновление профиля (service)", zap.Int("user_id", id))
	user, err := s.repo.UpdateName(ctx, id, name)
	if err != nil {
		logger.Log.Error("Ошибка при обновлении профиля (service)", zap.Error(err), zap.Int("user_id", id))
		return nil, err
	}
	return user, nil
}
