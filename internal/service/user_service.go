package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
	"go.uber.org/zap"
)

type UserService struct {
	userRepo UserStore
	adminIDs map[int64]struct{}
	logger   *zap.Logger
}

// NewUserService создаёт сервис; пользователи из adminTelegramIDs становятся администраторами
func NewUserService(userRepo UserStore, adminTelegramIDs []int64, logger *zap.Logger) *UserService {
	adminIDs := make(map[int64]struct{}, len(adminTelegramIDs))
	for _, id := range adminTelegramIDs {
		adminIDs[id] = struct{}{}
	}
	return &UserService{
		userRepo: userRepo,
		adminIDs: adminIDs,
		logger:   logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error) {
	existingUser, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	_, configuredAdmin := s.adminIDs[telegramID]

	if existingUser != nil {
		existingUser.Username = username
		existingUser.FirstName = firstName
		existingUser.LastName = lastName
		existingUser.LanguageCode = languageCode
		// права администратора только добавляются, снимаются вручную в БД
		if configuredAdmin && !existingUser.IsAdmin {
			existingUser.IsAdmin = true
			s.logger.Info("User promoted to admin", zap.Int64("telegram_id", telegramID))
		}

		err = s.userRepo.Update(ctx, existingUser)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}

		s.logger.Debug("User updated",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)

		return existingUser, nil
	}

	user := &model.User{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		LanguageCode: languageCode,
		IsAdmin:      configuredAdmin,
	}

	err = s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
		zap.Bool("is_admin", user.IsAdmin),
	)

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.userRepo.GetByTelegramID(ctx, telegramID)
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
