package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
	"github.com/Freeeeeet/dataset_request_bot/internal/notice"
	"github.com/Freeeeeet/dataset_request_bot/internal/repository"
)

var fileSafeNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// AdminService - операции панели администратора
type AdminService struct {
	users      UserStore
	requests   RequestStore
	dataModels DataModelStore
	logger     *zap.Logger
}

func NewAdminService(users UserStore, requests RequestStore, dataModels DataModelStore, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:      users,
		requests:   requests,
		dataModels: dataModels,
		logger:     logger,
	}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListRequests возвращает все заявки вместе с пользователем и моделью данных
func (s *AdminService) ListRequests(ctx context.Context) ([]*model.RequestDetails, error) {
	requests, err := s.requests.ListDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// GetRequest возвращает заявку с пользователем и моделью данных; nil, если её нет
func (s *AdminService) GetRequest(ctx context.Context, id int64) (*model.RequestDetails, error) {
	details, err := s.requests.GetDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return details, nil
}

func (s *AdminService) ListDataModels(ctx context.Context) ([]*model.DataModel, error) {
	dataModels, err := s.dataModels.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list data models: %w", err)
	}
	return dataModels, nil
}

// CreateDataModel добавляет модель данных. DisplayName не может содержать
// разделитель составного ключа, FileSafeName может содержать только [A-Za-z0-9_-].
func (s *AdminService) CreateDataModel(ctx context.Context, sink notice.Sink, displayName, fileSafeName string) (*model.DataModel, error) {
	const op = "create data model"

	displayName = strings.TrimSpace(displayName)
	fileSafeName = strings.TrimSpace(fileSafeName)

	if displayName == "" || fileSafeName == "" {
		sink.Error(ctx, msgFillAllFields)
		return nil, lifecycleErr(op, ErrValidation, 0, errors.New("empty name"))
	}
	if strings.Contains(displayName, DatasetKeyDelimiter) {
		sink.Error(ctx, fmt.Sprintf("Display name must not contain %q", DatasetKeyDelimiter))
		return nil, lifecycleErr(op, ErrValidation, 0, fmt.Errorf("display name %q", displayName))
	}
	if !fileSafeNamePattern.MatchString(fileSafeName) {
		sink.Error(ctx, "File-safe name may only contain letters, digits, '-' and '_'")
		return nil, lifecycleErr(op, ErrValidation, 0, fmt.Errorf("file safe name %q", fileSafeName))
	}

	existing, err := s.dataModels.GetByDisplayName(ctx, displayName)
	if err != nil {
		s.logger.Error("Failed to look up data model", zap.String("display_name", displayName), zap.Error(err))
		sink.Error(ctx, msgUnexpected)
		return nil, lifecycleErr(op, ErrInternal, 0, err)
	}
	if existing != nil {
		sink.Error(ctx, "Data model already exists")
		return nil, lifecycleErr(op, ErrValidation, 0, fmt.Errorf("duplicate display name %q", displayName))
	}

	dm := &model.DataModel{DisplayName: displayName, FileSafeName: fileSafeName}
	if err := s.dataModels.Create(ctx, dm); err != nil {
		s.logger.Error("Failed to create data model", zap.String("display_name", displayName), zap.Error(err))
		sink.Error(ctx, "An error occurred while creating the data model")
		return nil, lifecycleErr(op, ErrPersistence, 0, err)
	}

	s.logger.Info("Data model created",
		zap.Int64("data_model_id", dm.ID),
		zap.String("display_name", dm.DisplayName),
		zap.String("file_safe_name", dm.FileSafeName))

	sink.Success(ctx, "Successfully created data model")
	return dm, nil
}

// DeleteDataModel удаляет модель данных. Заявки на неё остаются,
// но скачать их больше нельзя.
func (s *AdminService) DeleteDataModel(ctx context.Context, sink notice.Sink, id int64) error {
	const op = "delete data model"

	if err := s.dataModels.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sink.Error(ctx, msgDataModelMissing)
			return lifecycleErr(op, ErrNotFound, 0, err)
		}
		s.logger.Error("Failed to delete data model", zap.Int64("data_model_id", id), zap.Error(err))
		sink.Error(ctx, "An error occurred while deleting the data model")
		return lifecycleErr(op, ErrPersistence, 0, err)
	}

	s.logger.Info("Data model deleted", zap.Int64("data_model_id", id))
	sink.Success(ctx, "Successfully deleted data model")
	return nil
}
