package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/encryption"
	"github.com/Freeeeeet/dataset_request_bot/internal/model"
	"github.com/Freeeeeet/dataset_request_bot/internal/notice"
	"github.com/Freeeeeet/dataset_request_bot/internal/repository"
)

// DatasetKeyDelimiter разделяет имя модели данных и датасет в составном ключе
const DatasetKeyDelimiter = "__"

const maxMessageLength = 1000

// Полный вывод команды шифрования остаётся в логах, пользователю уходит начало
const maxDiagnosticLength = 300

// Тексты уведомлений для пользователя
const (
	msgFillAllFields      = "Please fill in all fields"
	msgCreated            = "Successfully created a data request"
	msgUserMissing        = "User does not exist"
	msgDataModelMissing   = "Data model does not exist"
	msgCreateFailed       = "An error occurred while creating the data request"
	msgRequestMissing     = "Request does not exist"
	msgAlreadyDownloaded  = "Request has already been downloaded"
	msgDenied             = "Successfully denied request"
	msgDenyFailed         = "An error occurred while denying the request"
	msgEncryptFailed      = "An error occurred while encrypting dataset: "
	msgGrantFailed        = "An error occurred while granting request"
	msgGranted            = "Successfully granted request"
	msgDownloadOutdated   = "Download unavailable due to update - please make a new request."
	msgNotGranted         = "Request has not been granted yet"
	msgArchiveMissing     = "Download is not available yet - please contact an administrator"
	msgDownloadFailed     = "An error occurred while preparing the download"
	msgDownloadReady      = "Your download is ready"
	msgDeleteAllDisabled  = "Deleting all requests is disabled"
	msgDeleteAllFailed    = "An error occurred while deleting requests"
	msgDeletedAll         = "Successfully deleted all requests"
	msgUnexpected         = "An unexpected error occurred, please try again later"
	msgRequestIDRequired  = "Request id is required"
	msgGrantModelOutdated = "Data model no longer exists - the request cannot be granted"
)

type RequestServiceConfig struct {
	EncryptedDatasetRoot string
	AllowDeleteAll       bool
}

// CreateRequestInput содержит параметры новой заявки.
// DatasetKey имеет вид "<displayName>__<dataset>".
type CreateRequestInput struct {
	RequestingUserID int64
	DatasetKey       string
	RequestType      model.RequestType
	Message          string
}

// RequestService управляет жизненным циклом заявки:
// PENDING → GRANTED | DENIED, GRANTED ⇄ DENIED, GRANTED → DOWNLOADED.
// Каждый вызов записывает в sink ровно одно сообщение.
type RequestService struct {
	requests   RequestStore
	users      UserStore
	dataModels DataModelStore
	gateway    encryption.Gateway
	publisher  UpdatePublisher
	cfg        RequestServiceConfig
	logger     *zap.Logger
}

func NewRequestService(
	requests RequestStore,
	users UserStore,
	dataModels DataModelStore,
	gateway encryption.Gateway,
	publisher UpdatePublisher,
	cfg RequestServiceConfig,
	logger *zap.Logger,
) *RequestService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &RequestService{
		requests:   requests,
		users:      users,
		dataModels: dataModels,
		gateway:    gateway,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger,
	}
}

// ParseDatasetKey разбирает составной ключ на имя модели данных и датасет
func ParseDatasetKey(key string) (displayName, dataset string, err error) {
	parts := strings.Split(strings.TrimSpace(key), DatasetKeyDelimiter)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("dataset key %q must look like <model>%s<dataset>", key, DatasetKeyDelimiter)
	}

	displayName, dataset = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if displayName == "" || dataset == "" {
		return "", "", fmt.Errorf("dataset key %q has an empty part", key)
	}

	// датасет становится частью имени файла архива
	if dataset == "." || dataset == ".." || strings.ContainsAny(dataset, `/\`+"\x00") {
		return "", "", fmt.Errorf("dataset %q is not a valid name", dataset)
	}

	return displayName, dataset, nil
}

func validateCreate(in CreateRequestInput) (displayName, dataset string, err error) {
	if in.RequestingUserID <= 0 {
		return "", "", errors.New("requesting user is required")
	}
	if !in.RequestType.Valid() {
		return "", "", fmt.Errorf("unknown request type %q", in.RequestType)
	}
	if len(in.Message) > maxMessageLength {
		return "", "", fmt.Errorf("message is longer than %d characters", maxMessageLength)
	}
	return ParseDatasetKey(in.DatasetKey)
}

// Create создаёт заявку в состоянии PENDING
func (s *RequestService) Create(ctx context.Context, sink notice.Sink, in CreateRequestInput) (*model.Request, error) {
	const op = "create"

	displayName, dataset, err := validateCreate(in)
	if err != nil {
		sink.Error(ctx, msgFillAllFields)
		return nil, lifecycleErr(op, ErrValidation, 0, err)
	}

	user, err := s.users.GetByID(ctx, in.RequestingUserID)
	if err != nil {
		return nil, s.internal(ctx, sink, op, 0, err)
	}
	if user == nil {
		sink.Error(ctx, msgUserMissing)
		return nil, lifecycleErr(op, ErrNotFound, 0, fmt.Errorf("user %d", in.RequestingUserID))
	}

	dm, err := s.dataModels.GetByDisplayName(ctx, displayName)
	if err != nil {
		return nil, s.internal(ctx, sink, op, 0, err)
	}
	if dm == nil {
		sink.Error(ctx, msgDataModelMissing)
		return nil, lifecycleErr(op, ErrNotFound, 0, fmt.Errorf("data model %q", displayName))
	}

	req := &model.Request{
		RequestingUserID: user.ID,
		DataModelID:      dm.ID,
		Dataset:          dataset,
		RequestType:      in.RequestType,
		Message:          strings.TrimSpace(in.Message),
	}

	if err := s.requests.Create(ctx, req); err != nil {
		s.logger.Error("Failed to create request",
			zap.Int64("user_id", user.ID),
			zap.Int64("data_model_id", dm.ID),
			zap.Error(err))
		sink.Error(ctx, msgCreateFailed)
		return nil, lifecycleErr(op, ErrPersistence, 0, err)
	}

	s.logger.Info("Data request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("user_id", user.ID),
		zap.String("data_model", dm.DisplayName),
		zap.String("dataset", dataset),
		zap.String("request_type", string(req.RequestType)))

	sink.Success(ctx, msgCreated)
	return req, nil
}

// Deny отклоняет заявку: granted=false, denied=true одной записью
func (s *RequestService) Deny(ctx context.Context, sink notice.Sink, requestID int64) error {
	const op = "deny"

	if requestID <= 0 {
		sink.Error(ctx, msgRequestIDRequired)
		return lifecycleErr(op, ErrValidation, requestID, nil)
	}

	err := s.requests.SetDecision(ctx, requestID, false, true)
	if err == nil {
		s.logger.Info("Data request denied", zap.Int64("request_id", requestID))
		sink.Success(ctx, msgDenied)
		return nil
	}

	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to deny request", zap.Int64("request_id", requestID), zap.Error(err))
		sink.Error(ctx, msgDenyFailed)
		return lifecycleErr(op, ErrPersistence, requestID, err)
	}

	return s.explainMissedWrite(ctx, sink, op, requestID)
}

// Grant шифрует датасет и только после успеха фиксирует granted=true, denied=false
func (s *RequestService) Grant(ctx context.Context, sink notice.Sink, requestID int64) (*model.Request, error) {
	const op = "grant"

	if requestID <= 0 {
		sink.Error(ctx, msgRequestIDRequired)
		return nil, lifecycleErr(op, ErrValidation, requestID, nil)
	}

	details, err := s.requests.GetDetails(ctx, requestID)
	if err != nil {
		return nil, s.internal(ctx, sink, op, requestID, err)
	}
	if details == nil {
		sink.Error(ctx, msgRequestMissing)
		return nil, lifecycleErr(op, ErrNotFound, requestID, nil)
	}
	if details.User == nil {
		sink.Error(ctx, msgUserMissing)
		return nil, lifecycleErr(op, ErrNotFound, requestID, errors.New("requesting user"))
	}
	if details.DataModel == nil {
		sink.Error(ctx, msgGrantModelOutdated)
		return nil, lifecycleErr(op, ErrNotFound, requestID, errors.New("data model"))
	}

	req := details.Request
	if req.Downloaded {
		sink.Error(ctx, msgAlreadyDownloaded)
		return nil, lifecycleErr(op, ErrInvalidState, requestID, nil)
	}

	job := encryption.NewJob(s.cfg.EncryptedDatasetRoot, req, details.DataModel)

	result, err := s.gateway.Encrypt(ctx, job)
	if err != nil {
		s.logEncryptionFailure(requestID, job, err)
		sink.Error(ctx, msgEncryptFailed+truncateDiagnostic(err.Error()))
		return nil, lifecycleErr(op, ErrEncryptionFailed, requestID, err)
	}

	if err := s.requests.SetDecision(ctx, requestID, true, false); err != nil {
		// Архив уже создан, а флаг не выставлен: нужна ручная сверка
		s.logger.Error("Dataset encrypted but grant was not saved",
			zap.Int64("request_id", requestID),
			zap.String("archive_path", result.ArchivePath),
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
		if errors.Is(err, repository.ErrNotFound) {
			// за время шифрования заявку скачали или удалили
			return nil, s.explainMissedWrite(ctx, sink, op, requestID)
		}
		sink.Error(ctx, msgGrantFailed)
		return nil, lifecycleErr(op, ErrPersistence, requestID, err)
	}

	req.Granted = true
	req.Denied = false

	s.publisher.PublishUpdate(ctx, model.RequestUpdate{
		RequestID:        req.ID,
		RequestingUserID: req.RequestingUserID,
		Granted:          true,
		Denied:           false,
	})

	s.logger.Info("Data request granted",
		zap.Int64("request_id", requestID),
		zap.String("archive_path", result.ArchivePath),
		zap.String("job_id", job.ID.String()))

	sink.Success(ctx, msgGranted)
	return req, nil
}

func (s *RequestService) logEncryptionFailure(requestID int64, job encryption.Job, err error) {
	var failure *encryption.Failure
	if !errors.As(err, &failure) {
		s.logger.Error("Encryption failed",
			zap.Int64("request_id", requestID),
			zap.String("job_id", job.ID.String()),
			zap.Error(err))
		return
	}

	s.logger.Error("Encryption failed",
		zap.Int64("request_id", requestID),
		zap.String("job_id", job.ID.String()),
		zap.String("command", failure.Command),
		zap.Int("exit_code", failure.ExitCode),
		zap.Error(err))
	s.logger.Debug("Encryption output",
		zap.Int64("request_id", requestID),
		zap.String("stdout", failure.Stdout),
		zap.String("stderr", failure.Stderr))
}

// MarkDownloaded помечает заявку скачанной и возвращает путь к архиву
func (s *RequestService) MarkDownloaded(ctx context.Context, sink notice.Sink, requestID int64) (string, error) {
	return s.markDownloaded(ctx, sink, requestID, nil)
}

// MarkDownloadedBy работает как MarkDownloaded, но только для автора заявки или администратора.
// Чужая заявка выглядит как несуществующая.
func (s *RequestService) MarkDownloadedBy(ctx context.Context, sink notice.Sink, requestID int64, actor *model.User) (string, error) {
	if actor == nil {
		sink.Error(ctx, msgRequestMissing)
		return "", lifecycleErr("download", ErrNotFound, requestID, errors.New("no actor"))
	}
	return s.markDownloaded(ctx, sink, requestID, actor)
}

func (s *RequestService) markDownloaded(ctx context.Context, sink notice.Sink, requestID int64, actor *model.User) (string, error) {
	const op = "download"

	if requestID <= 0 {
		sink.Error(ctx, msgRequestIDRequired)
		return "", lifecycleErr(op, ErrValidation, requestID, nil)
	}

	details, err := s.requests.GetDetails(ctx, requestID)
	if err != nil {
		return "", s.internal(ctx, sink, op, requestID, err)
	}
	if details == nil || details.User == nil {
		sink.Error(ctx, msgRequestMissing)
		return "", lifecycleErr(op, ErrNotFound, requestID, nil)
	}

	req := details.Request
	if actor != nil && !actor.IsAdmin && actor.ID != req.RequestingUserID {
		sink.Error(ctx, msgRequestMissing)
		return "", lifecycleErr(op, ErrNotFound, requestID, fmt.Errorf("user %d is not the requester", actor.ID))
	}

	if details.DataModel == nil {
		sink.Error(ctx, msgDownloadOutdated)
		return "", lifecycleErr(op, ErrNotFound, requestID, errors.New("data model"))
	}

	if !req.Granted {
		sink.Error(ctx, msgNotGranted)
		return "", lifecycleErr(op, ErrInvalidState, requestID, nil)
	}

	link := encryption.ArchivePath(s.cfg.EncryptedDatasetRoot, details.DataModel.FileSafeName, req.Dataset, req.RequestingUserID)

	if _, err := os.Stat(link); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Granted request has no archive",
				zap.Int64("request_id", requestID),
				zap.String("archive_path", link))
			sink.Error(ctx, msgArchiveMissing)
			return "", lifecycleErr(op, ErrNotFound, requestID, err)
		}
		return "", s.internal(ctx, sink, op, requestID, err)
	}

	if !req.Downloaded {
		err := s.requests.MarkDownloaded(ctx, requestID)
		if errors.Is(err, repository.ErrNotFound) {
			// решение поменялось после чтения: UPDATE проверяет granted сам
			return "", s.explainMissedWrite(ctx, sink, op, requestID)
		}
		if err != nil {
			s.logger.Error("Failed to mark request downloaded", zap.Int64("request_id", requestID), zap.Error(err))
			sink.Error(ctx, msgDownloadFailed)
			return "", lifecycleErr(op, ErrPersistence, requestID, err)
		}
		req.Downloaded = true
	}

	s.logger.Debug("Request is being fulfilled and downloaded",
		zap.Int64("request_id", requestID),
		zap.String("archive_path", link))

	sink.Success(ctx, msgDownloadReady)
	return link, nil
}

// DeleteAll удаляет все заявки; работает только при включённом флаге конфигурации
func (s *RequestService) DeleteAll(ctx context.Context, sink notice.Sink) (int64, error) {
	const op = "delete all"

	if !s.cfg.AllowDeleteAll {
		s.logger.Warn("Refused to delete all requests: disabled by configuration")
		sink.Error(ctx, msgDeleteAllDisabled)
		return 0, lifecycleErr(op, ErrDeleteAllDisabled, 0, nil)
	}

	deleted, err := s.requests.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("Failed to delete all requests", zap.Error(err))
		sink.Error(ctx, msgDeleteAllFailed)
		return 0, lifecycleErr(op, ErrPersistence, 0, err)
	}

	s.logger.Warn("All data requests deleted", zap.Int64("count", deleted))
	sink.Success(ctx, msgDeletedAll)
	return deleted, nil
}

// ListForUser возвращает заявки пользователя (дашборд исследователя)
func (s *RequestService) ListForUser(ctx context.Context, userID int64) ([]*model.RequestDetails, error) {
	requests, err := s.requests.ListDetailsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user requests: %w", err)
	}
	return requests, nil
}

// explainMissedWrite перечитывает заявку, когда условный UPDATE не затронул строк,
// и сообщает причину: заявки нет, она скачана или не одобрена
func (s *RequestService) explainMissedWrite(ctx context.Context, sink notice.Sink, op string, requestID int64) error {
	req, err := s.requests.GetByID(ctx, requestID)
	switch {
	case err != nil:
		return s.internal(ctx, sink, op, requestID, err)
	case req == nil:
		sink.Error(ctx, msgRequestMissing)
		return lifecycleErr(op, ErrNotFound, requestID, nil)
	case req.Downloaded:
		sink.Error(ctx, msgAlreadyDownloaded)
		return lifecycleErr(op, ErrInvalidState, requestID, nil)
	case !req.Granted:
		sink.Error(ctx, msgNotGranted)
		return lifecycleErr(op, ErrInvalidState, requestID, nil)
	default:
		return s.internal(ctx, sink, op, requestID, errors.New("conditional update matched no rows"))
	}
}

func truncateDiagnostic(text string) string {
	runes := []rune(text)
	if len(runes) <= maxDiagnosticLength {
		return text
	}
	return string(runes[:maxDiagnosticLength]) + "..."
}

func (s *RequestService) internal(ctx context.Context, sink notice.Sink, op string, requestID int64, err error) error {
	s.logger.Error("Unexpected store failure",
		zap.String("op", op),
		zap.Int64("request_id", requestID),
		zap.Error(err))
	sink.Error(ctx, msgUnexpected)
	return lifecycleErr(op, ErrInternal, requestID, err)
}
