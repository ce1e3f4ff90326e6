package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
	"github.com/Freeeeeet/dataset_request_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestColumns = `id, requesting_user_id, data_model_id, dataset, request_type, message,
	granted, denied, downloaded, created_at, updated_at`

// Заявка вместе с пользователем и моделью данных; LEFT JOIN, т.к. модель могли удалить
const requestDetailsQuery = `
	SELECT r.id, r.requesting_user_id, r.data_model_id, r.dataset, r.request_type, r.message,
	       r.granted, r.denied, r.downloaded, r.created_at, r.updated_at,
	       u.id, u.telegram_id, u.username, u.first_name, u.last_name, u.language_code, u.is_admin, u.created_at,
	       dm.id, dm.display_name, dm.file_safe_name, dm.created_at
	FROM requests r
	LEFT JOIN users u ON u.id = r.requesting_user_id
	LEFT JOIN data_models dm ON dm.id = r.data_model_id
`

type RequestRepository struct {
	*base.Repository
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{Repository: base.NewRepository(pool)}
}

func scanRequest(row pgx.Row) (*model.Request, error) {
	var req model.Request
	err := row.Scan(
		&req.ID,
		&req.RequestingUserID,
		&req.DataModelID,
		&req.Dataset,
		&req.RequestType,
		&req.Message,
		&req.Granted,
		&req.Denied,
		&req.Downloaded,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func scanRequestDetails(row pgx.Row) (*model.RequestDetails, error) {
	var (
		req model.Request

		userID           *int64
		userTelegramID   *int64
		userUsername     *string
		userFirstName    *string
		userLastName     *string
		userLanguageCode *string
		userIsAdmin      *bool
		userCreatedAt    *time.Time

		dmID           *int64
		dmDisplayName  *string
		dmFileSafeName *string
		dmCreatedAt    *time.Time
	)

	err := row.Scan(
		&req.ID,
		&req.RequestingUserID,
		&req.DataModelID,
		&req.Dataset,
		&req.RequestType,
		&req.Message,
		&req.Granted,
		&req.Denied,
		&req.Downloaded,
		&req.CreatedAt,
		&req.UpdatedAt,
		&userID,
		&userTelegramID,
		&userUsername,
		&userFirstName,
		&userLastName,
		&userLanguageCode,
		&userIsAdmin,
		&userCreatedAt,
		&dmID,
		&dmDisplayName,
		&dmFileSafeName,
		&dmCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	details := &model.RequestDetails{Request: &req}

	if userID != nil {
		details.User = &model.User{
			ID:           *userID,
			TelegramID:   *userTelegramID,
			Username:     *userUsername,
			FirstName:    *userFirstName,
			LastName:     *userLastName,
			LanguageCode: *userLanguageCode,
			IsAdmin:      *userIsAdmin,
			CreatedAt:    *userCreatedAt,
		}
	}

	if dmID != nil {
		details.DataModel = &model.DataModel{
			ID:           *dmID,
			DisplayName:  *dmDisplayName,
			FileSafeName: *dmFileSafeName,
			CreatedAt:    *dmCreatedAt,
		}
	}

	return details, nil
}

func collectRequestDetails(rows pgx.Rows) ([]*model.RequestDetails, error) {
	defer rows.Close()

	var list []*model.RequestDetails
	for rows.Next() {
		details, err := scanRequestDetails(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		list = append(list, details)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return list, nil
}

// Create создаёт заявку в исходном состоянии (все флаги false)
func (r *RequestRepository) Create(ctx context.Context, req *model.Request) error {
	query := `
		INSERT INTO requests (requesting_user_id, data_model_id, dataset, request_type, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, granted, denied, downloaded, created_at
	`

	err := r.QueryRow(
		ctx, query,
		req.RequestingUserID,
		req.DataModelID,
		req.Dataset,
		req.RequestType,
		req.Message,
	).Scan(&req.ID, &req.Granted, &req.Denied, &req.Downloaded, &req.CreatedAt)

	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	req, err := scanRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}

	return req, nil
}

// GetDetails загружает заявку вместе с пользователем и моделью данных
func (r *RequestRepository) GetDetails(ctx context.Context, id int64) (*model.RequestDetails, error) {
	details, err := scanRequestDetails(r.QueryRow(ctx, requestDetailsQuery+` WHERE r.id = $1`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request details: %w", err)
	}

	return details, nil
}

// ListDetails возвращает все заявки со связанными сущностями (страница администратора)
func (r *RequestRepository) ListDetails(ctx context.Context) ([]*model.RequestDetails, error) {
	rows, err := r.Query(ctx, requestDetailsQuery+` ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	return collectRequestDetails(rows)
}

// ListDetailsByUser возвращает заявки пользователя
func (r *RequestRepository) ListDetailsByUser(ctx context.Context, userID int64) ([]*model.RequestDetails, error) {
	rows, err := r.Query(ctx, requestDetailsQuery+` WHERE r.requesting_user_id = $1 ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user requests: %w", err)
	}

	return collectRequestDetails(rows)
}

// SetDecision атомарно выставляет пару granted/denied одним UPDATE.
// Скачанные заявки не меняются: в этом случае, как и при отсутствии заявки,
// возвращается ErrNotFound.
func (r *RequestRepository) SetDecision(ctx context.Context, id int64, granted, denied bool) error {
	query := `
		UPDATE requests
		SET granted = $1, denied = $2, updated_at = $3
		WHERE id = $4 AND downloaded = FALSE
	`

	err := r.ExecGuarded(ctx, query, granted, denied, time.Now(), id)
	if base.IsNotFound(err) {
		return fmt.Errorf("update request %d decision: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update request decision: %w", err)
	}

	return nil
}

// MarkDownloaded помечает одобренную заявку как скачанную.
// Если заявки нет или она не одобрена в момент записи, возвращается ErrNotFound.
func (r *RequestRepository) MarkDownloaded(ctx context.Context, id int64) error {
	query := `
		UPDATE requests
		SET downloaded = TRUE, updated_at = $1
		WHERE id = $2 AND granted = TRUE
	`

	err := r.ExecGuarded(ctx, query, time.Now(), id)
	if base.IsNotFound(err) {
		return fmt.Errorf("mark request %d downloaded: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("mark request downloaded: %w", err)
	}

	return nil
}

// DeleteAll удаляет все заявки и возвращает их количество
func (r *RequestRepository) DeleteAll(ctx context.Context) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM requests`)
	if err != nil {
		return 0, fmt.Errorf("delete all requests: %w", err)
	}

	return affected, nil
}
