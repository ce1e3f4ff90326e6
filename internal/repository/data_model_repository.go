package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
	"github.com/Freeeeeet/dataset_request_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dataModelColumns = `id, display_name, file_safe_name, created_at`

type DataModelRepository struct {
	*base.Repository
}

func NewDataModelRepository(pool *pgxpool.Pool) *DataModelRepository {
	return &DataModelRepository{Repository: base.NewRepository(pool)}
}

func scanDataModel(row pgx.Row) (*model.DataModel, error) {
	var dm model.DataModel
	if err := row.Scan(&dm.ID, &dm.DisplayName, &dm.FileSafeName, &dm.CreatedAt); err != nil {
		return nil, err
	}
	return &dm, nil
}

// Create создаёт модель данных
func (r *DataModelRepository) Create(ctx context.Context, dm *model.DataModel) error {
	query := `
		INSERT INTO data_models (display_name, file_safe_name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := r.QueryRow(ctx, query, dm.DisplayName, dm.FileSafeName).Scan(&dm.ID, &dm.CreatedAt); err != nil {
		return fmt.Errorf("create data model: %w", err)
	}

	return nil
}

// GetByID получает модель данных по ID
func (r *DataModelRepository) GetByID(ctx context.Context, id int64) (*model.DataModel, error) {
	query := `SELECT ` + dataModelColumns + ` FROM data_models WHERE id = $1`

	dm, err := scanDataModel(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get data model: %w", err)
	}

	return dm, nil
}

// GetByDisplayName ищет модель по отображаемому имени (первая часть составного ключа)
func (r *DataModelRepository) GetByDisplayName(ctx context.Context, displayName string) (*model.DataModel, error) {
	query := `SELECT ` + dataModelColumns + ` FROM data_models WHERE display_name = $1`

	dm, err := scanDataModel(r.QueryRow(ctx, query, displayName))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get data model by display name: %w", err)
	}

	return dm, nil
}

// List возвращает все модели данных
func (r *DataModelRepository) List(ctx context.Context) ([]*model.DataModel, error) {
	query := `SELECT ` + dataModelColumns + ` FROM data_models ORDER BY display_name ASC`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list data models: %w", err)
	}
	defer rows.Close()

	var models []*model.DataModel
	for rows.Next() {
		dm, err := scanDataModel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan data model: %w", err)
		}
		models = append(models, dm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate data models: %w", err)
	}

	return models, nil
}

// Delete удаляет модель данных. Заявки на неё остаются, скачивание по ним
// после этого недоступно.
func (r *DataModelRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM data_models WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete data model: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete data model %d: %w", id, ErrNotFound)
	}

	return nil
}
