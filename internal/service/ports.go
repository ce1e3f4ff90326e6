package service

import (
	"context"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
)

// RequestStore - хранилище заявок. Запись флагов выполняется одним UPDATE;
// операции записи без затронутых строк возвращают repository.ErrNotFound.
type RequestStore interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id int64) (*model.Request, error)
	GetDetails(ctx context.Context, id int64) (*model.RequestDetails, error)
	ListDetails(ctx context.Context) ([]*model.RequestDetails, error)
	ListDetailsByUser(ctx context.Context, userID int64) ([]*model.RequestDetails, error)
	SetDecision(ctx context.Context, id int64, granted, denied bool) error
	MarkDownloaded(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

type DataModelStore interface {
	Create(ctx context.Context, dm *model.DataModel) error
	GetByID(ctx context.Context, id int64) (*model.DataModel, error)
	GetByDisplayName(ctx context.Context, displayName string) (*model.DataModel, error)
	List(ctx context.Context) ([]*model.DataModel, error)
	Delete(ctx context.Context, id int64) error
}

// UpdatePublisher получает дельту {granted, denied} после успешного решения
type UpdatePublisher interface {
	PublishUpdate(ctx context.Context, update model.RequestUpdate)
}

type noopPublisher struct{}

func (noopPublisher) PublishUpdate(context.Context, model.RequestUpdate) {}
