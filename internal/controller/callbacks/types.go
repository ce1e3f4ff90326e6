package callbacks

import (
	"context"

	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dataset_request_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler обертка для callbacktypes.Handler с методами
type Handler struct {
	*callbacktypes.Handler
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	requestService *service.RequestService,
	adminService *service.AdminService,
	logger *zap.Logger,
) *Handler {
	inner := &callbacktypes.Handler{
		UserService:    userService,
		RequestService: requestService,
		AdminService:   adminService,
		Logger:         logger,
	}
	return &Handler{Handler: inner}
}

// HandleCallbackQuery - главный обработчик callback queries
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.Logger.Debug("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h.Handler)
}
