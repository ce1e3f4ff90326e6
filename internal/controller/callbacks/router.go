package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	switch {
	case data == "noop":
		common.AnswerCallback(ctx, b, callback.ID, "")

	// ===== Requester =====
	case strings.HasPrefix(data, common.DownloadRequest):
		withCallbackID(ctx, b, callback, h, func(id int64) {
			common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
				HandleDownload(hc, id)
			})
		})

	// ===== Admin =====
	case strings.HasPrefix(data, common.GrantRequest):
		withCallbackID(ctx, b, callback, h, func(id int64) {
			common.WithAdmin(ctx, b, callback, h, func(hc *common.HandlerContext) {
				HandleGrant(hc, id)
			})
		})
	case strings.HasPrefix(data, common.DenyRequest):
		withCallbackID(ctx, b, callback, h, func(id int64) {
			common.WithAdmin(ctx, b, callback, h, func(hc *common.HandlerContext) {
				HandleDeny(hc, id)
			})
		})
	case strings.HasPrefix(data, common.DeleteDataModel):
		withCallbackID(ctx, b, callback, h, func(id int64) {
			common.WithAdmin(ctx, b, callback, h, func(hc *common.HandlerContext) {
				HandleDeleteDataModel(hc, id)
			})
		})

	default:
		h.Logger.Warn("Unknown callback", zap.String("data", data))
		common.AnswerCallback(ctx, b, callback.ID, "⚠️ Unknown action")
	}
}

// withCallbackID разбирает ID из callback data, при ошибке отвечает alert
func withCallbackID(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler, next func(id int64)) {
	id, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		h.Logger.Warn("Failed to parse callback id", zap.String("data", callback.Data), zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}
	next(id)
}
