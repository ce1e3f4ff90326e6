package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/dataset_request_bot/internal/notice"
)

// HandleRequests показывает все заявки с кнопками решения (только админ)
func (h *Handlers) HandleRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	chatID := update.Message.Chat.ID

	requests, err := h.adminService.ListRequests(ctx)
	if err != nil {
		h.logger.Error("Failed to list requests", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Failed to load requests. Please try again later.")
		return
	}

	if len(requests) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 There are no requests.", nil)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("📋 <b>Requests</b>: %d total", len(requests)), nil)
	for i, d := range requests {
		if i == maxListedRequests {
			h.sendMessage(ctx, b, chatID, "…older requests are not shown", nil)
			break
		}
		h.sendMessage(ctx, b, chatID, formatting.FormatRequest(d, true), common.RequestKeyboard(d.Request, true))
	}
}

// HandleUsers показывает список пользователей (только админ)
func (h *Handlers) HandleUsers(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	users, err := h.adminService.ListUsers(ctx)
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Failed to load users. Please try again later.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, formatting.FormatUsers(users), nil)
}

// HandleDataModels показывает модели данных с кнопками удаления (только админ)
func (h *Handlers) HandleDataModels(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	dataModels, err := h.adminService.ListDataModels(ctx)
	if err != nil {
		h.logger.Error("Failed to list data models", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Failed to load data models. Please try again later.")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, formatting.FormatDataModels(dataModels), common.DataModelsKeyboard(dataModels))
}

// HandleNewDataModel обрабатывает /newdatamodel <displayName> <fileSafeName>
func (h *Handlers) HandleNewDataModel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	flash := notice.NewFlash()
	displayName, fileSafeName := parseDataModelArgs(update.Message.Text)

	_, _ = h.adminService.CreateDataModel(ctx, flash, displayName, fileSafeName)
	h.flush(ctx, b, update.Message.Chat.ID, flash)
}

// HandleDeleteAll удаляет все заявки, если это разрешено конфигурацией
func (h *Handlers) HandleDeleteAll(ctx context.Context, b *bot.Bot, update *models.Update) {
	admin, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	flash := notice.NewFlash()

	deleted, err := h.requestService.DeleteAll(ctx, flash)
	if err == nil {
		h.logger.Warn("Requests deleted from chat",
			zap.Int64("admin_id", admin.ID),
			zap.Int64("count", deleted))
	}

	h.flush(ctx, b, update.Message.Chat.ID, flash)
}
