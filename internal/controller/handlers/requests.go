package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/dataset_request_bot/internal/notice"
)

// maxListedRequests ограничивает число карточек в одном ответе
const maxListedRequests = 20

// HandleRequest обрабатывает /request <Model__dataset> <pii|non_pii> [message]
func (h *Handlers) HandleRequest(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	flash := notice.NewFlash()
	in := parseRequestArgs(update.Message.Text, user.ID)

	req, err := h.requestService.Create(ctx, flash, in)
	h.flush(ctx, b, update.Message.Chat.ID, flash)
	if err != nil {
		h.logger.Debug("Request not created", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}

	h.logger.Debug("Request created from chat",
		zap.Int64("request_id", req.ID),
		zap.Int64("user_id", user.ID))
}

// HandleMyRequests показывает заявки пользователя с кнопками скачивания
func (h *Handlers) HandleMyRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}

	chatID := update.Message.Chat.ID

	requests, err := h.requestService.ListForUser(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to list user requests", zap.Int64("user_id", user.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Failed to load your requests. Please try again later.")
		return
	}

	if len(requests) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 You have no requests yet.\n\nCreate one: /request &lt;Model__dataset&gt; &lt;pii|non_pii&gt; [message]", nil)
		return
	}

	for i, d := range requests {
		if i == maxListedRequests {
			h.sendMessage(ctx, b, chatID, "…older requests are not shown", nil)
			break
		}
		h.sendMessage(ctx, b, chatID, formatting.FormatRequest(d, false), common.RequestKeyboard(d.Request, false))
	}
}
