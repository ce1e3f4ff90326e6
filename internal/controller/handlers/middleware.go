package handlers

import (
	"context"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireUser проверяет что пользователь существует
// Возвращает user и true если OK, nil и false если нет
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	user, err := h.userService.GetByTelegramID(ctx, telegramID)

	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ An error occurred. Please try again later.")
		return nil, false
	}

	if user == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ User not found. Use /start to register.")
		return nil, false
	}

	return user, true
}

// requireAdmin проверяет что пользователь является администратором
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}

	if !user.IsAdmin {
		h.logger.Warn("Admin command refused",
			zap.Int64("user_id", user.ID),
			zap.String("text", update.Message.Text))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ This command is available to administrators only.")
		return nil, false
	}

	return user, true
}
