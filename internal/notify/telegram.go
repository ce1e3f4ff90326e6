// Package notify delivers request change notifications to live observers.
package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// TelegramPublisher рассылает изменение заявки автору и наблюдателям-админам.
// Ошибки доставки только логируются.
type TelegramPublisher struct {
	sender   messageSender
	users    userLookup
	watchers []int64
	logger   *zap.Logger
}

func NewTelegramPublisher(sender messageSender, users userLookup, watcherChatIDs []int64, logger *zap.Logger) *TelegramPublisher {
	return &TelegramPublisher{
		sender:   sender,
		users:    users,
		watchers: watcherChatIDs,
		logger:   logger,
	}
}

func (p *TelegramPublisher) PublishUpdate(ctx context.Context, update model.RequestUpdate) {
	sent := make(map[int64]struct{})

	user, err := p.users.GetByID(ctx, update.RequestingUserID)
	if err != nil {
		p.logger.Error("Failed to resolve requester for notification",
			zap.Int64("request_id", update.RequestID),
			zap.Int64("user_id", update.RequestingUserID),
			zap.Error(err))
	} else if user != nil {
		p.send(ctx, user.TelegramID, requesterText(update), update.RequestID)
		sent[user.TelegramID] = struct{}{}
	}

	for _, chatID := range p.watchers {
		if _, ok := sent[chatID]; ok {
			continue
		}
		p.send(ctx, chatID, watcherText(update), update.RequestID)
		sent[chatID] = struct{}{}
	}
}

func (p *TelegramPublisher) send(ctx context.Context, chatID int64, text string, requestID int64) {
	_, err := p.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		p.logger.Warn("Failed to deliver request update",
			zap.Int64("request_id", requestID),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func requesterText(update model.RequestUpdate) string {
	switch {
	case update.Granted:
		return fmt.Sprintf("✅ Your data request #%d has been granted.\n\nUse /myrequests to download it.", update.RequestID)
	case update.Denied:
		return fmt.Sprintf("❌ Your data request #%d has been denied.", update.RequestID)
	default:
		return fmt.Sprintf("ℹ️ Your data request #%d has been updated.", update.RequestID)
	}
}

func watcherText(update model.RequestUpdate) string {
	return fmt.Sprintf("📩 Request #%d updated: granted=%t, denied=%t", update.RequestID, update.Granted, update.Denied)
}
