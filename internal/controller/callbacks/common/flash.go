package common

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/notice"
)

// FlashText собирает сообщения операции в текст ответа
func FlashText(msgs []notice.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		prefix := "✅ "
		if m.Level == notice.LevelError {
			prefix = "❌ "
		}
		lines = append(lines, prefix+m.Text)
	}
	return strings.Join(lines, "\n")
}

// SendFlash отправляет накопленные сообщения в чат и очищает flash
func SendFlash(ctx context.Context, b *bot.Bot, chatID int64, flash *notice.Flash, logger *zap.Logger) {
	text := FlashText(flash.Drain())
	if text == "" {
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		logger.Error("Failed to send flash message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
