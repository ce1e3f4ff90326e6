package handlers

import (
	"context"
	"strings"

	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dataset_request_bot/internal/model"
	"github.com/Freeeeeet/dataset_request_bot/internal/notice"
	"github.com/Freeeeeet/dataset_request_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет HTML-сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// flush отправляет результат операции в чат
func (h *Handlers) flush(ctx context.Context, b *bot.Bot, chatID int64, flash *notice.Flash) {
	common.SendFlash(ctx, b, chatID, flash, h.logger)
}

// parseRequestArgs разбирает "/request <Model__dataset> <pii|non_pii> [message]".
// Ключ может содержать пробелы: он заканчивается перед типом заявки.
// Недостающие поля остаются пустыми, их проверяет сервис.
func parseRequestArgs(text string, requesterID int64) service.CreateRequestInput {
	in := service.CreateRequestInput{RequestingUserID: requesterID}

	_, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	var key []string
	for rest = strings.TrimSpace(rest); rest != ""; {
		head, tail, _ := strings.Cut(rest, " ")
		rest = strings.TrimSpace(tail)

		if t := model.RequestType(strings.ToLower(head)); t.Valid() && len(key) > 0 {
			in.RequestType = t
			in.Message = rest
			break
		}
		key = append(key, head)
	}

	in.DatasetKey = strings.Join(key, " ")
	return in
}

// parseDataModelArgs разбирает "/newdatamodel <displayName> <fileSafeName>";
// последнее слово задаёт имя каталога, остальные образуют отображаемое имя
func parseDataModelArgs(text string) (displayName, fileSafeName string) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return "", ""
	}
	return strings.Join(fields[1:len(fields)-1], " "), fields[len(fields)-1]
}
