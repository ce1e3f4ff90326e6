package common

import (
	"context"

	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/dataset_request_bot/internal/model"
	"github.com/Freeeeeet/dataset_request_bot/internal/notice"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandlerContext содержит общие данные для обработки callback:
// пользователя, сообщение и flash для ответа
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *callbacktypes.Handler
	Message    *models.Message
	User       *model.User
	Flash      *notice.Flash
	TelegramID int64
	ChatID     int64
}

// NewHandlerContext создаёт новый контекст обработчика
func NewHandlerContext(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	msg := GetMessageFromCallback(callback)
	chatID := callback.From.ID
	if msg != nil {
		chatID = msg.Chat.ID
	}

	return &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		Message:    msg,
		Flash:      notice.NewFlash(),
		TelegramID: callback.From.ID,
		ChatID:     chatID,
	}
}

// LoadUser загружает пользователя в контекст
func (hc *HandlerContext) LoadUser() error {
	user, err := hc.Handler.UserService.GetByTelegramID(hc.Ctx, hc.TelegramID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	hc.User = user
	return nil
}

// RequireUser проверяет что пользователь загружен
func (hc *HandlerContext) RequireUser() error {
	if hc.User == nil {
		return hc.LoadUser()
	}
	return nil
}

// RequireAdmin проверяет что пользователь является администратором
func (hc *HandlerContext) RequireAdmin() error {
	if err := hc.RequireUser(); err != nil {
		return err
	}
	if !hc.User.IsAdmin {
		return ErrNotAnAdmin
	}
	return nil
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	AnswerCallback(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	AnswerCallbackAlert(hc.Ctx, hc.Bot, hc.Callback.ID, text)
}

// EditMessage редактирует сообщение
func (hc *HandlerContext) EditMessage(text string, keyboard models.ReplyMarkup) error {
	if hc.Message == nil {
		return ErrNoMessage
	}

	_, err := hc.Bot.EditMessageText(hc.Ctx, &bot.EditMessageTextParams{
		ChatID:      hc.ChatID,
		MessageID:   hc.Message.ID,
		Text:        text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard,
	})

	// "message is not modified" не считается ошибкой
	if IsMessageNotModifiedError(err) {
		return nil
	}

	return err
}

// FlushFlash отправляет результат операции в чат
func (hc *HandlerContext) FlushFlash() {
	SendFlash(hc.Ctx, hc.Bot, hc.ChatID, hc.Flash, hc.Handler.Logger)
}
