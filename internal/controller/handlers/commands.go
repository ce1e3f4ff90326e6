package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const researcherHelp = "/request &lt;Model__dataset&gt; &lt;pii|non_pii&gt; [message] - Request a dataset\n" +
	"/myrequests - My requests and downloads\n" +
	"/help - Show this help"

const adminHelp = "\n\nFor administrators:\n" +
	"/requests - Manage data requests\n" +
	"/users - List users\n" +
	"/datamodels - Manage data models\n" +
	"/newdatamodel &lt;displayName&gt; &lt;fileSafeName&gt; - Add a data model\n" +
	"/deleteall - Delete all requests"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := update.Message.From

	registeredUser, err := h.userService.RegisterUser(
		ctx,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Registration failed. Please try again later.")
		return
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n\n"+
			"This bot handles requests for research datasets. "+
			"An administrator reviews every request; once it is granted you can download the encrypted archive here.\n\n"+
			"Available commands:\n%s",
		html.EscapeString(registeredUser.DisplayName()),
		researcherHelp,
	)
	if registeredUser.IsAdmin {
		text += adminHelp
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, text, nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := "📚 Commands:\n\n" + researcherHelp

	if update.Message.From != nil {
		user, err := h.userService.GetByTelegramID(ctx, update.Message.From.ID)
		if err != nil {
			h.logger.Warn("Failed to load user for help", zap.Error(err))
		}
		if user != nil && user.IsAdmin {
			text += adminHelp
		}
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, text, nil)
}
