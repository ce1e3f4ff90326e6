package controller

import (
	"context"
	"strings"

	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/dataset_request_bot/internal/controller/handlers"
	"github.com/Freeeeeet/dataset_request_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	requestService *service.RequestService,
	adminService *service.AdminService,
	logger *zap.Logger,
) *BotController {
	cmdHandlers := handlers.NewHandlers(
		userService,
		requestService,
		adminService,
		logger,
	)

	callbackHandler := callbacks.NewHandler(
		userService,
		requestService,
		adminService,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)

	// Команды исследователя
	c.bot.RegisterHandlerMatchFunc(commandMatch("request"), c.handlers.HandleRequest)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/myrequests", bot.MatchTypeExact, c.handlers.HandleMyRequests)

	// Команды администратора
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/requests", bot.MatchTypeExact, c.handlers.HandleRequests)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/users", bot.MatchTypeExact, c.handlers.HandleUsers)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/datamodels", bot.MatchTypeExact, c.handlers.HandleDataModels)
	c.bot.RegisterHandlerMatchFunc(commandMatch("newdatamodel"), c.handlers.HandleNewDataModel)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/deleteall", bot.MatchTypeExact, c.handlers.HandleDeleteAll)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// commandMatch совпадает с командой с аргументами: "/request ..." но не "/requests"
func commandMatch(name string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		head, _, _ := strings.Cut(strings.TrimSpace(update.Message.Text), " ")
		head, _, _ = strings.Cut(head, "@")
		return head == "/"+name
	}
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Start"},
		{Command: "help", Description: "❓ Command reference"},
		{Command: "request", Description: "📝 Request a dataset"},
		{Command: "myrequests", Description: "📂 My requests"},
		{Command: "requests", Description: "📋 Manage requests (admin)"},
		{Command: "datamodels", Description: "🗂 Data models (admin)"},
		{Command: "users", Description: "👥 Users (admin)"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота; блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
