package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/app"
	"github.com/Freeeeeet/dataset_request_bot/internal/config"
	"github.com/Freeeeeet/dataset_request_bot/internal/controller"
	"github.com/Freeeeeet/dataset_request_bot/internal/encryption"
	"github.com/Freeeeeet/dataset_request_bot/internal/notify"
	"github.com/Freeeeeet/dataset_request_bot/internal/repository"
	"github.com/Freeeeeet/dataset_request_bot/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting dataset request bot",
		zap.String("environment", cfg.Environment),
		zap.Int("encrypt_workers", cfg.EncryptWorkers),
		zap.Bool("allow_delete_all", cfg.AllowDeleteAll))

	pool, err := app.ConnectDB(ctx, cfg.GetDBDSN(), logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pool)
	dataModelRepo := repository.NewDataModelRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)

	botInstance, err := bot.New(cfg.TelegramToken)
	if err != nil {
		return err
	}

	command, err := encryption.NewCommandGateway(encryption.CommandConfig{
		Command:              cfg.EncryptCommand,
		EncryptedDatasetRoot: cfg.EncryptedDatasetRoot,
		Timeout:              cfg.EncryptTimeout,
	}, logger)
	if err != nil {
		return err
	}

	encryptPool := encryption.NewPool(command, cfg.EncryptWorkers, logger)
	encryptPool.Start(ctx)
	defer encryptPool.Stop()

	publisher := notify.NewTelegramPublisher(botInstance, userRepo, cfg.AdminTelegramIDs, logger)

	userService := service.NewUserService(userRepo, cfg.AdminTelegramIDs, logger)
	requestService := service.NewRequestService(
		requestRepo,
		userRepo,
		dataModelRepo,
		encryptPool,
		publisher,
		service.RequestServiceConfig{
			EncryptedDatasetRoot: cfg.EncryptedDatasetRoot,
			AllowDeleteAll:       cfg.AllowDeleteAll,
		},
		logger,
	)
	adminService := service.NewAdminService(userRepo, requestRepo, dataModelRepo, logger)

	botController := controller.NewBotController(botInstance, userService, requestService, adminService, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		// меню команд не критично для работы
		logger.Warn("Bot commands menu not set", zap.Error(err))
	}

	err = botController.Start(ctx)
	logger.Info("Bot stopped")
	return err
}
