package callbacks

import (
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/common/formatting"
)

// HandleDownload отдаёт автору зашифрованный архив одобренной заявки
func HandleDownload(hc *common.HandlerContext, requestID int64) {
	hc.Answer("⏳ Preparing download...")

	link, err := hc.Handler.RequestService.MarkDownloadedBy(hc.Ctx, hc.Flash, requestID, hc.User)
	if err != nil {
		hc.Handler.Logger.Info("Download refused",
			zap.Int64("request_id", requestID),
			zap.Int64("user_id", hc.User.ID),
			zap.Error(err))
		hc.FlushFlash()
		return
	}

	file, err := os.Open(link)
	if err != nil {
		hc.Handler.Logger.Error("Failed to open archive",
			zap.Int64("request_id", requestID),
			zap.String("archive_path", link),
			zap.Error(err))
		hc.Flash.Drain()
		hc.Flash.Error(hc.Ctx, "An error occurred while preparing the download")
		hc.FlushFlash()
		return
	}
	defer file.Close()

	_, err = hc.Bot.SendDocument(hc.Ctx, &bot.SendDocumentParams{
		ChatID:   hc.ChatID,
		Document: &models.InputFileUpload{Filename: filepath.Base(link), Data: file},
		Caption:  common.FlashText(hc.Flash.Drain()),
	})
	if err != nil {
		hc.Handler.Logger.Error("Failed to send archive",
			zap.Int64("request_id", requestID),
			zap.String("archive_path", link),
			zap.Error(err))
		hc.Flash.Error(hc.Ctx, "Failed to send the archive, please try again")
		hc.FlushFlash()
		return
	}

	hc.Handler.Logger.Info("Archive sent",
		zap.Int64("request_id", requestID),
		zap.Int64("user_id", hc.User.ID))
}

// HandleGrant шифрует датасет и одобряет заявку
func HandleGrant(hc *common.HandlerContext, requestID int64) {
	hc.Answer("⏳ Encrypting dataset...")

	_, _ = hc.Handler.RequestService.Grant(hc.Ctx, hc.Flash, requestID)
	hc.FlushFlash()
	refreshRequest(hc, requestID)
}

// HandleDeny отклоняет заявку
func HandleDeny(hc *common.HandlerContext, requestID int64) {
	_ = hc.Handler.RequestService.Deny(hc.Ctx, hc.Flash, requestID)
	hc.Answer("")
	hc.FlushFlash()
	refreshRequest(hc, requestID)
}

// HandleDeleteDataModel удаляет модель данных и обновляет список
func HandleDeleteDataModel(hc *common.HandlerContext, dataModelID int64) {
	_ = hc.Handler.AdminService.DeleteDataModel(hc.Ctx, hc.Flash, dataModelID)
	hc.Answer("")
	hc.FlushFlash()

	dataModels, err := hc.Handler.AdminService.ListDataModels(hc.Ctx)
	if err != nil {
		hc.Handler.Logger.Error("Failed to list data models", zap.Error(err))
		return
	}

	if err := hc.EditMessage(formatting.FormatDataModels(dataModels), common.DataModelsKeyboard(dataModels)); err != nil {
		hc.Handler.Logger.Warn("Failed to refresh data models message", zap.Error(err))
	}
}

// refreshRequest перерисовывает карточку заявки после решения
func refreshRequest(hc *common.HandlerContext, requestID int64) {
	details, err := hc.Handler.AdminService.GetRequest(hc.Ctx, requestID)
	if err != nil {
		hc.Handler.Logger.Error("Failed to reload request", zap.Int64("request_id", requestID), zap.Error(err))
		return
	}
	if details == nil {
		return
	}

	if err := hc.EditMessage(formatting.FormatRequest(details, true), common.RequestKeyboard(details.Request, true)); err != nil {
		hc.Handler.Logger.Warn("Failed to refresh request message",
			zap.Int64("request_id", requestID),
			zap.Error(err))
	}
}
