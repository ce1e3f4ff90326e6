package common

import (
	"strconv"

	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/dataset_request_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/dataset_request_bot/internal/model"
)

// Форматы callback data
const (
	DownloadRequest = "download_request:"  // download_request:request_id
	GrantRequest    = "grant_request:"     // grant_request:request_id
	DenyRequest     = "deny_request:"      // deny_request:request_id
	DeleteDataModel = "delete_data_model:" // delete_data_model:data_model_id
)

func withID(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

// RequestKeyboard строит кнопки для заявки.
// Админ видит решение, пока заявка не скачана; автор видит скачивание после одобрения.
func RequestKeyboard(req *model.Request, admin bool) models.ReplyMarkup {
	kb := keyboard.NewBuilder()

	if admin && !req.Downloaded {
		var row []models.InlineKeyboardButton
		if !req.Granted {
			row = append(row, keyboard.Button("✅ Grant", withID(GrantRequest, req.ID)))
		}
		if !req.Denied {
			row = append(row, keyboard.Button("🚫 Deny", withID(DenyRequest, req.ID)))
		}
		kb.Row(row...)
	}

	if !admin && req.Granted {
		kb.Row(keyboard.Button("⬇️ Download", withID(DownloadRequest, req.ID)))
	}

	return kb.Markup()
}

// DataModelsKeyboard строит кнопки удаления моделей данных
func DataModelsKeyboard(dataModels []*model.DataModel) models.ReplyMarkup {
	kb := keyboard.NewBuilder()
	for _, dm := range dataModels {
		kb.Row(keyboard.Button("🗑 Delete "+dm.DisplayName, withID(DeleteDataModel, dm.ID)))
	}
	return kb.Markup()
}
