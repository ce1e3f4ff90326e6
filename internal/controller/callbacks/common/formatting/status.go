package formatting

import "github.com/Freeeeeet/dataset_request_bot/internal/model"

// RequestStatusDisplay представляет отображение статуса заявки
type RequestStatusDisplay struct {
	Emoji string
	Text  string
}

// GetRequestStatusDisplay возвращает emoji и текст для статуса заявки
func GetRequestStatusDisplay(status model.RequestStatus) RequestStatusDisplay {
	displays := map[model.RequestStatus]RequestStatusDisplay{
		model.RequestStatusPending:    {"⏳", "Pending"},
		model.RequestStatusGranted:    {"✅", "Granted"},
		model.RequestStatusDenied:     {"🚫", "Denied"},
		model.RequestStatusDownloaded: {"📦", "Downloaded"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return RequestStatusDisplay{"❓", "Unknown"}
}

// RequestTypeText возвращает подпись для типа заявки
func RequestTypeText(t model.RequestType) string {
	switch t {
	case model.RequestTypePII:
		return "PII"
	case model.RequestTypeNonPII:
		return "Non-PII"
	default:
		return string(t)
	}
}
