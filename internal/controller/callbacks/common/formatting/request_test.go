package formatting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
)

func TestFormatRequest(t *testing.T) {
	d := &model.RequestDetails{
		Request: &model.Request{
			ID:          5,
			Dataset:     "2020",
			RequestType: model.RequestTypePII,
			Message:     "<script>",
			Granted:     true,
			CreatedAt:   time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		},
		User:      &model.User{FirstName: "Ada", LastName: "Lovelace"},
		DataModel: &model.DataModel{DisplayName: "Census"},
	}

	text := FormatRequest(d, true)
	assert.Contains(t, text, "Request #5")
	assert.Contains(t, text, "Census / 2020")
	assert.Contains(t, text, "Granted")
	assert.Contains(t, text, "Ada Lovelace")
	assert.Contains(t, text, "&lt;script&gt;")
	assert.Contains(t, text, "01.03.2024 10:30")

	assert.NotContains(t, FormatRequest(d, false), "Ada Lovelace")
}

func TestFormatRequestDeletedRelations(t *testing.T) {
	d := &model.RequestDetails{
		Request: &model.Request{ID: 5, RequestingUserID: 3, DataModelID: 9, Dataset: "2020"},
	}

	text := FormatRequest(d, true)
	assert.Contains(t, text, "#9 (deleted)")
	assert.Contains(t, text, "#3 (deleted)")
	assert.Contains(t, text, "Pending")
}

func TestGetRequestStatusDisplay(t *testing.T) {
	assert.Equal(t, "Downloaded", GetRequestStatusDisplay(model.RequestStatusDownloaded).Text)
	assert.Equal(t, "Unknown", GetRequestStatusDisplay("bogus").Text)
}
