package formatting

import (
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/dataset_request_bot/internal/model"
)

const dateLayout = "02.01.2006 15:04"

// FormatRequest форматирует заявку в HTML для Telegram.
// withRequester добавляет автора заявки (для админов).
func FormatRequest(d *model.RequestDetails, withRequester bool) string {
	req := d.Request
	status := GetRequestStatusDisplay(req.Status())

	dataModel := fmt.Sprintf("#%d (deleted)", req.DataModelID)
	if d.DataModel != nil {
		dataModel = d.DataModel.DisplayName
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>Request #%d</b>\n\n", status.Emoji, req.ID)
	fmt.Fprintf(&sb, "📁 Dataset: %s / %s\n", html.EscapeString(dataModel), html.EscapeString(req.Dataset))
	fmt.Fprintf(&sb, "🔐 Type: %s\n", RequestTypeText(req.RequestType))
	fmt.Fprintf(&sb, "📊 Status: %s\n", status.Text)

	if withRequester {
		requester := fmt.Sprintf("#%d (deleted)", req.RequestingUserID)
		if d.User != nil {
			requester = d.User.DisplayName()
		}
		fmt.Fprintf(&sb, "👤 Requester: %s\n", html.EscapeString(requester))
	}

	if req.Message != "" {
		fmt.Fprintf(&sb, "💬 %s\n", html.EscapeString(req.Message))
	}

	fmt.Fprintf(&sb, "📅 Created: %s", req.CreatedAt.Format(dateLayout))
	return sb.String()
}

// FormatDataModels форматирует список моделей данных
func FormatDataModels(dataModels []*model.DataModel) string {
	if len(dataModels) == 0 {
		return "No data models yet.\n\nCreate one: /newdatamodel &lt;displayName&gt; &lt;fileSafeName&gt;"
	}

	var sb strings.Builder
	sb.WriteString("🗂 <b>Data models</b>\n")
	for _, dm := range dataModels {
		fmt.Fprintf(&sb, "\n#%d %s → <code>%s</code>", dm.ID, html.EscapeString(dm.DisplayName), html.EscapeString(dm.FileSafeName))
	}
	return sb.String()
}

// FormatUsers форматирует список пользователей
func FormatUsers(users []*model.User) string {
	if len(users) == 0 {
		return "No users yet."
	}

	var sb strings.Builder
	sb.WriteString("👥 <b>Users</b>\n")
	for _, u := range users {
		role := ""
		if u.IsAdmin {
			role = " (admin)"
		}
		username := ""
		if u.Username != "" {
			username = " @" + u.Username
		}
		fmt.Fprintf(&sb, "\n#%d %s%s%s", u.ID, html.EscapeString(u.DisplayName()), html.EscapeString(username), role)
	}
	return sb.String()
}
