package model

import "time"

// DataModel is an administratively managed dataset grouping.
// DisplayName is what researchers type in a composite dataset key,
// FileSafeName names the directory holding its encrypted archives.
type DataModel struct {
	ID           int64     `json:"id"`
	DisplayName  string    `json:"display_name"`
	FileSafeName string    `json:"file_safe_name"`
	CreatedAt    time.Time `json:"created_at"`
}
