package common

import "errors"

// Общие ошибки для обработчиков
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNotAnAdmin    = errors.New("user is not an admin")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ User not found. Use /start to register"
	case errors.Is(err, ErrNotAnAdmin):
		return "❌ This action is available to administrators only"
	case errors.Is(err, ErrNoMessage):
		return "❌ Failed to process the message"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Invalid request"
	default:
		return "❌ An error occurred"
	}
}
