package callbacktypes

import (
	"github.com/Freeeeeet/dataset_request_bot/internal/service"
	"go.uber.org/zap"
)

// Handler содержит зависимости для обработки callback queries
type Handler struct {
	UserService    *service.UserService
	RequestService *service.RequestService
	AdminService   *service.AdminService
	Logger         *zap.Logger
}
