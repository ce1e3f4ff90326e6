package handlers

import (
	"github.com/Freeeeeet/dataset_request_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService    *service.UserService
	requestService *service.RequestService
	adminService   *service.AdminService
	logger         *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	requestService *service.RequestService,
	adminService *service.AdminService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:    userService,
		requestService: requestService,
		adminService:   adminService,
		logger:         logger,
	}
}
