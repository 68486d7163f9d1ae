package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/handler/dto"
	"github.com/yourusername/storefront-api/internal/service"
)

// AuthHandler обрабатывает вход администраторов
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler создает обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger.Named("auth_handler")}
}

// Login выдаёт токен администратора
// POST /api/admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	session, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
