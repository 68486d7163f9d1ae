package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/websocket"
	"github.com/yourusername/storefront-api/pkg/auth"
)

// WSHandler обрабатывает WebSocket соединения со статусами заказов
type WSHandler struct {
	hub        *websocket.Hub
	jwtService *auth.JWTService
	upgrader   gorillaws.Upgrader
	logger     *zap.Logger
}

// NewWSHandler создает обработчик WebSocket. allowedOrigins совпадает со списком CORS.
func NewWSHandler(hub *websocket.Hub, jwtService *auth.JWTService, allowedOrigins []string, logger *zap.Logger) *WSHandler {
	logger = logger.Named("ws_handler")
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return &WSHandler{
		hub:        hub,
		jwtService: jwtService,
		logger:     logger,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Мобильное приложение Origin не присылает
				if origin == "" || allowed[origin] {
					return true
				}
				logger.Warn("rejected websocket origin", zap.String("origin", origin))
				return false
			},
		},
	}
}

// HandleConnection поднимает соединение для пользователя из токена
// GET /ws?token=...
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token parameter", "error_type": "token_missing"})
		return
	}

	claims, err := h.jwtService.ParseToken(token)
	if err != nil {
		// сам токен не логируем
		h.logger.Info("websocket token rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, claims.Subject)
	if err := client.Serve(); err != nil {
		h.logger.Warn("websocket client rejected", zap.String("user_id", claims.Subject), zap.Error(err))
	}
}

// Stats возвращает счётчики хаба
// GET /api/admin/ws/stats
func (h *WSHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Metrics())
}
