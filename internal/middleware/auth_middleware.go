package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/pkg/auth"
)

// Ключи контекста gin, которые выставляет RequireAuth
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// AuthMiddleware проверяет bearer-токены покупателей и администраторов
type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthMiddleware создает middleware аутентификации
func NewAuthMiddleware(jwtService *auth.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger.Named("auth_middleware"),
	}
}

// RequireAuth проверяет, аутентифицирован ли пользователь
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		// Проверяем формат заголовка Bearer {token}
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.jwtService.ParseToken(parts[1])
		if err != nil {
			errorType := "token_invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				errorType = "token_expired"
			}
			m.logger.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errorType})
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// AdminOnly пропускает только токены с ролью admin. Применяется после RequireAuth.
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if c.GetString(ContextRole) != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin rights required"})
			return
		}
		c.Next()
	}
}

// UserID возвращает идентификатор пользователя, выставленный RequireAuth
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}
