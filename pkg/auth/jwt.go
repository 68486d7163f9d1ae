package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Роли, которые понимает API
const (
	RoleAdmin    = "admin"
	RoleCustomer = "authenticated"
)

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenInvalid   = errors.New("token is invalid")
)

// JWTCustomClaims содержит пользовательские поля токена.
// Subject (sub) — идентификатор пользователя.
type JWTCustomClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin проверяет роль администратора
func (c *JWTCustomClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// JWTService выпускает и проверяет HS256 токены.
// Токены мобильного приложения выпускает провайдер аутентификации с тем же секретом.
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService создает новый сервис JWT
func NewJWTService(secret string, expirationHrs int, issuer string) (*JWTService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret cannot be empty")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{
		secret:     []byte(secret),
		expiration: time.Duration(expirationHrs) * time.Hour,
		issuer:     issuer,
		now:        time.Now,
	}, nil
}

// GenerateToken выпускает токен для пользователя с указанной ролью
func (s *JWTService) GenerateToken(subject, email, role string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &JWTCustomClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken проверяет подпись и срок действия токена
func (s *JWTService) ParseToken(tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, ErrTokenMalformed
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				return nil, ErrTokenExpired
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}
