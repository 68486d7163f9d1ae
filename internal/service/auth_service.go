package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/domain/repository"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
	"github.com/yourusername/storefront-api/pkg/auth"
)

// minAdminPasswordLen — минимальная длина пароля администратора
const minAdminPasswordLen = 8

// AdminSession — результат входа администратора
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email"`
}

// AuthService аутентифицирует администраторов панели управления
type AuthService struct {
	adminRepo  repository.AdminUserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService создаёт сервис аутентификации
func NewAuthService(adminRepo repository.AdminUserRepository, jwtService *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		adminRepo:  adminRepo,
		jwtService: jwtService,
		logger:     logger.Named("auth"),
	}
}

// Login проверяет учётные данные и выпускает токен с ролью admin
func (s *AuthService) Login(email, password string) (*AdminSession, error) {
	email = normalizeEmail(email)

	admin, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Info("admin login: unknown email", zap.String("email", email))
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		return nil, err
	}
	if !admin.CheckPassword(password) {
		s.logger.Info("admin login: wrong password", zap.String("email", email))
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	token, expiresAt, err := s.jwtService.GenerateToken(fmt.Sprintf("admin:%d", admin.ID), admin.Email, auth.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("admin logged in", zap.Uint("admin_id", admin.ID))
	return &AdminSession{Token: token, ExpiresAt: expiresAt, Email: admin.Email}, nil
}

// CreateAdmin заводит администратора; используется CLI-командой
func (s *AuthService) CreateAdmin(email, password string) (*entity.AdminUser, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", apperrors.ErrValidation)
	}
	if len(password) < minAdminPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, minAdminPasswordLen)
	}

	admin := &entity.AdminUser{Email: email}
	if err := admin.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	s.logger.Info("admin created", zap.Uint("admin_id", admin.ID), zap.String("email", email))
	return admin, nil
}

// normalizeEmail приводит email к стандартному виду: trim пробелов + lowercase
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
