package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
	"github.com/yourusername/storefront-api/pkg/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *MockAdminRepo, *auth.JWTService) {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret", 1, "storefront-test")
	require.NoError(t, err)
	repo := new(MockAdminRepo)
	return NewAuthService(repo, jwtService, zap.NewNop()), repo, jwtService
}

func adminWithPassword(t *testing.T, id uint, email, password string) *entity.AdminUser {
	t.Helper()
	admin := &entity.AdminUser{ID: id, Email: email}
	require.NoError(t, admin.SetPassword(password))
	return admin
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, jwtService := newTestAuthService(t)
	repo.On("GetByEmail", "owner@shop.test").Return(adminWithPassword(t, 3, "owner@shop.test", "correct-horse"), nil)

	session, err := svc.Login("  Owner@Shop.test ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "owner@shop.test", session.Email)

	claims, err := jwtService.ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin:3", claims.Subject)
	assert.True(t, claims.IsAdmin())
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	repo.On("GetByEmail", "owner@shop.test").Return(adminWithPassword(t, 3, "owner@shop.test", "correct-horse"), nil)
	repo.On("GetByEmail", "ghost@shop.test").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Login("owner@shop.test", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login("ghost@shop.test", "whatever")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Login_RepositoryFailure(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	dbErr := errors.New("connection refused")
	repo.On("GetByEmail", mock.Anything).Return(nil, dbErr)

	_, err := svc.Login("owner@shop.test", "x")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_CreateAdmin(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	repo.On("Create", mock.Anything).Return(nil)

	_, err := svc.CreateAdmin("not-an-email", "long-enough")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CreateAdmin("new@shop.test", "short")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	admin, err := svc.CreateAdmin(" New@Shop.test", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, "new@shop.test", admin.Email)
	assert.True(t, admin.CheckPassword("long-enough"))
	repo.AssertNumberOfCalls(t, "Create", 1)
}
