package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/domain/repository"
	"github.com/yourusername/storefront-api/internal/websocket"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

type MockBannerRepo struct{ mock.Mock }

func (m *MockBannerRepo) List(ctx context.Context) ([]entity.Banner, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Banner), args.Error(1)
}

func (m *MockBannerRepo) Sync(ctx context.Context, banners []entity.Banner) error {
	return m.Called(banners).Error(0)
}

type MockSectionRepo struct{ mock.Mock }

func (m *MockSectionRepo) List(ctx context.Context) ([]entity.HomeSection, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.HomeSection), args.Error(1)
}

func (m *MockSectionRepo) Sync(ctx context.Context, sections []entity.HomeSection) error {
	return m.Called(sections).Error(0)
}

type MockPromoRepo struct{ mock.Mock }

func (m *MockPromoRepo) List(ctx context.Context) ([]entity.PromoBanner, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PromoBanner), args.Error(1)
}

func (m *MockPromoRepo) Sync(ctx context.Context, banners []entity.PromoBanner) error {
	return m.Called(banners).Error(0)
}

type MockCacheRepo struct{ mock.Mock }

func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return m.Called(key, dest).Error(0)
}

func (m *MockCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(key, value, ttl).Error(0)
}

func (m *MockCacheRepo) Delete(ctx context.Context, keys ...string) error {
	return m.Called(keys[0]).Error(0)
}

func (m *MockCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

type MockCategoryRepo struct{ mock.Mock }

func (m *MockCategoryRepo) Create(category *entity.Category) error {
	return m.Called(category).Error(0)
}

func (m *MockCategoryRepo) GetByID(id uint) (*entity.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepo) List(activeOnly bool) ([]entity.Category, error) {
	args := m.Called(activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepo) Update(category *entity.Category) error {
	return m.Called(category).Error(0)
}

func (m *MockCategoryRepo) Delete(id uint) error {
	return m.Called(id).Error(0)
}

func (m *MockCategoryRepo) CountProducts(id uint) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

type MockProductRepo struct{ mock.Mock }

func (m *MockProductRepo) Create(product *entity.Product) error {
	return m.Called(product).Error(0)
}

func (m *MockProductRepo) GetByID(id uint) (*entity.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepo) List(filter repository.ProductFilter) ([]entity.Product, int64, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepo) Update(product *entity.Product) error {
	return m.Called(product).Error(0)
}

func (m *MockProductRepo) Delete(id uint) error {
	return m.Called(id).Error(0)
}

func (m *MockProductRepo) ExistsByName(name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepo) ListAll() ([]entity.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

type MockOrderRepo struct{ mock.Mock }

func (m *MockOrderRepo) CreateWithStock(order *entity.Order) error {
	return m.Called(order).Error(0)
}

func (m *MockOrderRepo) GetByID(id uint) (*entity.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepo) ListByUser(userID string, limit, offset int) ([]entity.Order, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Order), args.Error(1)
}

func (m *MockOrderRepo) List(status string, limit, offset int) ([]entity.Order, int64, error) {
	args := m.Called(status, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepo) UpdateStatus(id uint, status string, expectedVersion int) error {
	return m.Called(id, status, expectedVersion).Error(0)
}

type MockAdminRepo struct{ mock.Mock }

func (m *MockAdminRepo) GetByEmail(email string) (*entity.AdminUser, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AdminUser), args.Error(1)
}

func (m *MockAdminRepo) Create(user *entity.AdminUser) error {
	return m.Called(user).Error(0)
}

// ============================================================================
// Моки внешних зависимостей
// ============================================================================

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) SendToUser(ctx context.Context, userID string, event websocket.Event) error {
	return m.Called(userID, event).Error(0)
}

type MockEmailService struct{ mock.Mock }

func (m *MockEmailService) SendOrderStatus(ctx context.Context, order *entity.Order) error {
	return m.Called(order).Error(0)
}

type MockRehoster struct{ mock.Mock }

func (m *MockRehoster) Rehost(ctx context.Context, sourceURL, prefix string) (string, error) {
	args := m.Called(sourceURL, prefix)
	return args.String(0), args.Error(1)
}

type MockStorage struct{ mock.Mock }

func (m *MockStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(key).Error(0)
}

type MockAnalyzer struct{ mock.Mock }

func (m *MockAnalyzer) Analyze(ctx context.Context, imageURL string) (*ImageAnalysis, error) {
	args := m.Called(imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ImageAnalysis), args.Error(1)
}
