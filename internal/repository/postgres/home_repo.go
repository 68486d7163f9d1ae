package postgres

import (
	"context"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"gorm.io/gorm"
)

// BannerRepo реализует repository.BannerRepository
type BannerRepo struct {
	db *gorm.DB
}

// NewBannerRepo создаёт репозиторий баннеров
func NewBannerRepo(db *gorm.DB) *BannerRepo {
	return &BannerRepo{db: db}
}

// List возвращает баннеры в порядке показа
func (r *BannerRepo) List(ctx context.Context) ([]entity.Banner, error) {
	var banners []entity.Banner
	if err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

// Sync сохраняет полный набор баннеров
func (r *BannerRepo) Sync(ctx context.Context, banners []entity.Banner) error {
	return syncTable(r.db.WithContext(ctx), banners, func(b *entity.Banner) uint { return b.ID })
}

// HomeSectionRepo реализует repository.HomeSectionRepository
type HomeSectionRepo struct {
	db *gorm.DB
}

// NewHomeSectionRepo создаёт репозиторий секций
func NewHomeSectionRepo(db *gorm.DB) *HomeSectionRepo {
	return &HomeSectionRepo{db: db}
}

// List возвращает секции в порядке order_index
func (r *HomeSectionRepo) List(ctx context.Context) ([]entity.HomeSection, error) {
	var sections []entity.HomeSection
	if err := r.db.WithContext(ctx).Order("order_index ASC, id ASC").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// Sync сохраняет полный набор секций
func (r *HomeSectionRepo) Sync(ctx context.Context, sections []entity.HomeSection) error {
	return syncTable(r.db.WithContext(ctx), sections, func(s *entity.HomeSection) uint { return s.ID })
}

// PromoBannerRepo реализует repository.PromoBannerRepository
type PromoBannerRepo struct {
	db *gorm.DB
}

// NewPromoBannerRepo создаёт репозиторий баннеров слотов
func NewPromoBannerRepo(db *gorm.DB) *PromoBannerRepo {
	return &PromoBannerRepo{db: db}
}

// List возвращает баннеры слотов
func (r *PromoBannerRepo) List(ctx context.Context) ([]entity.PromoBanner, error) {
	var banners []entity.PromoBanner
	if err := r.db.WithContext(ctx).Order("slot ASC, position ASC, id ASC").Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

// Sync сохраняет полный набор баннеров слотов
func (r *PromoBannerRepo) Sync(ctx context.Context, banners []entity.PromoBanner) error {
	return syncTable(r.db.WithContext(ctx), banners, func(b *entity.PromoBanner) uint { return b.ID })
}
