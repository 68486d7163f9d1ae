package repository

import (
	"context"

	"github.com/yourusername/storefront-api/internal/domain/entity"
)

// BannerRepository определяет методы для работы с баннерами карусели
type BannerRepository interface {
	// List возвращает все баннеры в порядке position
	List(ctx context.Context) ([]entity.Banner, error)

	// Sync приводит таблицу к переданному набору: удаляет отсутствующие,
	// обновляет существующие и создаёт новые (ID == 0). Выполняется в одной транзакции.
	Sync(ctx context.Context, banners []entity.Banner) error
}

// HomeSectionRepository определяет методы для работы с секциями главной страницы
type HomeSectionRepository interface {
	// List возвращает все секции в порядке order_index
	List(ctx context.Context) ([]entity.HomeSection, error)

	// Sync приводит таблицу к переданному набору в одной транзакции
	Sync(ctx context.Context, sections []entity.HomeSection) error
}

// PromoBannerRepository определяет методы для работы с баннерами рекламных слотов
type PromoBannerRepository interface {
	// List возвращает все баннеры слотов, упорядоченные по slot, position
	List(ctx context.Context) ([]entity.PromoBanner, error)

	// Sync приводит таблицу к переданному набору в одной транзакции
	Sync(ctx context.Context, banners []entity.PromoBanner) error
}
