package repository

import "github.com/yourusername/storefront-api/internal/domain/entity"

// CategoryRepository определяет методы для работы с категориями
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id uint) (*entity.Category, error)
	// List возвращает категории по sort_order; activeOnly скрывает неактивные
	List(activeOnly bool) ([]entity.Category, error)
	Update(category *entity.Category) error
	Delete(id uint) error
	// CountProducts возвращает количество товаров в категории
	CountProducts(id uint) (int64, error)
}

// ProductSort задаёт порядок выдачи товаров
type ProductSort string

const (
	ProductSortNewest      ProductSort = "newest"
	ProductSortBestSelling ProductSort = "best_selling"
	ProductSortPriceAsc    ProductSort = "price_asc"
	ProductSortPriceDesc   ProductSort = "price_desc"
)

// ProductFilter содержит параметры выборки товаров
type ProductFilter struct {
	CategoryID *uint
	Search     string
	ActiveOnly bool
	Sort       ProductSort
	Limit      int
	Offset     int
}

// ProductRepository определяет методы для работы с товарами
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id uint) (*entity.Product, error)
	// List возвращает страницу товаров и общее количество по фильтру
	List(filter ProductFilter) ([]entity.Product, int64, error)
	Update(product *entity.Product) error
	Delete(id uint) error
	// ExistsByName проверяет наличие товара с таким названием (без учёта регистра)
	ExistsByName(name string) (bool, error)
	// ListAll возвращает весь каталог для экспорта
	ListAll() ([]entity.Product, error)
}
