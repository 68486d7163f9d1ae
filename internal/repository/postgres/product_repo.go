package postgres

import (
	"strings"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/domain/repository"
	"gorm.io/gorm"
)

// ProductRepo реализует repository.ProductRepository
type ProductRepo struct {
	db *gorm.DB
}

// NewProductRepo создаёт репозиторий товаров
func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create создаёт товар
func (r *ProductRepo) Create(product *entity.Product) error {
	return mapError(r.db.Create(product).Error, "product")
}

// GetByID возвращает товар с категорией
func (r *ProductRepo) GetByID(id uint) (*entity.Product, error) {
	var product entity.Product
	if err := r.db.Preload("Category").First(&product, id).Error; err != nil {
		return nil, mapError(err, "product")
	}
	return &product, nil
}

// List возвращает страницу товаров по фильтру
func (r *ProductRepo) List(filter repository.ProductFilter) ([]entity.Product, int64, error) {
	query := r.db.Model(&entity.Product{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name ILIKE ?", "%"+escapeLike(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []entity.Product
	err := query.Order(sortClause(filter.Sort)).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update обновляет товар
func (r *ProductRepo) Update(product *entity.Product) error {
	return mapError(r.db.Omit("created_at", "Category").Save(product).Error, "product")
}

// Delete удаляет товар
func (r *ProductRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Product{}, id)
	if result.Error != nil {
		return mapError(result.Error, "product")
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "product")
	}
	return nil
}

// ExistsByName проверяет наличие товара с таким названием
func (r *ProductRepo) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Product{}).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAll возвращает весь каталог с категориями
func (r *ProductRepo) ListAll() ([]entity.Product, error) {
	var products []entity.Product
	if err := r.db.Preload("Category").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func sortClause(sort repository.ProductSort) string {
	switch sort {
	case repository.ProductSortBestSelling:
		return "sold_count DESC, id DESC"
	case repository.ProductSortPriceAsc:
		return "price ASC, id ASC"
	case repository.ProductSortPriceDesc:
		return "price DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
