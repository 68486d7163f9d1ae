package postgres

import (
	"github.com/yourusername/storefront-api/internal/domain/entity"
	"gorm.io/gorm"
)

// CategoryRepo реализует repository.CategoryRepository
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo создаёт репозиторий категорий
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create создаёт категорию
func (r *CategoryRepo) Create(category *entity.Category) error {
	return mapError(r.db.Create(category).Error, "category")
}

// GetByID возвращает категорию по ID
func (r *CategoryRepo) GetByID(id uint) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, mapError(err, "category")
	}
	return &category, nil
}

// List возвращает категории по sort_order
func (r *CategoryRepo) List(activeOnly bool) ([]entity.Category, error) {
	var categories []entity.Category
	query := r.db.Order("sort_order ASC, id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Update обновляет категорию
func (r *CategoryRepo) Update(category *entity.Category) error {
	return mapError(r.db.Omit("created_at").Save(category).Error, "category")
}

// Delete удаляет категорию
func (r *CategoryRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Category{}, id)
	if result.Error != nil {
		return mapError(result.Error, "category")
	}
	if result.RowsAffected == 0 {
		return mapError(gorm.ErrRecordNotFound, "category")
	}
	return nil
}

// CountProducts возвращает количество товаров в категории
func (r *CategoryRepo) CountProducts(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Product{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
