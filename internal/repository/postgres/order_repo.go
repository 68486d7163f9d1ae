package postgres

import (
	"fmt"
	"time"

	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/domain/repository"
	"gorm.io/gorm"
)

// OrderRepo реализует repository.OrderRepository
type OrderRepo struct {
	db *gorm.DB
}

// NewOrderRepo создаёт репозиторий заказов
func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateWithStock списывает остатки и создаёт заказ в одной транзакции
func (r *OrderRepo) CreateWithStock(order *entity.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND is_active = ? AND stock >= ?", item.ProductID, true, item.Quantity).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", item.Quantity),
					"sold_count": gorm.Expr("sold_count + ?", item.Quantity),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: product #%d", repository.ErrInsufficientStock, item.ProductID)
			}
		}
		return tx.Create(order).Error
	})
}

// GetByID возвращает заказ с позициями
func (r *OrderRepo) GetByID(id uint) (*entity.Order, error) {
	var order entity.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		return nil, mapError(err, "order")
	}
	return &order, nil
}

// ListByUser возвращает заказы покупателя
func (r *OrderRepo) ListByUser(userID string, limit, offset int) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// List возвращает страницу заказов
func (r *OrderRepo) List(status string, limit, offset int) ([]entity.Order, int64, error) {
	query := r.db.Model(&entity.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []entity.Order
	err := query.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus меняет статус с проверкой версии
func (r *OrderRepo) UpdateStatus(id uint, status string, expectedVersion int) error {
	result := r.db.Model(&entity.Order{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"status":     status,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: order #%d", repository.ErrStaleOrderVersion, id)
	}
	return nil
}

// AdminUserRepo реализует repository.AdminUserRepository
type AdminUserRepo struct {
	db *gorm.DB
}

// NewAdminUserRepo создаёт репозиторий администраторов
func NewAdminUserRepo(db *gorm.DB) *AdminUserRepo {
	return &AdminUserRepo{db: db}
}

// GetByEmail возвращает администратора по email
func (r *AdminUserRepo) GetByEmail(email string) (*entity.AdminUser, error) {
	var user entity.AdminUser
	if err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, mapError(err, "admin user")
	}
	return &user, nil
}

// Create создаёт администратора
func (r *AdminUserRepo) Create(user *entity.AdminUser) error {
	return mapError(r.db.Create(user).Error, "admin user")
}
