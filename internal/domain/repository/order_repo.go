package repository

import (
	"errors"

	"github.com/yourusername/storefront-api/internal/domain/entity"
)

var (
	// ErrInsufficientStock означает, что на складе меньше товара, чем в заказе.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStaleOrderVersion означает, что заказ изменился после чтения.
	ErrStaleOrderVersion = errors.New("order was modified concurrently")
)

// OrderRepository определяет методы для работы с заказами
type OrderRepository interface {
	// CreateWithStock создаёт заказ с позициями и списывает остатки в одной транзакции
	CreateWithStock(order *entity.Order) error

	// GetByID возвращает заказ с позициями
	GetByID(id uint) (*entity.Order, error)

	// ListByUser возвращает заказы покупателя, новые первыми
	ListByUser(userID string, limit, offset int) ([]entity.Order, error)

	// List возвращает страницу заказов и общее количество; пустой status — все статусы
	List(status string, limit, offset int) ([]entity.Order, int64, error)

	// UpdateStatus меняет статус, если версия заказа совпадает с expectedVersion,
	// и увеличивает версию. Возвращает ErrStaleOrderVersion при несовпадении.
	UpdateStatus(id uint, status string, expectedVersion int) error
}

// AdminUserRepository определяет методы для работы с администраторами
type AdminUserRepository interface {
	GetByEmail(email string) (*entity.AdminUser, error)
	Create(user *entity.AdminUser) error
}
