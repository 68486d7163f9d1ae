package entity

import "time"

// Product — товар каталога
type Product struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:300;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Price       float64     `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Stock       int         `gorm:"not null;default:0" json:"stock"`
	CategoryID  uint        `gorm:"not null;index" json:"category_id"`
	Images      StringArray `gorm:"type:jsonb;not null" json:"images"`
	IsActive    bool        `gorm:"not null" json:"is_active"`
	SoldCount   int         `gorm:"not null;default:0" json:"sold_count"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName возвращает имя таблицы
func (Product) TableName() string {
	return "products"
}

// InStock проверяет наличие нужного количества на складе
func (p *Product) InStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}
