package entity

import "time"

// SectionType — тип блока главной страницы мобильного приложения
type SectionType string

const (
	SectionCategories       SectionType = "categories"
	SectionSpecialOffers    SectionType = "special_offers"
	SectionBestSellers      SectionType = "best_sellers"
	SectionNewArrivals      SectionType = "new_arrivals"
	SectionTrending         SectionType = "trending"
	SectionCategoryProducts SectionType = "category_products"
	SectionCustom           SectionType = "custom"
)

// SectionTypes перечисляет все допустимые типы секций
var SectionTypes = []SectionType{
	SectionCategories,
	SectionSpecialOffers,
	SectionBestSellers,
	SectionNewArrivals,
	SectionTrending,
	SectionCategoryProducts,
	SectionCustom,
}

// IsValid проверяет, что тип секции известен
func (t SectionType) IsValid() bool {
	for _, known := range SectionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// HomeSection — упорядочиваемый блок главной страницы
type HomeSection struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Type       SectionType `gorm:"size:32;not null" json:"type"`
	Title      string      `gorm:"size:200;not null" json:"title"`
	IsActive   bool        `gorm:"not null" json:"is_active"`
	OrderIndex int         `gorm:"not null;default:0;index" json:"order_index"`
	CategoryID *uint       `gorm:"index" json:"category_id,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// TableName возвращает имя таблицы
func (HomeSection) TableName() string {
	return "home_sections"
}
