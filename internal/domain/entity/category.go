package entity

import "time"

// Category — категория каталога. NameAr используется мобильным приложением и импортом.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	NameAr    string    `gorm:"size:200" json:"name_ar"`
	Slug      string    `gorm:"size:200;uniqueIndex" json:"slug"`
	ImageURL  string    `gorm:"size:1024" json:"image_url,omitempty"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName возвращает имя таблицы
func (Category) TableName() string {
	return "categories"
}
