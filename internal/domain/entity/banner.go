package entity

import "time"

// Banner — слайд карусели главной страницы.
// Порядок показа задаётся позицией в списке и переписывается при сохранении.
type Banner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageURL  string    `gorm:"size:1024;not null" json:"image_url"`
	LinkURL   *string   `gorm:"size:1024" json:"link_url,omitempty"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	Position  int       `gorm:"not null;default:0;index" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName возвращает имя таблицы
func (Banner) TableName() string {
	return "banners"
}
