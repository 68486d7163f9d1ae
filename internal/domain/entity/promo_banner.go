package entity

import "time"

// PromoSlot — фиксированная точка вставки рекламных баннеров на главной
type PromoSlot string

const (
	SlotAfterCategories    PromoSlot = "after_categories"
	SlotAfterSpecialOffers PromoSlot = "after_special_offers"
	SlotAfterBestSellers   PromoSlot = "after_best_sellers"
	SlotAfterNewArrivals   PromoSlot = "after_new_arrivals"
	SlotEndOfPage          PromoSlot = "end_of_page"
)

// PromoSlots перечисляет слоты в порядке их объявления
var PromoSlots = []PromoSlot{
	SlotAfterCategories,
	SlotAfterSpecialOffers,
	SlotAfterBestSellers,
	SlotAfterNewArrivals,
	SlotEndOfPage,
}

var slotSections = map[PromoSlot]SectionType{
	SlotAfterCategories:    SectionCategories,
	SlotAfterSpecialOffers: SectionSpecialOffers,
	SlotAfterBestSellers:   SectionBestSellers,
	SlotAfterNewArrivals:   SectionNewArrivals,
}

// IsValid проверяет, что слот известен
func (s PromoSlot) IsValid() bool {
	if s == SlotEndOfPage {
		return true
	}
	_, ok := slotSections[s]
	return ok
}

// BoundSection возвращает тип секции, после которой показывается слот.
// Для end_of_page возвращает false.
func (s PromoSlot) BoundSection() (SectionType, bool) {
	t, ok := slotSections[s]
	return t, ok
}

// SlotForSection возвращает слот, привязанный к типу секции
func SlotForSection(t SectionType) (PromoSlot, bool) {
	for slot, sectionType := range slotSections {
		if sectionType == t {
			return slot, true
		}
	}
	return "", false
}

// PromoBanner — баннер, назначенный в рекламный слот
type PromoBanner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slot      PromoSlot `gorm:"size:32;not null;index" json:"slot"`
	ImageURL  string    `gorm:"size:1024;not null" json:"image_url"`
	LinkURL   *string   `gorm:"size:1024" json:"link_url,omitempty"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName возвращает имя таблицы
func (PromoBanner) TableName() string {
	return "promo_banners"
}
