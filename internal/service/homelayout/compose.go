// Package homelayout собирает главную страницу мобильного приложения
// из баннеров карусели, секций и баннеров рекламных слотов.
package homelayout

import (
	"sort"

	"github.com/yourusername/storefront-api/internal/domain/entity"
)

// ItemKind — вид элемента итогового списка
type ItemKind string

const (
	KindCarousel ItemKind = "carousel"
	KindSection  ItemKind = "section"
	KindPromo    ItemKind = "promo"
)

// Item — один блок главной страницы в порядке отрисовки
type Item struct {
	Kind   ItemKind `json:"kind"`
	Active bool     `json:"active"`

	Banners []entity.Banner `json:"banners,omitempty"`

	Section *entity.HomeSection `json:"section,omitempty"`

	Slot         entity.PromoSlot     `json:"slot,omitempty"`
	PromoBanners []entity.PromoBanner `json:"promo_banners,omitempty"`
}

// Layout — собранная главная страница.
// Unplaced содержит слоты с активными баннерами, для которых нет активной секции.
type Layout struct {
	Items    []Item             `json:"items"`
	Unplaced []entity.PromoSlot `json:"unplaced,omitempty"`
}

// Compose объединяет баннеры, секции (в переданном порядке) и баннеры слотов
// в один упорядоченный список. Неактивные секции попадают в список с Active=false,
// слот выводится один раз сразу после первой активной секции своего типа.
func Compose(banners []entity.Banner, sections []entity.HomeSection, promos []entity.PromoBanner) Layout {
	items := make([]Item, 0, len(sections)+2)

	if carousel := activeBanners(banners); len(carousel) > 0 {
		items = append(items, Item{Kind: KindCarousel, Active: true, Banners: carousel})
	}

	bySlot := groupPromos(promos)
	placed := make(map[entity.PromoSlot]bool, len(bySlot))

	for i := range sections {
		section := sections[i]
		items = append(items, Item{Kind: KindSection, Active: section.IsActive, Section: &section})
		if !section.IsActive {
			continue
		}

		slot, ok := entity.SlotForSection(section.Type)
		if !ok || placed[slot] || len(bySlot[slot]) == 0 {
			continue
		}
		items = append(items, Item{Kind: KindPromo, Active: true, Slot: slot, PromoBanners: bySlot[slot]})
		placed[slot] = true
	}

	if tail := bySlot[entity.SlotEndOfPage]; len(tail) > 0 {
		items = append(items, Item{Kind: KindPromo, Active: true, Slot: entity.SlotEndOfPage, PromoBanners: tail})
		placed[entity.SlotEndOfPage] = true
	}

	var unplaced []entity.PromoSlot
	for _, slot := range entity.PromoSlots {
		if len(bySlot[slot]) > 0 && !placed[slot] {
			unplaced = append(unplaced, slot)
		}
	}

	return Layout{Items: items, Unplaced: unplaced}
}

// Public возвращает копию раскладки без неактивных секций, как её видит мобильное приложение
func (l Layout) Public() Layout {
	items := make([]Item, 0, len(l.Items))
	for _, item := range l.Items {
		if item.Kind == KindSection && !item.Active {
			continue
		}
		items = append(items, item)
	}
	return Layout{Items: items}
}

func activeBanners(banners []entity.Banner) []entity.Banner {
	var active []entity.Banner
	for _, b := range banners {
		if b.IsActive {
			active = append(active, b)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Position < active[j].Position })
	return active
}

func groupPromos(promos []entity.PromoBanner) map[entity.PromoSlot][]entity.PromoBanner {
	bySlot := make(map[entity.PromoSlot][]entity.PromoBanner)
	for _, p := range promos {
		if p.IsActive && p.Slot.IsValid() {
			bySlot[p.Slot] = append(bySlot[p.Slot], p)
		}
	}
	for slot := range bySlot {
		group := bySlot[slot]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Position < group[j].Position })
	}
	return bySlot
}
