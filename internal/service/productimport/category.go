package productimport

import (
	"strings"

	"github.com/yourusername/storefront-api/internal/domain/entity"
)

// CategoryResolver сопоставляет текстовое название категории с её ID
type CategoryResolver struct {
	categories []categoryKey
	fallbackID uint
}

type categoryKey struct {
	id    uint
	names []string
}

// NewCategoryResolver создаёт резолвер по списку категорий; fallbackID используется,
// когда совпадений нет
func NewCategoryResolver(categories []entity.Category, fallbackID uint) *CategoryResolver {
	keys := make([]categoryKey, 0, len(categories))
	for _, c := range categories {
		key := categoryKey{id: c.ID}
		for _, name := range []string{c.Name, c.NameAr} {
			if n := normalizeName(name); n != "" {
				key.names = append(key.names, n)
			}
		}
		if len(key.names) > 0 {
			keys = append(keys, key)
		}
	}
	return &CategoryResolver{categories: keys, fallbackID: fallbackID}
}

// Resolve ищет категорию: точное совпадение по name/name_ar без учёта регистра,
// затем вхождение подстроки в любую сторону, иначе fallbackID.
func (r *CategoryResolver) Resolve(name string) uint {
	needle := normalizeName(name)
	if needle == "" {
		return r.fallbackID
	}

	for _, c := range r.categories {
		for _, n := range c.names {
			if n == needle {
				return c.id
			}
		}
	}
	for _, c := range r.categories {
		for _, n := range c.names {
			if strings.Contains(n, needle) || strings.Contains(needle, n) {
				return c.id
			}
		}
	}
	return r.fallbackID
}

// FallbackID возвращает категорию по умолчанию
func (r *CategoryResolver) FallbackID() uint {
	return r.fallbackID
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
