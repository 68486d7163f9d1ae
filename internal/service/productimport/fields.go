// Package productimport разбирает файлы массового импорта товаров (xlsx/csv)
// с двуязычными (английский/арабский) заголовками колонок.
package productimport

import (
	"strings"
)

// Field — логическое поле товара в файле импорта
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
	FieldStock       Field = "stock"
	FieldCategory    Field = "category"
	FieldImage       Field = "image"
)

// Fields перечисляет поля в порядке колонок шаблона импорта
var Fields = []Field{FieldName, FieldDescription, FieldPrice, FieldStock, FieldCategory, FieldImage}

// fieldAliases хранит допустимые заголовки для каждого поля в нормализованном виде.
// Порядок важен: поле берётся из первого найденного заголовка.
var fieldAliases = map[Field][]string{
	FieldName: {
		"name", "product name", "product", "title", "item",
		"الاسم", "اسم المنتج", "المنتج", "العنوان",
	},
	FieldDescription: {
		"description", "desc", "details",
		"الوصف", "وصف المنتج", "التفاصيل",
	},
	FieldPrice: {
		"price", "unit price", "cost",
		"السعر", "سعر", "سعر المنتج",
	},
	FieldStock: {
		"stock", "quantity", "qty", "inventory",
		"المخزون", "الكمية", "الكميه",
	},
	FieldCategory: {
		"category", "category name", "section",
		"الفئة", "التصنيف", "القسم", "الفئه",
	},
	FieldImage: {
		"image", "image url", "images", "photo", "picture", "img",
		"الصورة", "صورة", "رابط الصورة", "الصوره",
	},
}

// Aliases возвращает нормализованные заголовки поля
func Aliases(f Field) []string {
	return fieldAliases[f]
}

// NormalizeHeader приводит заголовок колонки к каноническому виду:
// без BOM, в нижнем регистре, '_' и '-' заменены пробелом, пробелы схлопнуты.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(h)
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

// Row — строка файла; значения ключуются нормализованным заголовком
type Row struct {
	Line   int
	Values map[string]string
}

// Get возвращает значение поля по первому алиасу с непустой ячейкой.
// Пустая ячейка одного языка не скрывает заполненную колонку другого.
func (r Row) Get(f Field) string {
	for _, alias := range fieldAliases[f] {
		if v := strings.TrimSpace(r.Values[alias]); v != "" {
			return v
		}
	}
	return ""
}

// HasField проверяет, что среди заголовков есть хотя бы один алиас поля
func HasField(headers []string, f Field) bool {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[h] = struct{}{}
	}
	for _, alias := range fieldAliases[f] {
		if _, ok := set[alias]; ok {
			return true
		}
	}
	return false
}
