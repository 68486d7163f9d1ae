package productimport

import (
	"strconv"
	"strings"
)

// DefaultStock подставляется, когда остаток не указан или не разбирается
const DefaultStock = 100

var digitMapper = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٫", ".", "٬", ",",
)

// ParsePrice извлекает цену из произвольной строки ("1,250.50 ر.س", "1.250,00 €", "١٥٠", "$12").
// Всё, кроме цифр и разделителей, отбрасывается; пустое или неразборчивое значение даёт 0.
func ParsePrice(raw string) float64 {
	s := digitMapper.Replace(strings.TrimSpace(raw))

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := normalizeSeparators(strings.Trim(b.String(), ".,"))
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// normalizeSeparators оставляет в числе не больше одного десятичного разделителя '.'.
// Если есть и точка, и запятая, десятичным считается тот, что стоит последним
// ("1.250,00" и "1,250.00" дают "1250.00"). Одиночная запятая с одной-двумя цифрами
// после неё десятичная ("12,5"). Повторяющийся разделитель допустим только
// как разделитель тысяч с группами по три цифры ("1.250.000").
func normalizeSeparators(s string) string {
	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			if tail := len(s) - lastComma - 1; tail == 1 || tail == 2 {
				return s[:lastComma] + "." + s[lastComma+1:]
			}
		}
		if thousandGroups(s, ",") {
			return strings.ReplaceAll(s, ",", "")
		}
		return s
	case strings.Count(s, ".") > 1:
		if thousandGroups(s, ".") {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	}
	return s
}

// thousandGroups проверяет запись вида 1<sep>234<sep>567
func thousandGroups(s, sep string) bool {
	parts := strings.Split(s, sep)
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

// ParseStock извлекает остаток: все нецифровые символы отбрасываются,
// пустое или неразборчивое значение даёт DefaultStock.
func ParseStock(raw string) int {
	s := digitMapper.Replace(strings.TrimSpace(raw))

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultStock
	}
	v, err := strconv.Atoi(b.String())
	if err != nil {
		return DefaultStock
	}
	return v
}
