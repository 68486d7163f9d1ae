package productimport

import (
	"errors"
	"fmt"
)

// ErrNoNameColumn возвращается, если в файле нет колонки с названием товара
var ErrNoNameColumn = errors.New("file has no product name column")

// Candidate — нормализованная строка, готовая к вставке
type Candidate struct {
	Line        int
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  uint
	ImageURL    string
}

// Issue описывает пропущенную или ошибочную строку
type Issue struct {
	Line   int    `json:"line"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// String форматирует проблему для плоского отчёта
func (i Issue) String() string {
	if i.Name != "" {
		return fmt.Sprintf("row %d (%s): %s", i.Line, i.Name, i.Reason)
	}
	return fmt.Sprintf("row %d: %s", i.Line, i.Reason)
}

// Batch — результат нормализации файла
type Batch struct {
	Candidates []Candidate
	// Duplicates — строки с названием, уже встречавшимся в файле
	Duplicates []Issue
	// Invalid — строки без названия
	Invalid []Issue
}

// Normalize сопоставляет колонки с полями, приводит цену и остаток,
// определяет категорию и убирает повторы названий внутри файла (побеждает первая строка).
func Normalize(sheet *Sheet, resolver *CategoryResolver) (*Batch, error) {
	if !HasField(sheet.Headers, FieldName) {
		return nil, ErrNoNameColumn
	}

	batch := &Batch{Candidates: make([]Candidate, 0, len(sheet.Rows))}
	seen := make(map[string]int, len(sheet.Rows))

	for _, row := range sheet.Rows {
		name := row.Get(FieldName)
		if name == "" {
			batch.Invalid = append(batch.Invalid, Issue{Line: row.Line, Reason: "product name is empty"})
			continue
		}

		key := normalizeName(name)
		if first, dup := seen[key]; dup {
			batch.Duplicates = append(batch.Duplicates, Issue{
				Line:   row.Line,
				Name:   name,
				Reason: fmt.Sprintf("duplicate of row %d", first),
			})
			continue
		}
		seen[key] = row.Line

		batch.Candidates = append(batch.Candidates, Candidate{
			Line:        row.Line,
			Name:        name,
			Description: row.Get(FieldDescription),
			Price:       ParsePrice(row.Get(FieldPrice)),
			Stock:       ParseStock(row.Get(FieldStock)),
			CategoryID:  resolver.Resolve(row.Get(FieldCategory)),
			ImageURL:    row.Get(FieldImage),
		})
	}
	return batch, nil
}
