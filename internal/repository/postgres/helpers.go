package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
)

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// isForeignKeyViolation проверяет нарушение внешнего ключа (23503)
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return true
	}
	return false
}

// mapError переводит ошибки gorm/драйвера в ошибки приложения
func mapError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s already exists: %w", what, apperrors.ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s references a missing or used record: %w", what, apperrors.ErrConflict)
	default:
		return err
	}
}

// syncTable приводит таблицу T к набору items в одной транзакции:
// строки, чьих ID нет в наборе, удаляются; строки с ID обновляются; строки без ID создаются.
func syncTable[T any](db *gorm.DB, items []T, idOf func(*T) uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		keep := make([]uint, 0, len(items))
		for i := range items {
			if id := idOf(&items[i]); id != 0 {
				keep = append(keep, id)
			}
		}

		del := tx.Where("1 = 1")
		if len(keep) > 0 {
			del = tx.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(new(T)).Error; err != nil {
			return fmt.Errorf("delete removed rows: %w", err)
		}

		for i := range items {
			var err error
			if idOf(&items[i]) == 0 {
				err = tx.Create(&items[i]).Error
			} else {
				err = tx.Omit("created_at").Save(&items[i]).Error
			}
			if err != nil {
				return fmt.Errorf("save row %d: %w", i, err)
			}
		}
		return nil
	})
}
