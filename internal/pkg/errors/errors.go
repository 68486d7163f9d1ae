package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния
	// (дубликат товара, недопустимый переход статуса заказа, категория с товарами).
	ErrConflict = errors.New("resource state conflict")

	// ErrUnavailable используется, когда внешний сервис (хранилище, AI) не настроен.
	ErrUnavailable = errors.New("service unavailable")
)
