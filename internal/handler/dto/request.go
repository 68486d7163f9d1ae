package dto

// LoginRequest — вход администратора
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateOrderStatusRequest — смена статуса заказа. Version, если передан,
// должен совпасть с текущей версией заказа.
type UpdateOrderStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Version *int   `json:"version"`
}

// ImageURLRequest — запрос к AI-анализу или удалению фона
type ImageURLRequest struct {
	ImageURL string `json:"image_url" binding:"required,url"`
}
