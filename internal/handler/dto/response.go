package dto

import (
	"github.com/yourusername/storefront-api/internal/domain/entity"
	"github.com/yourusername/storefront-api/internal/service/homelayout"
)

// HomeResponse — главная страница для мобильного приложения
type HomeResponse struct {
	Items []homelayout.Item `json:"items"`
}

// HomePreviewResponse — раскладка для админки вместе со слотами,
// которым не нашлось места на странице
type HomePreviewResponse struct {
	Items    []homelayout.Item  `json:"items"`
	Unplaced []entity.PromoSlot `json:"unplaced"`
}

// NewHomePreviewResponse собирает ответ превью; пустые списки отдаются как []
func NewHomePreviewResponse(layout homelayout.Layout) HomePreviewResponse {
	resp := HomePreviewResponse{Items: layout.Items, Unplaced: layout.Unplaced}
	if resp.Items == nil {
		resp.Items = []homelayout.Item{}
	}
	if resp.Unplaced == nil {
		resp.Unplaced = []entity.PromoSlot{}
	}
	return resp
}
