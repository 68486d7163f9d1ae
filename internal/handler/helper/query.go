package helper

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Pagination извлекает page и page_size из query; границы проверяет сервис
func Pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "0"))
	return page, pageSize
}

// OptionalUint возвращает указатель на число из query или nil, если параметра нет
// или он не разбирается
func OptionalUint(c *gin.Context, key string) *uint {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return nil
	}
	id := uint(v)
	return &id
}

// Bool читает булев флаг из query ("1", "true", "yes")
func Bool(c *gin.Context, key string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
