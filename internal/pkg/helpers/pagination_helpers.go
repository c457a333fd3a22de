package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tarcin/docissuer/internal/app/models/dto"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// NormalizeLimitOffset clamps limit into [1, MaxLimit] and offset to >= 0
func NormalizeLimitOffset(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ParseListParams extracts limit and offset from the query string.
// Unparseable values fall back to the defaults.
func ParseListParams(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil {
		limit = DefaultLimit
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		offset = 0
	}
	return NormalizeLimitOffset(limit, offset)
}

// NewListResponse builds the list envelope; a nil slice is returned as [].
func NewListResponse[T any](items []T, total int64, limit, offset int) dto.ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return dto.ListResponse[T]{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
}
