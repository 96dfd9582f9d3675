package utils

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// DefaultPageSize matches the page size every list screen uses.
const DefaultPageSize = 10

// Pagination holds pagination parameters.
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads page and limit query params with sane defaults.
func ParsePagination(c *fiber.Ctx) Pagination {
	page := parseInt(c.Query("page", "1"), 1)
	limit := parseInt(c.Query("limit", strconv.Itoa(DefaultPageSize)), DefaultPageSize)
	if limit <= 0 || limit > 100 {
		limit = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	return Pagination{Page: page, Limit: limit}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return fallback
}
