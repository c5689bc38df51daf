package utils

import "github.com/gofiber/fiber/v2"

// PageParams reads page and limit query parameters, falling back to defaultLimit.
func PageParams(c *fiber.Ctx, defaultLimit int) (page, limit, offset int) {
	page = c.QueryInt("page", 1)
	limit = c.QueryInt("limit", defaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}

// Pagination builds the pagination block returned with list responses.
func Pagination(total int64, page, limit int) fiber.Map {
	return fiber.Map{
		"total": total,
		"page":  page,
		"limit": limit,
	}
}
