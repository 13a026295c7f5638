package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 200
)

type PageParams struct {
	Page    int
	PerPage int
}

func (p PageParams) Offset() int { return (p.Page - 1) * p.PerPage }

// ParsePagination reads page/per_page (with limit as a legacy alias) from
// the query string and clamps them to sane bounds.
func ParsePagination(c *fiber.Ctx) PageParams {
	page := atoiDefault(c.Query("page"), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	perRaw := strings.TrimSpace(c.Query("per_page"))
	if perRaw == "" {
		perRaw = strings.TrimSpace(c.Query("limit"))
	}
	per := atoiDefault(perRaw, DefaultPerPage)
	if per < 1 {
		per = DefaultPerPage
	}
	if per > MaxPerPage {
		per = MaxPerPage
	}

	return PageParams{Page: page, PerPage: per}
}

func PagedResponse(c *fiber.Ctx, p PageParams, total int64, data interface{}) error {
	return c.JSON(fiber.Map{
		"page":     p.Page,
		"per_page": p.PerPage,
		"total":    total,
		"data":     data,
	})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}
