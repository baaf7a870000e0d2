package rest

import (
	"strconv"
	"strings"
)

// Pagination is the page descriptor returned next to admin list payloads.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

func newPagination(total, page, limit int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Pages: pages, Limit: limit}
}

func parsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func parseLimit(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 10
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 10
	}
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}
