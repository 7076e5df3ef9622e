// Package orm holds query helpers shared by the repositories.
package orm

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination describes one page of a result set.
type Pagination struct {
	Page     int   `json:"page"`
	Limit    int   `json:"limit"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// Normalize clamps page to ≥ 1 and limit to [1, MaxLimit], substituting
// DefaultLimit for a non-positive limit.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return page, limit
}

// Paginate counts the rows matched by q and loads one page into dest. q
// must carry a Model and any Where/Order clauses.
func Paginate(q *gorm.DB, page, limit int, dest interface{}) (Pagination, error) {
	page, limit = Normalize(page, limit)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, fmt.Errorf("orm: count: %w", err)
	}

	p := Pagination{Page: page, Limit: limit, Total: total}
	p.LastPage = int((total + int64(limit) - 1) / int64(limit))
	if p.LastPage == 0 {
		p.LastPage = 1
	}

	if err := q.Session(&gorm.Session{}).Offset((page - 1) * limit).Limit(limit).Find(dest).Error; err != nil {
		return p, fmt.Errorf("orm: page %d: %w", page, err)
	}
	return p, nil
}
