// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"math"
	"time"
)

// businessLocation is the venue's timezone. Opening hours, availability
// grids and email timestamps are all interpreted in São Paulo time; the
// database stores UTC instants.
var businessLocation = mustLoadLocation("America/Sao_Paulo")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// formatBookingTime renders an instant for customer-facing emails, in the
// business timezone.
func formatBookingTime(t time.Time) string {
	return t.In(businessLocation).Format("02/01/2006 15:04")
}

// BusinessDate parses a YYYY-MM-DD string as midnight in the venue's
// timezone. Admin date filters resolve through this so "today" means the
// venue's today, not the server's.
func BusinessDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, businessLocation)
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Pagination carries page values as they arrived from the query string;
// limitOffset normalizes them.
type Pagination struct {
	Page    int
	PerPage int
}

func (p Pagination) limitOffset() (limit, offset int) {
	page := p.Page
	if page < 1 {
		page = 1
	}

	per := p.PerPage
	if per < 1 {
		per = defaultPerPage
	}
	if per > maxPerPage {
		per = maxPerPage
	}

	return per, (page - 1) * per
}

// PageInfo echoes the applied pagination plus the total row count, for
// list responses.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newPageInfo(p Pagination, total int) PageInfo {
	limit, _ := p.limitOffset()
	page := p.Page
	if page < 1 {
		page = 1
	}

	return PageInfo{
		Page:       page,
		PerPage:    limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}
