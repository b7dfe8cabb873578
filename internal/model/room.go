package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room is a bookable space. OpenHour/CloseHour bound the daily booking
// window in the business timezone (0-24, open < close). Position drives
// admin-defined display order.
type Room struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Capacity    int             `json:"capacity"`
	OpenHour    int             `json:"open_hour"`
	CloseHour   int             `json:"close_hour"`
	Active      bool            `json:"active"`
	Position    int             `json:"position"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsOpenBetween reports whether the [start, end) slot falls inside the
// room's opening hours. Both bounds must be whole hours of the same day.
func (r *Room) IsOpenBetween(start, end time.Time) bool {
	if !start.Before(end) {
		return false
	}
	if start.Hour() < r.OpenHour {
		return false
	}

	// end lands on the closing hour at the latest; a slot ending exactly
	// at CloseHour is allowed.
	endHour := end.Hour()
	if endHour == 0 && end.Day() != start.Day() {
		endHour = 24
	}
	return endHour <= r.CloseHour
}
