// Package schedule computes cleaning dates from weekly schedules and keeps
// tenants informed when the next date moves.
package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/roomportal/backend/internal/storage/models"
)

// DateLayout formats calendar dates in API payloads.
const DateLayout = "2006-01-02"

// weekdays maps Spanish weekday names to time.Weekday (0 = Sunday).
var weekdays = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miércoles": time.Wednesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sábado":    time.Saturday,
	"sabado":    time.Saturday,
}

// WeekdayNames lists the canonical names indexed by time.Weekday.
var WeekdayNames = [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

// ParseWeekday resolves a Spanish weekday name, ignoring case and surrounding space.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Calculator computes next cleaning dates in a fixed time zone.
type Calculator struct {
	location *time.Location
}

// NewCalculator creates a calculator using the local time zone.
func NewCalculator() *Calculator {
	return &Calculator{location: time.Local}
}

// NewCalculatorWithLocation creates a calculator for a specific time zone.
func NewCalculatorWithLocation(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	return &Calculator{location: loc}
}

// Location returns the calculator's time zone.
func (c *Calculator) Location() *time.Location {
	return c.location
}

// Next returns midnight of the next date on which cfg schedules a cleaning,
// counting today. It returns nil when cfg is absent, disabled or names no
// recognised weekday.
//
// Today is returned even when the scheduled hours have already passed; the
// result has whole-day granularity.
func (c *Calculator) Next(cfg *models.CleaningConfig, now time.Time) *time.Time {
	if cfg == nil || !cfg.Enabled || len(cfg.Days) == 0 {
		return nil
	}

	var days []int
	for _, name := range cfg.Days {
		if d, ok := ParseWeekday(name); ok {
			days = append(days, int(d))
		}
	}
	if len(days) == 0 {
		return nil
	}
	sort.Ints(days)

	local := now.In(c.location)
	today := int(local.Weekday())

	target := days[0] // wraps to next week unless a later day remains
	for _, d := range days {
		if d >= today {
			target = d
			break
		}
	}

	offset := (target + 7 - today) % 7
	next := time.Date(local.Year(), local.Month(), local.Day()+offset, 0, 0, 0, 0, c.location)
	return &next
}

// NextDate is Next formatted with DateLayout, or nil.
func (c *Calculator) NextDate(cfg *models.CleaningConfig, now time.Time) *string {
	next := c.Next(cfg, now)
	if next == nil {
		return nil
	}
	s := next.Format(DateLayout)
	return &s
}
