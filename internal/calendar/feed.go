package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/roomportal/backend/internal/schedule"
	"github.com/roomportal/backend/internal/storage/models"
)

// Feed size limits, in weeks.
const (
	DefaultWeeks = 8
	MaxWeeks     = 52
)

// Upcoming lists p's cleaning days from now through the given number of
// weeks. A property without an active schedule has none.
func Upcoming(p models.Property, calc *schedule.Calculator, now time.Time, weeks int) []Event {
	events := []Event{}
	if weeks <= 0 {
		return events
	}

	loc := calc.Location()
	start := now.In(loc)
	until := time.Date(start.Year(), start.Month(), start.Day()+7*weeks, 0, 0, 0, 0, loc)

	summary := "Limpieza"
	if p.CleaningConfig != nil && p.CleaningConfig.Hours != "" {
		summary += " " + p.CleaningConfig.Hours
	}
	var description string
	if p.CleaningConfig != nil && p.CleaningConfig.CleanerName != "" {
		description = "Limpieza a cargo de " + p.CleaningConfig.CleanerName
	}

	cursor := start
	for {
		next := calc.Next(p.CleaningConfig, cursor)
		if next == nil || !next.Before(until) {
			break
		}
		day := next.In(loc)
		end := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
		events = append(events, Event{
			UID:         fmt.Sprintf("%s-%s@roomportal", p.ID, day.Format(dateFormat)),
			Summary:     summary,
			Description: description,
			Location:    strings.Join(nonEmpty(p.Address, p.City), ", "),
			Start:       day,
			End:         end,
		})
		cursor = end
	}
	return events
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
