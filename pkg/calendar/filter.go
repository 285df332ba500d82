package calendar

import (
	"time"

	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/rs/zerolog"
)

type filterStats struct {
	totalComponents       int
	totalEvents           int
	filteredMissingTime   int
	filteredCancelled     int
	filteredAllDay        int
	filteredOutsideWindow int
	filteredDuplicates    int
}

func (s *filterStats) log(logger zerolog.Logger, included int) {
	logger.Debug().
		Int("components", s.totalComponents).
		Int("events", s.totalEvents).
		Int("included", included).
		Int("cancelled", s.filteredCancelled).
		Int("all_day", s.filteredAllDay).
		Int("outside_window", s.filteredOutsideWindow).
		Int("missing_time", s.filteredMissingTime).
		Int("duplicates", s.filteredDuplicates).
		Msg("calendar feed filtered")
}

// shouldIncludeEvent keeps timed, non-cancelled events that start in [now, until).
func shouldIncludeEvent(event models.Event, now, until time.Time, stats *filterStats) bool {
	switch {
	case event.StartTime.IsZero():
		stats.filteredMissingTime++
		return false
	case event.Cancelled():
		stats.filteredCancelled++
		return false
	case isAllDayEvent(event):
		stats.filteredAllDay++
		return false
	case event.StartTime.Before(now) || !event.StartTime.Before(until):
		stats.filteredOutsideWindow++
		return false
	}
	return true
}

// An event is all-day if it spans multiple dates and lasts at least 24 hours.
func isAllDayEvent(event models.Event) bool {
	if event.EndTime.IsZero() {
		return false
	}
	startDate := event.StartTime.Format("2006-01-02")
	endDate := event.EndTime.Format("2006-01-02")
	return startDate != endDate && event.EndTime.Sub(event.StartTime) >= 24*time.Hour
}

type dedupe struct {
	ids  map[string]bool
	keys map[string]bool // title + start
}

func newDedupe() *dedupe {
	return &dedupe{ids: make(map[string]bool), keys: make(map[string]bool)}
}

func (d *dedupe) duplicate(event models.Event, stats *filterStats) bool {
	key := event.Title + "|" + event.StartTime.Format(time.RFC3339)
	if (event.ID != "" && d.ids[event.ID]) || d.keys[key] {
		stats.filteredDuplicates++
		return true
	}
	if event.ID != "" {
		d.ids[event.ID] = true
	}
	d.keys[key] = true
	return false
}
