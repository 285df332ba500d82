package calendar

import (
	"strings"
	"time"

	"github.com/borgmon/reminder-clock/pkg/models"
)

// expandRecurringEvent expands DAILY and WEEKLY rules into the instances that
// start in [from, until). Other frequencies yield nothing.
// TODO: honour INTERVAL, COUNT and UNTIL; every rule is treated as open-ended step 1.
func expandRecurringEvent(base models.Event, rrule string, from, until time.Time) []models.Event {
	var days int
	switch {
	case strings.Contains(rrule, "FREQ=DAILY"):
		days = 1
	case strings.Contains(rrule, "FREQ=WEEKLY"):
		days = 7
	default:
		return nil
	}
	if base.StartTime.IsZero() {
		return nil
	}

	duration := time.Duration(0)
	if !base.EndTime.IsZero() {
		duration = base.EndTime.Sub(base.StartTime)
	}

	var events []models.Event
	for n, current := 0, base.StartTime; current.Before(until); n, current = n+1, base.StartTime.AddDate(0, 0, (n+1)*days) {
		if current.Before(from) {
			continue
		}
		instance := base
		instance.StartTime = current
		if duration > 0 {
			instance.EndTime = current.Add(duration)
		}
		instance.ID = base.ID + "-" + current.Format(time.RFC3339)
		events = append(events, instance)
	}
	return events
}
