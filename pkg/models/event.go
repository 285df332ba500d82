package models

import "time"

// Event is a calendar event considered for import as a reminder.
type Event struct {
	ID        string // iCal UID, or a fallback derived from start and title
	Title     string // summary
	StartTime time.Time
	EndTime   time.Time
	Status    string // CONFIRMED, CANCELLED, NEEDS-ACTION
	SourceID  string // ICalSource the event came from
}

// Cancelled reports whether the event was cancelled by status.
func (e Event) Cancelled() bool { return e.Status == "CANCELLED" }
