package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/emersion/go-ical"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func parseEvent(comp *ical.Component) models.Event {
	event := models.Event{}

	if uidProp := comp.Props.Get(ical.PropUID); uidProp != nil {
		event.ID = uidProp.Value
	}
	if summaryProp := comp.Props.Get(ical.PropSummary); summaryProp != nil {
		event.Title = strings.TrimSpace(summaryProp.Value)
	}

	loc := componentLocation(comp)
	if startProp := comp.Props.Get(ical.PropDateTimeStart); startProp != nil {
		if isDateOnly(startProp) {
			// All-day events carry no time of day to remind at.
			return models.Event{ID: event.ID, Title: event.Title}
		}
		if t, err := parseDateTimeProperty(startProp, loc); err == nil {
			event.StartTime = t
		}
	}
	if endProp := comp.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		if t, err := parseDateTimeProperty(endProp, loc); err == nil {
			event.EndTime = t
		}
	}

	if statusProp := comp.Props.Get(ical.PropStatus); statusProp != nil {
		event.Status = strings.ToUpper(statusProp.Value)
	}
	// Some servers only mark cancellation in the title.
	if !event.Cancelled() && isCancelledTitle(event.Title) {
		event.Status = "CANCELLED"
	}

	return event
}

func isDateOnly(prop *ical.Prop) bool {
	if strings.EqualFold(prop.Params.Get(ical.ParamValue), string(ical.ValueDate)) {
		return true
	}
	return len(prop.Value) == len("20060102")
}

func parseDateTimeProperty(prop *ical.Prop, loc *time.Location) (time.Time, error) {
	if t, err := prop.DateTime(loc); err == nil {
		return t, nil
	}

	formats := []string{
		"20060102T150405",
		"20060102T150405Z",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, prop.Value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse datetime value: %s", prop.Value)
}

func isCancelledTitle(title string) bool {
	clean := nonAlnum.ReplaceAllString(strings.ToLower(title), "")
	return strings.HasPrefix(clean, "canceled") || strings.HasPrefix(clean, "cancelled")
}
