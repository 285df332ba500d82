// Package calendar imports upcoming iCal events as reminder candidates.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/emersion/go-ical"
)

// ErrNotICal is returned when a feed does not contain iCalendar data.
var ErrNotICal = errors.New("not an iCalendar feed")

// Window is how far ahead events are imported.
const Window = 24 * time.Hour

// Fetcher downloads and decodes iCal feeds.
type Fetcher struct {
	Client *http.Client
	Now    func() time.Time
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// FetchEvents fetches source and returns its events starting within Window.
func (f *Fetcher) FetchEvents(ctx context.Context, source models.ICalSource) ([]models.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", source.Name, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	events, err := parseFeed(string(body), f.now())
	if err != nil {
		return nil, err
	}

	// Fallback: if no iCal UID, use deterministic ID based on start time and title
	for i := range events {
		events[i].SourceID = source.ID
		if events[i].ID == "" {
			events[i].ID = source.ID + "-" + events[i].StartTime.Format(time.RFC3339) + "-" + events[i].Title
		}
	}
	return events, nil
}

func parseFeed(body string, now time.Time) ([]models.Event, error) {
	if err := validateICalFormat(body); err != nil {
		return nil, err
	}

	logger := logging.WithComponent("calendar")
	decoder := ical.NewDecoder(strings.NewReader(body))
	tomorrow := now.Add(Window)
	stats := &filterStats{}
	seen := newDedupe()
	events := []models.Event{}

	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}

		for _, comp := range cal.Children {
			stats.totalComponents++
			if comp.Name != ical.CompEvent {
				continue
			}
			stats.totalEvents++

			normalizeComponentTimezones(comp)
			event := parseEvent(comp)

			candidates := []models.Event{event}
			if rruleProp := comp.Props.Get(ical.PropRecurrenceRule); rruleProp != nil {
				candidates = expandRecurringEvent(event, rruleProp.Value, now, tomorrow)
			}
			for _, candidate := range candidates {
				if shouldIncludeEvent(candidate, now, tomorrow, stats) && !seen.duplicate(candidate, stats) {
					events = append(events, candidate)
				}
			}
		}
	}

	stats.log(logger, len(events))
	return events, nil
}

func validateICalFormat(body string) error {
	trimmed := strings.TrimSpace(body)
	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return fmt.Errorf("%w: received HTML, check if the URL requires authentication", ErrNotICal)
	}
	if !strings.HasPrefix(trimmed, "BEGIN:VCALENDAR") {
		preview := trimmed
		if len(preview) > 100 {
			preview = preview[:100]
		}
		return fmt.Errorf("%w: expected BEGIN:VCALENDAR, got: %s", ErrNotICal, preview)
	}
	return nil
}
