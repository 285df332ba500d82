package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/borgmon/reminder-clock/pkg/models"
	"golang.org/x/sync/errgroup"
)

// TimeLayout is the reminder time format produced for imported events.
const TimeLayout = "3:04 PM"

// Candidate is an imported event ready to be added as a reminder.
type Candidate struct {
	Label    string
	Time     string // TimeLayout in the display timezone
	Start    time.Time
	SourceID string
}

// Candidates converts events into reminder candidates in loc, sorted by start
// and deduplicated by label and time.
func Candidates(events []models.Event, loc *time.Location) []Candidate {
	sorted := append([]models.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	seen := make(map[string]bool, len(sorted))
	out := make([]Candidate, 0, len(sorted))
	for _, e := range sorted {
		c := Candidate{
			Label:    strings.TrimSpace(e.Title),
			Time:     e.StartTime.In(loc).Format(TimeLayout),
			Start:    e.StartTime,
			SourceID: e.SourceID,
		}
		if c.Label == "" {
			c.Label = "Calendar event"
		}
		key := c.Label + "|" + c.Time
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// Import fetches every source concurrently and returns the merged candidates.
// A failing source fails the whole import.
func (f *Fetcher) Import(ctx context.Context, sources []models.ICalSource, loc *time.Location) ([]Candidate, error) {
	results := make([][]models.Event, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, source := range sources {
		g.Go(func() error {
			events, err := f.FetchEvents(ctx, source)
			if err != nil {
				return fmt.Errorf("calendar %q: %w", source.Name, err)
			}
			results[i] = events
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.Event
	for _, events := range results {
		all = append(all, events...)
	}
	return Candidates(all, loc), nil
}
