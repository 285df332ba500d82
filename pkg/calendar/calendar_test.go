package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//reminder-clock//test//EN
BEGIN:VEVENT
UID:standup
SUMMARY:Stand-up
DTSTART:20260205T093000Z
DTEND:20260205T100000Z
END:VEVENT
BEGIN:VEVENT
UID:retro
SUMMARY:Retro
STATUS:CANCELLED
DTSTART:20260205T120000Z
DTEND:20260205T130000Z
END:VEVENT
BEGIN:VEVENT
UID:holiday
SUMMARY:Holiday
DTSTART;VALUE=DATE:20260205
DTEND;VALUE=DATE:20260206
END:VEVENT
BEGIN:VEVENT
UID:breakfast
SUMMARY:Breakfast
DTSTART:20260205T060000Z
END:VEVENT
BEGIN:VEVENT
UID:next-week
SUMMARY:Planning
DTSTART:20260212T090000Z
END:VEVENT
BEGIN:VEVENT
UID:lunch
SUMMARY:Lunch
DTSTART;TZID=Tokyo Standard Time:20260101T120000
DTEND;TZID=Tokyo Standard Time:20260101T130000
RRULE:FREQ=DAILY
END:VEVENT
BEGIN:VEVENT
UID:sync
SUMMARY:Canceled: Sync
DTSTART:20260205T150000Z
END:VEVENT
BEGIN:VEVENT
UID:standup-copy
SUMMARY:Stand-up
DTSTART:20260205T093000Z
END:VEVENT
END:VCALENDAR
`

var (
	now    = time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)
	manila = time.FixedZone("PHT", 8*3600)
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchEvents_FiltersAndExpands(t *testing.T) {
	srv := serve(t, http.StatusOK, feed)
	f := &Fetcher{Client: srv.Client(), Now: func() time.Time { return now }}

	events, err := f.FetchEvents(context.Background(), models.ICalSource{ID: "work", Name: "Work", URL: srv.URL})
	require.NoError(t, err)

	titles := make([]string, len(events))
	for i, e := range events {
		titles[i] = e.Title
		assert.Equal(t, "work", e.SourceID)
	}
	assert.ElementsMatch(t, []string{"Stand-up", "Lunch"}, titles)
}

func TestImport_CandidatesInDisplayZone(t *testing.T) {
	srv := serve(t, http.StatusOK, feed)
	f := &Fetcher{Client: srv.Client(), Now: func() time.Time { return now }}

	got, err := f.Import(context.Background(), []models.ICalSource{{ID: "work", Name: "Work", URL: srv.URL}}, manila)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Stand-up", got[0].Label)
	assert.Equal(t, "5:30 PM", got[0].Time)
	assert.Equal(t, "Lunch", got[1].Label)
	assert.Equal(t, "11:00 AM", got[1].Time)
}

func TestImport_FailingSourceFails(t *testing.T) {
	ok := serve(t, http.StatusOK, feed)
	broken := serve(t, http.StatusInternalServerError, "boom")
	f := &Fetcher{Client: ok.Client(), Now: func() time.Time { return now }}

	_, err := f.Import(context.Background(), []models.ICalSource{
		{ID: "a", Name: "A", URL: ok.URL},
		{ID: "b", Name: "B", URL: broken.URL},
	}, manila)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"B"`)
}

func TestFetchEvents_RejectsHTML(t *testing.T) {
	srv := serve(t, http.StatusOK, "<!DOCTYPE html><html>login</html>")
	f := &Fetcher{Client: srv.Client()}

	_, err := f.FetchEvents(context.Background(), models.ICalSource{Name: "x", URL: srv.URL})
	assert.ErrorIs(t, err, ErrNotICal)

	err = validateICalFormat(strings.Repeat("x", 300))
	assert.ErrorIs(t, err, ErrNotICal)
}

func TestCandidates_DedupeByLabelAndTime(t *testing.T) {
	events := []models.Event{
		{Title: "Lunch", StartTime: time.Date(2026, 2, 6, 3, 0, 0, 0, time.UTC)},
		{Title: " Lunch ", StartTime: time.Date(2026, 2, 5, 3, 0, 0, 0, time.UTC)},
		{Title: "", StartTime: time.Date(2026, 2, 5, 1, 0, 0, 0, time.UTC)},
	}

	got := Candidates(events, manila)
	require.Len(t, got, 2)
	assert.Equal(t, "Calendar event", got[0].Label)
	assert.Equal(t, "9:00 AM", got[0].Time)
	assert.Equal(t, "Lunch", got[1].Label)
	assert.Equal(t, time.Date(2026, 2, 5, 3, 0, 0, 0, time.UTC), got[1].Start, "earliest wins")
}

func TestExpandRecurringEvent(t *testing.T) {
	base := models.Event{
		ID:        "w",
		Title:     "Weekly",
		StartTime: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC),
	}

	weekly := expandRecurringEvent(base, "FREQ=WEEKLY;BYDAY=TH", now, now.Add(14*24*time.Hour))
	require.Len(t, weekly, 2)
	assert.Equal(t, time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC), weekly[0].StartTime)
	assert.Equal(t, 30*time.Minute, weekly[0].EndTime.Sub(weekly[0].StartTime))
	assert.NotEqual(t, weekly[0].ID, weekly[1].ID)

	assert.Empty(t, expandRecurringEvent(base, "FREQ=MONTHLY", now, now.Add(Window)))
}
