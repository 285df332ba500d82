package main

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/borgmon/reminder-clock/pkg/audio"
	"github.com/borgmon/reminder-clock/pkg/clock"
	"github.com/borgmon/reminder-clock/pkg/countdown"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/borgmon/reminder-clock/pkg/toast"
	"github.com/borgmon/reminder-clock/pkg/ui/components"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSample clock.Sample

func (f fixedSample) Latest() clock.Sample { return clock.Sample(f) }

func TestReminderRows(t *testing.T) {
	now := fixedSample{Hour12: 9, Minute: 0, Second: 0, Period: clock.AM}
	reminders := []models.Reminder{
		{ID: "a", Label: "Stand-up", Time: "9:30 AM"},
		{ID: "b", Time: "8:00 AM"},
		{ID: "c", Label: "Broken", Time: "25:00"},
	}

	rows := reminderRows(reminders, countdown.NewTracker(now), []string{"b"})

	want := []components.Row{
		{ID: "a", Title: "Stand-up", Detail: "9:30 AM", Trailing: "- 00:30:00"},
		{ID: "b", Title: "Reminder", Detail: "8:00 AM", Trailing: "ringing"},
		{ID: "c", Title: "Broken", Detail: "25:00", Trailing: "--:--:--"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReminderRows_NoSampleYet(t *testing.T) {
	rows := reminderRows([]models.Reminder{{ID: "a", Time: "9:30 AM"}}, countdown.NewTracker(fixedSample{}), nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "--:--:--", rows[0].Trailing)
}

func TestUpcomingLines(t *testing.T) {
	now := clock.Sample{Hour12: 10, Minute: 0, Second: 0, Period: clock.AM}
	reminders := []models.Reminder{
		{ID: "late", Label: "Dinner", Time: "7:00 PM"},
		{ID: "soon", Label: "Coffee", Time: "10:15 AM"},
		{ID: "bad", Label: "Nope", Time: "noon"},
		{ID: "past", Label: "Breakfast", Time: "8:00 AM"},
	}

	lines := upcomingLines(reminders, now, 2)
	assert.Equal(t, []string{
		"  10:15 AM - Coffee (in 00:15)",
		"  7:00 PM - Dinner (in 09:00)",
	}, lines)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "ñññ...", truncateString("ññññññññ", 6))
}

func TestHoldOptions(t *testing.T) {
	options := holdOptions()
	require.Len(t, options, maxHoldSeconds+1)
	assert.Equal(t, "Tap (no hold)", options[0])
	assert.Equal(t, "2 sec", holdOption(2))
	assert.Equal(t, "10 sec", holdOption(30))

	assert.Equal(t, 0, parseHoldOption("Tap (no hold)", 2))
	assert.Equal(t, 3, parseHoldOption("3 sec", 2))
	assert.Equal(t, 2, parseHoldOption("", 2))
	assert.Equal(t, 2, parseHoldOption("soon", 2))
}

func TestSoundOptions(t *testing.T) {
	assert.Equal(t, audio.BuiltinSounds(), soundOptions("alarm"))
	assert.Equal(t, append(audio.BuiltinSounds(), "klaxon"), soundOptions("klaxon"))
}

func TestValidateSourceURL(t *testing.T) {
	existing := []models.ICalSource{{ID: "1", Name: "Work", URL: "https://cal.example.com/work.ics"}}

	assert.NoError(t, validateSourceURL("https://cal.example.com/home.ics", existing))
	assert.NoError(t, validateSourceURL("http://localhost:8080/feed", nil))
	assert.Error(t, validateSourceURL("", nil))
	assert.Error(t, validateSourceURL("webcal://cal.example.com/x.ics", nil))
	assert.Error(t, validateSourceURL("https://", nil))
	assert.Error(t, validateSourceURL("https://cal.example.com/work.ics", existing))
}

func TestValidateReminderTime(t *testing.T) {
	assert.NoError(t, validateReminderTime("9:30 AM"))
	assert.NoError(t, validateReminderTime("12:05pm"))
	assert.Error(t, validateReminderTime(""))
	assert.Error(t, validateReminderTime("13:00 PM"))
}

func TestSettingsChanged(t *testing.T) {
	base := models.Defaults()
	assert.False(t, settingsChanged(base, base))

	edited := base
	edited.HoldTimeSeconds = 5
	assert.True(t, settingsChanged(base, edited))

	edited = base
	edited.ICalSources = []models.ICalSource{{ID: "1", Name: "Work", URL: "https://x"}}
	assert.True(t, settingsChanged(base, edited))

	// Fields the window does not edit are ignored
	edited = base
	edited.Timezone = "UTC"
	assert.False(t, settingsChanged(base, edited))
}

func TestSoundFetcher(t *testing.T) {
	format := audio.DefaultFormat

	chain, ok := soundFetcher(models.SoundConfig{}, format).(audio.Chain)
	require.True(t, ok)
	require.Len(t, chain, 1)
	assert.IsType(t, audio.ToneFetcher{}, chain[0])

	chain, ok = soundFetcher(models.SoundConfig{Dir: "sounds", BaseURL: "https://cdn.example.com/sounds"}, format).(audio.Chain)
	require.True(t, ok)
	require.Len(t, chain, 3)
	assert.Equal(t, audio.DirFetcher{Dir: "sounds"}, chain[0])
	assert.Equal(t, audio.HTTPFetcher{BaseURL: "https://cdn.example.com/sounds"}, chain[1])
	assert.Equal(t, audio.ToneFetcher{Format: format}, chain[2])
}

func TestGroupByPosition(t *testing.T) {
	toasts := []toast.Toast{
		{ID: "3", Position: toast.BottomRight},
		{ID: "2", Position: toast.TopCenter},
		{ID: "1", Position: toast.BottomRight},
		{ID: "0", Position: "middle"},
	}

	grouped := groupByPosition(toasts)
	ids := func(p toast.Position) []string {
		var out []string
		for _, t := range grouped[p] {
			out = append(out, t.ID)
		}
		return out
	}
	assert.Equal(t, []string{"2", "0"}, ids(toast.TopCenter))
	assert.Equal(t, []string{"1", "3"}, ids(toast.BottomRight), "newest ends up next to the bottom edge")
	assert.Empty(t, ids(toast.TopLeft))
}

func TestVariantColor(t *testing.T) {
	assert.Equal(t, theme.ColorNameError, variantColor(toast.VariantAlarm))
	assert.Equal(t, theme.ColorNameSuccess, variantColor(toast.VariantComplete))
	assert.Equal(t, theme.ColorNamePrimary, variantColor(toast.VariantSet))
	assert.Equal(t, theme.ColorNameForeground, variantColor(toast.VariantDefault))
}

func TestFileManagerCommand(t *testing.T) {
	cmd := fileManagerCommand("linux", "/tmp/x")
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"xdg-open", "/tmp/x"}, cmd.Args)
	assert.Nil(t, fileManagerCommand("plan9", "/tmp/x"))
}

func TestToastLayer_SyncIgnoresStaleSnapshot(t *testing.T) {
	test.NewTempApp(t)
	toasts := toast.NewStore(nil, clock.NewMock(time.Date(2026, 2, 18, 9, 0, 0, 0, time.UTC)))
	defer toasts.Close()
	tl := NewToastLayer(&ReminderClock{toasts: toasts, config: models.Defaults()})

	keep := toasts.Create(toast.WithLabel("keep"), toast.WithDuration(0))
	gone := toasts.Create(toast.WithLabel("gone"), toast.WithDuration(0))
	stale := toasts.List()
	toasts.Dismiss(gone)

	// The older snapshot lands last, as when two notifications race
	tl.Refresh(stale)
	require.Len(t, tl.cards, 2)

	tl.Sync()
	assert.Len(t, tl.cards, 1)
	assert.Contains(t, tl.cards, keep)
	assert.NotContains(t, tl.cards, gone)
	assert.Len(t, tl.stacks[toast.TopCenter].Objects, 1)
}
