// Package alarm raises an alarm toast when a reminder's countdown runs out.
package alarm

import (
	"sort"
	"sync"
	"time"

	"github.com/borgmon/reminder-clock/pkg/clock"
	"github.com/borgmon/reminder-clock/pkg/countdown"
	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/metrics"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/borgmon/reminder-clock/pkg/toast"
	"github.com/rs/zerolog"
)

// ArrivalTicks is how many fine ticks before zero a countdown may last be
// seen and still count as arriving when it wraps.
const ArrivalTicks = 2

// Reminders lists the reminders to watch.
type Reminders interface {
	List() []models.Reminder
}

// Toasts is the part of the toast store the watcher drives.
type Toasts interface {
	Alarm(label string, opts ...toast.Option) string
	Complete(label string, opts ...toast.Option) string
	Dismiss(id string)
}

// SampleSource publishes clock samples.
type SampleSource interface {
	Subscribe(fn func(clock.Sample)) func()
}

// Options tune a Watcher. Zero values select the defaults.
type Options struct {
	AlarmSound    string        // looping sound on the alarm toast
	CompleteSound string        // one-shot sound when an alarm is stopped
	Interval      time.Duration // tick interval of the observed source
	OnFire        func(models.Reminder)
}

// Watcher compares each tick's countdown with the previous one and fires
// when a countdown wraps from (almost) zero back to a full day.
type Watcher struct {
	reminders Reminders
	toasts    Toasts
	opts      Options
	window    int
	logger    zerolog.Logger

	mu     sync.Mutex
	last   map[string]int // reminder id -> total seconds at previous tick
	active map[string]ringing
}

type ringing struct {
	toastID string
	label   string
}

// NewWatcher creates a Watcher.
func NewWatcher(reminders Reminders, toasts Toasts, opts Options) *Watcher {
	if opts.AlarmSound == "" {
		opts.AlarmSound = "alarm"
	}
	if opts.CompleteSound == "" {
		opts.CompleteSound = "complete"
	}
	if opts.Interval <= 0 {
		opts.Interval = clock.FineInterval
	}
	window := int((ArrivalTicks * opts.Interval).Seconds())
	if window < 1 {
		window = 1
	}
	return &Watcher{
		reminders: reminders,
		toasts:    toasts,
		opts:      opts,
		window:    window,
		logger:    logging.WithComponent("alarm"),
		last:      make(map[string]int),
		active:    make(map[string]ringing),
	}
}

// Attach observes every sample src publishes. The returned func detaches.
func (w *Watcher) Attach(src SampleSource) func() {
	return src.Subscribe(w.Observe)
}

// Observe checks every reminder against sample and fires the ones that arrived.
func (w *Watcher) Observe(sample clock.Sample) {
	reminders := w.reminders.List()

	var due []models.Reminder
	w.mu.Lock()
	seen := make(map[string]bool, len(reminders))
	for _, r := range reminders {
		left, ok := countdown.ComputeRaw(sample, r.Time)
		if !ok {
			continue
		}
		seen[r.ID] = true
		prev, had := w.last[r.ID]
		w.last[r.ID] = left.TotalSeconds
		if !had || left.TotalSeconds <= prev || prev > w.window {
			continue
		}
		if _, busy := w.active[r.ID]; busy {
			continue
		}
		due = append(due, r)
	}
	for id := range w.last {
		if !seen[id] {
			delete(w.last, id)
		}
	}
	w.mu.Unlock()

	for _, r := range due {
		w.fire(r)
	}
}

// SetAlarmSound changes the sound used by alarms fired from now on.
// An empty name keeps the current one.
func (w *Watcher) SetAlarmSound(name string) {
	if name == "" {
		return
	}
	w.mu.Lock()
	w.opts.AlarmSound = name
	w.mu.Unlock()
}

func (w *Watcher) fire(r models.Reminder) {
	w.mu.Lock()
	sound := w.opts.AlarmSound
	w.mu.Unlock()

	reminderID := r.ID
	toastID := w.toasts.Alarm(label(r),
		toast.WithDescription(r.Time),
		toast.WithLoop(sound),
		toast.WithDuration(0),
		toast.WithClosable(false),
		toast.WithAction("Stop", toast.StylePrimary, func() { w.Acknowledge(reminderID) }),
	)

	w.mu.Lock()
	w.active[reminderID] = ringing{toastID: toastID, label: label(r)}
	w.mu.Unlock()

	metrics.AlarmsFired.Inc()
	w.logger.Info().Str("reminder", reminderID).Str("time", r.Time).Msg("reminder alarm fired")

	if w.opts.OnFire != nil {
		w.opts.OnFire(r)
	}
}

// Acknowledge stops the ringing alarm of a reminder and announces completion.
// It reports false when the reminder is not ringing.
func (w *Watcher) Acknowledge(reminderID string) bool {
	w.mu.Lock()
	alarm, ok := w.active[reminderID]
	delete(w.active, reminderID)
	w.mu.Unlock()
	if !ok {
		return false
	}

	w.toasts.Dismiss(alarm.toastID)
	w.toasts.Complete(alarm.label+" done", toast.WithSound(w.opts.CompleteSound))
	w.logger.Debug().Str("reminder", reminderID).Msg("alarm acknowledged")
	return true
}

// Ringing returns the ids of reminders whose alarm is showing, sorted.
func (w *Watcher) Ringing() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, 0, len(w.active))
	for id := range w.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Upcoming returns reminders ordered by time left at sample, soonest first.
// Reminders without a countdown are left out.
func Upcoming(reminders []models.Reminder, sample clock.Sample) []models.Reminder {
	type entry struct {
		r    models.Reminder
		left int
	}
	entries := make([]entry, 0, len(reminders))
	for _, r := range reminders {
		if left, ok := countdown.ComputeRaw(sample, r.Time); ok {
			entries = append(entries, entry{r, left.TotalSeconds})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].left < entries[j].left })

	out := make([]models.Reminder, len(entries))
	for i, e := range entries {
		out[i] = e.r
	}
	return out
}

func label(r models.Reminder) string {
	if r.Label == "" {
		return "Reminder"
	}
	return r.Label
}
