package toast

import (
	"sync"
	"time"

	"github.com/borgmon/reminder-clock/pkg/clock"
	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sounds is the playback surface the store drives. Calls must not block.
type Sounds interface {
	PlayOnce(name string)
	PlayLoop(id, name string)
	StopLoop(id string)
}

type silent struct{}

func (silent) PlayOnce(string)         {}
func (silent) PlayLoop(string, string) {}
func (silent) StopLoop(string)         {}

// Store owns the newest-first list of active toasts and their dismissal timers.
type Store struct {
	sounds Sounds
	clk    clock.Clock
	logger zerolog.Logger

	mu      sync.Mutex
	toasts  []Toast
	timers  map[string]clock.Timer
	subs    map[int]func([]Toast)
	nextSub int
	closed  bool
}

// NewStore creates an empty store. A nil sounds plays nothing; a nil clk uses the system clock.
func NewStore(sounds Sounds, clk clock.Clock) *Store {
	if sounds == nil {
		sounds = silent{}
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Store{
		sounds: sounds,
		clk:    clk,
		logger: logging.WithComponent("toast"),
		timers: make(map[string]clock.Timer),
		subs:   make(map[int]func([]Toast)),
	}
}

// Create adds a toast at the head of the list and returns its id.
// Sound playback is started but never awaited; a positive duration schedules
// automatic dismissal.
func (s *Store) Create(opts ...Option) string {
	t := defaults()
	for _, opt := range opts {
		opt(&t)
	}
	t.ID = uuid.NewString()
	t.CreatedAt = s.clk.Now()
	t.SoundPlayed = false
	t.Done = false

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ""
	}
	s.toasts = append([]Toast{t}, s.toasts...)
	s.dispatchSoundLocked(0)
	if t.Duration > 0 {
		id := t.ID
		s.timers[id] = s.clk.AfterFunc(t.Duration, func() { s.expire(id) })
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	metrics.ToastsCreated.WithLabelValues(string(t.Variant)).Inc()
	s.logger.Debug().
		Str("id", t.ID).
		Str("variant", string(t.Variant)).
		Dur("duration", t.Duration).
		Str("sound", t.Sound).
		Msg("toast created")
	s.notify(snapshot)
	return t.ID
}

// dispatchSoundLocked applies the sound rule to the toast at index i:
// loops go through the idempotent PlayLoop; one-shots fire only once per toast.
func (s *Store) dispatchSoundLocked(i int) {
	t := &s.toasts[i]
	if t.Sound == "" || t.Done {
		return
	}
	if t.SoundLoop {
		s.sounds.PlayLoop(t.ID, t.Sound)
		return
	}
	if !t.SoundPlayed {
		s.sounds.PlayOnce(t.Sound)
		t.SoundPlayed = true
	}
}

// Present is called by the UI each time it draws a toast. It re-applies the
// sound rule, which replays nothing that already started.
func (s *Store) Present(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.dispatchSoundLocked(i)
	}
}

// Dismiss stops the toast's loop, then removes it. Unknown ids are ignored,
// so a timer firing after a manual dismissal does nothing.
func (s *Store) Dismiss(id string) {
	s.remove(id, true)
}

func (s *Store) expire(id string) {
	s.remove(id, false)
}

func (s *Store) remove(id string, cancelTimer bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}

	s.sounds.StopLoop(id)
	s.toasts = append(s.toasts[:i:i], s.toasts[i+1:]...)
	if timer, ok := s.timers[id]; ok {
		if cancelTimer {
			timer.Stop()
		}
		delete(s.timers, id)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("id", id).Bool("manual", cancelTimer).Msg("toast dismissed")
	s.notify(snapshot)
}

// MarkDone flags the toast as finished and silences its loop but keeps it on screen.
func (s *Store) MarkDone(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 || s.toasts[i].Done {
		s.mu.Unlock()
		return false
	}
	s.toasts[i].Done = true
	s.sounds.StopLoop(id)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// Get returns a copy of the toast with id.
func (s *Store) Get(id string) (Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.toasts[i].clone(), true
	}
	return Toast{}, false
}

// List returns copies of all toasts, newest first.
func (s *Store) List() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of toasts held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.toasts)
}

// Subscribe calls fn with a fresh snapshot after every change.
// fn runs on the mutating goroutine after the lock is released, so
// concurrent changes may deliver their snapshots out of order; callers that
// render should re-read List. The returned func unsubscribes.
func (s *Store) Subscribe(fn func([]Toast)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Close cancels every pending dismissal, stops all loops and drops the toasts.
// Create is a no-op afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	for _, t := range s.toasts {
		s.sounds.StopLoop(t.ID)
	}
	s.toasts = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Timers returns the number of pending auto-dismissals.
func (s *Store) Timers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.toasts {
		if s.toasts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []Toast {
	out := make([]Toast, len(s.toasts))
	for i, t := range s.toasts {
		out[i] = t.clone()
	}
	return out
}

func (s *Store) notify(snapshot []Toast) {
	metrics.ToastsActive.Set(float64(len(snapshot)))

	s.mu.Lock()
	subs := make([]func([]Toast), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Success creates a success toast.
func (s *Store) Success(label string, opts ...Option) string {
	return s.variant(VariantSuccess, label, opts)
}

// Error creates an error toast.
func (s *Store) Error(label string, opts ...Option) string {
	return s.variant(VariantError, label, opts)
}

// Info creates an info toast.
func (s *Store) Info(label string, opts ...Option) string {
	return s.variant(VariantInfo, label, opts)
}

// Warning creates a warning toast.
func (s *Store) Warning(label string, opts ...Option) string {
	return s.variant(VariantWarning, label, opts)
}

// Loading creates a toast that stays until dismissed, whatever the options say.
func (s *Store) Loading(label string, opts ...Option) string {
	return s.variant(VariantLoading, label, append(opts, WithDuration(0)))
}

// Set announces a newly scheduled reminder.
func (s *Store) Set(label string, opts ...Option) string {
	return s.variant(VariantSet, label, opts)
}

// Complete announces a finished reminder.
func (s *Store) Complete(label string, opts ...Option) string {
	return s.variant(VariantComplete, label, opts)
}

// Alarm raises a reminder alarm.
func (s *Store) Alarm(label string, opts ...Option) string {
	return s.variant(VariantAlarm, label, opts)
}

func (s *Store) variant(v Variant, label string, opts []Option) string {
	all := make([]Option, 0, len(opts)+2)
	all = append(all, opts...)
	all = append(all, WithVariant(v), WithLabel(label))
	return s.Create(all...)
}

// Wait reports how long until the toast's automatic dismissal, or false if it has none.
func (s *Store) Wait(id string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 || s.toasts[i].Duration <= 0 {
		return 0, false
	}
	left := s.toasts[i].CreatedAt.Add(s.toasts[i].Duration).Sub(s.clk.Now())
	if left < 0 {
		left = 0
	}
	return left, true
}
