package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/borgmon/reminder-clock/pkg/clock"
	"github.com/borgmon/reminder-clock/pkg/countdown"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/google/uuid"
)

const remindersKey = "reminders"

// ErrInvalidTime is returned when a reminder time is not "H:MM AM" or "H:MM PM".
var ErrInvalidTime = errors.New("invalid reminder time")

// ReminderStore persists the reminder list in Fyne preferences as a JSON array.
type ReminderStore struct {
	mu    sync.Mutex
	prefs fyne.Preferences
	clk   clock.Clock
}

// NewReminderStore creates a ReminderStore. A nil clk uses the system clock.
func NewReminderStore(prefs fyne.Preferences, clk clock.Clock) *ReminderStore {
	if clk == nil {
		clk = clock.Real{}
	}
	return &ReminderStore{prefs: prefs, clk: clk}
}

// List returns the stored reminders in insertion order.
// Rows with an unparseable time are kept; their countdown is simply absent.
func (rs *ReminderStore) List() []models.Reminder {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.load()
}

// Add validates raw, then appends a reminder with a fresh id and creation time.
func (rs *ReminderStore) Add(label, raw string) (models.Reminder, error) {
	parsed, ok := countdown.Parse(raw)
	if !ok {
		return models.Reminder{}, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}

	item := models.Reminder{
		ID:        uuid.NewString(),
		Label:     strings.TrimSpace(label),
		Time:      parsed.String(),
		CreatedAt: rs.clk.Now().UTC(),
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	list := append(rs.load(), item)
	if err := rs.save(list); err != nil {
		return models.Reminder{}, err
	}
	return item, nil
}

// Get returns the reminder with id.
func (rs *ReminderStore) Get(id string) (models.Reminder, bool) {
	for _, r := range rs.List() {
		if r.ID == id {
			return r, true
		}
	}
	return models.Reminder{}, false
}

// Remove deletes the reminder with id and reports whether it existed.
func (rs *ReminderStore) Remove(id string) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	list := rs.load()
	kept := list[:0]
	for _, r := range list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(list) {
		return false
	}
	return rs.save(kept) == nil
}

// Clear drops every reminder.
func (rs *ReminderStore) Clear() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.prefs.SetString(remindersKey, "[]")
}

func (rs *ReminderStore) load() []models.Reminder {
	raw := rs.prefs.String(remindersKey)
	if raw == "" {
		return []models.Reminder{}
	}
	var list []models.Reminder
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []models.Reminder{}
	}
	return list
}

func (rs *ReminderStore) save(list []models.Reminder) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode reminders: %w", err)
	}
	rs.prefs.SetString(remindersKey, string(data))
	return nil
}
