package store

import (
	"encoding/json"

	"fyne.io/fyne/v2"
	"github.com/borgmon/reminder-clock/pkg/models"
)

// SettingsStore persists the user-editable part of the configuration in
// Fyne preferences and overlays it onto the file configuration.
type SettingsStore struct {
	prefs fyne.Preferences
}

// NewSettingsStore creates a SettingsStore.
func NewSettingsStore(prefs fyne.Preferences) *SettingsStore {
	return &SettingsStore{prefs: prefs}
}

// Load returns base with any saved settings applied on top.
func (ss *SettingsStore) Load(base models.Config) models.Config {
	cfg := base
	cfg.AutoStart = ss.prefs.BoolWithFallback("auto_start", base.AutoStart)
	cfg.HoldTimeSeconds = ss.prefs.IntWithFallback("hold_time_seconds", base.HoldTimeSeconds)
	cfg.Timezone = ss.prefs.StringWithFallback("timezone", base.Timezone)
	cfg.Sounds.Alarm = ss.prefs.StringWithFallback("sound_alarm", base.Sounds.Alarm)

	// iCal sources are stored as a JSON string
	if raw := ss.prefs.String("ical_sources"); raw != "" {
		var sources []models.ICalSource
		if err := json.Unmarshal([]byte(raw), &sources); err == nil {
			cfg.ICalSources = sources
		}
	}
	return cfg
}

// Save stores the user-editable fields of cfg.
func (ss *SettingsStore) Save(cfg models.Config) {
	ss.prefs.SetBool("auto_start", cfg.AutoStart)
	ss.prefs.SetInt("hold_time_seconds", cfg.HoldTimeSeconds)
	ss.prefs.SetString("timezone", cfg.Timezone)
	ss.prefs.SetString("sound_alarm", cfg.Sounds.Alarm)

	if data, err := json.Marshal(cfg.ICalSources); err == nil {
		ss.prefs.SetString("ical_sources", string(data))
	}
}
