package store

import (
	"encoding/json"

	"fyne.io/fyne/v2"
	"github.com/borgmon/reminder-clock/pkg/models"
)

const backgroundKey = "background"

// BackgroundStore remembers the selected background video.
type BackgroundStore struct {
	prefs fyne.Preferences
}

// NewBackgroundStore creates a BackgroundStore.
func NewBackgroundStore(prefs fyne.Preferences) *BackgroundStore {
	return &BackgroundStore{prefs: prefs}
}

// Current returns the stored background, or models.DefaultBackground.
func (bs *BackgroundStore) Current() models.Background {
	raw := bs.prefs.String(backgroundKey)
	if raw == "" {
		return models.DefaultBackground
	}
	var bg models.Background
	if err := json.Unmarshal([]byte(raw), &bg); err != nil || bg.Src == "" {
		return models.DefaultBackground
	}
	return bg
}

// Replace persists bg and returns it.
func (bs *BackgroundStore) Replace(bg models.Background) models.Background {
	if data, err := json.Marshal(bg); err == nil {
		bs.prefs.SetString(backgroundKey, string(data))
	}
	return bg
}
