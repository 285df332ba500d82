package models

import "time"

// Reminder is a labelled time of day the user wants to be alerted at.
// Time keeps the raw "H:MM AM" text the user entered.
type Reminder struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"createdAt"`
}

// Background is a selectable looping video behind the clock.
type Background struct {
	Label string `json:"label"`
	Src   string `json:"src"`
	Thumb string `json:"thumb,omitempty"`
}

// DefaultBackground is shown until the user picks another one.
var DefaultBackground = Background{Label: "Nocturne", Src: "/videos/Nocturne.mov"}

// RoundToMinute rounds a time down to the nearest minute
func RoundToMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
