package clock

import (
	"fmt"
	"time"
)

// Period is the 12-hour clock half of the day.
type Period string

const (
	AM Period = "AM"
	PM Period = "PM"
)

// DefaultZone is the display timezone used when none is configured.
const DefaultZone = "Asia/Manila"

// Sample is an immutable snapshot of the display clock.
// The zero Sample has no Period and is treated as "not yet available".
type Sample struct {
	Hour12 int    // 1..12
	Minute int    // 0..59
	Second int    // 0..59
	Period Period // AM or PM; empty before the first sample
	At     time.Time
}

// Valid reports whether the sample carries a period and in-range fields.
func (s Sample) Valid() bool {
	if s.Period != AM && s.Period != PM {
		return false
	}
	return s.Hour12 >= 1 && s.Hour12 <= 12 &&
		s.Minute >= 0 && s.Minute <= 59 &&
		s.Second >= 0 && s.Second <= 59
}

// HourText returns the zero-padded hour for display.
func (s Sample) HourText() string { return pad2(s.Hour12) }

// MinuteText returns the zero-padded minute for display.
func (s Sample) MinuteText() string { return pad2(s.Minute) }

// SecondText returns the zero-padded second for display.
func (s Sample) SecondText() string { return pad2(s.Second) }

// String renders "HH:MM:SS AM".
func (s Sample) String() string {
	if !s.Valid() {
		return "--:--:--"
	}
	return fmt.Sprintf("%s:%s:%s %s", s.HourText(), s.MinuteText(), s.SecondText(), s.Period)
}

// Sampler derives samples in a fixed timezone, independent of the host's local zone.
type Sampler struct {
	loc *time.Location
}

// NewSampler loads the named IANA zone. An empty name selects DefaultZone.
func NewSampler(zone string) (*Sampler, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load display timezone %q: %w", zone, err)
	}
	return &Sampler{loc: loc}, nil
}

// NewSamplerIn uses loc directly.
func NewSamplerIn(loc *time.Location) *Sampler {
	return &Sampler{loc: loc}
}

// Location returns the display timezone.
func (s *Sampler) Location() *time.Location { return s.loc }

// Sample is pure given t.
func (s *Sampler) Sample(t time.Time) Sample {
	local := t.In(s.loc)
	hour := local.Hour()

	period := AM
	if hour >= 12 {
		period = PM
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}

	return Sample{
		Hour12: hour12,
		Minute: local.Minute(),
		Second: local.Second(),
		Period: period,
		At:     t,
	}
}

// DateText renders t as "Wednesday, February 18" in the display zone.
func (s *Sampler) DateText(t time.Time) string {
	return t.In(s.loc).Format("Monday, January 2")
}

func pad2(n int) string {
	return fmt.Sprintf("%02d", n)
}
