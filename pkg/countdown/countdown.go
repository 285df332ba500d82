package countdown

import (
	"fmt"

	"github.com/borgmon/reminder-clock/pkg/clock"
)

// SecondsPerDay is the wraparound period.
const SecondsPerDay = 24 * 3600

// Remaining is the time left until the next occurrence of a target time.
// TotalSeconds is always in 1..SecondsPerDay: a target equal to the current
// second is a full day away, never "arrived".
type Remaining struct {
	Hours        int
	Minutes      int
	Seconds      int
	TotalSeconds int
}

// Compute returns the time from current until the next occurrence of target.
// It reports false when current has no period yet.
func Compute(current clock.Sample, target ParsedTime) (Remaining, bool) {
	if !current.Valid() {
		return Remaining{}, false
	}

	now := to24h(current.Hour12, current.Period)*3600 + current.Minute*60 + current.Second
	diff := target.SecondsOfDay() - now
	if diff <= 0 {
		diff += SecondsPerDay
	}

	return Remaining{
		Hours:        diff / 3600,
		Minutes:      (diff % 3600) / 60,
		Seconds:      diff % 60,
		TotalSeconds: diff,
	}, true
}

// ComputeRaw parses raw and chains a parse failure into an absent result.
func ComputeRaw(current clock.Sample, raw string) (Remaining, bool) {
	target, ok := Parse(raw)
	if !ok {
		return Remaining{}, false
	}
	return Compute(current, target)
}

func (r Remaining) HourText() string   { return fmt.Sprintf("%02d", r.Hours) }
func (r Remaining) MinuteText() string { return fmt.Sprintf("%02d", r.Minutes) }
func (r Remaining) SecondText() string { return fmt.Sprintf("%02d", r.Seconds) }

// Text renders "- HH:MM:SS".
func (r Remaining) Text() string {
	return fmt.Sprintf("- %s:%s:%s", r.HourText(), r.MinuteText(), r.SecondText())
}

// SampleSource is anything that can report the latest clock sample.
type SampleSource interface {
	Latest() clock.Sample
}

// Tracker answers countdown reads against whatever sample is current at read time.
// It holds no state beyond its source.
type Tracker struct {
	source SampleSource
}

// NewTracker reads samples from source.
func NewTracker(source SampleSource) *Tracker {
	return &Tracker{source: source}
}

// Remaining returns the countdown for a raw "HH:MM AM/PM" reminder time.
func (t *Tracker) Remaining(raw string) (Remaining, bool) {
	return ComputeRaw(t.source.Latest(), raw)
}
