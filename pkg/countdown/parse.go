// Package countdown parses 12-hour reminder times and computes the time left
// until their next occurrence.
package countdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/borgmon/reminder-clock/pkg/clock"
)

// ParsedTime is a validated 12-hour time of day with minute precision.
type ParsedTime struct {
	Hour12 int // 1..12
	Minute int // 0..59
	Period clock.Period
}

var timePattern = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(AM|PM)$`)

// Parse accepts "H:MM AM", "HH:MM pm", with optional surrounding whitespace.
// Anything else, including out-of-range fields, fails without clamping.
func Parse(raw string) (ParsedTime, bool) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ParsedTime{}, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return ParsedTime{}, false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil {
		return ParsedTime{}, false
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return ParsedTime{}, false
	}

	return ParsedTime{
		Hour12: hour,
		Minute: minute,
		Period: clock.Period(strings.ToUpper(m[3])),
	}, true
}

// String renders the canonical "H:MM AM" form accepted by Parse.
func (p ParsedTime) String() string {
	return fmt.Sprintf("%d:%02d %s", p.Hour12, p.Minute, p.Period)
}

// SecondsOfDay converts to seconds since midnight on a 24-hour clock.
func (p ParsedTime) SecondsOfDay() int {
	return to24h(p.Hour12, p.Period)*3600 + p.Minute*60
}

// to24h maps 12 AM to 0, 12 PM to 12, and adds 12 to the other PM hours.
func to24h(hour12 int, period clock.Period) int {
	if period == clock.AM {
		if hour12 == 12 {
			return 0
		}
		return hour12
	}
	if hour12 == 12 {
		return 12
	}
	return hour12 + 12
}
