package calendar

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// Map of common Windows timezone names to IANA timezone names
var windowsToIANA = map[string]string{
	"Pacific Standard Time":        "America/Los_Angeles",
	"Mountain Standard Time":       "America/Denver",
	"Central Standard Time":        "America/Chicago",
	"Eastern Standard Time":        "America/New_York",
	"Atlantic Standard Time":       "America/Halifax",
	"Alaskan Standard Time":        "America/Anchorage",
	"Hawaiian Standard Time":       "Pacific/Honolulu",
	"GMT Standard Time":            "Europe/London",
	"Central Europe Standard Time": "Europe/Paris",
	"W. Europe Standard Time":      "Europe/Berlin",
	"China Standard Time":          "Asia/Shanghai",
	"Singapore Standard Time":      "Asia/Singapore",
	"Tokyo Standard Time":          "Asia/Tokyo",
	"India Standard Time":          "Asia/Kolkata",
	"AUS Eastern Standard Time":    "Australia/Sydney",
}

// normalizeComponentTimezones rewrites Windows TZIDs on date properties to IANA names.
func normalizeComponentTimezones(comp *ical.Component) {
	var props []ical.Prop
	props = append(props, comp.Props.Values(ical.PropDateTimeStart)...)
	props = append(props, comp.Props.Values(ical.PropDateTimeEnd)...)
	props = append(props, comp.Props.Values(ical.PropExceptionDates)...)
	props = append(props, comp.Props.Values(ical.PropRecurrenceDates)...)

	for i := range props {
		tzid := props[i].Params.Get(ical.ParamTimezoneID)
		if ianaName, ok := windowsToIANA[tzid]; ok {
			props[i].Params.Set(ical.ParamTimezoneID, ianaName)
		}
	}
}

// componentLocation picks the zone a floating DTSTART should be read in.
func componentLocation(comp *ical.Component) *time.Location {
	dtstart := comp.Props.Get(ical.PropDateTimeStart)
	if dtstart == nil {
		return time.Local
	}
	if tzid := dtstart.Params.Get(ical.ParamTimezoneID); tzid != "" {
		if ianaName, ok := windowsToIANA[tzid]; ok {
			tzid = ianaName
		}
		if loc, err := time.LoadLocation(tzid); err == nil {
			return loc
		}
	}
	if strings.HasSuffix(dtstart.Value, "Z") {
		return time.UTC
	}
	return time.Local
}
