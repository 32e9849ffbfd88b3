package evaluator

import (
	"math"
	"strings"
	"time"
)

// OLE Automation dates count days from this instant.
var oleEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const (
	secondsPerDay = 86400
	oleDateLayout = "01/02/2006 15:04:05"

	// days outside 0100-01-01 .. 9999-12-31
	minOLEDay = -657434
	maxOLEDay = 2958465
)

// FormatOLEDate renders an OLE date as MM/DD/YYYY HH:MM:SS. The whole part
// selects the day and the magnitude of the fraction the time of day, so
// -1.25 is 12/29/1899 06:00:00. Values outside years 100..9999 render as
// plain numbers.
func FormatOLEDate(d float64) string {
	t, ok := DateToTime(d)
	if !ok {
		return formatFloat(d, 64)
	}
	return t.Format(oleDateLayout)
}

// DateToTime converts an OLE date to a UTC time.
func DateToTime(d float64) (time.Time, bool) {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return time.Time{}, false
	}
	days := math.Trunc(d)
	if days < minOLEDay || days > maxOLEDay {
		return time.Time{}, false
	}
	frac := math.Abs(d - days)
	seconds := math.Round(frac * secondsPerDay)
	t := oleEpoch.AddDate(0, 0, int(days)).Add(time.Duration(seconds) * time.Second)
	if t.Year() < 100 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

// DateFromTime converts the wall clock reading of t to an OLE date.
func DateFromTime(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	secs := wall.Unix() - oleEpoch.Unix()
	day := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		day--
	}
	tod := float64(secs-day*secondsPerDay) + float64(wall.Nanosecond())/1e9
	frac := tod / secondsPerDay
	if day < 0 {
		return float64(day) - frac
	}
	return float64(day) + frac
}

var dateLayouts = []struct {
	layout   string
	timeOnly bool
}{
	{"1/2/2006 15:04:05", false},
	{"1/2/2006 3:04:05 PM", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04:05", false},
	{"1/2/2006 15:04", false},
	{"1/2/2006 3:04 PM", false},
	{"2006-01-02 15:04", false},
	{"1/2/2006", false},
	{"2006-01-02", false},
	{"15:04:05", true},
	{"3:04:05 PM", true},
	{"15:04", true},
	{"3:04 PM", true},
}

// ParseDate parses the text of a date literal into an OLE date. A time
// without a date falls on day zero (12/30/1899).
func ParseDate(s string) (float64, error) {
	text := strings.ToUpper(strings.TrimSpace(s))
	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, text)
		if err != nil {
			continue
		}
		if l.timeOnly {
			tod := t.Hour()*3600 + t.Minute()*60 + t.Second()
			return float64(tod) / secondsPerDay, nil
		}
		return DateFromTime(t), nil
	}
	return 0, NewCustom("Type mismatch: cannot convert '%s' to Date", s)
}
