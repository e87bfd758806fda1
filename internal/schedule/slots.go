package schedule

import "time"

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// SessionDuration is the fixed length of a capsule session.
const SessionDuration = 40 * time.Minute

// SlotTimes are the only bookable start times, ascending.
var SlotTimes = []string{"10:00", "12:00", "15:00", "17:00"}

// bookableWeekdays maps each weekday to whether sessions run that day.
// Sessions run Tuesday through Saturday.
var bookableWeekdays = map[time.Weekday]bool{
	time.Sunday:    false,
	time.Monday:    false,
	time.Tuesday:   true,
	time.Wednesday: true,
	time.Thursday:  true,
	time.Friday:    true,
	time.Saturday:  true,
}

// IsBookableWeekday reports whether sessions run on the given weekday.
func IsBookableWeekday(wd time.Weekday) bool {
	return bookableWeekdays[wd]
}

// IsSlotTime reports whether hora is one of the fixed start times.
func IsSlotTime(hora string) bool {
	for _, t := range SlotTimes {
		if t == hora {
			return true
		}
	}
	return false
}

// NearestSlot snaps a bare hour to the closest slot start time using
// per-slot tolerance bands: 9-10 -> 10:00, 11-13 -> 12:00, 14-15 -> 15:00,
// 16-18 -> 17:00. Hours outside every band do not match.
func NearestSlot(hour int) (string, bool) {
	switch {
	case hour >= 9 && hour <= 10:
		return "10:00", true
	case hour >= 11 && hour <= 13:
		return "12:00", true
	case hour >= 14 && hour <= 15:
		return "15:00", true
	case hour >= 16 && hour <= 18:
		return "17:00", true
	}
	return "", false
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// NextWeekday returns the next occurrence of wd strictly after from's day
// when from already falls on wd, otherwise the first upcoming occurrence.
// Matching "today" would book same-day, so it advances a full week instead.
func NextWeekday(from time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}

// weekdayNames holds the Spanish weekday names used when rendering dates.
var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
}

// monthNames holds the Spanish month names used when rendering dates.
var monthNames = map[time.Month]string{
	time.January:   "enero",
	time.February:  "febrero",
	time.March:     "marzo",
	time.April:     "abril",
	time.May:       "mayo",
	time.June:      "junio",
	time.July:      "julio",
	time.August:    "agosto",
	time.September: "septiembre",
	time.October:   "octubre",
	time.November:  "noviembre",
	time.December:  "diciembre",
}

// WeekdayName returns the Spanish name for wd.
func WeekdayName(wd time.Weekday) string {
	return weekdayNames[wd]
}

// MonthName returns the Spanish name for m.
func MonthName(m time.Month) string {
	return monthNames[m]
}
