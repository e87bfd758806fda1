package schedule

import (
	"context"
	"fmt"
	"time"
)

// Occupancy answers whether a (date, time) slot already holds a reservation.
// The reservations repository implements it.
type Occupancy interface {
	IsBooked(ctx context.Context, fecha string, hora string) (bool, error)
}

// TimeAvailability is one start time and whether it is still open.
type TimeAvailability struct {
	Hora       string `json:"hora"`
	Disponible bool   `json:"disponible"`
}

// DayAvailability lists every slot time of one date with its availability.
type DayAvailability struct {
	Fecha    string             `json:"fecha"`
	Horarios []TimeAvailability `json:"horarios"`
}

// Config controls calendar policy.
type Config struct {
	AllowSameDay  bool
	LookaheadDays int
	MaxDates      int
	Now           func() time.Time
}

// Calendar computes slot availability against the booking store.
// It is read-only; all mutation happens in the store.
type Calendar struct {
	occupancy     Occupancy
	allowSameDay  bool
	lookaheadDays int
	maxDates      int
	now           func() time.Time
}

// New creates a calendar over the given occupancy source.
func New(occupancy Occupancy, cfg Config) *Calendar {
	if occupancy == nil {
		panic("schedule: occupancy source required")
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = 14
	}
	if cfg.MaxDates <= 0 {
		cfg.MaxDates = 7
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Calendar{
		occupancy:     occupancy,
		allowSameDay:  cfg.AllowSameDay,
		lookaheadDays: cfg.LookaheadDays,
		maxDates:      cfg.MaxDates,
		now:           cfg.Now,
	}
}

// DayAvailability returns every slot time for the date with its current
// availability. Dates on non-bookable weekdays yield an empty Horarios list.
func (c *Calendar) DayAvailability(ctx context.Context, date time.Time) (DayAvailability, error) {
	fecha := FormatDate(date)
	day := DayAvailability{Fecha: fecha, Horarios: []TimeAvailability{}}
	if !IsBookableWeekday(date.Weekday()) {
		return day, nil
	}
	for _, hora := range SlotTimes {
		taken, err := c.occupancy.IsBooked(ctx, fecha, hora)
		if err != nil {
			return day, fmt.Errorf("schedule: check slot %s %s: %w", fecha, hora, err)
		}
		day.Horarios = append(day.Horarios, TimeAvailability{Hora: hora, Disponible: !taken})
	}
	return day, nil
}

// NextAvailableDates walks the lookahead window and collects dates that
// still have at least one open time, chronologically, capped at MaxDates.
// Fully booked dates are skipped so the user only sees actionable options.
func (c *Calendar) NextAvailableDates(ctx context.Context) ([]DayAvailability, error) {
	start := c.now()
	if !c.allowSameDay {
		start = start.AddDate(0, 0, 1)
	}

	dates := make([]DayAvailability, 0, c.maxDates)
	for i := 0; i < c.lookaheadDays && len(dates) < c.maxDates; i++ {
		date := start.AddDate(0, 0, i)
		if !IsBookableWeekday(date.Weekday()) {
			continue
		}
		day, err := c.DayAvailability(ctx, date)
		if err != nil {
			return nil, err
		}
		open := day.Horarios[:0:0]
		for _, h := range day.Horarios {
			if h.Disponible {
				open = append(open, h)
			}
		}
		if len(open) == 0 {
			continue
		}
		day.Horarios = open
		dates = append(dates, day)
	}
	return dates, nil
}

// ValidateSlot reports whether (date, hora) is a slot the calendar ever
// offers: a bookable weekday, a fixed start time, and not in the past.
func (c *Calendar) ValidateSlot(date time.Time, hora string) bool {
	if !IsBookableWeekday(date.Weekday()) || !IsSlotTime(hora) {
		return false
	}
	earliest := c.now()
	if !c.allowSameDay {
		earliest = earliest.AddDate(0, 0, 1)
	}
	// ISO dates compare correctly as strings, which sidesteps
	// location mismatches between parsed dates and the clock.
	return FormatDate(date) >= FormatDate(earliest)
}

// FormatHuman renders a date the way the assistant speaks it,
// e.g. "martes 15 de julio".
func FormatHuman(date time.Time) string {
	return fmt.Sprintf("%s %d de %s", WeekdayName(date.Weekday()), date.Day(), MonthName(date.Month()))
}
