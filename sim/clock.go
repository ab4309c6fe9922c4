// Defines SimTime: the simulated weekday calendar driven by elapsed real time.

package sim

import (
	"fmt"
	"math"
	"strings"
)

// Weekday is one day of the five-day working week.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// DaysPerWeek is the length of the weekday cycle.
const DaysPerWeek = 5

const secondsPerDay = 24 * 3600

var weekdayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func (d Weekday) String() string {
	if d < 0 || int(d) >= DaysPerWeek {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday accepts a weekday name, case-insensitive.
func ParseWeekday(s string) (Weekday, error) {
	for i, name := range weekdayNames {
		if strings.EqualFold(name, s) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q; valid: %s", s, strings.Join(weekdayNames[:], ", "))
}

// UnmarshalText lets scenario files name weekdays ("monday").
func (d *Weekday) UnmarshalText(text []byte) error {
	w, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = w
	return nil
}

func (d Weekday) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Clock converts elapsed real time into simulated weekday, hour and minute.
//
// One real second at speed 1 advances the clock by one simulated minute.
// Sub-second remainders are carried so that frame deltas shorter than a
// simulated second still accumulate.
type Clock struct {
	day    Weekday
	hour   int
	minute int
	second int
	carry  float64 // fractional simulated seconds not yet applied

	Speed float64 // speed multiplier; 0 pauses the clock
}

// NewClock creates a clock at the given weekday and time of day.
// Out-of-range inputs are normalized.
func NewClock(day Weekday, hour, minute int, speed float64) *Clock {
	c := &Clock{Speed: speed}
	c.Set(day, hour, minute)
	return c
}

// Set jumps the clock to the given weekday and time, clearing seconds and carry.
func (c *Clock) Set(day Weekday, hour, minute int) {
	c.day = Weekday(mod(int(day), DaysPerWeek))
	c.hour = 0
	c.minute = 0
	c.second = 0
	c.carry = 0
	secs := int64(hour)*3600 + int64(minute)*60
	if secs < 0 {
		secs = int64(mod(int(secs%secondsPerDay), secondsPerDay))
	}
	c.advanceSeconds(secs)
}

// Tick advances the clock by floor(elapsedMs/1000 * speed * 60) simulated
// seconds, plus whatever carry has built up. Non-positive and non-finite
// deltas are ignored so the carry never turns NaN.
func (c *Clock) Tick(elapsedMs float64) {
	if !validDelta(elapsedMs) || c.Speed <= 0 {
		return
	}
	c.carry += elapsedMs / 1000 * c.Speed * 60
	whole := math.Floor(c.carry)
	c.carry -= whole
	c.advanceSeconds(int64(whole))
}

// validDelta reports whether a frame delta is positive and finite.
func validDelta(ms float64) bool {
	return ms > 0 && !math.IsInf(ms, 1)
}

func (c *Clock) advanceSeconds(n int64) {
	if n <= 0 {
		return
	}
	total := int64(c.second) + n
	c.second = int(total % 60)
	total = int64(c.minute) + total/60
	c.minute = int(total % 60)
	total = int64(c.hour) + total/60
	c.hour = int(total % 24)
	days := total / 24
	c.day = Weekday((int64(c.day) + days) % DaysPerWeek)
}

// Day returns the current weekday.
func (c *Clock) Day() Weekday { return c.day }

// Hour returns the hour of day in [0, 24).
func (c *Clock) Hour() int { return c.hour }

// Minute returns the minute of hour in [0, 60).
func (c *Clock) Minute() int { return c.minute }

// MinuteOfDay returns hour*60 + minute.
func (c *Clock) MinuteOfDay() int { return c.hour*60 + c.minute }

// AtOrAfter reports whether the time of day has reached hour:minute.
func (c *Clock) AtOrAfter(hour, minute int) bool {
	return c.MinuteOfDay() >= hour*60+minute
}

// String renders the display form, e.g. "Monday 07:00".
func (c *Clock) String() string {
	return fmt.Sprintf("%s %02d:%02d", c.day, c.hour, c.minute)
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

// TimeOfDay is a scheduled hour:minute, written "HH:MM" in scenario files.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// At is shorthand for TimeOfDay{hour, minute}.
func At(hour, minute int) TimeOfDay { return TimeOfDay{Hour: hour, Minute: minute} }

// Valid reports whether the time lies within one day.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	var h, m int
	if _, err := fmt.Sscanf(string(text), "%d:%d", &h, &m); err != nil {
		return fmt.Errorf("time of day %q: want HH:MM", text)
	}
	*t = TimeOfDay{Hour: h, Minute: m}
	return nil
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Reached reports whether the clock's time of day is at or after t.
func (c *Clock) Reached(t TimeOfDay) bool {
	return c.AtOrAfter(t.Hour, t.Minute)
}
