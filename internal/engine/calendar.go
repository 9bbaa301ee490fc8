package engine

import (
	"time"
)

// marketHolidays returns the observed US equity market holidays for a year:
// New Year's Day, MLK Day, Presidents Day, Good Friday, Memorial Day,
// Juneteenth, Independence Day, Labor Day, Thanksgiving and Christmas.
func marketHolidays(year int) []time.Time {
	days := []time.Time{
		observed(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.January, time.Monday, 3),
		nthWeekday(year, time.February, time.Monday, 3),
		goodFriday(year),
		lastWeekday(year, time.May, time.Monday),
		observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC)),
		observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)),
		nthWeekday(year, time.September, time.Monday, 1),
		nthWeekday(year, time.November, time.Thursday, 4),
		observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)),
	}
	return days
}

// observed shifts a fixed-date holiday to Friday when it falls on Saturday
// and to Monday when it falls on Sunday.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, offset+(n-1)*7)
}

func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	d := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	offset := (int(d.Weekday()) - int(weekday) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

// goodFriday is two days before Easter Sunday (anonymous Gregorian computus)
func goodFriday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return easter.AddDate(0, 0, -2)
}

// IsMarketHoliday reports whether a date is an observed US market holiday
func IsMarketHoliday(d time.Time) bool {
	d = DateOnly(d)
	for _, h := range marketHolidays(d.Year()) {
		if h.Equal(d) {
			return true
		}
	}
	return false
}

// IsTradingDay reports whether the market is open on the given date
func IsTradingDay(d time.Time) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !IsMarketHoliday(d)
}

// PrevTradingDay walks backward to the most recent trading day strictly
// before the given date.
func PrevTradingDay(d time.Time) time.Time {
	d = DateOnly(d).AddDate(0, 0, -1)
	for !IsTradingDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// DateOnly truncates a timestamp to midnight UTC
func DateOnly(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// CalendarDays returns the whole calendar days from one date to another
func CalendarDays(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)) / (24 * time.Hour))
}
