package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveExpirationTargetOnFriday(t *testing.T) {
	// Mon 2024-01-08 + 4 days lands exactly on Friday
	exp := ResolveExpiration(date(2024, time.January, 8), 4)
	assert.Equal(t, date(2024, time.January, 12), exp)
}

func TestResolveExpirationPicksNearerFriday(t *testing.T) {
	// Mon 2024-01-08 + 30 = Wed 2024-02-07; Fri Feb 9 is nearer than Feb 2
	exp := ResolveExpiration(date(2024, time.January, 8), 30)
	assert.Equal(t, date(2024, time.February, 9), exp)

	// Mon 2024-01-08 + 28 = Mon 2024-02-05; Fri Feb 2 is nearer than Feb 9
	exp = ResolveExpiration(date(2024, time.January, 8), 28)
	assert.Equal(t, date(2024, time.February, 2), exp)
}

func TestResolveExpirationGoodFridayWalksBack(t *testing.T) {
	// 2024-03-25 + 4 targets Fri 2024-03-29, which is Good Friday;
	// the expiration walks back to Thursday
	exp := ResolveExpiration(date(2024, time.March, 25), 4)
	assert.Equal(t, date(2024, time.March, 28), exp)
}

func TestResolveExpirationStrictlyAheadForTypicalDTEs(t *testing.T) {
	entry := date(2024, time.June, 3)
	for _, dte := range []int{7, 14, 21, 30, 45, 60} {
		exp := ResolveExpiration(entry, dte)
		assert.True(t, exp.After(entry), "dte %d must resolve ahead of entry", dte)
		assert.True(t, IsTradingDay(exp), "dte %d must resolve to a trading day", dte)
	}
}

func TestMarketHolidays2024(t *testing.T) {
	holidays := []time.Time{
		date(2024, time.January, 1),   // New Year's Day
		date(2024, time.January, 15),  // MLK Day
		date(2024, time.February, 19), // Presidents Day
		date(2024, time.March, 29),    // Good Friday
		date(2024, time.May, 27),      // Memorial Day
		date(2024, time.June, 19),     // Juneteenth
		date(2024, time.July, 4),      // Independence Day
		date(2024, time.September, 2), // Labor Day
		date(2024, time.November, 28), // Thanksgiving
		date(2024, time.December, 25), // Christmas
	}
	for _, h := range holidays {
		assert.True(t, IsMarketHoliday(h), "expected holiday %s", h.Format("2006-01-02"))
	}

	assert.False(t, IsMarketHoliday(date(2024, time.January, 2)))
	assert.False(t, IsMarketHoliday(date(2024, time.July, 5)))
}

func TestObservedHolidayShift(t *testing.T) {
	// July 4 2026 falls on Saturday, observed Friday July 3
	assert.True(t, IsMarketHoliday(date(2026, time.July, 3)))
	assert.False(t, IsMarketHoliday(date(2026, time.July, 4)))
}

func TestIsTradingDay(t *testing.T) {
	assert.False(t, IsTradingDay(date(2024, time.January, 6)), "Saturday")
	assert.False(t, IsTradingDay(date(2024, time.January, 7)), "Sunday")
	assert.False(t, IsTradingDay(date(2024, time.January, 1)), "holiday")
	assert.True(t, IsTradingDay(date(2024, time.January, 2)))
}

func TestCalendarDays(t *testing.T) {
	assert.Equal(t, 31, CalendarDays(date(2024, time.January, 2), date(2024, time.February, 2)))
	assert.Equal(t, 0, CalendarDays(date(2024, time.January, 2), date(2024, time.January, 2)))
	assert.Equal(t, -1, CalendarDays(date(2024, time.January, 2), date(2024, time.January, 1)))
}
