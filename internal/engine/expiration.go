package engine

import (
	"time"
)

// ResolveExpiration maps a target DTE from the entry date to a concrete
// expiration: the nearer of the Fridays bracketing entry+dte (ties go to the
// later Friday), walked backward to the prior trading day when that Friday is
// a market holiday.
func ResolveExpiration(entry time.Time, dte int) time.Time {
	target := DateOnly(entry).AddDate(0, 0, dte)

	daysSinceFriday := (int(target.Weekday()) - int(time.Friday) + 7) % 7
	prev := target.AddDate(0, 0, -daysSinceFriday)

	var chosen time.Time
	if daysSinceFriday == 0 {
		chosen = target
	} else {
		next := prev.AddDate(0, 0, 7)
		distPrev := daysSinceFriday
		distNext := 7 - daysSinceFriday
		if distPrev < distNext {
			chosen = prev
		} else {
			// tie resolves to the later Friday
			chosen = next
		}
	}

	for !IsTradingDay(chosen) {
		chosen = chosen.AddDate(0, 0, -1)
	}
	return chosen
}
