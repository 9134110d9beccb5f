// Package recurrence holds the pure scheduling rules for alarms: the weekday
// repeat mask and the next-trigger calculation. No I/O, no clocks of its own.
package recurrence

import "time"

// scanWindow bounds the day-by-day search for a repeating alarm. A full week
// plus one day guarantees termination even at the boundary where today's
// candidate instant equals now.
const scanWindow = 8

// NextTrigger computes the next instant at which an alarm with the given
// time-of-day and repeat mask should fire, strictly after now.
//
// A one-time alarm (mask 0) fires today if the time-of-day is still ahead,
// otherwise tomorrow; it is never skipped. A repeating alarm fires on the
// first day, starting today, whose weekday bit is set and whose candidate
// instant lies strictly after now. All arithmetic is on local wall-clock
// time in now's location.
func NextTrigger(hour, minute, mask int, now time.Time) time.Time {
	year, month, day := now.Date()
	loc := now.Location()

	candidate := time.Date(year, month, day, hour, minute, 0, 0, loc)

	if Clamp(mask) == OneTime {
		if now.Before(candidate) {
			return candidate
		}
		return time.Date(year, month, day+1, hour, minute, 0, 0, loc)
	}

	for i := 0; i < scanWindow; i++ {
		check := time.Date(year, month, day+i, hour, minute, 0, 0, loc)
		if IsSet(mask, check.Weekday()) && check.After(now) {
			return check
		}
	}

	// Unreachable for any valid mask; guards a boundary bug rather than a
	// supported input.
	return time.Date(year, month, day+7, hour, minute, 0, 0, loc)
}
