package recurrence

import (
	"strings"
	"time"
)

// MaskMax is the largest valid repeat mask: all seven weekday bits set.
const MaskMax = 1<<7 - 1

// OneTime is the mask of an alarm that does not repeat.
const OneTime = 0

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayBit maps a weekday to its bit index in a repeat mask. Bit 0 is Monday,
// bit 6 is Sunday, diverging from time.Weekday's Sunday-first numbering.
func DayBit(day time.Weekday) int {
	if day == time.Sunday {
		return 6
	}
	return int(day) - 1
}

// BitDay is the inverse of DayBit.
func BitDay(bit int) time.Weekday {
	if bit == 6 {
		return time.Sunday
	}
	return time.Weekday(bit + 1)
}

// IsSet reports whether the given weekday is enabled in the mask.
func IsSet(mask int, day time.Weekday) bool {
	return mask>>DayBit(day)&1 == 1
}

// WithDay returns a copy of mask with the given weekday enabled or disabled.
func WithDay(mask int, day time.Weekday, enabled bool) int {
	bit := DayBit(day)
	if enabled {
		return Clamp(mask | 1<<bit)
	}
	return Clamp(mask &^ (1 << bit))
}

// Clamp coerces any value into the valid mask range [0, MaskMax]. Out-of-range
// input is clamped rather than rejected, matching the permissive contract of
// the alarm form field this mask originates from.
func Clamp(mask int) int {
	if mask < 0 {
		return 0
	}
	if mask > MaskMax {
		return MaskMax
	}
	return mask
}

// Summarize renders a mask as comma-joined weekday abbreviations in
// Monday-first order, or "One-time" for an empty mask.
func Summarize(mask int) string {
	mask = Clamp(mask)
	if mask == OneTime {
		return "One-time"
	}

	names := make([]string, 0, 7)
	for bit := 0; bit < 7; bit++ {
		if mask>>bit&1 == 1 {
			names = append(names, dayNames[bit])
		}
	}
	return strings.Join(names, ", ")
}
