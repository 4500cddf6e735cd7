package reservation

import "time"

// Overlaps reports whether two ranges conflict using closed-interval
// comparison. Touching boundaries conflict: a check-in on an existing
// check-out day is treated as occupied (turnover day is blocked).
func Overlaps(a, b DateRange) bool {
	a = a.Normalize()
	b = b.Normalize()
	return !a.From.After(b.To) && !a.To.Before(b.From)
}

// CheckAvailability decides whether a candidate range is bookable given
// the existing blocking intervals. today is the lower bound for check-in.
func CheckAvailability(candidate DateRange, booked []DateRange, today time.Time) error {
	candidate = candidate.Normalize()
	today = truncateToDay(today)

	if candidate.From.Before(today) {
		return ErrPastCheckIn
	}
	if !candidate.From.Before(candidate.To) {
		return ErrZeroNights
	}

	for _, b := range booked {
		if Overlaps(candidate, b) {
			return ErrDatesConflict
		}
	}
	return nil
}

// BlockedDates expands blocking intervals into the individual days a
// date picker should disable, capped at horizon days from today.
func BlockedDates(booked []DateRange, today time.Time, horizon int) []time.Time {
	today = truncateToDay(today)
	limit := today.AddDate(0, 0, horizon)

	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, b := range booked {
		b = b.Normalize()
		for d := b.From; !d.After(b.To); d = d.AddDate(0, 0, 1) {
			if d.Before(today) || d.After(limit) {
				continue
			}
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			days = append(days, d)
		}
	}
	return days
}
