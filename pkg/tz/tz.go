package tz

import "time"

// Paris is the Europe/Paris location (CET/CEST with automatic DST). All
// sweep scheduling and slot labels are anchored to it.
var Paris *time.Location

func init() {
	var err error
	Paris, err = time.LoadLocation("Europe/Paris")
	if err != nil {
		panic("tz: load Europe/Paris: " + err.Error())
	}
}

// NextHour returns the next occurrence of the given wall-clock hour in
// Paris, strictly after now. Crossing a DST transition is handled by
// time.Date, which normalizes the wall clock.
func NextHour(now time.Time, hour int) time.Time {
	local := now.In(Paris)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, Paris)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
