package helpers

import "time"

// AllowedIncrements are the rounding granularities (minutes) a user may pick
// for presenting tracked time.
var AllowedIncrements = map[int]bool{1: true, 5: true, 10: true, 15: true}

// RoundToIncrement rounds t to the nearest multiple of the given increment in
// minutes. Unknown increments fall back to 5 rather than failing.
func RoundToIncrement(t time.Time, incrementMinutes int) time.Time {
	if !AllowedIncrements[incrementMinutes] {
		incrementMinutes = 5
	}
	step := time.Duration(incrementMinutes) * time.Minute
	return t.Round(step)
}
