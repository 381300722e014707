// Package asset derives accounting values for tracked devices.
package asset

import "time"

const daysPerYear = 365.25

// CurrentValue computes the straight-line depreciated value of an asset at
// the given date. It returns nil when cost, rate, or purchase date is unset.
// The result never goes below zero.
func CurrentValue(cost, rate *float64, purchased *time.Time, today time.Time) *float64 {
	if cost == nil || rate == nil || purchased == nil {
		return nil
	}

	years := today.Sub(*purchased).Hours() / 24 / daysPerYear
	value := *cost - *cost*(*rate)/100*years
	if value < 0 {
		value = 0
	}
	return &value
}
