/**
 * @description
 * Billing period arithmetic. Calendar additions clamp to the last day of the
 * target month (Jan 31 + 1 month = Feb 29 in a leap year) instead of Go's
 * AddDate normalization, so a period end never rolls into the following month.
 */
package app

import (
	"time"

	"github.com/streamvibe/entitlement-service/internal/domain"
)

// payPerViewWindow is the fixed access window a verified pay-per-view
// purchase grants. Not plan-configurable.
const payPerViewWindow = 30 * 24 * time.Hour

// lifetimeYears models "lifetime" / one-time billing cycles.
const lifetimeYears = 100

// addMonthsClamped adds months to t, clamping the day to the last day of the
// resulting month.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	m = (m-1)%12 + 1
	if m <= 0 {
		m += 12
		year--
	}
	if last := daysInMonth(year, time.Month(m)); day > last {
		day = last
	}
	hour, min, sec := t.Clock()
	return time.Date(year, time.Month(m), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// periodEndFor computes the end of the billing period starting at start.
func periodEndFor(cycle domain.BillingCycle, start time.Time) time.Time {
	switch cycle {
	case domain.BillingMonthly:
		return addMonthsClamped(start, 1)
	case domain.BillingYearly:
		return addMonthsClamped(start, 12)
	default:
		return addMonthsClamped(start, 12*lifetimeYears)
	}
}
