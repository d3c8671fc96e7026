package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateOf strips the clock part of t and returns the civil date as midnight UTC.
// All due dates and expiry dates are compared in this form.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current civil date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// AddDays returns the date n days after t
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

// DaysBetween returns the number of whole days from `from` to `to`.
// Negative when `to` is before `from`.
func DaysBetween(from time.Time, to time.Time) int {
	duration := DateOf(to).Sub(DateOf(from))
	return int(duration.Hours() / 24)
}

// IsPastDate reports whether today is strictly after date.
func IsPastDate(date time.Time, today time.Time) bool {
	return DateOf(today).After(DateOf(date))
}

// CalculateFine multiplies the overdue days by the daily rate.
// Formula: days * rate, rounded to 2 decimal places
func CalculateFine(daysOverdue int, dailyRate decimal.Decimal) decimal.Decimal {
	if daysOverdue <= 0 {
		return decimal.Zero
	}
	return dailyRate.Mul(decimal.NewFromInt(int64(daysOverdue))).Round(2)
}
