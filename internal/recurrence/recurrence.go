// Package recurrence turns a start date, a pattern and an interval into due
// dates and expands batch series into individual obligations.
package recurrence

import (
	"github.com/obligo/backend/internal/models"
	"github.com/obligo/backend/internal/types"
	"github.com/obligo/backend/internal/validation"
)

// MaxOccurrences bounds previews and series expansion.
const MaxOccurrences = 520

// NextDueDate returns the due date of occurrence index (0 is base itself).
//
// Every occurrence is computed from base, never from the previous
// occurrence. A monthly schedule starting on Jan 31 therefore yields
// Feb 29, Mar 31, Apr 30 instead of decaying to the 29th.
func NextDueDate(base types.Date, pattern models.Pattern, interval, index int) types.Date {
	if index == 0 {
		return base
	}

	switch pattern {
	case models.PatternMonthly:
		return base.AddMonthsClamped(interval * index)
	case models.PatternWeekly:
		return base.AddDays(7 * interval * index)
	case models.PatternCustom:
		return base.AddDays(interval * index)
	}

	return base
}

// PreviewDueDates returns the first count due dates without creating any
// records.
func PreviewDueDates(base types.Date, pattern models.Pattern, interval, count int) []types.Date {
	count = min(count, MaxOccurrences)
	if pattern == models.PatternOnce {
		count = min(count, 1)
	}

	dates := make([]types.Date, 0, max(count, 0))
	for i := range count {
		dates = append(dates, NextDueDate(base, pattern, interval, i))
	}
	return dates
}

// PreviewUntil returns due dates up to and including end, at most limit.
func PreviewUntil(base types.Date, pattern models.Pattern, interval int, end types.Date, limit int) []types.Date {
	var dates []types.Date
	for _, d := range PreviewDueDates(base, pattern, interval, limit) {
		if d.After(end) {
			break
		}
		dates = append(dates, d)
	}
	return dates
}

// ValidateSchedule verifies a start date, pattern, interval and optional end
// date.
func ValidateSchedule(start types.Date, pattern models.Pattern, interval int, end *types.Date) validation.Errors {
	var errs validation.Errors

	if start.IsZero() {
		errs.Add("dueDate", "dueDate is required")
	}

	if !pattern.Valid() {
		errs.Add("recurrencePattern", "recurrencePattern must be one of ONCE, MONTHLY, WEEKLY, CUSTOM")
	}

	if pattern != models.PatternOnce && interval < 1 {
		errs.Add("recurrenceInterval", "recurrenceInterval must be at least 1")
	}

	if end != nil && !end.IsZero() && !start.IsZero() && !end.After(start) {
		errs.Add("recurrenceEndDate", "recurrenceEndDate must be after the start date %s", start)
	}

	return errs
}

// ValidateObligation verifies a single obligation before it is created.
func ValidateObligation(o models.ScheduledTransaction) validation.Errors {
	errs := validateAmount(o.Amount)

	if o.Merchant == "" {
		errs.Add("merchant", "merchant is required")
	}

	if o.Type != "" && !o.Type.Valid() {
		errs.Add("type", "type must be one of EXPENSE, INCOME, TRANSFER, OBLIGATION")
	}

	pattern := o.RecurrencePattern
	if pattern == "" {
		pattern = models.PatternOnce
	}

	interval := o.RecurrenceInterval
	if interval == 0 && pattern == models.PatternOnce {
		interval = 1
	}

	errs.Merge(ValidateSchedule(o.DueDate, pattern, interval, o.RecurrenceEndDate))
	return errs
}
