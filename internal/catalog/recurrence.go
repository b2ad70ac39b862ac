package catalog

import (
	"slices"
	"time"

	"eventdesk.io/eventdesk/internal/domain"
)

// Occurrences expands a recurrence rule into concrete dates, starting at
// start and ending at the earlier of until and the rule's own end date.
// At most max dates are returned. A non-recurring rule yields just the
// start date.
func Occurrences(rec domain.Recurrence, start, until time.Time, max int) []time.Time {
	if max <= 0 {
		return nil
	}
	if !rec.IsRecurring {
		if start.After(until) {
			return nil
		}
		return []time.Time{start}
	}
	end := until
	if rec.EndDate != nil && rec.EndDate.Before(end) {
		end = *rec.EndDate
	}
	if start.After(end) {
		return nil
	}

	interval := rec.Interval
	if interval < 1 {
		interval = 1
	}

	switch rec.Frequency {
	case domain.FreqDaily:
		return stepDays(start, end, interval, max)
	case domain.FreqWeekly:
		return weekly(rec.DaysOfWeek, start, end, interval, max)
	case domain.FreqBiweekly:
		return weekly(rec.DaysOfWeek, start, end, 2*interval, max)
	case domain.FreqMonthly:
		if rec.MonthlyType == domain.MonthlyByDay {
			return monthlyByWeekday(start, end, interval, max)
		}
		return monthlyByDate(start, end, interval, max)
	case domain.FreqYearly:
		var out []time.Time
		for d := start; !d.After(end) && len(out) < max; d = d.AddDate(interval, 0, 0) {
			out = append(out, d)
		}
		return out
	case domain.FreqCustom:
		dates := slices.Clone(rec.CustomDates)
		slices.SortFunc(dates, time.Time.Compare)
		var out []time.Time
		for _, d := range dates {
			if d.Before(start) || d.After(end) {
				continue
			}
			out = append(out, d)
			if len(out) == max {
				break
			}
		}
		return out
	}
	return []time.Time{start}
}

func stepDays(start, end time.Time, days, max int) []time.Time {
	var out []time.Time
	for d := start; !d.After(end) && len(out) < max; d = d.AddDate(0, 0, days) {
		out = append(out, d)
	}
	return out
}

// weekly walks day by day, keeping dates whose weekday is in the selection
// and whose week offset from the start lands on the interval. An empty
// selection means the start date's weekday.
func weekly(daysOfWeek []int, start, end time.Time, intervalWeeks, max int) []time.Time {
	if len(daysOfWeek) == 0 {
		return stepDays(start, end, 7*intervalWeeks, max)
	}
	weekStart := start.AddDate(0, 0, -int(start.Weekday()))
	var out []time.Time
	for d := start; !d.After(end) && len(out) < max; d = d.AddDate(0, 0, 1) {
		if !slices.Contains(daysOfWeek, int(d.Weekday())) {
			continue
		}
		weeks := int(d.Sub(weekStart).Hours()) / (24 * 7)
		if weeks%intervalWeeks != 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// monthlyByDate repeats the start's day of month, skipping months too short
// to contain it.
func monthlyByDate(start, end time.Time, intervalMonths, max int) []time.Time {
	day := start.Day()
	var out []time.Time
	year, month := start.Year(), start.Month()
	for len(out) < max {
		d := time.Date(year, month, day, start.Hour(), start.Minute(), 0, 0, start.Location())
		if d.After(end) {
			break
		}
		if d.Day() == day && !d.Before(start) {
			out = append(out, d)
		}
		month += time.Month(intervalMonths)
		for month > 12 {
			month -= 12
			year++
		}
	}
	return out
}

// monthlyByWeekday repeats the start's weekday ordinal within the month
// (e.g. second Tuesday).
func monthlyByWeekday(start, end time.Time, intervalMonths, max int) []time.Time {
	weekday := start.Weekday()
	ordinal := (start.Day()-1)/7 + 1
	var out []time.Time
	year, month := start.Year(), start.Month()
	for len(out) < max {
		d := nthWeekday(year, month, weekday, ordinal, start)
		if !d.IsZero() {
			if d.After(end) {
				break
			}
			if !d.Before(start) {
				out = append(out, d)
			}
		}
		month += time.Month(intervalMonths)
		for month > 12 {
			month -= 12
			year++
		}
	}
	return out
}

// nthWeekday returns the nth weekday of the month, or zero when the month
// has no nth occurrence (a fifth Friday most months).
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int, ref time.Time) time.Time {
	first := time.Date(year, month, 1, ref.Hour(), ref.Minute(), 0, 0, ref.Location())
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	d := first.AddDate(0, 0, offset+(n-1)*7)
	if d.Month() != month {
		return time.Time{}
	}
	return d
}
