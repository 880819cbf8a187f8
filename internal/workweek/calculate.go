package workweek

import (
	"fmt"
	"time"

	"github.com/julianstephens/weeklog/internal/models"
	"github.com/julianstephens/weeklog/internal/utils"
)

// Calculate maps an entry date to the week-ending date that buckets it under
// the given config. The input is first normalized to a plain calendar date in
// the configured timezone (process-local if unset); the result is a date at
// midnight UTC so only its calendar components are meaningful.
//
// Dates on a workday map to the end of that work-week instance. Saturdays are
// assigned to the previous work week and Sundays to the next one. Any other
// non-workday weekday (possible only for custom schedules whose non-work days
// are not the weekend) has no assignment rule and returns an error; callers
// fall back to SimpleFridayWeekEnding so a bucket is always produced.
func Calculate(date time.Time, cfg models.WorkWeekConfig) (time.Time, error) {
	if cfg.StartDay < 1 || cfg.StartDay > 7 || cfg.EndDay < 1 || cfg.EndDay > 7 {
		return time.Time{}, fmt.Errorf("work week days out of range: start=%d end=%d", cfg.StartDay, cfg.EndDay)
	}

	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	day := normalizeDate(date.In(loc))
	wd := isoWeekday(day)

	if withinWorkWeek(wd, cfg.StartDay, cfg.EndDay) {
		return workWeekEnd(day, wd, cfg.StartDay, cfg.EndDay), nil
	}

	switch wd {
	case 6: // Saturday: assign to the previous work week
		probe := day
		for i := 0; i < 7; i++ {
			probe = probe.AddDate(0, 0, -1)
			pwd := isoWeekday(probe)
			if withinWorkWeek(pwd, cfg.StartDay, cfg.EndDay) {
				return workWeekEnd(probe, pwd, cfg.StartDay, cfg.EndDay), nil
			}
		}
	case 7: // Sunday: assign to the next work week
		probe := day
		for i := 0; i < 7; i++ {
			probe = probe.AddDate(0, 0, 1)
			pwd := isoWeekday(probe)
			if withinWorkWeek(pwd, cfg.StartDay, cfg.EndDay) {
				return workWeekEnd(probe, pwd, cfg.StartDay, cfg.EndDay), nil
			}
		}
	}

	// Non-workday that is neither Saturday nor Sunday. Custom schedules can
	// produce these and no assignment rule exists for them yet.
	return time.Time{}, fmt.Errorf("no week assignment for %s (weekday %d) under work week %d..%d",
		day.Format("2006-01-02"), wd, cfg.StartDay, cfg.EndDay)
}

// SimpleFridayWeekEnding returns the Friday of the Monday-anchored calendar
// week containing the given date, ignoring any work-week config. It cannot
// fail and serves as the fallback bucket when Calculate cannot produce one.
func SimpleFridayWeekEnding(date time.Time) time.Time {
	day := normalizeDate(date)
	return day.AddDate(0, 0, 5-isoWeekday(day))
}

// withinWorkWeek reports whether an ISO weekday falls inside the configured
// work week. A start greater than the end means the week wraps across the
// calendar week boundary (e.g. Friday through Tuesday).
func withinWorkWeek(weekday, start, end int) bool {
	if start <= end {
		return weekday >= start && weekday <= end
	}
	return weekday >= start || weekday <= end
}

// workWeekEnd returns the end date of the work-week instance containing day,
// which must already be a workday under (start, end).
func workWeekEnd(day time.Time, weekday, start, end int) time.Time {
	if start <= end {
		return day.AddDate(0, 0, end-weekday)
	}
	if weekday >= start {
		return day.AddDate(0, 0, (7-weekday)+end)
	}
	return day.AddDate(0, 0, end-weekday)
}

// isoWeekday returns the weekday of a date as 1=Monday .. 7=Sunday.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// normalizeDate strips the time-of-day and timezone, keeping only the
// calendar date at midnight UTC.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
