package collections

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScheduleKind is the recurrence of a collection.
type ScheduleKind string

const (
	ScheduleDaily   ScheduleKind = "daily"
	ScheduleWeekly  ScheduleKind = "weekly"
	ScheduleMonthly ScheduleKind = "monthly"
	ScheduleNever   ScheduleKind = "never"
)

// Schedule decides on which days a scheduled run includes a collection.
type Schedule struct {
	Kind    ScheduleKind
	Weekday time.Weekday
	Day     int
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseSchedule parses "daily", "weekly(<day>)", "monthly(<day of month>)" or "never".
// An empty string is daily; "weekly" alone is Sunday and "monthly" alone is the 1st.
func ParseSchedule(s string) (Schedule, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	kind, arg := s, ""
	if i := strings.IndexByte(s, '('); i >= 0 {
		if !strings.HasSuffix(s, ")") {
			return Schedule{}, fmt.Errorf("invalid schedule %q", s)
		}
		kind, arg = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:len(s)-1])
	}

	switch ScheduleKind(kind) {
	case "", ScheduleDaily:
		if arg != "" {
			return Schedule{}, fmt.Errorf("daily schedule takes no argument: %q", s)
		}
		return Schedule{Kind: ScheduleDaily}, nil
	case ScheduleNever:
		return Schedule{Kind: ScheduleNever}, nil
	case ScheduleWeekly:
		if arg == "" {
			return Schedule{Kind: ScheduleWeekly, Weekday: time.Sunday}, nil
		}
		day, ok := weekdays[arg]
		if !ok {
			return Schedule{}, fmt.Errorf("invalid weekday %q in schedule", arg)
		}
		return Schedule{Kind: ScheduleWeekly, Weekday: day}, nil
	case ScheduleMonthly:
		if arg == "" {
			return Schedule{Kind: ScheduleMonthly, Day: 1}, nil
		}
		day, err := strconv.Atoi(arg)
		if err != nil || day < 1 || day > 31 {
			return Schedule{}, fmt.Errorf("invalid day of month %q in schedule", arg)
		}
		return Schedule{Kind: ScheduleMonthly, Day: day}, nil
	}
	return Schedule{}, fmt.Errorf("unknown schedule %q", s)
}

// DueOn reports whether a scheduled run on t's date includes the collection.
// A monthly day beyond the end of a month falls on its last day.
func (s Schedule) DueOn(t time.Time) bool {
	switch s.Kind {
	case ScheduleNever:
		return false
	case ScheduleWeekly:
		return t.Weekday() == s.Weekday
	case ScheduleMonthly:
		lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
		day := s.Day
		if day > lastDay {
			day = lastDay
		}
		return t.Day() == day
	default:
		return true
	}
}

func (s Schedule) String() string {
	switch s.Kind {
	case ScheduleWeekly:
		return fmt.Sprintf("weekly(%s)", strings.ToLower(s.Weekday.String()))
	case ScheduleMonthly:
		return fmt.Sprintf("monthly(%d)", s.Day)
	case "":
		return string(ScheduleDaily)
	}
	return string(s.Kind)
}

// Due keeps the collections whose schedule includes t. Invalid schedules are
// treated as daily; Validate reports them.
func Due(libraries []Library, t time.Time) []Library {
	var out []Library
	for _, l := range libraries {
		due := Library{Name: l.Name, Type: l.Type}
		for _, c := range l.Collections {
			sched, err := ParseSchedule(c.Schedule)
			if err == nil && !sched.DueOn(t) {
				continue
			}
			due.Collections = append(due.Collections, c)
		}
		if len(due.Collections) > 0 {
			out = append(out, due)
		}
	}
	return out
}
