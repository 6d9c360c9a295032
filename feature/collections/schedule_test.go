package collections

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseSchedule tests the accepted schedule forms.
func TestParseSchedule(t *testing.T) {
	tests := []struct {
		in      string
		want    Schedule
		wantErr bool
	}{
		{"", Schedule{Kind: ScheduleDaily}, false},
		{"Daily", Schedule{Kind: ScheduleDaily}, false},
		{"never", Schedule{Kind: ScheduleNever}, false},
		{"weekly", Schedule{Kind: ScheduleWeekly, Weekday: time.Sunday}, false},
		{"weekly(Friday)", Schedule{Kind: ScheduleWeekly, Weekday: time.Friday}, false},
		{"monthly", Schedule{Kind: ScheduleMonthly, Day: 1}, false},
		{"monthly( 31 )", Schedule{Kind: ScheduleMonthly, Day: 31}, false},
		{"weekly(someday)", Schedule{}, true},
		{"monthly(32)", Schedule{}, true},
		{"monthly(x)", Schedule{}, true},
		{"daily(1)", Schedule{}, true},
		{"weekly(monday", Schedule{}, true},
		{"hourly", Schedule{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSchedule(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestSchedule_DueOn tests due dates including month-end clamping.
func TestSchedule_DueOn(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 6, 0, 0, 0, time.UTC) }

	friday := Schedule{Kind: ScheduleWeekly, Weekday: time.Friday}
	assert.True(t, friday.DueOn(day(2026, time.October, 16)))
	assert.False(t, friday.DueOn(day(2026, time.October, 17)))

	end := Schedule{Kind: ScheduleMonthly, Day: 31}
	assert.True(t, end.DueOn(day(2026, time.February, 28)))
	assert.False(t, end.DueOn(day(2026, time.February, 27)))
	assert.True(t, end.DueOn(day(2026, time.January, 31)))
	assert.False(t, end.DueOn(day(2026, time.January, 30)))

	assert.True(t, Schedule{Kind: ScheduleDaily}.DueOn(day(2026, time.March, 3)))
	assert.False(t, Schedule{Kind: ScheduleNever}.DueOn(day(2026, time.March, 3)))
	assert.Equal(t, "weekly(friday)", friday.String())
	assert.Equal(t, "monthly(31)", end.String())
}

// TestDue tests filtering of collections for a scheduled run.
func TestDue(t *testing.T) {
	libs := []Library{
		{Name: "Films", Collections: []Collection{
			{Name: "Daily"},
			{Name: "Fridays", Schedule: "weekly(friday)"},
			{Name: "Off", Schedule: "never"},
		}},
		{Name: "Series", Collections: []Collection{
			{Name: "Monthly", Schedule: "monthly(2)"},
		}},
	}

	due := Due(libs, time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC))
	require.Len(t, due, 1)
	names := []string{}
	for _, c := range due[0].Collections {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Daily", "Fridays"}, names)
}
