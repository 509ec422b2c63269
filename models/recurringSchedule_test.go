package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleTemplate(frequency RecurringFrequency) *RecurringTemplate {
	return &RecurringTemplate{
		Frequency: frequency,
		Timezone:  "UTC",
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestComputeNextRunAtDaily(t *testing.T) {
	tpl := scheduleTemplate(RecurringFrequencyDaily)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	next, err := tpl.ComputeNextRunAt(now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, next.Equal(time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)))
}

func TestComputeNextRunAtStartDateInFuture(t *testing.T) {
	tpl := scheduleTemplate(RecurringFrequencyDaily)
	tpl.StartDate = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Evaluation before the window opens bases on StartDate, not now.
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	next, err := tpl.ComputeNextRunAt(now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, next.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
}

func TestComputeNextRunAtWeekly(t *testing.T) {
	tests := []struct {
		name    string
		weekday int
		now     time.Time
		want    time.Time
	}{
		{
			// 2025-03-10 is a Monday; target Monday advances a full week,
			// never the same day.
			name:    "same weekday advances seven days",
			weekday: 1,
			now:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			want:    time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "later weekday in same week",
			weekday: 5,
			now:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			want:    time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "earlier weekday wraps into next week",
			weekday: 0,
			now:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			want:    time.Date(2025, 3, 16, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tpl := scheduleTemplate(RecurringFrequencyWeekly)
			tpl.Weekday = tc.weekday
			next, err := tpl.ComputeNextRunAt(tc.now)
			require.NoError(t, err)
			require.NotNil(t, next)
			assert.True(t, next.Equal(tc.want), "got %s want %s", next, tc.want)
			assert.Equal(t, time.Weekday(tc.weekday), next.Weekday())
		})
	}
}

func TestComputeNextRunAtWeeklyHonorsTimezone(t *testing.T) {
	tpl := scheduleTemplate(RecurringFrequencyWeekly)
	tpl.Timezone = "Asia/Yangon"
	tpl.Weekday = 1

	// 18:30 UTC on Sunday 2025-01-05 is already 01:00 Monday in Yangon
	// (UTC+6:30), so the next Monday is a full week out there.
	now := time.Date(2025, 1, 5, 18, 30, 0, 0, time.UTC)
	next, err := tpl.ComputeNextRunAt(now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, next.Equal(time.Date(2025, 1, 12, 18, 30, 0, 0, time.UTC)),
		"got %s", next)
}

func TestComputeNextRunAtMonthly(t *testing.T) {
	tests := []struct {
		name       string
		dayOfMonth int
		now        time.Time
		want       time.Time
	}{
		{
			name:       "day already passed moves to next month",
			dayOfMonth: 1,
			now:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			want:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "day still ahead in current month",
			dayOfMonth: 20,
			now:        time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC),
			want:       time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC),
		},
		{
			name:       "day 31 clamps to end of February",
			dayOfMonth: 31,
			now:        time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			want:       time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "clamped day equal to base rolls into next month",
			dayOfMonth: 31,
			now:        time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC),
			want:       time.Date(2025, 5, 31, 10, 0, 0, 0, time.UTC),
		},
		{
			name:       "december rolls over the year",
			dayOfMonth: 5,
			now:        time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
			want:       time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tpl := scheduleTemplate(RecurringFrequencyMonthly)
			tpl.DayOfMonth = tc.dayOfMonth
			next, err := tpl.ComputeNextRunAt(tc.now)
			require.NoError(t, err)
			require.NotNil(t, next)
			assert.True(t, next.Equal(tc.want), "got %s want %s", next, tc.want)
		})
	}
}

func TestComputeNextRunAtQuarterlyAndYearly(t *testing.T) {
	now := time.Date(2025, 2, 14, 6, 0, 0, 0, time.UTC)

	quarterly := scheduleTemplate(RecurringFrequencyQuarterly)
	next, err := quarterly.ComputeNextRunAt(now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, next.Equal(time.Date(2025, 5, 14, 6, 0, 0, 0, time.UTC)))

	yearly := scheduleTemplate(RecurringFrequencyYearly)
	next, err = yearly.ComputeNextRunAt(now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.True(t, next.Equal(time.Date(2026, 2, 14, 6, 0, 0, 0, time.UTC)))
}

func TestComputeNextRunAtEndDateCutoff(t *testing.T) {
	tpl := scheduleTemplate(RecurringFrequencyDaily)
	endDate := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	tpl.EndDate = &endDate

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	next, err := tpl.ComputeNextRunAt(now)
	require.NoError(t, err)
	assert.Nil(t, next, "occurrence at/after end date must stop the schedule")
}

func TestComputeNextRunAtCustomCronIsInert(t *testing.T) {
	tpl := scheduleTemplate(RecurringFrequencyCustomCron)
	tpl.CronExpression = "0 9 * * 1"

	next, err := tpl.ComputeNextRunAt(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestComputeNextRunAtInvalidTimezone(t *testing.T) {
	tpl := scheduleTemplate(RecurringFrequencyDaily)
	tpl.Timezone = "Mars/Olympus_Mons"

	_, err := tpl.ComputeNextRunAt(time.Now())
	assert.Error(t, err)
}

func TestComputeNextRunAtStrictlyAfterBase(t *testing.T) {
	now := time.Date(2025, 7, 1, 15, 30, 0, 0, time.UTC)
	frequencies := []RecurringFrequency{
		RecurringFrequencyDaily,
		RecurringFrequencyWeekly,
		RecurringFrequencyMonthly,
		RecurringFrequencyQuarterly,
		RecurringFrequencyYearly,
	}
	for _, frequency := range frequencies {
		tpl := scheduleTemplate(frequency)
		tpl.Weekday = 2
		tpl.DayOfMonth = 1
		next, err := tpl.ComputeNextRunAt(now)
		require.NoError(t, err, frequency)
		require.NotNil(t, next, frequency)
		assert.True(t, next.After(now), "%s: %s is not after %s", frequency, next, now)
	}
}
