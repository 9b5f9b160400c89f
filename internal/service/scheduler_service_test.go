package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWeeklyExpr(t *testing.T) {
	tests := []struct {
		when string
		want string
	}{
		{when: "MON 06:00", want: "0 0 6 * * 1"},
		{when: "sun 23:59", want: "0 59 23 * * 0"},
		{when: "Saturday 7:05", want: "0 5 7 * * 6"},
		{when: "wednesday 12:00", want: "0 0 12 * * 3"},
		{when: "Thu 18:30", want: "0 30 18 * * 4"},
	}
	for _, tt := range tests {
		got, err := buildWeeklyExpr(tt.when)
		require.NoError(t, err, tt.when)
		assert.Equal(t, tt.want, got, tt.when)
	}
}

func TestBuildWeeklyExprRejectsInvalid(t *testing.T) {
	for _, when := range []string{"", "MON", "XYZ 06:00", "MON 24:00", "MON 06:60", "MON 0600", "MON aa:00", "MONKEY 06:00", "Mo 06:00", "Wednes 06:00", "Sundays 06:00"} {
		_, err := buildWeeklyExpr(when)
		assert.Error(t, err, when)
	}
}

func TestScheduleWeeklyNextRun(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC)

	id, err := scheduler.ScheduleWeekly("WED 08:30", func() {})
	require.NoError(t, err)

	scheduler.Start()
	defer scheduler.Stop()

	next := scheduler.Next(id)
	require.False(t, next.IsZero())
	assert.Equal(t, time.Wednesday, next.Weekday())
	assert.Equal(t, 8, next.Hour())
	assert.Equal(t, 30, next.Minute())
}

func TestScheduleWeeklyInvalid(t *testing.T) {
	scheduler := NewSchedulerService(time.UTC)

	_, err := scheduler.ScheduleWeekly("every day", func() {})
	assert.Error(t, err)
}
