package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agrovendas/sales-api/internal/pricing"
)

func TestDueDates(t *testing.T) {
	orderDate := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)

	dates, err := pricing.DueDates("15/30/45/60/75", orderDate)
	require.NoError(t, err)
	require.Len(t, dates, 5)

	want := []string{"2024-01-16", "2024-01-31", "2024-02-15", "2024-03-01", "2024-03-16"}
	for i, d := range dates {
		require.Equal(t, want[i], d.Format("2006-01-02"))
	}
}

func TestDueDatesUnknownSchedule(t *testing.T) {
	_, err := pricing.DueDates("1/2/3", time.Now())
	require.Error(t, err)
}

func TestScheduleNames(t *testing.T) {
	names := pricing.ScheduleNames()
	require.Equal(t, []string{
		"15/30/45/60/75",
		"20/40/60/80",
		"30/50/70",
		"10/20/30/40/50/60/70/80/90/100",
	}, names)
	for _, n := range names {
		require.True(t, pricing.KnownSchedule(n))
	}
	require.False(t, pricing.KnownSchedule("nope"))
}

func TestMethodValid(t *testing.T) {
	require.True(t, pricing.Upfront.Valid())
	require.True(t, pricing.Installment.Valid())
	require.False(t, pricing.Method("weekly").Valid())
}
