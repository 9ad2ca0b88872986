package pricing

import (
	"fmt"
	"time"
)

// Method selects how the order is paid.
type Method string

const (
	// Upfront settles the full amount on order date.
	Upfront Method = "upfront"
	// Installment splits payment across the due dates of a named schedule.
	Installment Method = "installment"
)

// Valid reports whether the method is one of the known payment methods.
func (m Method) Valid() bool {
	return m == Upfront || m == Installment
}

// scheduleOffsets enumerates the fixed installment schedules by name. Each
// offset is a calendar-day distance from the order date.
var scheduleOffsets = map[string][]int{
	"15/30/45/60/75":                 {15, 30, 45, 60, 75},
	"20/40/60/80":                    {20, 40, 60, 80},
	"30/50/70":                       {30, 50, 70},
	"10/20/30/40/50/60/70/80/90/100": {10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
}

// scheduleNames keeps the display ordering stable.
var scheduleNames = []string{
	"15/30/45/60/75",
	"20/40/60/80",
	"30/50/70",
	"10/20/30/40/50/60/70/80/90/100",
}

// ScheduleNames returns the available installment schedules in display order.
func ScheduleNames() []string {
	return append([]string(nil), scheduleNames...)
}

// KnownSchedule reports whether name is one of the fixed schedules.
func KnownSchedule(name string) bool {
	_, ok := scheduleOffsets[name]
	return ok
}

// DueDates computes one due date per schedule offset using local calendar-day
// arithmetic from the order date. It returns an error for unknown schedules.
func DueDates(schedule string, orderDate time.Time) ([]time.Time, error) {
	offsets, ok := scheduleOffsets[schedule]
	if !ok {
		return nil, fmt.Errorf("pricing: unknown installment schedule %q", schedule)
	}
	dates := make([]time.Time, len(offsets))
	for i, off := range offsets {
		dates[i] = orderDate.AddDate(0, 0, off)
	}
	return dates, nil
}
