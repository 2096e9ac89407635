package service

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// weekStart returns the Monday of the week containing t, at midnight.
func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// weekEnd returns the Sunday of the week containing t.
func weekEnd(t time.Time) time.Time {
	return weekStart(t).AddDate(0, 0, 6)
}

// isoWeekKey buckets a date by ISO (year, week) so week 53 of one year and
// week 1 of the next never merge.
func isoWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
