package task_tools

import (
	"time"

	"projectpulse/internal/asana"
)

// dateLayout is the date-only wire format. ISO dates sort lexically the
// same as chronologically, so all date comparisons below are plain string
// comparisons.
const dateLayout = "2006-01-02"

// timeNow is swapped out in tests.
var timeNow = time.Now

// todayString returns the current local date in wire format.
func todayString() string {
	return timeNow().Format(dateLayout)
}

// startOfToday returns local midnight of the current day.
func startOfToday() time.Time {
	n := timeNow()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

// weekBounds returns the Monday and Sunday date strings of the current
// local week.
func weekBounds() (string, string) {
	n := timeNow()
	offset := int(n.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	monday := n.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(dateLayout), sunday.Format(dateLayout)
}

// isOverdue reports whether a task is incomplete with a due date strictly
// before today.
func isOverdue(t asana.Task, today string) bool {
	return !t.Completed && t.DueOn != "" && t.DueOn < today
}

// daysOverdue returns the whole days elapsed since the due date, by
// truncating division. Zero for tasks due today or later.
func daysOverdue(dueOn string, now time.Time) int {
	due, err := time.ParseInLocation(dateLayout, dueOn, now.Location())
	if err != nil {
		return 0
	}
	d := int(now.Sub(due) / (24 * time.Hour))
	if d < 0 {
		return 0
	}
	return d
}
