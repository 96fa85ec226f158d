package task_tools

import (
	"testing"
	"time"

	"projectpulse/internal/asana"
)

// fixNow pins the package clock for a test and restores it afterwards.
func fixNow(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = prev })
}

func TestTodayString(t *testing.T) {
	fixNow(t, time.Date(2024, 3, 14, 15, 30, 0, 0, time.Local))

	if got := todayString(); got != "2024-03-14" {
		t.Errorf("todayString() = %q, want %q", got, "2024-03-14")
	}
}

func TestStartOfToday(t *testing.T) {
	fixNow(t, time.Date(2024, 3, 14, 15, 30, 45, 0, time.Local))

	got := startOfToday()
	want := time.Date(2024, 3, 14, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("startOfToday() = %v, want %v", got, want)
	}
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		monday string
		sunday string
	}{
		{
			name:   "mid-week thursday",
			now:    time.Date(2024, 3, 14, 12, 0, 0, 0, time.Local),
			monday: "2024-03-11",
			sunday: "2024-03-17",
		},
		{
			name:   "monday is its own week start",
			now:    time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local),
			monday: "2024-03-11",
			sunday: "2024-03-17",
		},
		{
			name:   "sunday belongs to the preceding monday",
			now:    time.Date(2024, 3, 17, 23, 59, 0, 0, time.Local),
			monday: "2024-03-11",
			sunday: "2024-03-17",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixNow(t, tt.now)
			monday, sunday := weekBounds()
			if monday != tt.monday || sunday != tt.sunday {
				t.Errorf("weekBounds() = (%q, %q), want (%q, %q)", monday, sunday, tt.monday, tt.sunday)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	today := "2024-03-14"

	tests := []struct {
		name string
		task asana.Task
		want bool
	}{
		{"due yesterday", asana.Task{DueOn: "2024-03-13"}, true},
		{"due today is not overdue", asana.Task{DueOn: "2024-03-14"}, false},
		{"due tomorrow", asana.Task{DueOn: "2024-03-15"}, false},
		{"completed task never overdue", asana.Task{DueOn: "2024-03-01", Completed: true}, false},
		{"no due date", asana.Task{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isOverdue(tt.task, today); got != tt.want {
				t.Errorf("isOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysOverdue(t *testing.T) {
	now := time.Date(2024, 3, 14, 18, 0, 0, 0, time.Local)

	tests := []struct {
		dueOn string
		want  int
	}{
		{"2024-03-13", 1},
		{"2024-03-07", 7},
		{"2024-03-14", 0}, // partial day truncates to zero
		{"2024-03-20", 0}, // future dates clamp to zero
		{"not-a-date", 0},
	}

	for _, tt := range tests {
		if got := daysOverdue(tt.dueOn, now); got != tt.want {
			t.Errorf("daysOverdue(%q) = %d, want %d", tt.dueOn, got, tt.want)
		}
	}
}
