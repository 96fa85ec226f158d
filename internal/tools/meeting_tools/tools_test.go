package meeting_tools

import (
	"testing"
	"time"

	"projectpulse/internal/meetings"
)

func TestMeetingSummary(t *testing.T) {
	m := meetings.Meeting{
		ID:          "m1",
		Title:       "Sprint planning",
		Description: "Plan the next sprint",
		StartTime:   time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2024, 3, 14, 11, 30, 0, 0, time.UTC),
		Link:        "https://meet.example.com/abc",
		Attendees:   []string{"jane@example.com", "ravi@example.com"},
	}

	s := meetingSummary(m)

	if s["id"] != "m1" || s["title"] != "Sprint planning" {
		t.Errorf("unexpected identity fields: %v", s)
	}
	if s["duration"] != "1h30m0s" {
		t.Errorf("duration = %v, want 1h30m0s", s["duration"])
	}
	if s["startTime"] != "2024-03-14T10:00:00Z" {
		t.Errorf("startTime = %v", s["startTime"])
	}
	attendees, ok := s["attendees"].([]string)
	if !ok || len(attendees) != 2 {
		t.Errorf("attendees = %v", s["attendees"])
	}
}

func TestMeetingSummary_OmitsEmptyFields(t *testing.T) {
	s := meetingSummary(meetings.Meeting{
		ID:        "m2",
		Title:     "1:1",
		StartTime: time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC),
	})

	for _, key := range []string{"description", "link", "attendees"} {
		if _, ok := s[key]; ok {
			t.Errorf("expected %q to be omitted when empty", key)
		}
	}
}

func TestMeetingSummaries_EmptyIsNonNil(t *testing.T) {
	out := meetingSummaries(nil)
	if out == nil {
		t.Error("expected non-nil empty slice")
	}
	if len(out) != 0 {
		t.Errorf("expected empty slice, got %d entries", len(out))
	}
}
