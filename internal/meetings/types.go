package meetings

import "time"

// Meeting represents a meeting record from the calendar store.
type Meeting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Link        string    `json:"link,omitempty"`
	Attendees   []string  `json:"attendees"`
	Status      string    `json:"status"`
}

// Duration returns the scheduled length of the meeting.
func (m Meeting) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}
