package meetings

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

func TestMeetingDuration(t *testing.T) {
	m := Meeting{
		StartTime: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 6, 3, 10, 45, 0, 0, time.UTC),
	}
	if got := m.Duration(); got != 45*time.Minute {
		t.Errorf("expected 45m, got %v", got)
	}
}

// errRow is a pgx.Row whose Scan fails with a fixed error.
type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestScanMeetingPropagatesNoRows(t *testing.T) {
	s := NewStore(nil)

	// Drivers and helpers may wrap the sentinel; callers match it with
	// errors.Is, so the wrapped form must still be recognizable.
	wrapped := fmt.Errorf("query: %w", pgx.ErrNoRows)
	_, err := s.scanMeeting(errRow{err: wrapped})
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows through errors.Is, got %v", err)
	}
}

func TestNewStore(t *testing.T) {
	// Store over a nil pool is valid for construction; queries require a
	// live database and are covered by integration environments.
	s := NewStore(nil)
	if s == nil {
		t.Fatal("expected store")
	}
	s.Close()
}
