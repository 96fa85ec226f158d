package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"projectpulse/internal/logging"
)

// statusCancelled marks meetings excluded from every query.
const statusCancelled = "cancelled"

// meetingColumns is the shared select list for meeting queries.
const meetingColumns = "id, title, description, start_time, end_time, link, attendees, status"

// Store is a read-only Postgres-backed meeting store.
type Store struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewStore creates a Store over an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, log: storeLogger()}
}

// Connect opens a connection pool against the calendar database and wraps
// it in a Store.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to calendar store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping calendar store: %w", err)
	}
	return &Store{pool: pool, log: storeLogger()}, nil
}

func storeLogger() logging.Logger {
	return logging.NewSlogAdapter(logging.WithService(slog.Default(), "meetings"))
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Next returns the first meeting starting at or after now, or nil when
// the calendar is empty from now on.
func (s *Store) Next(ctx context.Context, now time.Time) (*Meeting, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE start_time >= $1 AND status != $2
		ORDER BY start_time
		LIMIT 1`, now, statusCancelled)

	m, err := s.scanMeeting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// empty calendar is a not-found result, not an error
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next meeting: %w", err)
	}
	return m, nil
}

// Between returns meetings starting within [from, to), ordered by start
// time.
func (s *Store) Between(ctx context.Context, from, to time.Time) ([]Meeting, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE start_time >= $1 AND start_time < $2 AND status != $3
		ORDER BY start_time`, from, to, statusCancelled)
	if err != nil {
		return nil, fmt.Errorf("meetings between: %w", err)
	}
	defer rows.Close()
	return s.collectMeetings(rows)
}

// Search returns meetings whose title or description contains the query,
// case-insensitively, ordered by start time descending.
func (s *Store) Search(ctx context.Context, query string) ([]Meeting, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		  AND status != $2
		ORDER BY start_time DESC`, query, statusCancelled)
	if err != nil {
		return nil, fmt.Errorf("search meetings: %w", err)
	}
	defer rows.Close()
	return s.collectMeetings(rows)
}

// ByAttendee returns meetings whose attendee list contains the given
// email, using JSONB containment, ordered by start time descending.
func (s *Store) ByAttendee(ctx context.Context, email string) ([]Meeting, error) {
	needle, err := json.Marshal([]string{email})
	if err != nil {
		return nil, fmt.Errorf("marshal attendee filter: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE attendees @> $1::jsonb AND status != $2
		ORDER BY start_time DESC`, string(needle), statusCancelled)
	if err != nil {
		return nil, fmt.Errorf("meetings by attendee: %w", err)
	}
	defer rows.Close()
	return s.collectMeetings(rows)
}

// scanMeeting reads one meeting from a row. The attendees column is JSONB;
// a malformed value degrades to an empty list rather than failing the row.
func (s *Store) scanMeeting(row pgx.Row) (*Meeting, error) {
	var m Meeting
	var attendeesJSON []byte
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.StartTime, &m.EndTime, &m.Link, &attendeesJSON, &m.Status)
	if err != nil {
		return nil, err
	}
	if len(attendeesJSON) > 0 {
		if err := json.Unmarshal(attendeesJSON, &m.Attendees); err != nil {
			s.log.Warn("malformed attendees column, treating as empty", "meeting_id", m.ID, "error", err)
			m.Attendees = []string{}
		}
	}
	if m.Attendees == nil {
		m.Attendees = []string{}
	}
	return &m, nil
}

func (s *Store) collectMeetings(rows pgx.Rows) ([]Meeting, error) {
	var out []Meeting
	for rows.Next() {
		m, err := s.scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
