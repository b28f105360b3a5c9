package analytics

import (
	"sort"
	"time"
)

// DefaultGap is the inactivity threshold between consecutive events.
// Events separated by more than this belong to different sessions.
const DefaultGap = 60 * time.Minute

// Record is a raw row from the record store: a raw timestamp string, an
// identifying field (may be empty), and whatever other payload the row
// carries. The analyzer never interprets Fields.
type Record struct {
	Timestamp string
	ID        string
	Fields    map[string]string
}

// Event is a record paired with its successfully parsed point in time.
type Event struct {
	Time   time.Time
	Record Record
}

// Session is a maximal time-ordered run of events where every consecutive
// pair is separated by at most the inactivity gap. Sessions are read-only
// once emitted by BuildSessions.
type Session struct {
	Date   time.Time // midnight of the first event's calendar day
	Start  time.Time
	End    time.Time
	Events []Event
}

// Count returns the number of member events.
func (s *Session) Count() int { return len(s.Events) }

// Duration returns End minus Start; zero for single-event sessions.
func (s *Session) Duration() time.Duration { return s.End.Sub(s.Start) }

// BuildSessions partitions events into sessions delimited by inactivity
// gaps strictly greater than gap. Input order is arbitrary; events are
// stably sorted by time first, so simultaneous events keep their input
// order. A gap of exactly gap stays within the same session. Empty input
// yields an empty result.
func BuildSessions(events []Event, gap time.Duration) []*Session {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	var sessions []*Session
	var current []Event
	for _, ev := range sorted {
		if len(current) > 0 && ev.Time.Sub(current[len(current)-1].Time) > gap {
			sessions = append(sessions, newSession(current))
			current = nil
		}
		current = append(current, ev)
	}
	sessions = append(sessions, newSession(current))

	return sessions
}

func newSession(events []Event) *Session {
	first := events[0]
	last := events[len(events)-1]
	y, m, d := first.Time.Date()

	return &Session{
		Date:   time.Date(y, m, d, 0, 0, 0, 0, first.Time.Location()),
		Start:  first.Time,
		End:    last.Time,
		Events: events,
	}
}
