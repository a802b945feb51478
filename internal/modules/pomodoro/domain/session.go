package domain

import "time"

const SchemaVersion = 1

// Session is a completed interval as kept in history.
type Session struct {
	ID          string
	Kind        Kind
	Mode        Mode
	Duration    time.Duration
	CompletedAt time.Time
}

// FocusTotal sums the durations of work sessions.
func FocusTotal(sessions []Session) (time.Duration, int) {
	var total time.Duration
	count := 0
	for _, s := range sessions {
		if s.Kind != KindWork {
			continue
		}
		total += s.Duration
		count++
	}
	return total, count
}
