package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports local wall time so that "today" follows the user's day.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
