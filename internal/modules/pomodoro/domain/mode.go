package domain

import (
	"fmt"
	"time"
)

type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
)

// Kind is the coarse session type reported on completion.
type Kind string

const (
	KindWork  Kind = "work"
	KindBreak Kind = "break"
)

func (m Mode) Validate() error {
	switch m {
	case ModeWork, ModeShortBreak, ModeLongBreak:
		return nil
	default:
		return fmt.Errorf("unsupported timer mode %q", string(m))
	}
}

func (m Mode) Kind() Kind {
	if m == ModeWork {
		return KindWork
	}
	return KindBreak
}

func (m Mode) Label() string {
	switch m {
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return "Focus Time"
	}
}

// FormatClock renders d as MM:SS; minutes are not wrapped into hours.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatSpan renders a configured duration the way notifications quote it.
func FormatSpan(d time.Duration) string {
	if d > 0 && d%time.Minute == 0 {
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}
	return d.String()
}
