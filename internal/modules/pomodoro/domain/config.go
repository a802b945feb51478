package domain

import (
	"fmt"
	"time"

	apperrors "pomo/internal/platform/errors"
)

const (
	DefaultWorkDuration            = 25 * time.Minute
	DefaultBreakDuration           = 5 * time.Minute
	DefaultLongBreakDuration       = 15 * time.Minute
	DefaultSessionsBeforeLongBreak = 4
)

// Config is fixed for the lifetime of a session; changing it goes through Machine.Reconfigure.
type Config struct {
	WorkDuration            time.Duration
	BreakDuration           time.Duration
	LongBreakDuration       time.Duration
	SessionsBeforeLongBreak int
}

func DefaultConfig() Config {
	return Config{
		WorkDuration:            DefaultWorkDuration,
		BreakDuration:           DefaultBreakDuration,
		LongBreakDuration:       DefaultLongBreakDuration,
		SessionsBeforeLongBreak: DefaultSessionsBeforeLongBreak,
	}
}

func (c Config) Validate() error {
	if err := validateDuration("work duration", c.WorkDuration); err != nil {
		return err
	}
	if err := validateDuration("break duration", c.BreakDuration); err != nil {
		return err
	}
	if err := validateDuration("long break duration", c.LongBreakDuration); err != nil {
		return err
	}
	if c.SessionsBeforeLongBreak < 1 {
		return fmt.Errorf("%w: sessions before long break must be at least 1, got %d", apperrors.ErrInvalidConfig, c.SessionsBeforeLongBreak)
	}
	return nil
}

// DurationFor returns the configured length of a session in the given mode.
func (c Config) DurationFor(mode Mode) time.Duration {
	switch mode {
	case ModeShortBreak:
		return c.BreakDuration
	case ModeLongBreak:
		return c.LongBreakDuration
	default:
		return c.WorkDuration
	}
}

func validateDuration(name string, d time.Duration) error {
	if d < time.Second {
		return fmt.Errorf("%w: %s must be at least 1s, got %s", apperrors.ErrInvalidConfig, name, d)
	}
	if d%time.Second != 0 {
		return fmt.Errorf("%w: %s must be whole seconds, got %s", apperrors.ErrInvalidConfig, name, d)
	}
	return nil
}
