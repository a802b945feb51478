package out

import (
	"context"
	"time"

	"pomo/internal/modules/pomodoro/domain"
)

type SessionStore interface {
	Append(ctx context.Context, session domain.Session) error
	Recent(ctx context.Context, limit int) ([]domain.Session, error)
	Since(ctx context.Context, since time.Time) ([]domain.Session, error)
}

// Notifier delivers timer messages to the user. Errors are logged by the caller, never retried.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type Settings struct {
	Timer     domain.Config
	NtfyURL   string
	NtfyTopic string
	LogLevel  string
}

type SettingsStore interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, settings Settings) error
	Path() string
}

type JournalWriter interface {
	Write(ctx context.Context, day time.Time, sessions []domain.Session) (string, error)
}
