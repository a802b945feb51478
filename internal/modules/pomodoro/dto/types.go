package dto

import "time"

type StatusOutput struct {
	Mode                    string
	Label                   string
	Remaining               time.Duration
	Clock                   string
	ProgressPercent         float64
	Running                 bool
	CompletedWorkSessions   int
	WorkDuration            time.Duration
	BreakDuration           time.Duration
	LongBreakDuration       time.Duration
	SessionsBeforeLongBreak int
}

// ConfigureInput carries a partial update; zero fields keep their current value.
type ConfigureInput struct {
	WorkDuration            time.Duration
	BreakDuration           time.Duration
	LongBreakDuration       time.Duration
	SessionsBeforeLongBreak int
}

type HistoryInput struct {
	Limit int
}

type SessionOutput struct {
	ID          string
	Kind        string
	Mode        string
	Duration    time.Duration
	CompletedAt time.Time
}

type TodayOutput struct {
	Date         time.Time
	Focused      time.Duration
	WorkSessions int
}

type ExportOutput struct {
	Path     string
	Sessions int
}
