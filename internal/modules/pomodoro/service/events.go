package service

import (
	"time"

	"pomo/internal/modules/pomodoro/domain"
)

// EventType defines the type of timer event.
type EventType string

const (
	EventStateChange     EventType = "state_change"
	EventProgress        EventType = "progress"
	EventNotification    EventType = "notification"
	EventSessionComplete EventType = "session_complete"
)

// Event represents a timer update for observers.
type Event struct {
	Type    EventType
	State   domain.State
	Config  domain.Config
	Message string
	Session domain.Session
	At      time.Time
}
