package domain

import (
	"fmt"
	"time"
)

const (
	msgFocusStarted  = "Focus time started. You've got this!"
	msgBreakStarted  = "Break time started. Take a moment to recharge."
	msgReset         = "Timer reset"
	msgBreakComplete = "Break complete! Ready to focus again?"
	msgReconfigured  = "Timer settings updated"
)

// Notifier receives human-readable status messages. Delivery is fire-and-forget.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// CompletionFunc is invoked synchronously when a session runs out naturally.
type CompletionFunc func(kind Kind, duration time.Duration)

// State is a snapshot of the timer.
type State struct {
	Mode                  Mode
	Remaining             time.Duration
	Running               bool
	CompletedWorkSessions int
}

// Progress reports how much of the current session has elapsed, in [0,1].
func (s State) Progress(cfg Config) float64 {
	total := cfg.DurationFor(s.Mode)
	if total <= 0 {
		return 0
	}
	p := float64(total-s.Remaining) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Machine is the work/break interval state machine. It does not schedule time:
// the host calls Tick once per elapsed second while the machine is running.
// A Machine is not safe for concurrent use.
type Machine struct {
	cfg        Config
	state      State
	notifier   Notifier
	onComplete CompletionFunc
}

func NewMachine(cfg Config, notifier Notifier, onComplete CompletionFunc) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{cfg: cfg, notifier: notifier, onComplete: onComplete}
	m.state = initialState(cfg)
	return m, nil
}

func initialState(cfg Config) State {
	return State{Mode: ModeWork, Remaining: cfg.WorkDuration}
}

func (m *Machine) State() State   { return m.state }
func (m *Machine) Config() Config { return m.cfg }

func (m *Machine) Start() {
	if m.state.Running || m.state.Remaining <= 0 {
		return
	}
	m.state.Running = true
	if m.state.Mode == ModeWork {
		m.notify(msgFocusStarted)
	} else {
		m.notify(msgBreakStarted)
	}
}

func (m *Machine) Pause() {
	m.state.Running = false
}

func (m *Machine) Tick() {
	if !m.state.Running || m.state.Remaining <= 0 {
		return
	}
	if m.state.Remaining > time.Second {
		m.state.Remaining -= time.Second
		return
	}
	m.state.Remaining = 0
	m.complete()
}

// Skip ends the current session early. Work sessions still count toward the
// long-break cadence, but the completion callback is not invoked.
func (m *Machine) Skip() {
	m.state.Running = false
	if m.state.Mode == ModeWork {
		next := m.finishWork()
		if next == ModeLongBreak {
			m.notify(fmt.Sprintf("Skipped to long break (%s)", FormatSpan(m.cfg.LongBreakDuration)))
		} else {
			m.notify(fmt.Sprintf("Skipped to break (%s)", FormatSpan(m.cfg.BreakDuration)))
		}
		return
	}
	m.enter(ModeWork)
	m.notify(fmt.Sprintf("Skipped to work session (%s)", FormatSpan(m.cfg.WorkDuration)))
}

func (m *Machine) Reset() {
	m.state = initialState(m.cfg)
	m.notify(msgReset)
}

// Reconfigure swaps the durations and cadence. The current mode is kept but
// re-armed with its new duration, and the countdown is paused.
func (m *Machine) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.cfg = cfg
	m.state.Running = false
	m.state.Remaining = cfg.DurationFor(m.state.Mode)
	m.notify(msgReconfigured)
	return nil
}

func (m *Machine) complete() {
	if m.state.Mode == ModeWork {
		next := m.finishWork()
		m.completed(KindWork, m.cfg.WorkDuration)
		m.state.Running = false
		if next == ModeLongBreak {
			m.notify(fmt.Sprintf("Work session complete! Time for a longer %s break.", FormatSpan(m.cfg.LongBreakDuration)))
		} else {
			m.notify(fmt.Sprintf("Work session complete! Time for a %s break.", FormatSpan(m.cfg.BreakDuration)))
		}
		return
	}
	finished := m.cfg.DurationFor(m.state.Mode)
	m.enter(ModeWork)
	m.completed(KindBreak, finished)
	m.state.Running = false
	m.notify(msgBreakComplete)
}

// finishWork credits a work session and arms the following break.
func (m *Machine) finishWork() Mode {
	m.state.CompletedWorkSessions++
	next := ModeShortBreak
	if m.state.CompletedWorkSessions%m.cfg.SessionsBeforeLongBreak == 0 {
		next = ModeLongBreak
	}
	m.enter(next)
	return next
}

func (m *Machine) enter(mode Mode) {
	m.state.Mode = mode
	m.state.Remaining = m.cfg.DurationFor(mode)
}

func (m *Machine) completed(kind Kind, duration time.Duration) {
	if m.onComplete != nil {
		m.onComplete(kind, duration)
	}
}

func (m *Machine) notify(message string) {
	if m.notifier != nil {
		m.notifier.Notify(message)
	}
}
