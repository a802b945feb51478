package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pomo/internal/modules/pomodoro/domain"
	pomodoroout "pomo/internal/modules/pomodoro/port/out"
	"pomo/internal/platform/clock"
	apperrors "pomo/internal/platform/errors"
	"pomo/internal/platform/id"
)

const DefaultHistoryLimit = 10

// Options contains runtime options for the service.
type Options struct {
	TickInterval time.Duration
}

// TimerService hosts a single domain.Machine. Commands are serialised under mu;
// side effects raised while a command runs are buffered and flushed after the
// lock is released.
type TimerService struct {
	mu          sync.Mutex
	machine     *domain.Machine
	commandMode domain.Mode
	messages    []string
	completed   []domain.Session

	clock    clock.Clock
	idGen    id.Generator
	store    pomodoroout.SessionStore
	notifier pomodoroout.Notifier
	logger   *zap.Logger
	options  Options

	subsMu sync.Mutex
	events []chan Event
	closed bool
}

func NewTimerService(cfg domain.Config, clock clock.Clock, idGen id.Generator, store pomodoroout.SessionStore, notifier pomodoroout.Notifier, logger *zap.Logger, options Options) (*TimerService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: session store is required", apperrors.ErrInvalidInput)
	}
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TimerService{
		clock:    clock,
		idGen:    idGen,
		store:    store,
		notifier: notifier,
		logger:   logger,
		options:  options,
	}
	machine, err := domain.NewMachine(cfg, domain.NotifierFunc(s.bufferMessage), s.bufferCompletion)
	if err != nil {
		return nil, err
	}
	s.machine = machine
	return s, nil
}

// bufferMessage and bufferCompletion run inside machine commands, with mu held.
func (s *TimerService) bufferMessage(message string) {
	s.messages = append(s.messages, message)
}

func (s *TimerService) bufferCompletion(kind domain.Kind, duration time.Duration) {
	s.completed = append(s.completed, domain.Session{
		ID:          s.idGen.New(),
		Kind:        kind,
		Mode:        s.commandMode,
		Duration:    duration,
		CompletedAt: s.clock.Now(),
	})
}

func (s *TimerService) Start(ctx context.Context) (domain.State, error) {
	return s.apply(ctx, EventStateChange, func(m *domain.Machine) error { m.Start(); return nil })
}

func (s *TimerService) Pause(ctx context.Context) (domain.State, error) {
	return s.apply(ctx, EventStateChange, func(m *domain.Machine) error { m.Pause(); return nil })
}

// Toggle pauses a running timer and starts a paused one.
func (s *TimerService) Toggle(ctx context.Context) (domain.State, error) {
	return s.apply(ctx, EventStateChange, func(m *domain.Machine) error {
		if m.State().Running {
			m.Pause()
		} else {
			m.Start()
		}
		return nil
	})
}

func (s *TimerService) Skip(ctx context.Context) (domain.State, error) {
	return s.apply(ctx, EventStateChange, func(m *domain.Machine) error { m.Skip(); return nil })
}

func (s *TimerService) Reset(ctx context.Context) (domain.State, error) {
	return s.apply(ctx, EventStateChange, func(m *domain.Machine) error { m.Reset(); return nil })
}

func (s *TimerService) Tick(ctx context.Context) (domain.State, error) {
	return s.apply(ctx, EventProgress, func(m *domain.Machine) error { m.Tick(); return nil })
}

func (s *TimerService) Reconfigure(ctx context.Context, cfg domain.Config) (domain.State, error) {
	return s.apply(ctx, EventStateChange, func(m *domain.Machine) error { return m.Reconfigure(cfg) })
}

// Snapshot returns the current state and config without side effects.
func (s *TimerService) Snapshot() (domain.State, domain.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State(), s.machine.Config()
}

func (s *TimerService) apply(ctx context.Context, eventType EventType, command func(*domain.Machine) error) (domain.State, error) {
	s.mu.Lock()
	before := s.machine.State()
	s.commandMode = before.Mode
	cmdErr := command(s.machine)
	state := s.machine.State()
	cfg := s.machine.Config()
	messages, completed := s.messages, s.completed
	s.messages, s.completed = nil, nil
	s.mu.Unlock()

	if cmdErr != nil {
		return state, cmdErr
	}
	if eventType == EventProgress && (before.Mode != state.Mode || before.Running != state.Running) {
		eventType = EventStateChange
	}
	return state, s.flush(ctx, eventType, state, cfg, messages, completed)
}

func (s *TimerService) flush(ctx context.Context, eventType EventType, state domain.State, cfg domain.Config, messages []string, completed []domain.Session) error {
	now := s.clock.Now()
	var errs []error
	for _, session := range completed {
		if err := s.store.Append(ctx, session); err != nil {
			s.logger.Error("persist session failed", zap.String("session_id", session.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("persist session %s: %w", session.ID, err))
		}
		s.logger.Info("session completed",
			zap.String("kind", string(session.Kind)),
			zap.String("mode", string(session.Mode)),
			zap.Duration("duration", session.Duration))
		s.emit(Event{Type: EventSessionComplete, State: state, Config: cfg, Session: session, At: now})
	}
	for _, message := range messages {
		if s.notifier != nil {
			if err := s.notifier.Notify(ctx, message); err != nil {
				s.logger.Warn("notification delivery failed", zap.String("message", message), zap.Error(err))
			}
		}
		s.emit(Event{Type: EventNotification, State: state, Config: cfg, Message: message, At: now})
	}
	s.emit(Event{Type: eventType, State: state, Config: cfg, At: now})
	return errors.Join(errs...)
}

// Run is the external one-second clock. It ticks the machine while it is
// running and returns when ctx is cancelled.
func (s *TimerService) Run(ctx context.Context) error {
	return s.tickLoop(ctx, false, 0)
}

// Cycle ticks like Run but never leaves the timer paused: a pause raised by a
// completion, a reconfigure or any other command is undone on the next tick.
// Completions are counted from the Tick result, not from observer events. It
// returns once cycles work sessions have completed, or when ctx is cancelled
// if cycles <= 0.
func (s *TimerService) Cycle(ctx context.Context, cycles int) error {
	return s.tickLoop(ctx, true, cycles)
}

func (s *TimerService) tickLoop(ctx context.Context, resume bool, cycles int) error {
	ticker := time.NewTicker(s.options.TickInterval)
	defer ticker.Stop()

	worked := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		state, _ := s.Snapshot()
		if !state.Running {
			if !resume {
				continue
			}
			if _, err := s.Start(ctx); err != nil {
				return err
			}
			continue
		}
		next, err := s.Tick(ctx)
		if err != nil {
			s.logger.Warn("tick failed", zap.Error(err))
		}
		if next.CompletedWorkSessions > state.CompletedWorkSessions {
			worked++
			if cycles > 0 && worked >= cycles {
				return nil
			}
		}
	}
}

// History returns completed sessions, newest first.
func (s *TimerService) History(ctx context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.Recent(ctx, limit)
}

// FocusedSince sums work sessions completed at or after since.
func (s *TimerService) FocusedSince(ctx context.Context, since time.Time) (time.Duration, int, []domain.Session, error) {
	sessions, err := s.store.Since(ctx, since)
	if err != nil {
		return 0, 0, nil, err
	}
	total, count := domain.FocusTotal(sessions)
	return total, count, sessions, nil
}

// Subscribe registers a new observer channel. Events are dropped when the buffer is full.
func (s *TimerService) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.events = append(s.events, ch)
	return ch
}

// Close closes every observer channel.
func (s *TimerService) Close() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.events {
		close(ch)
	}
	s.events = nil
}

func (s *TimerService) emit(event Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.events {
		select {
		case ch <- event:
		default:
		}
	}
}
