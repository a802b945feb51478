package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pomo/internal/modules/pomodoro/domain"
	"pomo/internal/modules/pomodoro/service"
	apperrors "pomo/internal/platform/errors"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqID struct {
	mu sync.Mutex
	n  int
}

func (g *seqID) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("sess-%d", g.n)
}

type memStore struct {
	mu       sync.Mutex
	sessions []domain.Session
	err      error
}

func (s *memStore) Append(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sessions = append(s.sessions, session)
	return nil
}

func (s *memStore) Recent(_ context.Context, limit int) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Session, 0, limit)
	for i := len(s.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.sessions[i])
	}
	return out, nil
}

func (s *memStore) Since(_ context.Context, since time.Time) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Session
	for _, session := range s.sessions {
		if !session.CompletedAt.Before(since) {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type memNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *memNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return n.err
}

func (n *memNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var now = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func shortConfig() domain.Config {
	return domain.Config{
		WorkDuration:            3 * time.Second,
		BreakDuration:           2 * time.Second,
		LongBreakDuration:       4 * time.Second,
		SessionsBeforeLongBreak: 2,
	}
}

func newService(t *testing.T, cfg domain.Config, store *memStore, notifier *memNotifier, tick time.Duration) *service.TimerService {
	t.Helper()
	svc, err := service.NewTimerService(cfg, fixedClock{now: now}, &seqID{}, store, notifier, nil, service.Options{TickInterval: tick})
	require.NoError(t, err)
	return svc
}

func TestNewTimerServiceRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	cfg := shortConfig()
	cfg.SessionsBeforeLongBreak = 0
	_, err := service.NewTimerService(cfg, fixedClock{now: now}, &seqID{}, &memStore{}, nil, nil, service.Options{})
	require.Error(t, err)
}

func TestNewTimerServiceRequiresStore(t *testing.T) {
	t.Parallel()
	_, err := service.NewTimerService(shortConfig(), fixedClock{now: now}, &seqID{}, nil, nil, nil, service.Options{})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCompletionIsPersistedWithModeAndNotified(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	notifier := &memNotifier{}
	svc := newService(t, shortConfig(), store, notifier, 0)
	ctx := context.Background()

	_, err := svc.Start(ctx)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = svc.Tick(ctx)
		require.NoError(t, err)
	}
	state, _ := svc.Snapshot()
	assert.Equal(t, domain.ModeShortBreak, state.Mode)
	assert.False(t, state.Running)

	require.Len(t, store.sessions, 1)
	got := store.sessions[0]
	assert.Equal(t, "sess-1", got.ID)
	assert.Equal(t, domain.KindWork, got.Kind)
	assert.Equal(t, domain.ModeWork, got.Mode)
	assert.Equal(t, 3*time.Second, got.Duration)
	assert.Equal(t, now, got.CompletedAt)

	assert.Equal(t, []string{
		"Focus time started. You've got this!",
		"Work session complete! Time for a 2s break.",
	}, notifier.all())

	_, err = svc.Start(ctx)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = svc.Tick(ctx)
		require.NoError(t, err)
	}
	require.Len(t, store.sessions, 2)
	assert.Equal(t, domain.ModeShortBreak, store.sessions[1].Mode)
	assert.Equal(t, domain.KindBreak, store.sessions[1].Kind)
}

func TestToggleAndSkipDoNotPersist(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	svc := newService(t, shortConfig(), store, &memNotifier{}, 0)
	ctx := context.Background()

	state, err := svc.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, state.Running)
	state, err = svc.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, state.Running)

	state, err = svc.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CompletedWorkSessions)
	assert.Zero(t, store.count())
}

func TestNotifierFailureIsNotFatalButStoreFailureIs(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	notifier := &memNotifier{err: errors.New("offline")}
	svc := newService(t, shortConfig(), store, notifier, 0)
	ctx := context.Background()

	_, err := svc.Start(ctx)
	require.NoError(t, err)

	store.err = errors.New("disk full")
	_, _ = svc.Tick(ctx)
	_, _ = svc.Tick(ctx)
	state, err := svc.Tick(ctx)
	require.Error(t, err)
	assert.Equal(t, domain.ModeShortBreak, state.Mode, "the transition happens even when history cannot be written")
}

func TestReconfigureEmitsStateChange(t *testing.T) {
	t.Parallel()
	svc := newService(t, shortConfig(), &memStore{}, &memNotifier{}, 0)
	events := svc.Subscribe(8)
	cfg := shortConfig()
	cfg.WorkDuration = 10 * time.Second

	state, err := svc.Reconfigure(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, state.Remaining)

	first := <-events
	assert.Equal(t, service.EventNotification, first.Type)
	assert.Equal(t, "Timer settings updated", first.Message)
	second := <-events
	assert.Equal(t, service.EventStateChange, second.Type)
	assert.Equal(t, cfg, second.Config)

	bad := cfg
	bad.BreakDuration = 0
	_, err = svc.Reconfigure(context.Background(), bad)
	require.Error(t, err)
	svc.Close()
}

func TestHistoryAndFocusedSince(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	svc := newService(t, shortConfig(), store, &memNotifier{}, 0)
	ctx := context.Background()
	for cycle := 0; cycle < 2; cycle++ {
		_, _ = svc.Start(ctx)
		for i := 0; i < 3; i++ {
			_, _ = svc.Tick(ctx)
		}
		_, _ = svc.Skip(ctx)
	}
	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "sess-2", history[0].ID)

	total, count, sessions, err := svc.FocusedSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, total)
	assert.Equal(t, 2, count)
	assert.Len(t, sessions, 2)
}

func TestRunTicksUntilCancelled(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	svc := newService(t, shortConfig(), store, &memNotifier{}, time.Millisecond)
	events := svc.Subscribe(64)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	_, err := svc.Start(ctx)
	require.NoError(t, err)

	var completed domain.Session
	require.Eventually(t, func() bool {
		for {
			select {
			case ev := <-events:
				if ev.Type == service.EventSessionComplete {
					completed = ev.Session
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.KindWork, completed.Kind)

	state, _ := svc.Snapshot()
	assert.False(t, state.Running, "run must not restart a paused timer")

	cancel()
	require.NoError(t, <-done)
	svc.Close()
	_, open := <-svc.Subscribe(1)
	assert.False(t, open, "subscribing after close yields a closed channel")
}

func TestCycleResumesPausedTimerAndCountsWork(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	svc := newService(t, shortConfig(), store, &memNotifier{}, time.Millisecond)
	// A full buffer drops observer events; Cycle must not depend on them.
	_ = svc.Subscribe(1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.Pause(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Cycle(ctx, 2))
	require.NoError(t, ctx.Err(), "cycle should return once two work sessions completed")

	kinds := make([]domain.Kind, 0, store.count())
	for _, session := range store.sessions {
		kinds = append(kinds, session.Kind)
	}
	assert.Equal(t, []domain.Kind{domain.KindWork, domain.KindBreak, domain.KindWork}, kinds)
	svc.Close()
}
