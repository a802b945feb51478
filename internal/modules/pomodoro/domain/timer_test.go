package domain_test

import (
	"errors"
	"testing"
	"time"

	"pomo/internal/modules/pomodoro/domain"
	apperrors "pomo/internal/platform/errors"
)

type completion struct {
	kind     domain.Kind
	duration time.Duration
}

type recorder struct {
	messages    []string
	completions []completion
}

func (r *recorder) Notify(message string) { r.messages = append(r.messages, message) }

func (r *recorder) complete(kind domain.Kind, duration time.Duration) {
	r.completions = append(r.completions, completion{kind: kind, duration: duration})
}

func (r *recorder) lastMessage() string {
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

func newMachine(t *testing.T, cfg domain.Config) (*domain.Machine, *recorder) {
	t.Helper()
	rec := &recorder{}
	m, err := domain.NewMachine(cfg, rec, rec.complete)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	return m, rec
}

func tickN(m *domain.Machine, n int) {
	for i := 0; i < n; i++ {
		m.Tick()
	}
}

func assertBounded(t *testing.T, m *domain.Machine) {
	t.Helper()
	st := m.State()
	if st.Remaining < 0 || st.Remaining > m.Config().DurationFor(st.Mode) {
		t.Fatalf("remaining %s out of bounds for %s", st.Remaining, st.Mode)
	}
}

func TestNewMachineInitialState(t *testing.T) {
	t.Parallel()
	m, rec := newMachine(t, domain.DefaultConfig())
	want := domain.State{Mode: domain.ModeWork, Remaining: 25 * time.Minute}
	if got := m.State(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if len(rec.messages) != 0 {
		t.Fatalf("construction must not notify, got %v", rec.messages)
	}
}

func TestNewMachineRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	cases := map[string]func(*domain.Config){
		"zero work":        func(c *domain.Config) { c.WorkDuration = 0 },
		"negative break":   func(c *domain.Config) { c.BreakDuration = -time.Minute },
		"zero long break":  func(c *domain.Config) { c.LongBreakDuration = 0 },
		"fractional work":  func(c *domain.Config) { c.WorkDuration = 1500 * time.Millisecond },
		"zero cadence":     func(c *domain.Config) { c.SessionsBeforeLongBreak = 0 },
		"negative cadence": func(c *domain.Config) { c.SessionsBeforeLongBreak = -2 },
	}
	for name, mutate := range cases {
		name, mutate := name, mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := domain.DefaultConfig()
			mutate(&cfg)
			if _, err := domain.NewMachine(cfg, nil, nil); !errors.Is(err, apperrors.ErrInvalidConfig) {
				t.Fatalf("expected invalid config error, got %v", err)
			}
		})
	}
}

func TestStartNotifiesPerMode(t *testing.T) {
	t.Parallel()
	m, rec := newMachine(t, domain.DefaultConfig())
	m.Start()
	if !m.State().Running {
		t.Fatalf("start should run the countdown")
	}
	if rec.lastMessage() != "Focus time started. You've got this!" {
		t.Fatalf("unexpected start message %q", rec.lastMessage())
	}
	m.Start()
	if len(rec.messages) != 1 {
		t.Fatalf("start while running should be silent, got %v", rec.messages)
	}

	m.Skip()
	m.Start()
	if rec.lastMessage() != "Break time started. Take a moment to recharge." {
		t.Fatalf("unexpected break start message %q", rec.lastMessage())
	}
}

func TestPauseIsIdempotent(t *testing.T) {
	t.Parallel()
	m, _ := newMachine(t, domain.DefaultConfig())
	m.Start()
	tickN(m, 10)
	m.Pause()
	once := m.State()
	m.Pause()
	if twice := m.State(); once != twice {
		t.Fatalf("second pause changed state: %+v vs %+v", once, twice)
	}
	if once.Running {
		t.Fatalf("pause must stop the countdown")
	}
}

func TestScenarioNaturalWorkCompletion(t *testing.T) {
	t.Parallel()
	m, rec := newMachine(t, domain.DefaultConfig())
	m.Start()
	for i := 0; i < 1500; i++ {
		m.Tick()
		assertBounded(t, m)
	}
	st := m.State()
	if st.CompletedWorkSessions != 1 || st.Mode != domain.ModeShortBreak || st.Remaining != 300*time.Second {
		t.Fatalf("unexpected state after 1500 ticks: %+v", st)
	}
	if st.Running {
		t.Fatalf("completion must pause the timer")
	}
	if len(rec.completions) != 1 || rec.completions[0] != (completion{kind: domain.KindWork, duration: 1500 * time.Second}) {
		t.Fatalf("expected one work completion of 1500s, got %+v", rec.completions)
	}
	if rec.lastMessage() != "Work session complete! Time for a 5 min break." {
		t.Fatalf("unexpected completion message %q", rec.lastMessage())
	}
}

func TestScenarioSkipsReachLongBreak(t *testing.T) {
	t.Parallel()
	m, rec := newMachine(t, domain.DefaultConfig())
	m.Start()
	tickN(m, 1500)

	for i := 0; i < 3; i++ {
		m.Skip() // break -> work
		if m.State().Mode != domain.ModeWork {
			t.Fatalf("cycle %d: expected work after skipping break, got %s", i, m.State().Mode)
		}
		m.Skip() // work -> break
	}
	st := m.State()
	if st.CompletedWorkSessions != 4 || st.Mode != domain.ModeLongBreak || st.Remaining != 900*time.Second {
		t.Fatalf("expected long break after 4 sessions, got %+v", st)
	}
	if rec.lastMessage() != "Skipped to long break (15 min)" {
		t.Fatalf("unexpected skip message %q", rec.lastMessage())
	}
	if len(rec.completions) != 1 {
		t.Fatalf("skips must not invoke the completion callback, got %+v", rec.completions)
	}
}

func TestScenarioPartialSkipSuppressesCallback(t *testing.T) {
	t.Parallel()
	m, rec := newMachine(t, domain.DefaultConfig())
	m.Start()
	tickN(m, 500)
	if m.State().Remaining != 1000*time.Second {
		t.Fatalf("expected 1000s remaining, got %s", m.State().Remaining)
	}
	m.Skip()
	st := m.State()
	if st.CompletedWorkSessions != 1 || st.Mode != domain.ModeShortBreak || st.Running {
		t.Fatalf("unexpected state after skip: %+v", st)
	}
	if len(rec.completions) != 0 {
		t.Fatalf("skip must not report completion, got %+v", rec.completions)
	}
}

func TestScenarioTickWithoutStartIsNoop(t *testing.T) {
	t.Parallel()
	m, rec := newMachine(t, domain.DefaultConfig())
	before := m.State()
	tickN(m, 5)
	if after := m.State(); before != after {
		t.Fatalf("tick while paused changed state: %+v -> %+v", before, after)
	}
	if len(rec.messages) != 0 || len(rec.completions) != 0 {
		t.Fatalf("tick while paused must have no side effects")
	}
}

func TestBreakCompletionReportsFinishedBreak(t *testing.T) {
	t.Parallel()
	cfg := domain.Config{
		WorkDuration:            3 * time.Second,
		BreakDuration:           2 * time.Second,
		LongBreakDuration:       4 * time.Second,
		SessionsBeforeLongBreak: 1,
	}
	m, rec := newMachine(t, cfg)
	m.Start()
	tickN(m, 3)
	if m.State().Mode != domain.ModeLongBreak {
		t.Fatalf("cadence of 1 should always give a long break, got %s", m.State().Mode)
	}
	m.Start()
	tickN(m, 4)
	want := []completion{
		{kind: domain.KindWork, duration: 3 * time.Second},
		{kind: domain.KindBreak, duration: 4 * time.Second},
	}
	if len(rec.completions) != 2 || rec.completions[0] != want[0] || rec.completions[1] != want[1] {
		t.Fatalf("expected %+v, got %+v", want, rec.completions)
	}
	st := m.State()
	if st.Mode != domain.ModeWork || st.Remaining != 3*time.Second || st.Running {
		t.Fatalf("unexpected state after break: %+v", st)
	}
	if rec.lastMessage() != "Break complete! Ready to focus again?" {
		t.Fatalf("unexpected break message %q", rec.lastMessage())
	}
}

func TestSkipFromBreakThenCompleteShortBreak(t *testing.T) {
	t.Parallel()
	cfg := domain.Config{
		WorkDuration:            2 * time.Second,
		BreakDuration:           3 * time.Second,
		LongBreakDuration:       5 * time.Second,
		SessionsBeforeLongBreak: 2,
	}
	m, rec := newMachine(t, cfg)
	m.Skip() // work(1) -> short break
	m.Skip() // -> work
	m.Skip() // work(2) -> long break
	m.Skip() // -> work
	m.Skip() // work(3) -> short break
	m.Start()
	tickN(m, 3)
	if len(rec.completions) != 1 || rec.completions[0] != (completion{kind: domain.KindBreak, duration: 3 * time.Second}) {
		t.Fatalf("expected short break duration reported, got %+v", rec.completions)
	}
}

func TestResetRoundTrip(t *testing.T) {
	t.Parallel()
	m, rec := newMachine(t, domain.DefaultConfig())
	m.Start()
	tickN(m, 1500)
	m.Skip()
	m.Skip()
	m.Start()
	tickN(m, 42)
	m.Reset()
	want := domain.State{Mode: domain.ModeWork, Remaining: 25 * time.Minute}
	if got := m.State(); got != want {
		t.Fatalf("reset should restore %+v, got %+v", want, got)
	}
	if rec.lastMessage() != "Timer reset" {
		t.Fatalf("unexpected reset message %q", rec.lastMessage())
	}
}

func TestReconfigureRearmsAndPauses(t *testing.T) {
	t.Parallel()
	m, rec := newMachine(t, domain.DefaultConfig())
	m.Skip()
	m.Start()
	tickN(m, 30)

	cfg := domain.DefaultConfig()
	cfg.BreakDuration = 10 * time.Minute
	if err := m.Reconfigure(cfg); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	st := m.State()
	if st.Mode != domain.ModeShortBreak || st.Remaining != 10*time.Minute || st.Running {
		t.Fatalf("expected re-armed paused short break, got %+v", st)
	}
	if st.CompletedWorkSessions != 1 {
		t.Fatalf("reconfigure must keep session count, got %d", st.CompletedWorkSessions)
	}
	if rec.lastMessage() != "Timer settings updated" {
		t.Fatalf("unexpected reconfigure message %q", rec.lastMessage())
	}

	bad := cfg
	bad.WorkDuration = 0
	if err := m.Reconfigure(bad); !errors.Is(err, apperrors.ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
	if m.Config() != cfg {
		t.Fatalf("rejected config must not be applied")
	}
}

func TestProgressAndFormatting(t *testing.T) {
	t.Parallel()
	cfg := domain.DefaultConfig()
	st := domain.State{Mode: domain.ModeWork, Remaining: 15 * time.Minute}
	if p := st.Progress(cfg); p < 0.399 || p > 0.401 {
		t.Fatalf("expected 40%% progress, got %f", p)
	}
	if got := domain.FormatClock(25*time.Minute + 7*time.Second); got != "25:07" {
		t.Fatalf("unexpected clock %q", got)
	}
	if got := domain.FormatClock(-time.Second); got != "00:00" {
		t.Fatalf("negative clock should clamp, got %q", got)
	}
	if got := domain.FormatSpan(90 * time.Second); got != "1m30s" {
		t.Fatalf("unexpected span %q", got)
	}
	if domain.ModeLongBreak.Label() != "Long Break" || domain.ModeShortBreak.Kind() != domain.KindBreak {
		t.Fatalf("unexpected mode label/kind mapping")
	}
	if err := domain.Mode("nap").Validate(); err == nil {
		t.Fatalf("unknown mode should fail validation")
	}
}

func TestFocusTotalCountsWorkOnly(t *testing.T) {
	t.Parallel()
	total, count := domain.FocusTotal([]domain.Session{
		{Kind: domain.KindWork, Duration: 25 * time.Minute},
		{Kind: domain.KindBreak, Duration: 5 * time.Minute},
		{Kind: domain.KindWork, Duration: 20 * time.Minute},
	})
	if total != 45*time.Minute || count != 2 {
		t.Fatalf("expected 45m over 2 sessions, got %s over %d", total, count)
	}
}
