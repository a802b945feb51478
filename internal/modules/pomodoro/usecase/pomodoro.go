package usecase

import (
	"context"
	"fmt"
	"time"

	"pomo/internal/modules/pomodoro/domain"
	"pomo/internal/modules/pomodoro/dto"
	pomodoroin "pomo/internal/modules/pomodoro/port/in"
	pomodoroout "pomo/internal/modules/pomodoro/port/out"
	"pomo/internal/modules/pomodoro/service"
	"pomo/internal/platform/clock"
	apperrors "pomo/internal/platform/errors"
)

type Interactor struct {
	svc      *service.TimerService
	settings pomodoroout.SettingsStore
	journal  pomodoroout.JournalWriter
	clock    clock.Clock
}

func NewInteractor(svc *service.TimerService, settings pomodoroout.SettingsStore, journal pomodoroout.JournalWriter, clock clock.Clock) pomodoroin.Usecase {
	return &Interactor{svc: svc, settings: settings, journal: journal, clock: clock}
}

func (i *Interactor) Start(ctx context.Context) (dto.StatusOutput, error) {
	return i.status(i.svc.Start(ctx))
}

func (i *Interactor) Pause(ctx context.Context) (dto.StatusOutput, error) {
	return i.status(i.svc.Pause(ctx))
}

func (i *Interactor) Toggle(ctx context.Context) (dto.StatusOutput, error) {
	return i.status(i.svc.Toggle(ctx))
}

func (i *Interactor) Skip(ctx context.Context) (dto.StatusOutput, error) {
	return i.status(i.svc.Skip(ctx))
}

func (i *Interactor) Reset(ctx context.Context) (dto.StatusOutput, error) {
	return i.status(i.svc.Reset(ctx))
}

func (i *Interactor) Tick(ctx context.Context) (dto.StatusOutput, error) {
	return i.status(i.svc.Tick(ctx))
}

func (i *Interactor) Status(_ context.Context) (dto.StatusOutput, error) {
	state, cfg := i.svc.Snapshot()
	return ToStatus(state, cfg), nil
}

// Configure merges the partial input into the running config, persists it and
// then applies it.
func (i *Interactor) Configure(ctx context.Context, input dto.ConfigureInput) (dto.StatusOutput, error) {
	if input.WorkDuration < 0 || input.BreakDuration < 0 || input.LongBreakDuration < 0 || input.SessionsBeforeLongBreak < 0 {
		return dto.StatusOutput{}, fmt.Errorf("%w: negative values are not allowed", apperrors.ErrInvalidInput)
	}
	_, cfg := i.svc.Snapshot()
	if input.WorkDuration > 0 {
		cfg.WorkDuration = input.WorkDuration
	}
	if input.BreakDuration > 0 {
		cfg.BreakDuration = input.BreakDuration
	}
	if input.LongBreakDuration > 0 {
		cfg.LongBreakDuration = input.LongBreakDuration
	}
	if input.SessionsBeforeLongBreak > 0 {
		cfg.SessionsBeforeLongBreak = input.SessionsBeforeLongBreak
	}

	if err := cfg.Validate(); err != nil {
		return dto.StatusOutput{}, err
	}
	// A failed save must leave the running timer untouched.
	if i.settings != nil {
		settings, err := i.settings.Load(ctx)
		if err != nil {
			return dto.StatusOutput{}, err
		}
		settings.Timer = cfg
		if err := i.settings.Save(ctx, settings); err != nil {
			return dto.StatusOutput{}, err
		}
	}
	state, err := i.svc.Reconfigure(ctx, cfg)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	return ToStatus(state, cfg), nil
}

// ReloadSettings applies the stored timer config. It leaves the timer alone
// when the stored config matches the running one.
func (i *Interactor) ReloadSettings(ctx context.Context) (dto.StatusOutput, error) {
	if i.settings == nil {
		return i.Status(ctx)
	}
	settings, err := i.settings.Load(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	state, current := i.svc.Snapshot()
	if settings.Timer == current {
		return ToStatus(state, current), nil
	}
	state, err = i.svc.Reconfigure(ctx, settings.Timer)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	return ToStatus(state, settings.Timer), nil
}

func (i *Interactor) History(ctx context.Context, input dto.HistoryInput) ([]dto.SessionOutput, error) {
	if input.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperrors.ErrInvalidInput)
	}
	limit := input.Limit
	if limit == 0 {
		limit = service.DefaultHistoryLimit
	}
	sessions, err := i.svc.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, dto.SessionOutput{
			ID:          s.ID,
			Kind:        string(s.Kind),
			Mode:        string(s.Mode),
			Duration:    s.Duration,
			CompletedAt: s.CompletedAt,
		})
	}
	return out, nil
}

func (i *Interactor) Today(ctx context.Context) (dto.TodayOutput, error) {
	day := startOfDay(i.clock.Now())
	focused, count, _, err := i.svc.FocusedSince(ctx, day)
	if err != nil {
		return dto.TodayOutput{}, err
	}
	return dto.TodayOutput{Date: day, Focused: focused, WorkSessions: count}, nil
}

// Export writes today's sessions to the journal.
func (i *Interactor) Export(ctx context.Context) (dto.ExportOutput, error) {
	if i.journal == nil {
		return dto.ExportOutput{}, fmt.Errorf("%w: journal is not configured", apperrors.ErrInvalidInput)
	}
	day := startOfDay(i.clock.Now())
	_, _, sessions, err := i.svc.FocusedSince(ctx, day)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	path, err := i.journal.Write(ctx, day, sessions)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{Path: path, Sessions: len(sessions)}, nil
}

func (i *Interactor) status(state domain.State, err error) (dto.StatusOutput, error) {
	if err != nil {
		return dto.StatusOutput{}, err
	}
	_, cfg := i.svc.Snapshot()
	return ToStatus(state, cfg), nil
}

// ToStatus maps a machine snapshot to its presentation form.
func ToStatus(state domain.State, cfg domain.Config) dto.StatusOutput {
	return dto.StatusOutput{
		Mode:                    string(state.Mode),
		Label:                   state.Mode.Label(),
		Remaining:               state.Remaining,
		Clock:                   domain.FormatClock(state.Remaining),
		ProgressPercent:         state.Progress(cfg) * 100,
		Running:                 state.Running,
		CompletedWorkSessions:   state.CompletedWorkSessions,
		WorkDuration:            cfg.WorkDuration,
		BreakDuration:           cfg.BreakDuration,
		LongBreakDuration:       cfg.LongBreakDuration,
		SessionsBeforeLongBreak: cfg.SessionsBeforeLongBreak,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
