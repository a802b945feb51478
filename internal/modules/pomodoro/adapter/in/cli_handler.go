package in

import (
	"context"
	"time"

	"pomo/internal/modules/pomodoro/dto"
	pomodoroin "pomo/internal/modules/pomodoro/port/in"
)

type CLIHandler struct {
	usecase pomodoroin.Usecase
}

func NewCLIHandler(usecase pomodoroin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Pause(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Toggle(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Toggle(ctx)
}

func (h CLIHandler) Skip(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Skip(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Tick(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Tick(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

// Configure takes minutes for the durations; zero keeps the current value.
func (h CLIHandler) Configure(ctx context.Context, workMinutes, breakMinutes, longMinutes, every int) (dto.StatusOutput, error) {
	return h.usecase.Configure(ctx, dto.ConfigureInput{
		WorkDuration:            time.Duration(workMinutes) * time.Minute,
		BreakDuration:           time.Duration(breakMinutes) * time.Minute,
		LongBreakDuration:       time.Duration(longMinutes) * time.Minute,
		SessionsBeforeLongBreak: every,
	})
}

func (h CLIHandler) ReloadSettings(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.ReloadSettings(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]dto.SessionOutput, error) {
	return h.usecase.History(ctx, dto.HistoryInput{Limit: limit})
}

func (h CLIHandler) Today(ctx context.Context) (dto.TodayOutput, error) {
	return h.usecase.Today(ctx)
}

func (h CLIHandler) Export(ctx context.Context) (dto.ExportOutput, error) {
	return h.usecase.Export(ctx)
}
