package in

import (
	"context"

	"pomo/internal/modules/pomodoro/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.StatusOutput, error)
	Pause(ctx context.Context) (dto.StatusOutput, error)
	Toggle(ctx context.Context) (dto.StatusOutput, error)
	Skip(ctx context.Context) (dto.StatusOutput, error)
	Reset(ctx context.Context) (dto.StatusOutput, error)
	Tick(ctx context.Context) (dto.StatusOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	Configure(ctx context.Context, input dto.ConfigureInput) (dto.StatusOutput, error)
	ReloadSettings(ctx context.Context) (dto.StatusOutput, error)
	History(ctx context.Context, input dto.HistoryInput) ([]dto.SessionOutput, error)
	Today(ctx context.Context) (dto.TodayOutput, error)
	Export(ctx context.Context) (dto.ExportOutput, error)
}
