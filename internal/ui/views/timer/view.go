package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"pomo/internal/modules/pomodoro/dto"
	"pomo/internal/ui/theme"
)

// Model renders the countdown. It holds no timer logic of its own; the app
// model feeds it every status it receives.
type Model struct {
	status  dto.StatusOutput
	today   dto.TodayOutput
	bar     progress.Model
	barMode string
	width   int
	height  int
}

func New() Model {
	return Model{bar: newBar("work")}
}

func newBar(mode string) progress.Model {
	bar := progress.New(
		progress.WithSolidFill(string(theme.ModeColor(mode))),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(theme.Surface1)
	bar.Width = 40
	return bar
}

func (m *Model) SetStatus(status dto.StatusOutput) {
	if status.Mode != m.barMode {
		width := m.bar.Width
		m.bar = newBar(status.Mode)
		m.bar.Width = width
		m.barMode = status.Mode
	}
	m.status = status
}

func (m *Model) SetToday(today dto.TodayOutput) { m.today = today }

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	barWidth := width - 8
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 10 {
		barWidth = 10
	}
	m.bar.Width = barWidth
}

func (m Model) Status() dto.StatusOutput { return m.status }

func (m Model) View() string {
	s := m.status
	accent := lipgloss.NewStyle().Foreground(theme.ModeColor(s.Mode)).Bold(true)

	state := "paused"
	if s.Running {
		state = "running"
	}

	var sb strings.Builder
	sb.WriteString(accent.Render(s.Label) + "\n\n")
	sb.WriteString(accent.Render(s.Clock) + "  " + theme.Muted.Render(state) + "\n\n")
	sb.WriteString(m.bar.ViewAs(s.ProgressPercent/100) + "\n\n")
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("sessions:   "), s.CompletedWorkSessions))
	sb.WriteString(theme.Muted.Render("next long:  ") + m.untilLongBreak() + "\n")
	sb.WriteString(theme.Muted.Render("durations:  ") + fmt.Sprintf("%s / %s / %s",
		span(s.WorkDuration), span(s.BreakDuration), span(s.LongBreakDuration)) + "\n")
	sb.WriteString(theme.Muted.Render("today:      ") + fmt.Sprintf("%s focused in %d sessions",
		span(m.today.Focused), m.today.WorkSessions) + "\n")
	sb.WriteString("\n" + theme.Muted.Render("space: start/pause  n: skip  r: reset"))

	pane := theme.Pane.BorderForeground(theme.ModeColor(s.Mode)).Render(sb.String())
	if m.width == 0 || m.height == 0 {
		return pane
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, pane)
}

func (m Model) untilLongBreak() string {
	every := m.status.SessionsBeforeLongBreak
	if every <= 0 {
		return "-"
	}
	left := every - m.status.CompletedWorkSessions%every
	if left == 1 {
		return "after this session"
	}
	return fmt.Sprintf("in %d sessions", left)
}

func span(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}
	return d.String()
}
