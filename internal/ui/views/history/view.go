package history

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pomo/internal/modules/pomodoro/dto"
	"pomo/internal/ui/theme"
)

const pageSize = 10

type HistoryPort interface {
	History(ctx context.Context, limit int) ([]dto.SessionOutput, error)
	Today(ctx context.Context) (dto.TodayOutput, error)
}

type LoadedMsg struct {
	Sessions []dto.SessionOutput
	Today    dto.TodayOutput
	Err      error
}

type sessionItem struct {
	session dto.SessionOutput
}

func (i sessionItem) Title() string {
	return fmt.Sprintf("%s  %s", i.session.CompletedAt.Local().Format("Jan 02 15:04"), modeLabel(i.session.Mode))
}

func (i sessionItem) Description() string {
	d := i.session.Duration
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d min %s", int(d/time.Minute), i.session.Kind)
	}
	return fmt.Sprintf("%s %s", d, i.session.Kind)
}

func (i sessionItem) FilterValue() string { return i.session.Mode }

type Model struct {
	port   HistoryPort
	list   list.Model
	today  dto.TodayOutput
	err    error
	width  int
	height int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Recent sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("session", "sessions")

	return Model{port: port, list: l}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Reload fetches the latest sessions and today's total.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		ctx := context.Background()
		sessions, err := m.port.History(ctx, pageSize)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		today, err := m.port.Today(ctx)
		return LoadedMsg{Sessions: sessions, Today: today, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-2, 1))
		return m, nil
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.today = msg.Today
		items := make([]list.Item, len(msg.Sessions))
		for i, s := range msg.Sessions {
			items[i] = sessionItem{session: s}
		}
		return m, m.list.SetItems(items)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	summary := theme.Hot.Render(fmt.Sprintf("Today: %d min focused", int(m.today.Focused/time.Minute))) +
		theme.Muted.Render(fmt.Sprintf("  (%d work sessions)", m.today.WorkSessions))
	if m.err != nil {
		summary = theme.Muted.Render("history unavailable: " + m.err.Error())
	}
	body := m.list.View()
	if len(m.list.Items()) == 0 && m.err == nil {
		body = theme.Muted.Render("No sessions yet")
	}
	return lipgloss.JoinVertical(lipgloss.Left, summary, "", body)
}

// Len reports how many sessions are listed.
func (m Model) Len() int { return len(m.list.Items()) }

func modeLabel(mode string) string {
	switch mode {
	case "work":
		return "Focus Time"
	case "short_break":
		return "Short Break"
	case "long_break":
		return "Long Break"
	}
	return mode
}
