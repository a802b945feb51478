package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pomo/internal/modules/pomodoro/dto"
	"pomo/internal/ui/components"
	"pomo/internal/ui/theme"
	historyview "pomo/internal/ui/views/history"
	timerview "pomo/internal/ui/views/timer"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type timerPort interface {
	Toggle(ctx context.Context) (dto.StatusOutput, error)
	Start(ctx context.Context) (dto.StatusOutput, error)
	Pause(ctx context.Context) (dto.StatusOutput, error)
	Skip(ctx context.Context) (dto.StatusOutput, error)
	Reset(ctx context.Context) (dto.StatusOutput, error)
	Tick(ctx context.Context) (dto.StatusOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	Configure(ctx context.Context, workMinutes, breakMinutes, longMinutes, every int) (dto.StatusOutput, error)
	History(ctx context.Context, limit int) ([]dto.SessionOutput, error)
	Today(ctx context.Context) (dto.TodayOutput, error)
	Export(ctx context.Context) (dto.ExportOutput, error)
}

// Notice is a user-facing message raised by the timer. Completed marks
// notices that follow a finished session.
type Notice struct {
	Message   string
	Completed bool
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimer tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Timer", "History"}

const (
	tickInterval  = time.Second
	toastDuration = 4 * time.Second
)

// ─── async messages ───────────────────────────────────────────────────────────

type statusMsg struct {
	status dto.StatusOutput
	err    error
}

type clockTickMsg time.Time

type noticeMsg Notice

type noticesClosedMsg struct{}

type clearToastMsg struct{ seq int }

type exportedMsg struct {
	out dto.ExportOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Toggle  key.Binding
	Skip    key.Binding
	Reset   key.Binding
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/pause")),
		Skip:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Skip, k.Reset, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Skip, k.Reset},
		{k.Tab, k.Palette},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay,
// the command palette and toasts. It is also the clock in interactive mode:
// every second it ticks the timer while it is running.
type Model struct {
	timer   timerPort
	notices <-chan Notice

	timerView   timerview.Model
	historyView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	toast     string
	toastSeq  int
	width     int
	height    int
}

// NewModel wires the TUI to the timer. notices may be nil.
func NewModel(timer timerPort, notices <-chan Notice) Model {
	return Model{
		timer:       timer,
		notices:     notices,
		timerView:   timerview.New(),
		historyView: historyview.New(timer),
		activeTab:   tabTimer,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.statusCmd(m.timer.Status),
		m.historyView.Init(),
		tickEvery(),
		m.waitNoticeCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Clock and timer messages must keep flowing while the palette is open.
	switch msg := msg.(type) {
	case clockTickMsg:
		cmds = append(cmds, tickEvery())
		if m.timerView.Status().Running {
			cmds = append(cmds, m.statusCmd(m.timer.Tick))
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		if msg.err != nil {
			m.status = "timer: " + msg.err.Error()
			return m, nil
		}
		m.timerView.SetStatus(msg.status)
		return m, nil

	case noticeMsg:
		cmds = append(cmds, m.showToast(msg.Message), m.waitNoticeCmd())
		if msg.Completed {
			cmds = append(cmds, m.historyView.Reload())
		}
		return m, tea.Batch(cmds...)

	case noticesClosedMsg:
		m.notices = nil
		return m, nil

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case historyview.LoadedMsg:
		if msg.Err == nil {
			m.timerView.SetToday(msg.Today)
		}
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("exported %d sessions to %s", msg.out.Sessions, msg.out.Path)
		}
		return m, nil
	}

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.activeTab = (m.activeTab + 1) % tabCount
			if m.activeTab == tabHistory {
				cmds = append(cmds, m.historyView.Reload())
			}
		case msg.String() == "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Toggle):
			return m, m.statusCmd(m.timer.Toggle)
		case key.Matches(msg, m.keys.Skip):
			return m, m.statusCmd(m.timer.Skip)
		case key.Matches(msg, m.keys.Reset):
			return m, m.statusCmd(m.timer.Reset)
		}
	}

	if m.activeTab == tabHistory {
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabHistory:
		content = m.historyView.View()
	default:
		content = m.timerView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "pomo  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.toast != "" {
		left = theme.Hot.Render("● " + m.toast)
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "start":
		return m, m.statusCmd(m.timer.Start)
	case "pause":
		return m, m.statusCmd(m.timer.Pause)
	case "skip":
		return m, m.statusCmd(m.timer.Skip)
	case "reset":
		return m, m.statusCmd(m.timer.Reset)
	case "export":
		return m, m.exportCmd()
	case "work", "break", "long", "every":
		if len(parts) != 2 {
			m.status = "usage: " + parts[0] + " <n>"
			return m, nil
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			m.status = "expected a positive number, got " + parts[1]
			return m, nil
		}
		var w, b, l, e int
		switch parts[0] {
		case "work":
			w = n
		case "break":
			b = n
		case "long":
			l = n
		case "every":
			e = n
		}
		m.status = "settings updated"
		return m, m.statusCmd(func(ctx context.Context) (dto.StatusOutput, error) {
			return m.timer.Configure(ctx, w, b, l, e)
		})
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	contentH := m.height - 3
	m.timerView.SetSize(m.width, contentH)
	m.historyView, _ = m.historyView.Update(tea.WindowSizeMsg{Width: m.width, Height: contentH})
}

func (m *Model) showToast(message string) tea.Cmd {
	m.toastSeq++
	m.toast = message
	seq := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return clearToastMsg{seq: seq} })
}

// ─── async commands ───────────────────────────────────────────────────────────

func tickEvery() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

func (m Model) statusCmd(call func(context.Context) (dto.StatusOutput, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := call(context.Background())
		return statusMsg{status: status, err: err}
	}
}

func (m Model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.timer.Export(context.Background())
		return exportedMsg{out: out, err: err}
	}
}

func (m Model) waitNoticeCmd() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	ch := m.notices
	return func() tea.Msg {
		notice, ok := <-ch
		if !ok {
			return noticesClosedMsg{}
		}
		return noticeMsg(notice)
	}
}
