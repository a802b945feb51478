package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	pomodoroinadapter "pomo/internal/modules/pomodoro/adapter/in"
	pomodorooutadapter "pomo/internal/modules/pomodoro/adapter/out"
	pomodoroout "pomo/internal/modules/pomodoro/port/out"
	pomodoroservice "pomo/internal/modules/pomodoro/service"
	pomodorousecase "pomo/internal/modules/pomodoro/usecase"
	"pomo/internal/platform/clock"
	"pomo/internal/platform/config"
	"pomo/internal/platform/id"
	"pomo/internal/platform/logging"
	uiapp "pomo/internal/ui/app"
)

const defaultNtfyServer = "https://ntfy.sh"

// Options tune how the app is assembled.
type Options struct {
	// LogLevel overrides the level stored in settings when non-empty.
	LogLevel string
	// LogToFile sends logs to the data dir instead of stderr; the TUI owns the terminal.
	LogToFile    bool
	TickInterval time.Duration
}

type App struct {
	Config   config.Config
	TimerCLI pomodoroinadapter.CLIHandler
	Service  *pomodoroservice.TimerService
	Watcher  *pomodoroinadapter.SettingsWatcher
	Logger   *zap.Logger

	closers []io.Closer
}

func New(cfg config.Config, opts Options) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	clk := clock.SystemClock{}

	settingsStore := pomodorooutadapter.NewYAMLSettingsStore(cfg.SettingsPath)
	settings, err := settingsStore.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	level := settings.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	var logger *zap.Logger
	if opts.LogToFile {
		logger, err = logging.New(level, cfg.LogPath)
	} else {
		logger, err = logging.New(level)
	}
	if err != nil {
		return nil, err
	}

	sessionStore, err := pomodorooutadapter.NewSQLiteSessionStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new session store: %w", err)
	}

	svc, err := pomodoroservice.NewTimerService(
		settings.Timer,
		clk,
		id.UUID{},
		sessionStore,
		newNotifier(settings, logger),
		logger,
		pomodoroservice.Options{TickInterval: opts.TickInterval},
	)
	if err != nil {
		return nil, fmt.Errorf("new timer service: %w", err)
	}
	var closers []io.Closer
	if c, ok := sessionStore.(io.Closer); ok {
		closers = append(closers, c)
	}
	uc := pomodorousecase.NewInteractor(svc, settingsStore, pomodorooutadapter.NewMarkdownJournal(cfg.JournalDir), clk)

	return &App{
		Config:   cfg,
		TimerCLI: pomodoroinadapter.NewCLIHandler(uc),
		Service:  svc,
		Watcher:  pomodoroinadapter.NewSettingsWatcher(uc, settingsStore.Path(), logger),
		Logger:   logger,
		closers:  closers,
	}, nil
}

func newNotifier(settings pomodoroout.Settings, logger *zap.Logger) pomodoroout.Notifier {
	notifiers := pomodorooutadapter.MultiNotifier{pomodorooutadapter.NewLogNotifier(logger)}
	if settings.NtfyTopic != "" {
		server := settings.NtfyURL
		if server == "" {
			server = defaultNtfyServer
		}
		notifiers = append(notifiers, pomodorooutadapter.NewNtfyNotifier(server, settings.NtfyTopic))
	}
	return notifiers
}

// Close releases observers and storage and flushes the logger.
func (a *App) Close() {
	a.Service.Close()
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.Logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

// RunTUI runs the interactive UI until the user quits. The UI drives the
// timer itself; the settings watcher runs alongside it.
func RunTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := app.Service.Subscribe(64)
	notices := make(chan uiapp.Notice, 16)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Watcher.Run(gctx) })
	g.Go(func() error {
		forwardNotices(gctx, events, notices)
		return nil
	})

	program := tea.NewProgram(uiapp.NewModel(app.TimerCLI, notices), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}

// forwardNotices turns timer events into UI notices. A notification that
// follows a session completion is flagged so the UI can refresh history.
func forwardNotices(ctx context.Context, events <-chan pomodoroservice.Event, notices chan<- uiapp.Notice) {
	completed := false
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case pomodoroservice.EventSessionComplete:
				completed = true
			case pomodoroservice.EventNotification:
				select {
				case notices <- uiapp.Notice{Message: event.Message, Completed: completed}:
				case <-ctx.Done():
					return
				}
				completed = false
			}
		}
	}
}

// RunHeadless starts the timer and keeps it cycling without a UI. It returns
// when ctx is cancelled or, if cycles > 0, once that many work sessions have
// completed. Notifications are echoed to out.
func RunHeadless(ctx context.Context, app *App, cycles int, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := app.Service.Subscribe(64)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return app.Service.Cycle(gctx, cycles)
	})
	g.Go(func() error { return app.Watcher.Run(gctx) })
	g.Go(func() error {
		echoNotifications(gctx, events, out)
		return nil
	})

	if _, err := app.Service.Start(gctx); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}
	return g.Wait()
}

// echoNotifications prints notifications until ctx is done, then drains what
// is already buffered.
func echoNotifications(ctx context.Context, events <-chan pomodoroservice.Event, out io.Writer) {
	echo := func(event pomodoroservice.Event) {
		if event.Type == pomodoroservice.EventNotification {
			_, _ = fmt.Fprintf(out, "%s  %s\n", event.At.Format("15:04:05"), event.Message)
		}
	}
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case event, ok := <-events:
					if !ok {
						return
					}
					echo(event)
				default:
					return
				}
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			echo(event)
		}
	}
}
