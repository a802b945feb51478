package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	pomodoroout "pomo/internal/modules/pomodoro/port/out"
)

const notificationTitle = "pomo"

// LogNotifier writes timer messages to the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) pomodoroout.Notifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, message string) error {
	n.logger.Info(message, zap.String("source", "timer"))
	return nil
}

// NtfyNotifier pushes timer messages to an ntfy server.
type NtfyNotifier struct {
	server     string
	topic      string
	httpClient *http.Client
}

func NewNtfyNotifier(server, topic string) pomodoroout.Notifier {
	return &NtfyNotifier{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *NtfyNotifier) Notify(ctx context.Context, message string) error {
	if c.topic == "" {
		return fmt.Errorf("ntfy topic not configured")
	}
	payload := map[string]any{
		"topic":   c.topic,
		"title":   notificationTitle,
		"message": message,
		"tags":    []string{"tomato"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal ntfy payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+"/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create ntfy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}

// MultiNotifier delivers to every notifier and joins their errors.
type MultiNotifier []pomodoroout.Notifier

func (m MultiNotifier) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
