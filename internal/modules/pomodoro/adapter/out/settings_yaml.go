package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pomo/internal/modules/pomodoro/domain"
	pomodoroout "pomo/internal/modules/pomodoro/port/out"
)

const DefaultLogLevel = "info"

type yamlSettings struct {
	WorkMinutes             int      `yaml:"work_minutes"`
	BreakMinutes            int      `yaml:"break_minutes"`
	LongBreakMinutes        int      `yaml:"long_break_minutes"`
	SessionsBeforeLongBreak int      `yaml:"sessions_before_long_break"`
	Ntfy                    yamlNtfy `yaml:"ntfy,omitempty"`
	LogLevel                string   `yaml:"log_level,omitempty"`
}

type yamlNtfy struct {
	URL   string `yaml:"url,omitempty"`
	Topic string `yaml:"topic,omitempty"`
}

type YAMLSettingsStore struct {
	path string
}

func NewYAMLSettingsStore(path string) pomodoroout.SettingsStore {
	return &YAMLSettingsStore{path: path}
}

func DefaultSettings() pomodoroout.Settings {
	return pomodoroout.Settings{Timer: domain.DefaultConfig(), LogLevel: DefaultLogLevel}
}

func (s *YAMLSettingsStore) Path() string { return s.path }

// Load reads settings from YAML. A missing file yields the defaults.
func (s *YAMLSettingsStore) Load(_ context.Context) (pomodoroout.Settings, error) {
	settings := DefaultSettings()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}
	applyYAMLSettings(&settings, fileData)
	return settings, nil
}

func (s *YAMLSettingsStore) Save(_ context.Context, settings pomodoroout.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	fileData := yamlSettings{
		WorkMinutes:             minutes(settings.Timer.WorkDuration),
		BreakMinutes:            minutes(settings.Timer.BreakDuration),
		LongBreakMinutes:        minutes(settings.Timer.LongBreakDuration),
		SessionsBeforeLongBreak: settings.Timer.SessionsBeforeLongBreak,
		Ntfy:                    yamlNtfy{URL: settings.NtfyURL, Topic: settings.NtfyTopic},
		LogLevel:                settings.LogLevel,
	}
	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if err := os.WriteFile(s.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// minutes rounds up so that a sub-minute duration never persists as zero.
func minutes(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}

func applyYAMLSettings(settings *pomodoroout.Settings, fileData yamlSettings) {
	if fileData.WorkMinutes > 0 {
		settings.Timer.WorkDuration = time.Duration(fileData.WorkMinutes) * time.Minute
	}
	if fileData.BreakMinutes > 0 {
		settings.Timer.BreakDuration = time.Duration(fileData.BreakMinutes) * time.Minute
	}
	if fileData.LongBreakMinutes > 0 {
		settings.Timer.LongBreakDuration = time.Duration(fileData.LongBreakMinutes) * time.Minute
	}
	if fileData.SessionsBeforeLongBreak > 0 {
		settings.Timer.SessionsBeforeLongBreak = fileData.SessionsBeforeLongBreak
	}
	if fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
	settings.NtfyURL = fileData.Ntfy.URL
	settings.NtfyTopic = fileData.Ntfy.Topic
}
