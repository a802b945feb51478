package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "pomo"

type Config struct {
	DataDir      string
	DBPath       string
	SettingsPath string
	JournalDir   string
	LogPath      string
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "pomo.db"),
		SettingsPath: filepath.Join(dataDir, "settings.yaml"),
		JournalDir:   filepath.Join(dataDir, "journal"),
		LogPath:      filepath.Join(dataDir, "pomo.log"),
	}, nil
}

// DefaultDataDir resolves the per-user directory pomo keeps its files in.
func DefaultDataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}
