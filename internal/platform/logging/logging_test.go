package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"pomo/internal/platform/logging"
)

func TestNewHonoursLevel(t *testing.T) {
	t.Parallel()
	logger, err := logging.New("warn")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()
	_, err := logging.New("loud")
	require.Error(t, err)
}

func TestNewWritesToGivenPath(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pomo.log")
	logger, err := logging.New("info", path)
	require.NoError(t, err)
	logger.Info("session completed")
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"msg":"session completed"`)
}
