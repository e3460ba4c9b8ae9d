package cli

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "tripdesk/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TRIPDESK_CLI_TEST=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TRIPDESK_CLI_TEST") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("TRIPDESK_CLI_TEST"))
}

func TestBootstrap(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "error")

	cfg, logger, err := Bootstrap()
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Equal(t, "9090", cfg.Port)

	t.Setenv("PORT", "not-a-port")
	_, logger, err = Bootstrap()
	assert.Error(t, err)
	assert.NotNil(t, logger)
}

func TestSignalContext(t *testing.T) {
	ctx, cancel := SignalContext(context.Background(), applog.Discard())
	defer cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
}
