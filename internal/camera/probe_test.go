package camera

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProbeFunc(t *testing.T) {
	calls := 0
	p := ProbeFunc(func(context.Context) bool {
		calls++
		return false
	})
	assert.False(t, p.Probe(context.Background()))
	assert.Equal(t, 1, calls)
	assert.True(t, AlwaysGranted.Probe(context.Background()))
}

func TestDeviceProber_MissingDevice(t *testing.T) {
	p := NewDeviceProber(filepath.Join(t.TempDir(), "video0"), zap.NewNop())
	assert.False(t, p.Probe(context.Background()))
}

func TestDeviceProber_NoMatches(t *testing.T) {
	p := NewDeviceProber("", zap.NewNop())
	p.pattern = filepath.Join(t.TempDir(), "video*")
	assert.False(t, p.Probe(context.Background()))
}

func TestDeviceProber_NotACaptureDevice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "video0")
	require.NoError(t, os.WriteFile(path, []byte("not a device"), 0o600))

	p := NewDeviceProber("", zap.NewNop())
	p.pattern = filepath.Join(dir, "video*")
	assert.False(t, p.Probe(context.Background()))
}

func TestDeviceProber_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video0"), nil, 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewDeviceProber(filepath.Join(dir, "video0"), zap.NewNop())
	assert.False(t, p.Probe(ctx))
}
