package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKernelConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadKernelConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.ConfigureOnLoad)
	assert.True(t, cfg.IgnoreMissingFiles)
	assert.False(t, cfg.SaveProps)
	assert.Equal(t, ".xml", cfg.SaveFileExtension)
	assert.Equal(t, time.Millisecond, cfg.SchedulerTickFloor)
}

func TestLoadKernelConfig_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "kernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
save_props: true
save_file_prefix: "snapshot-"
scheduler_tick_floor: 2ms
`), 0o644))

	cfg, err := LoadKernelConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.SaveProps)
	assert.Equal(t, "snapshot-", cfg.SaveFilePrefix)
	assert.Equal(t, 2*time.Millisecond, cfg.SchedulerTickFloor)
}

func TestLoadKernelConfig_EnvOverride(t *testing.T) {
	t.Setenv("RTKERNEL_SAVE_PROPS", "true")
	cfg, err := LoadKernelConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.SaveProps)
}
