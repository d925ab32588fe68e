package integration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresetProfiles(t *testing.T) {
	require := require.New(t)

	def := DefaultPreset()
	require.Equal("default", def.Name)
	require.False(def.EnableLightKDF)

	lite := LitePreset()
	require.Equal("lite", lite.Name)
	require.Less(lite.CacheMB, def.CacheMB)
	require.True(lite.EnableLightKDF)

	full := FullPreset()
	require.Equal("full", full.Name)
	require.Greater(full.CacheMB, def.CacheMB)
	require.Equal("full", full.GCMode)
	require.False(full.EnableLightKDF)

	archive := ArchivePreset()
	require.Equal("archive", archive.Name)
	require.Greater(archive.CacheMB, full.CacheMB)
	require.Equal("archive", archive.GCMode)
}

func TestGetPresetByName(t *testing.T) {
	require := require.New(t)

	for _, name := range []string{"lite", "default", "full", "archive"} {
		cfg, err := GetPresetByName(name)
		require.NoError(err)
		require.Equal(name, cfg.Name)
		require.Greater(cfg.CacheMB, 0)
	}

	for _, name := range []string{"", "unknown", "LITE", "Full"} {
		_, err := GetPresetByName(name)
		require.Error(err)
	}
}

func TestApplyPreset(t *testing.T) {
	require := require.New(t)

	target := PresetConfig{
		Name:           "custom",
		CacheMB:        512,
		GCMode:         "light",
		DBPreset:       "custom-db",
		EnableLightKDF: true,
	}
	ApplyPreset(&target, FullPreset())
	require.Equal(FullPreset(), target)

	// Zero-valued fields of a partial preset leave the target alone.
	target = DefaultPreset()
	ApplyPreset(&target, PresetConfig{CacheMB: 2048})
	require.Equal(2048, target.CacheMB)
	require.Equal("default", target.Name)
	require.Equal("full", target.GCMode)
}
