// Package integration bundles runtime presets for the registry node.
// A preset names a coherent set of resource settings (cache size, GC
// mode, DB layout) so operators pick a profile with --preset instead of
// tuning individual flags.
package integration

import "fmt"

// PresetConfig captures the tunables that vary across profiles. Fields
// that never differ between deployments (network IDs, contract
// addresses) are deliberately absent.
type PresetConfig struct {
	Name           string // preset identifier ("lite", "default", "full", "archive")
	CacheMB        int    // memory allocated to DB and state caches
	GCMode         string // "light", "full" or "archive"
	DBPreset       string // database layout identifier
	EnableMetrics  bool
	EnableTracing  bool
	EnableLightKDF bool // faster, weaker key derivation for keystores
}

// DefaultPreset is the balanced profile most nodes run with.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:     "default",
		CacheMB:  1024,
		GCMode:   "full",
		DBPreset: "ldb-1",
	}
}

// LitePreset trades durability and keystore strength for a small
// footprint. Meant for laptops, CI and disposable fake-network nodes;
// never run production keys with light KDF.
func LitePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "lite"
	cfg.CacheMB = 256
	cfg.GCMode = "archive"
	cfg.DBPreset = "lite"
	cfg.EnableMetrics = true
	cfg.EnableLightKDF = true
	return cfg
}

// FullPreset is the production profile: large caches, pruning on,
// metrics and tracing exposed.
func FullPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "full"
	cfg.CacheMB = 4096
	cfg.EnableMetrics = true
	cfg.EnableTracing = true
	return cfg
}

// ArchivePreset keeps complete history for explorers and analytics
// backends. Disk usage grows without bound.
func ArchivePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "archive"
	cfg.CacheMB = 8192
	cfg.GCMode = "archive"
	cfg.DBPreset = "pbl-1"
	cfg.EnableMetrics = true
	cfg.EnableTracing = true
	return cfg
}

// GetPresetByName resolves a --preset flag value to its profile.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "lite":
		return LitePreset(), nil
	case "full":
		return FullPreset(), nil
	case "archive":
		return ArchivePreset(), nil
	case "default":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: lite, full, archive, default)", name)
	}
}

// ApplyPreset merges a preset into target. Non-zero preset fields win;
// boolean toggles are always taken from the preset.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.CacheMB > 0 {
		target.CacheMB = preset.CacheMB
	}
	if preset.GCMode != "" {
		target.GCMode = preset.GCMode
	}
	if preset.DBPreset != "" {
		target.DBPreset = preset.DBPreset
	}
	target.EnableMetrics = preset.EnableMetrics
	target.EnableTracing = preset.EnableTracing
	target.EnableLightKDF = preset.EnableLightKDF
	if preset.Name != "" {
		target.Name = preset.Name
	}
}
