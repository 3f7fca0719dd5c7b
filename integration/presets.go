// Package integration bundles storage profiles for the escrow ledger.
// A preset names a backend and its cache sizing so operators pick a
// profile with --db.preset instead of tuning individual knobs.
package integration

import (
	"fmt"
	"path/filepath"

	"github.com/Neverland-Money/go-escrow/escrowdb"
)

// Backend identifiers understood by OpenStore.
const (
	BackendMemory      = "memory"
	BackendBadger      = "badger"
	BackendBadgerInMem = "badger-inmem"
)

// PresetConfig captures the storage parameters that vary across profiles.
type PresetConfig struct {
	Name    string // profile identifier, surfaced in logs and config dumps
	Backend string // memory | badger | badger-inmem
	CacheMB int    // memory budget for the backend's caches, 0 keeps defaults
}

// DefaultPreset is the balanced persistent profile.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:    "default",
		Backend: BackendBadger,
		CacheMB: 512,
	}
}

// MemoryPreset holds everything in a plain map. State is lost on exit;
// meant for fakenet simulations and tests.
func MemoryPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "memory"
	cfg.Backend = BackendMemory
	cfg.CacheMB = 0
	return cfg
}

// LitePreset runs Badger without touching disk. It exercises the real
// backend's code paths with a small cache, which suits CI and disposable
// environments.
func LitePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "lite"
	cfg.Backend = BackendBadgerInMem
	cfg.CacheMB = 64
	return cfg
}

// ArchivePreset sizes the persistent backend for read-heavy historical
// queries: checkpoint histories only ever grow, and supply replays walk
// them week by week.
func ArchivePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "archive"
	cfg.Backend = BackendBadger
	cfg.CacheMB = 2048
	return cfg
}

// GetPresetByName looks up a profile by its identifier, enabling CLI
// flags like --db.preset=lite.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "memory":
		return MemoryPreset(), nil
	case "lite":
		return LitePreset(), nil
	case "archive":
		return ArchivePreset(), nil
	case "default":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: memory, lite, archive, default)", name)
	}
}

// ApplyPreset merges a profile into an existing config, overriding only
// the fields the preset sets.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.Name != "" {
		target.Name = preset.Name
	}
	if preset.Backend != "" {
		target.Backend = preset.Backend
	}
	if preset.CacheMB > 0 {
		target.CacheMB = preset.CacheMB
	}
}

// OpenStore opens the backend the profile names. Persistent backends live
// under <datadir>/escrowdb.
func OpenStore(cfg PresetConfig, datadir string) (escrowdb.Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return escrowdb.NewMemory(), nil
	case BackendBadgerInMem:
		return escrowdb.OpenBadgerInMemory()
	case BackendBadger:
		return escrowdb.OpenBadger(filepath.Join(datadir, "escrowdb"), cfg.CacheMB)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
