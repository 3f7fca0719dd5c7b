package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Neverland-Money/go-escrow/integration"
)

// These tests verify that the storage profiles behave correctly:
// - Each profile produces a distinct, internally consistent configuration
// - Helper functions (GetPresetByName, ApplyPreset) work correctly
// - OpenStore opens the backend a profile names, including reopening a
//   persistent store with its data intact

// TestDefaultPreset_hasReasonableDefaults acts as a regression guard: if
// the baseline profile changes, we want to know immediately.
func TestDefaultPreset_hasReasonableDefaults(t *testing.T) {
	cfg := integration.DefaultPreset()

	if cfg.Name != "default" {
		t.Fatalf("Name = %q, want 'default'", cfg.Name)
	}
	if cfg.Backend != integration.BackendBadger {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, integration.BackendBadger)
	}
	// Cache should be non-zero and reasonable (not too small, not excessive)
	if cfg.CacheMB <= 0 || cfg.CacheMB > 10000 {
		t.Fatalf("CacheMB = %d, want value between 1 and 10000", cfg.CacheMB)
	}
}

// TestPresets_haveDistinctValues verifies that the profiles are actually
// useful and not redundant.
func TestPresets_haveDistinctValues(t *testing.T) {
	memory := integration.MemoryPreset()
	lite := integration.LitePreset()
	archive := integration.ArchivePreset()
	def := integration.DefaultPreset()

	names := map[string]bool{
		memory.Name:  true,
		lite.Name:    true,
		archive.Name: true,
		def.Name:     true,
	}
	if len(names) != 4 {
		t.Fatalf("profiles should have unique names, got: %v", names)
	}

	// Only the memory profile avoids Badger entirely.
	if memory.Backend != integration.BackendMemory {
		t.Fatalf("memory Backend = %q, want %q", memory.Backend, integration.BackendMemory)
	}
	if lite.Backend != integration.BackendBadgerInMem {
		t.Fatalf("lite Backend = %q, want %q", lite.Backend, integration.BackendBadgerInMem)
	}
	if archive.Backend != integration.BackendBadger {
		t.Fatalf("archive Backend = %q, want %q", archive.Backend, integration.BackendBadger)
	}

	// Cache sizes scale with the profile's ambition: lite < default < archive.
	if lite.CacheMB >= def.CacheMB {
		t.Fatalf("lite cache (%d) should be smaller than default (%d)", lite.CacheMB, def.CacheMB)
	}
	if def.CacheMB >= archive.CacheMB {
		t.Fatalf("default cache (%d) should be smaller than archive (%d)", def.CacheMB, archive.CacheMB)
	}
}

// TestGetPresetByName_validPresets verifies the lookup for every profile
// the CLI accepts.
func TestGetPresetByName_validPresets(t *testing.T) {
	for _, name := range []string{"memory", "lite", "archive", "default"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := integration.GetPresetByName(name)
			if err != nil {
				t.Fatalf("GetPresetByName(%q) returned error: %v", name, err)
			}
			if cfg.Name != name {
				t.Fatalf("Preset name = %q, want %q", cfg.Name, name)
			}
			if cfg.Backend == "" {
				t.Fatalf("Preset %q has no backend", name)
			}
		})
	}
}

// TestGetPresetByName_invalidPreset verifies that unknown names are
// rejected. Lookups are case-sensitive.
func TestGetPresetByName_invalidPreset(t *testing.T) {
	invalidNames := []string{"unknown", "full", "", "MEMORY", "Lite"}

	for _, name := range invalidNames {
		t.Run(name, func(t *testing.T) {
			cfg, err := integration.GetPresetByName(name)
			if err == nil {
				t.Fatalf("GetPresetByName(%q) should return error, got config: %+v", name, cfg)
			}
			if err.Error() == "" {
				t.Fatal("error message should not be empty")
			}
		})
	}
}

// TestApplyPreset_overridesTarget verifies that a full profile replaces
// every field of the target.
func TestApplyPreset_overridesTarget(t *testing.T) {
	target := integration.PresetConfig{
		Name:    "custom",
		Backend: integration.BackendMemory,
		CacheMB: 7,
	}

	preset := integration.ArchivePreset()
	integration.ApplyPreset(&target, preset)

	if target.Name != preset.Name {
		t.Fatalf("Name not overridden: got %q, want %q", target.Name, preset.Name)
	}
	if target.Backend != preset.Backend {
		t.Fatalf("Backend not overridden: got %q, want %q", target.Backend, preset.Backend)
	}
	if target.CacheMB != preset.CacheMB {
		t.Fatalf("CacheMB not overridden: got %d, want %d", target.CacheMB, preset.CacheMB)
	}
}

// TestApplyPreset_partialOverride verifies that zero fields of a partial
// profile leave the target alone.
func TestApplyPreset_partialOverride(t *testing.T) {
	target := integration.DefaultPreset()
	originalName := target.Name
	originalBackend := target.Backend

	partial := integration.PresetConfig{CacheMB: 2048}
	integration.ApplyPreset(&target, partial)

	if target.CacheMB != 2048 {
		t.Fatalf("CacheMB should be overridden to 2048, got %d", target.CacheMB)
	}
	if target.Name != originalName {
		t.Fatalf("Name should remain %q, got %q", originalName, target.Name)
	}
	if target.Backend != originalBackend {
		t.Fatalf("Backend should remain %q, got %q", originalBackend, target.Backend)
	}
}

// TestPresets_areIdempotent verifies that the profile constructors have
// no hidden state.
func TestPresets_areIdempotent(t *testing.T) {
	if integration.MemoryPreset() != integration.MemoryPreset() {
		t.Fatal("MemoryPreset() should return identical results on multiple calls")
	}
	if integration.LitePreset() != integration.LitePreset() {
		t.Fatal("LitePreset() should return identical results on multiple calls")
	}
	if integration.ArchivePreset() != integration.ArchivePreset() {
		t.Fatal("ArchivePreset() should return identical results on multiple calls")
	}
	if integration.DefaultPreset() != integration.DefaultPreset() {
		t.Fatal("DefaultPreset() should return identical results on multiple calls")
	}
}

// TestOpenStore_volatileBackends verifies that the memory and in-memory
// Badger profiles open without a data directory and serve reads and
// writes.
func TestOpenStore_volatileBackends(t *testing.T) {
	for _, name := range []string{"memory", "lite"} {
		t.Run(name, func(t *testing.T) {
			preset, err := integration.GetPresetByName(name)
			if err != nil {
				t.Fatalf("GetPresetByName: %v", err)
			}
			db, err := integration.OpenStore(preset, "")
			if err != nil {
				t.Fatalf("OpenStore: %v", err)
			}
			defer db.Close()

			if err := db.Put([]byte("k"), []byte("v")); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := db.Get([]byte("k"))
			if err != nil || string(got) != "v" {
				t.Fatalf("Get = %q, %v; want 'v'", got, err)
			}
		})
	}
}

// TestOpenStore_badgerPersists verifies that the persistent profile
// writes under <datadir>/escrowdb and that a reopened store still holds
// the data.
func TestOpenStore_badgerPersists(t *testing.T) {
	datadir := t.TempDir()
	preset := integration.DefaultPreset()
	preset.CacheMB = 16

	db, err := integration.OpenStore(preset, datadir)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(datadir, "escrowdb")); err != nil {
		t.Fatalf("store directory missing: %v", err)
	}

	db, err = integration.OpenStore(preset, datadir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	got, err := db.Get([]byte("k"))
	if err != nil || string(got) != "v" {
		t.Fatalf("Get after reopen = %q, %v; want 'v'", got, err)
	}
}

// TestOpenStore_unknownBackend verifies the error path for a corrupted
// profile.
func TestOpenStore_unknownBackend(t *testing.T) {
	_, err := integration.OpenStore(integration.PresetConfig{Backend: "bogus"}, "")
	if err == nil {
		t.Fatal("OpenStore with unknown backend should fail")
	}
}
