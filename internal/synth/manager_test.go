package synth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writePlugin(t *testing.T, dir, name, manifest string) {
	t.Helper()

	pluginDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()

	writePlugin(t, tmpDir, "console-synth", `{
		"name": "console-synth",
		"version": "1.0.0",
		"description": "Prints notes to the terminal",
		"executable": "run.sh"
	}`)
	writePlugin(t, tmpDir, "drum-machine", `{
		"name": "drum-machine",
		"version": "0.2.0",
		"executable": "drums",
		"voices": ["Drums"]
	}`)

	m := NewManager(tmpDir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(m.List()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(m.List()))
	}

	p, err := m.Get("console-synth")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Executable != filepath.Join(tmpDir, "console-synth", "run.sh") {
		t.Errorf("executable path = %q", p.Executable)
	}

	drums, _ := m.Get("drum-machine")
	if len(drums.Manifest.Voices) != 1 || drums.Manifest.Voices[0] != "Drums" {
		t.Errorf("voices = %v, want [Drums]", drums.Manifest.Voices)
	}
}

func TestManager_DiscoverSkipsBrokenManifests(t *testing.T) {
	tmpDir := t.TempDir()

	writePlugin(t, tmpDir, "good", `{"name": "good", "executable": "run.sh"}`)
	writePlugin(t, tmpDir, "broken", `{not json`)

	// A directory without a manifest is not a plugin
	if err := os.MkdirAll(filepath.Join(tmpDir, "empty"), 0755); err != nil {
		t.Fatal(err)
	}

	m := NewManager(tmpDir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(m.List()) != 1 {
		t.Errorf("expected 1 plugin, got %d", len(m.List()))
	}
}

func TestManager_DiscoverMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "does-not-exist"))
	if err := m.Discover(); err != nil {
		t.Errorf("missing plugin dir should not be an error, got %v", err)
	}
	if len(m.List()) != 0 {
		t.Errorf("expected no plugins, got %d", len(m.List()))
	}
}

func TestManager_GetNotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Get("nope"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestPlugin_WantsVoice(t *testing.T) {
	all := &Plugin{Manifest: Manifest{Name: "all"}}
	if !all.wantsVoice("Piano") {
		t.Error("plugin with no voice filter should accept every instrument")
	}

	drums := &Plugin{Manifest: Manifest{Name: "drums", Voices: []string{"Drums", "Bass"}}}
	if !drums.wantsVoice("Bass") {
		t.Error("expected Bass to be accepted")
	}
	if drums.wantsVoice("Piano") {
		t.Error("expected Piano to be filtered out")
	}
}
