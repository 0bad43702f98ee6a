package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Window.Width != def.Window.Width || cfg.App.Name != def.App.Name {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vesper.toml")
	body := `
[app]
name = "demo"
log_level = "warn"

[window]
width = 640
height = 480

[renderer]
validation = false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Name != "demo" || cfg.Window.Width != 640 || cfg.Window.Height != 480 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Renderer.Validation {
		t.Error("validation should be disabled by the file")
	}
	if cfg.Renderer.VertexSPV != Default().Renderer.VertexSPV {
		t.Errorf("unset fields should keep defaults, got %q", cfg.Renderer.VertexSPV)
	}
}

func TestLoadRejectsZeroWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vesper.toml")
	if err := os.WriteFile(path, []byte("[window]\nwidth = 0\nheight = 720\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("zero window width must be rejected")
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vesper.toml")
	if err := os.WriteFile(path, []byte("[window\nwidth ="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed TOML must be rejected")
	}
}
