package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration, loaded from a TOML file.
type Config struct {
	App      App      `toml:"app"`
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Assets   Assets   `toml:"assets"`
	Jobs     Jobs     `toml:"jobs"`
}

type App struct {
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
}

type Window struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type Renderer struct {
	// Enables the validation layer and the debug callback.
	Validation bool   `toml:"validation"`
	VertexSPV  string `toml:"vertex_spv"`
	FragSPV    string `toml:"frag_spv"`
}

type Assets struct {
	// Directory watched for dropped .obj files.
	WatchDir string   `toml:"watch_dir"`
	Preload  []string `toml:"preload"`
	Textures []string `toml:"textures"`
}

type Jobs struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App: App{
			Name:     "Vesper Sandbox",
			LogLevel: "debug",
		},
		Window: Window{
			Width:  1280,
			Height: 720,
		},
		Renderer: Renderer{
			Validation: true,
			VertexSPV:  "bin/shaders/vert.spv",
			FragSPV:    "bin/shaders/frag.spv",
		},
		Assets: Assets{
			WatchDir: "assets/drop",
		},
		Jobs: Jobs{
			Workers:   4,
			QueueSize: 32,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Window.Width == 0 || cfg.Window.Height == 0 {
		return nil, fmt.Errorf("config %s: window dimensions must be non-zero", path)
	}
	if cfg.Jobs.Workers <= 0 {
		cfg.Jobs.Workers = Default().Jobs.Workers
	}
	return cfg, nil
}
