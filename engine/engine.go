package engine

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vesper3d/vesper/engine/assets"
	"github.com/vesper3d/vesper/engine/config"
	"github.com/vesper3d/vesper/engine/core"
	"github.com/vesper3d/vesper/engine/jobs"
	"github.com/vesper3d/vesper/engine/platform"
	"github.com/vesper3d/vesper/engine/renderer"
	"github.com/vesper3d/vesper/engine/renderer/components"
	"github.com/vesper3d/vesper/engine/renderer/vulkan"
)

// Engine wires the platform, renderer, asset pipeline and job pool together
// and drives the frame loop.
type Engine struct {
	config   *config.Config
	bus      *core.EventBus
	platform *platform.Platform
	renderer *renderer.Renderer
	jobs     *jobs.Pool
	watcher  *assets.Watcher
	camera   *components.Camera
	clock    *core.Clock
	stats    *core.FrameStats

	isRunning   bool
	isSuspended bool
	subs        []core.Subscription
}

func New(cfg *config.Config) (*Engine, error) {
	core.SetLogLevel(cfg.App.LogLevel)

	bus := core.NewEventBus()
	p, err := platform.New(bus)
	if err != nil {
		return nil, err
	}

	pool, err := jobs.NewPool(cfg.Jobs.Workers, cfg.Jobs.QueueSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:   cfg,
		bus:      bus,
		platform: p,
		jobs:     pool,
		camera:   components.NewCamera(),
		clock:    core.NewClock(),
		stats:    core.NewFrameStats(),
	}, nil
}

func (e *Engine) Initialize() error {
	if err := e.platform.Startup(e.config.App.Name, e.config.Window.Width, e.config.Window.Height); err != nil {
		return err
	}

	e.renderer = renderer.New(e.platform, vulkan.Options{
		AppName:            e.config.App.Name,
		Width:              e.config.Window.Width,
		Height:             e.config.Window.Height,
		Validation:         e.config.Renderer.Validation,
		VertexShaderPath:   e.config.Renderer.VertexSPV,
		FragmentShaderPath: e.config.Renderer.FragSPV,
	})
	if err := e.renderer.Initialize(); err != nil {
		return err
	}

	// Texture index 0 is the fallback for parts without a material.
	if _, err := e.renderer.UploadTexture(assets.DefaultTexturePixels()); err != nil {
		return err
	}
	for _, path := range e.config.Assets.Textures {
		pixels, err := assets.LoadTexturePixels(path)
		if err != nil {
			core.LogWarn("skipping texture %q: %v", path, err)
			continue
		}
		index, err := e.renderer.UploadTexture(pixels)
		if err != nil {
			return err
		}
		core.LogInfo("texture %q uploaded at index %d", pixels.Name, index)
	}

	e.subs = append(e.subs,
		e.bus.Subscribe(core.EVENT_CODE_APPLICATION_QUIT, e.onQuit),
		e.bus.Subscribe(core.EVENT_CODE_RESIZED, e.onResized),
		e.bus.Subscribe(core.EVENT_CODE_MODEL_IMPORTED, e.onModelImported),
	)

	for _, path := range e.config.Assets.Preload {
		e.importModel(path)
	}

	watcher, err := assets.NewWatcher(e.config.Assets.WatchDir, e.importModel)
	if err != nil {
		return err
	}
	e.watcher = watcher
	if err := e.watcher.Start(); err != nil {
		return err
	}

	e.isRunning = true
	return nil
}

// importModel parses the model off the frame loop and hands the result to
// the renderer, which uploads it at the start of the next frame.
func (e *Engine) importModel(path string) {
	name := filepath.Base(path)
	e.jobs.Submit(jobs.Task{
		Name: fmt.Sprintf("import %s", name),
		Run: func() error {
			mesh, err := assets.ImportOBJ(path)
			if err != nil {
				return err
			}
			e.renderer.ImportMesh(mesh)
			e.bus.Fire(core.EVENT_CODE_MODEL_IMPORTED, e, core.EventContext{Str: mesh.Name})
			return nil
		},
	})
}

func (e *Engine) Run() error {
	e.clock.Start()

	for e.isRunning {
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}

		elapsed := e.clock.Tick()

		if e.isSuspended {
			continue
		}

		width, height := e.platform.FramebufferSize()
		if width == 0 || height == 0 {
			continue
		}
		aspect := float32(width) / float32(height)
		projection := mgl32.Perspective(mgl32.DegToRad(45.0), aspect, vulkan.ZNear, vulkan.ZFar)
		// GL to Vulkan clip space: Y points down.
		projection[5] *= -1

		if err := e.renderer.DrawFrame(e.camera.View(), projection); err != nil {
			return err
		}

		e.stats.Update(elapsed.Seconds())
	}

	return nil
}

func (e *Engine) Shutdown() error {
	e.clock.Stop()

	if e.watcher != nil {
		e.watcher.Shutdown()
	}
	if e.jobs != nil {
		if err := e.jobs.Shutdown(); err != nil {
			core.LogError("job pool shutdown: %v", err)
		}
	}
	for _, sub := range e.subs {
		e.bus.Unsubscribe(sub)
	}
	if e.renderer != nil {
		if err := e.renderer.Shutdown(); err != nil {
			return err
		}
	}
	return e.platform.Shutdown()
}

// Stats exposes the frame counters for the sandbox overlay.
func (e *Engine) Stats() *core.FrameStats {
	return e.stats
}

func (e *Engine) Camera() *components.Camera {
	return e.camera
}

func (e *Engine) onQuit(code core.EventCode, sender interface{}, data core.EventContext) bool {
	core.LogInfo("quit requested, shutting down")
	e.isRunning = false
	return true
}

func (e *Engine) onResized(code core.EventCode, sender interface{}, data core.EventContext) bool {
	width := data.U32[0]
	height := data.U32[1]

	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming")
		e.isSuspended = false
	}

	e.renderer.OnResized(width, height)
	return false
}

func (e *Engine) onModelImported(code core.EventCode, sender interface{}, data core.EventContext) bool {
	core.LogInfo("model %q imported, fps %.1f, frame %.2fms", data.Str, e.stats.FPS(), e.stats.AvgFrameMS())
	return false
}
