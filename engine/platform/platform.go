package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
	bus    *core.EventBus
}

func New(bus *core.EventBus) (*Platform, error) {
	return &Platform{bus: bus}, nil
}

func (p *Platform) Startup(applicationName string, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	if !glfw.VulkanSupported() {
		return fmt.Errorf("glfw reports no Vulkan loader on this system")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to initialize vulkan bindings: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create window: %w", err)
	}
	p.Window = window

	p.Window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		p.bus.Fire(core.EVENT_CODE_RESIZED, p, core.EventContext{
			U32: [4]uint32{uint32(width), uint32(height)},
		})
	})
	p.Window.SetCloseCallback(func(w *glfw.Window) {
		p.bus.Fire(core.EVENT_CODE_APPLICATION_QUIT, p, core.EventContext{})
	})

	return nil
}

// RequiredExtensionNames returns the instance extensions the windowing layer
// needs for presentation.
func (p *Platform) RequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateSurface creates the presentation surface for the given instance.
func (p *Platform) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, fmt.Errorf("failed to create window surface: %w", err)
	}
	return vk.SurfaceFromPointer(surface), nil
}

// FramebufferSize returns the current framebuffer dimensions in pixels.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// WaitWhileMinimized blocks until the framebuffer has a non-zero area,
// pumping window events while it waits.
func (p *Platform) WaitWhileMinimized() {
	w, h := p.Window.GetFramebufferSize()
	for w == 0 || h == 0 {
		glfw.WaitEvents()
		w, h = p.Window.GetFramebufferSize()
	}
}

func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
	}
	glfw.Terminate()
	return nil
}
