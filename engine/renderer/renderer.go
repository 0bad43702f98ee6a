package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/vesper3d/vesper/engine/platform"
	"github.com/vesper3d/vesper/engine/renderer/metadata"
	"github.com/vesper3d/vesper/engine/renderer/vulkan"
)

// Backend is the surface the engine drives each frame. Vulkan is the only
// implementation; the seam exists so tests and future backends can stand in.
type Backend interface {
	Initialize() error
	DrawFrame(view, projection mgl32.Mat4) error
	ImportMesh(mesh *metadata.Mesh)
	UploadTexture(pixels *metadata.TexturePixels) (uint32, error)
	OnResized(width, height uint32)
	Shutdown() error
}

// Renderer is a thin facade over the active backend.
type Renderer struct {
	backend Backend
}

func New(p *platform.Platform, options vulkan.Options) *Renderer {
	return &Renderer{
		backend: vulkan.New(p, options),
	}
}

// NewWithBackend wires a custom backend, used by tests.
func NewWithBackend(backend Backend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize() error {
	return r.backend.Initialize()
}

func (r *Renderer) DrawFrame(view, projection mgl32.Mat4) error {
	return r.backend.DrawFrame(view, projection)
}

func (r *Renderer) ImportMesh(mesh *metadata.Mesh) {
	r.backend.ImportMesh(mesh)
}

func (r *Renderer) UploadTexture(pixels *metadata.TexturePixels) (uint32, error) {
	return r.backend.UploadTexture(pixels)
}

func (r *Renderer) OnResized(width, height uint32) {
	r.backend.OnResized(width, height)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}
