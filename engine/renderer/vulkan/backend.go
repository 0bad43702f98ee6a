package vulkan

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/containers"
	"github.com/vesper3d/vesper/engine/core"
	"github.com/vesper3d/vesper/engine/platform"
	"github.com/vesper3d/vesper/engine/renderer/metadata"
)

const (
	graphicsPoolName  = "graphics"
	uploadPoolName    = "upload"
	meshQueueCapacity = 256
)

// Options configures renderer initialization.
type Options struct {
	AppName            string
	Width              uint32
	Height             uint32
	Validation         bool
	VertexShaderPath   string
	FragmentShaderPath string

	// Overlay, when set, records extra draw commands inside the render
	// pass after the scene, with viewport and scissor already bound.
	Overlay func(cb vk.CommandBuffer)
}

// VulkanRenderer owns the whole Vulkan state: instance through pipeline,
// per-frame slots, the coalesced geometry store and loaded textures. All
// GPU work runs on the goroutine calling DrawFrame; ImportMesh and
// UploadTexture may be called from any goroutine.
type VulkanRenderer struct {
	platform *platform.Platform
	context  *VulkanContext
	options  Options

	FrameNumber  uint64
	currentFrame int

	frames    [MaxFramesInFlight]*FrameSlot
	graveyard bufferGraveyard
	geometry  GeometryStore

	textureMu sync.Mutex
	textures  []*VulkanTexture

	// Serialises command recording on the upload pool; the graphics pool
	// is touched only by the goroutine calling DrawFrame.
	uploadMu sync.Mutex

	meshQueue *containers.RingQueue[*metadata.Mesh]

	partSets map[*metadata.MeshPart][]vk.DescriptorSet

	resizeMu        sync.Mutex
	resizeRequested bool
	pendingWidth    uint32
	pendingHeight   uint32
}

func New(p *platform.Platform, options Options) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		options:  options,
		context: &VulkanContext{
			FramebufferWidth:  options.Width,
			FramebufferHeight: options.Height,
		},
		partSets:  make(map[*metadata.MeshPart][]vk.DescriptorSet),
		meshQueue: containers.NewRingQueue[*metadata.Mesh](meshQueueCapacity),
	}
}

func (vr *VulkanRenderer) Initialize() error {
	if err := createInstance(vr.context, vr.options.AppName, vr.platform.RequiredExtensionNames(), vr.options.Validation); err != nil {
		return err
	}

	if vr.options.Validation {
		if err := createDebugger(vr.context); err != nil {
			return err
		}
	}

	surface, err := vr.platform.CreateSurface(vr.context.Instance)
	if err != nil {
		return err
	}
	vr.context.Surface = surface

	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	swapchain, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return err
	}
	vr.context.Swapchain = swapchain

	renderpass, err := RenderpassCreate(vr.context)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = renderpass

	if err := swapchain.RegenerateFramebuffers(vr.context, renderpass); err != nil {
		return err
	}

	vr.context.Descriptors, err = NewDescriptorAllocator(vr.context)
	if err != nil {
		return err
	}

	vertStage, err := NewShaderStage(vr.context, vr.options.VertexShaderPath, vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	fragStage, err := NewShaderStage(vr.context, vr.options.FragmentShaderPath, vk.ShaderStageFragmentBit)
	if err != nil {
		vertStage.Destroy(vr.context)
		return err
	}

	pipeline, err := NewGraphicsPipeline(vr.context, renderpass, vr.context.Descriptors.Layout,
		[]vk.PipelineShaderStageCreateInfo{vertStage.ShaderStageCreateInfo, fragStage.ShaderStageCreateInfo})
	vertStage.Destroy(vr.context)
	fragStage.Destroy(vr.context)
	if err != nil {
		return err
	}
	vr.context.Pipeline = pipeline

	vr.context.CommandPools = NewCommandPoolRegistry()
	pool, err := vr.context.CommandPools.Get(vr.context, graphicsPoolName)
	if err != nil {
		return err
	}

	for i := 0; i < MaxFramesInFlight; i++ {
		slot, err := NewFrameSlot(vr.context, pool)
		if err != nil {
			return err
		}
		vr.frames[i] = slot
	}

	core.LogInfo("renderer initialized: %dx%d, %d frames in flight",
		vr.context.FramebufferWidth, vr.context.FramebufferHeight, MaxFramesInFlight)
	return nil
}

// UploadTexture transfers pixels to the GPU and returns the texture's index
// for use in mesh parts. The first uploaded texture acts as the fallback.
// Records on its own command pool, so any goroutine may call it.
func (vr *VulkanRenderer) UploadTexture(pixels *metadata.TexturePixels) (uint32, error) {
	vr.uploadMu.Lock()
	pool, err := vr.context.CommandPools.Get(vr.context, uploadPoolName)
	if err != nil {
		vr.uploadMu.Unlock()
		return 0, err
	}
	texture, err := TextureCreate(vr.context, pool, pixels)
	vr.uploadMu.Unlock()
	if err != nil {
		return 0, err
	}

	vr.textureMu.Lock()
	defer vr.textureMu.Unlock()
	vr.textures = append(vr.textures, texture)
	return uint32(len(vr.textures) - 1), nil
}

// textureAt returns the texture at index, the fallback texture for an
// unknown index, or nil when nothing has been uploaded yet.
func (vr *VulkanRenderer) textureAt(index uint32) *VulkanTexture {
	vr.textureMu.Lock()
	defer vr.textureMu.Unlock()
	if len(vr.textures) == 0 {
		return nil
	}
	if int(index) < len(vr.textures) {
		return vr.textures[index]
	}
	return vr.textures[0]
}

// ImportMesh queues a mesh for upload at the start of the next frame. Safe
// to call from any goroutine, including job pool workers.
func (vr *VulkanRenderer) ImportMesh(mesh *metadata.Mesh) {
	if err := vr.meshQueue.Enqueue(mesh); err != nil {
		core.LogWarn("mesh %q dropped: import queue is full", mesh.Name)
	}
}

// OnResized records the new framebuffer dimensions. Repeated calls before
// the next frame coalesce into a single swapchain rebuild.
func (vr *VulkanRenderer) OnResized(width, height uint32) {
	vr.resizeMu.Lock()
	defer vr.resizeMu.Unlock()
	vr.resizeRequested = true
	vr.pendingWidth = width
	vr.pendingHeight = height
}

func (vr *VulkanRenderer) takeResize() (bool, uint32, uint32) {
	vr.resizeMu.Lock()
	defer vr.resizeMu.Unlock()
	requested := vr.resizeRequested
	vr.resizeRequested = false
	return requested, vr.pendingWidth, vr.pendingHeight
}

// DrawFrame renders one frame with the given view and projection. Returns
// nil on frames skipped for swapchain rebuilds.
func (vr *VulkanRenderer) DrawFrame(view, projection mgl32.Mat4) error {
	vr.FrameNumber++
	vr.currentFrame = int(vr.FrameNumber % MaxFramesInFlight)
	slot := vr.frames[vr.currentFrame]

	for _, buffer := range vr.graveyard.Collect(freeSlotIndex(vr.currentFrame)) {
		buffer.Destroy(vr.context)
	}

	if !slot.InFlight.Wait(vr.context, math.MaxUint64) {
		return fmt.Errorf("frame %d: %w", vr.FrameNumber, core.ErrDeviceLost)
	}

	imageIndex, res := vr.context.Swapchain.AcquireNextImageIndex(vr.context, math.MaxUint64, slot.ImageAvailable)
	switch res {
	case vk.ErrorOutOfDate:
		return vr.recreateSwapchain()
	case vk.Success, vk.Suboptimal:
	default:
		return fmt.Errorf("failed to acquire swapchain image: %s: %w", ResultString(res), core.ErrDeviceLost)
	}

	globalUBO := metadata.GlobalUBO{View: view, Projection: projection}
	slot.WriteGlobalUBO(&globalUBO)
	instanceUBO := metadata.InstanceUBO{Model: mgl32.Ident4()}
	slot.WriteInstanceUBO(&instanceUBO)

	if err := vr.drainMeshQueue(); err != nil {
		return err
	}

	if err := slot.InFlight.Reset(vr.context); err != nil {
		return err
	}

	if err := vr.recordCommands(slot, imageIndex); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{slot.ImageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{slot.CommandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.RenderFinished},
	}

	err := vr.context.Device.WithGraphicsQueue(func(queue vk.Queue) error {
		if res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, slot.InFlight.Handle); res != vk.Success {
			return fmt.Errorf("queue submit failed: %s: %w", ResultString(res), core.ErrDeviceLost)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slot.CommandBuffer.UpdateSubmitted()

	res = vr.present(slot, imageIndex)
	resized, _, _ := vr.takeResize()
	switch {
	case res == vk.ErrorOutOfDate || res == vk.Suboptimal || resized:
		return vr.recreateSwapchain()
	case res != vk.Success:
		return fmt.Errorf("queue present failed: %s: %w", ResultString(res), core.ErrDeviceLost)
	}

	return nil
}

func (vr *VulkanRenderer) present(slot *FrameSlot, imageIndex uint32) vk.Result {
	device := vr.context.Device
	if device.PresentQueueIndex == device.GraphicsQueueIndex {
		res := vk.Success
		err := device.WithGraphicsQueue(func(vk.Queue) error {
			res = vr.context.Swapchain.Present(device.PresentQueue, slot.RenderFinished, imageIndex)
			return nil
		})
		if err != nil {
			return vk.ErrorDeviceLost
		}
		return res
	}
	return vr.context.Swapchain.Present(device.PresentQueue, slot.RenderFinished, imageIndex)
}

// drainMeshQueue uploads any meshes imported since the previous frame and
// parks the retired geometry buffers for deferred destruction.
func (vr *VulkanRenderer) drainMeshQueue() error {
	pending := vr.meshQueue.Drain()
	if len(pending) == 0 {
		return nil
	}

	pool, err := vr.context.CommandPools.Get(vr.context, graphicsPoolName)
	if err != nil {
		return err
	}

	meshes := append(append([]*metadata.Mesh{}, vr.geometry.Meshes...), pending...)
	retired, err := vr.geometry.Rebuild(vr.context, pool, meshes)
	if err != nil {
		return err
	}
	vr.graveyard.Bury(vr.currentFrame, retired...)

	for _, mesh := range pending {
		for _, part := range mesh.Parts {
			if err := vr.allocatePartSets(part); err != nil {
				return err
			}
		}
		core.LogInfo("mesh %q uploaded: %d parts, %d vertices, %d indices",
			mesh.Name, len(mesh.Parts), mesh.VertexCount(), mesh.IndexCount())
	}
	return nil
}

func (vr *VulkanRenderer) allocatePartSets(part *metadata.MeshPart) error {
	texture := vr.textureAt(part.TextureIndex)
	if texture == nil {
		core.LogWarn("part %q not bound: no textures uploaded yet", part.Name)
		return nil
	}
	sets, err := vr.context.Descriptors.AllocateSets(vr.context, MaxFramesInFlight)
	if err != nil {
		return err
	}
	for i, set := range sets {
		vr.context.Descriptors.UpdateSet(vr.context, set,
			vr.frames[i].GlobalUBO, vr.frames[i].InstanceUBO,
			texture.Image.View, texture.Sampler)
	}
	vr.partSets[part] = sets
	return nil
}

func (vr *VulkanRenderer) recordCommands(slot *FrameSlot, imageIndex uint32) error {
	cb := slot.CommandBuffer
	cb.Reset()
	if err := cb.Begin(false, false, false); err != nil {
		return err
	}

	extent := vr.context.Swapchain.Extent
	vr.context.MainRenderpass.RenderpassBegin(cb, vr.context.Swapchain.Framebuffers[imageIndex].Handle, extent)

	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})

	scissor := vk.Rect2D{Extent: extent}
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.Pipeline.Bind(cb)

	if vr.geometry.VertexBuffer != nil {
		vr.geometry.Bind(cb)
		for _, mesh := range vr.geometry.Meshes {
			for _, part := range mesh.Parts {
				sets, ok := vr.partSets[part]
				if !ok {
					continue
				}
				vk.CmdBindDescriptorSets(cb.Handle, vk.PipelineBindPointGraphics,
					vr.context.Pipeline.PipelineLayout, 0, 1,
					[]vk.DescriptorSet{sets[vr.currentFrame]}, 0, nil)
				vk.CmdDrawIndexed(cb.Handle, part.IndexCount, 1, part.IndexOffset, int32(part.VertexOffset), 0)
			}
		}
	}

	if vr.options.Overlay != nil {
		vr.options.Overlay(cb.Handle)
	}

	vr.context.MainRenderpass.RenderpassEnd(cb)
	return cb.End()
}

// recreateSwapchain rebuilds the swapchain and framebuffers after a resize
// or an out-of-date result. Blocks while the window is minimized.
func (vr *VulkanRenderer) recreateSwapchain() error {
	vr.platform.WaitWhileMinimized()

	width, height := vr.platform.FramebufferSize()
	vr.context.FramebufferWidth = width
	vr.context.FramebufferHeight = height

	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	vr.context.Swapchain.SwapchainDestroy(vr.context)

	swapchain, err := SwapchainCreate(vr.context, width, height)
	if err != nil {
		return err
	}
	vr.context.Swapchain = swapchain

	if err := swapchain.RegenerateFramebuffers(vr.context, vr.context.MainRenderpass); err != nil {
		return err
	}

	core.LogDebug("swapchain recreated: %dx%d", width, height)
	return nil
}

func (vr *VulkanRenderer) Shutdown() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	for slot := 0; slot < MaxFramesInFlight; slot++ {
		for _, buffer := range vr.graveyard.Collect(slot) {
			buffer.Destroy(vr.context)
		}
	}

	for part, sets := range vr.partSets {
		vr.context.Descriptors.FreeSets(vr.context, sets)
		delete(vr.partSets, part)
	}

	vr.textureMu.Lock()
	for _, texture := range vr.textures {
		texture.Destroy(vr.context)
	}
	vr.textures = nil
	vr.textureMu.Unlock()

	vr.geometry.Destroy(vr.context)

	pool, _ := vr.context.CommandPools.Get(vr.context, graphicsPoolName)
	for i, slot := range vr.frames {
		if slot != nil {
			slot.Destroy(vr.context, pool)
			vr.frames[i] = nil
		}
	}

	if vr.context.Pipeline != nil {
		vr.context.Pipeline.Destroy(vr.context)
	}
	if vr.context.Descriptors != nil {
		vr.context.Descriptors.Destroy(vr.context)
	}
	if vr.context.MainRenderpass != nil {
		vr.context.MainRenderpass.RenderpassDestroy(vr.context)
	}
	if vr.context.Swapchain != nil {
		vr.context.Swapchain.SwapchainDestroy(vr.context)
	}
	if vr.context.CommandPools != nil {
		vr.context.CommandPools.Destroy(vr.context)
	}

	DeviceDestroy(vr.context)

	if vr.options.Validation {
		destroyDebugger(vr.context)
	}
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}
	if vr.context.Instance != nil {
		vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)
		vr.context.Instance = nil
	}

	core.LogInfo("renderer shut down after %d frames", vr.FrameNumber)
	return nil
}
