package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/renderer/metadata"
)

// bufferGraveyard parks buffers retired by geometry rebuilds until every
// frame that could still reference them has finished. Buffers buried in slot
// N are collected when slot N comes up for reuse.
type bufferGraveyard struct {
	slots [MaxFramesInFlight][]*VulkanBuffer
}

func (g *bufferGraveyard) Bury(slot int, buffers ...*VulkanBuffer) {
	for _, b := range buffers {
		if b != nil {
			g.slots[slot] = append(g.slots[slot], b)
		}
	}
}

// Collect returns and clears the slot's pending buffers.
func (g *bufferGraveyard) Collect(slot int) []*VulkanBuffer {
	pending := g.slots[slot]
	g.slots[slot] = nil
	return pending
}

func (g *bufferGraveyard) Pending(slot int) int {
	return len(g.slots[slot])
}

// freeSlotIndex is the slot whose deferred buffers are safe to destroy once
// currentFrame has advanced: the one furthest from being in flight.
func freeSlotIndex(currentFrame int) int {
	return (currentFrame + 1) % MaxFramesInFlight
}

// FrameSlot bundles the synchronization and per-frame uniform state for one
// in-flight frame. The uniform buffers stay host-mapped for their lifetime.
type FrameSlot struct {
	ImageAvailable vk.Semaphore
	RenderFinished vk.Semaphore
	InFlight       *VulkanFence
	CommandBuffer  *VulkanCommandBuffer
	GlobalUBO      *VulkanBuffer
	InstanceUBO    *VulkanBuffer
}

func NewFrameSlot(context *VulkanContext, pool vk.CommandPool) (*FrameSlot, error) {
	slot := &FrameSlot{}

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var imageAvailable, renderFinished vk.Semaphore
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &imageAvailable); res != vk.Success {
		return nil, fmt.Errorf("failed to create image-available semaphore: %s", ResultString(res))
	}
	slot.ImageAvailable = imageAvailable
	if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &renderFinished); res != vk.Success {
		slot.Destroy(context, pool)
		return nil, fmt.Errorf("failed to create render-finished semaphore: %s", ResultString(res))
	}
	slot.RenderFinished = renderFinished

	fence, err := NewFence(context, true)
	if err != nil {
		slot.Destroy(context, pool)
		return nil, err
	}
	slot.InFlight = fence

	cb, err := NewCommandBuffer(context, pool, true)
	if err != nil {
		slot.Destroy(context, pool)
		return nil, err
	}
	slot.CommandBuffer = cb

	uniformFlags := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	global, err := BufferCreate(context, vk.DeviceSize(metadata.GlobalUBOSize),
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), uniformFlags)
	if err != nil {
		slot.Destroy(context, pool)
		return nil, err
	}
	slot.GlobalUBO = global
	if err := global.Map(context); err != nil {
		slot.Destroy(context, pool)
		return nil, err
	}

	instance, err := BufferCreate(context, vk.DeviceSize(metadata.InstanceUBOSize),
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), uniformFlags)
	if err != nil {
		slot.Destroy(context, pool)
		return nil, err
	}
	slot.InstanceUBO = instance
	if err := instance.Map(context); err != nil {
		slot.Destroy(context, pool)
		return nil, err
	}

	return slot, nil
}

// WriteGlobalUBO copies this frame's view and projection into the mapped
// uniform buffer.
func (s *FrameSlot) WriteGlobalUBO(ubo *metadata.GlobalUBO) {
	s.GlobalUBO.LoadData(ubo.Bytes())
}

func (s *FrameSlot) WriteInstanceUBO(ubo *metadata.InstanceUBO) {
	s.InstanceUBO.LoadData(ubo.Bytes())
}

func (s *FrameSlot) Destroy(context *VulkanContext, pool vk.CommandPool) {
	if s.InstanceUBO != nil {
		s.InstanceUBO.Destroy(context)
		s.InstanceUBO = nil
	}
	if s.GlobalUBO != nil {
		s.GlobalUBO.Destroy(context)
		s.GlobalUBO = nil
	}
	if s.CommandBuffer != nil && s.CommandBuffer.Handle != nil {
		s.CommandBuffer.Free(context, pool)
		s.CommandBuffer = nil
	}
	if s.InFlight != nil {
		s.InFlight.Destroy(context)
		s.InFlight = nil
	}
	if s.RenderFinished != nil {
		vk.DestroySemaphore(context.Device.LogicalDevice, s.RenderFinished, context.Allocator)
		s.RenderFinished = nil
	}
	if s.ImageAvailable != nil {
		vk.DestroySemaphore(context.Device.LogicalDevice, s.ImageAvailable, context.Allocator)
		s.ImageAvailable = nil
	}
}
