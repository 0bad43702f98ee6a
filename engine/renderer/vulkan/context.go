package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/core"
)

// VulkanContext holds the handles shared by every renderer component. It is
// owned by the VulkanRenderer and passed by reference; there is no
// process-wide instance.
type VulkanContext struct {
	// The framebuffer's current width and height, updated from resize events.
	FramebufferWidth  uint32
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugCallback vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass
	Pipeline       *VulkanPipeline

	CommandPools *CommandPoolRegistry
	Descriptors  *DescriptorAllocator
}

// FindMemoryIndex returns the index of a memory type matching the filter and
// property flags, or -1 when none qualifies.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
