package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/core"
)

type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	Handle      vk.Swapchain
	Extent      vk.Extent2D
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	// Multisampled color target resolved into the swapchain image.
	ColorAttachment *VulkanImage
	DepthAttachment *VulkanImage

	// framebuffers used for on-screen rendering, one per swapchain image.
	Framebuffers []*VulkanFramebuffer
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// chooseSurfaceFormat prefers B8G8R8A8 sRGB with a non-linear sRGB color
// space, falling back to the first reported format.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox; FIFO is always available.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's fixed extent when it reports one,
// otherwise clamps the framebuffer size into the supported range.
func chooseExtent(capabilities vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampU32(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clampU32(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

// chooseImageCount requests one image beyond the minimum, capped by
// maxImageCount when the surface reports a bound.
func chooseImageCount(minImageCount, maxImageCount uint32) uint32 {
	count := minImageCount + 1
	if maxImageCount > 0 && count > maxImageCount {
		count = maxImageCount
	}
	return count
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SwapchainCreate builds the swapchain, its image views and the MSAA color
// and depth targets. Framebuffers are generated separately once the render
// pass exists.
func SwapchainCreate(context *VulkanContext, width uint32, height uint32) (*VulkanSwapchain, error) {
	swapchain, err := createSwapchain(context, width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrSwapchainBuildFailure, err.Error())
	}
	return swapchain, nil
}

func createSwapchain(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	device := context.Device
	if err := DeviceQuerySwapchainSupport(device.PhysicalDevice, context.Surface, &device.SwapchainSupport); err != nil {
		return nil, err
	}
	support := &device.SwapchainSupport

	swapchain := &VulkanSwapchain{
		ImageFormat: chooseSurfaceFormat(support.Formats),
		Extent:      chooseExtent(support.Capabilities, width, height),
	}
	presentMode := choosePresentMode(support.PresentModes)
	imageCount := chooseImageCount(support.Capabilities.MinImageCount, support.Capabilities.MaxImageCount)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}

	if device.GraphicsQueueIndex != device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(device.GraphicsQueueIndex),
			uint32(device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateSwapchainKHR: %s", ResultString(res))
	}
	swapchain.Handle = swapchainHandle

	if res := vk.GetSwapchainImages(device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		return nil, fmt.Errorf("failed to get swapchain images: %s", ResultString(res))
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		return nil, fmt.Errorf("failed to get swapchain images: %s", ResultString(res))
	}

	for i := 0; i < int(swapchain.ImageCount); i++ {
		view, err := ImageViewCreate(context, swapchain.Images[i], swapchain.ImageFormat.Format,
			vk.ImageAspectFlags(vk.ImageAspectColorBit), 1)
		if err != nil {
			return nil, err
		}
		swapchain.Views[i] = view
	}

	// MSAA color target, resolved at end of subpass.
	colorAttachment, err := ImageCreate(
		context,
		swapchain.Extent.Width,
		swapchain.Extent.Height,
		1,
		device.MsaaSamples,
		swapchain.ImageFormat.Format,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransientAttachmentBit|vk.ImageUsageColorAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}
	swapchain.ColorAttachment = colorAttachment

	depthAttachment, err := ImageCreate(
		context,
		swapchain.Extent.Width,
		swapchain.Extent.Height,
		1,
		device.MsaaSamples,
		device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return nil, err
	}
	swapchain.DepthAttachment = depthAttachment

	core.LogInfo("Swapchain created: %dx%d, %d images", swapchain.Extent.Width, swapchain.Extent.Height, swapchain.ImageCount)
	return swapchain, nil
}

// RegenerateFramebuffers binds (msaaColor, depth, swapchainView) for every
// swapchain image. Image count and framebuffer count stay equal.
func (vs *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.Framebuffers = make([]*VulkanFramebuffer, vs.ImageCount)
	for i := 0; i < int(vs.ImageCount); i++ {
		attachments := []vk.ImageView{
			vs.ColorAttachment.View,
			vs.DepthAttachment.View,
			vs.Views[i],
		}
		framebuffer, err := FramebufferCreate(context, renderpass, vs.Extent.Width, vs.Extent.Height, attachments)
		if err != nil {
			return err
		}
		vs.Framebuffers[i] = framebuffer
	}
	return nil
}

// AcquireNextImageIndex wraps vkAcquireNextImageKHR; the caller interprets
// the result code.
func (vs *VulkanSwapchain) AcquireNextImageIndex(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore) (uint32, vk.Result) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNS,
		imageAvailableSemaphore, vk.Fence(vk.NullHandle), &imageIndex)
	return imageIndex, result
}

// Present queues the image for presentation and reports the raw result.
func (vs *VulkanSwapchain) Present(presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}
	return vk.QueuePresent(presentQueue, &presentInfo)
}

// SwapchainDestroy tears down in strict order: framebuffers, views, color
// target, depth target, swapchain. The caller waits for device idle first.
func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	for _, framebuffer := range vs.Framebuffers {
		framebuffer.Destroy(context)
	}
	vs.Framebuffers = nil

	for i := 0; i < int(vs.ImageCount); i++ {
		vk.DestroyImageView(context.Device.LogicalDevice, vs.Views[i], context.Allocator)
	}
	vs.Views = nil

	vs.ColorAttachment.ImageDestroy(context)
	vs.DepthAttachment.ImageDestroy(context)

	vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
	vs.Handle = nil
}
