package vulkan

import (
	"fmt"
	"sync"

	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device

	SwapchainSupport   VulkanSwapchainSupportInfo
	GraphicsQueueIndex int32
	PresentQueueIndex  int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
	MsaaSamples vk.SampleCountFlagBits

	// Serialises all graphics queue submits and waits; one-time command
	// helpers running on worker goroutines share this queue with the
	// frame scheduler.
	graphicsQueueMu sync.Mutex
}

// WithGraphicsQueue runs fn with exclusive access to the graphics queue.
func (d *VulkanDevice) WithGraphicsQueue(fn func(queue vk.Queue) error) error {
	d.graphicsQueueMu.Lock()
	defer d.graphicsQueueMu.Unlock()
	return fn(d.GraphicsQueue)
}

// deviceCandidate is everything suitability depends on, pre-queried so the
// selection rule itself is a pure function.
type deviceCandidate struct {
	name                  string
	graphicsFamily        int32
	presentFamily         int32
	hasSwapchainExtension bool
	formatCount           uint32
	presentModeCount      uint32
	samplerAnisotropy     bool
}

func (c deviceCandidate) suitable() bool {
	return c.graphicsFamily >= 0 &&
		c.presentFamily >= 0 &&
		c.hasSwapchainExtension &&
		c.formatCount > 0 &&
		c.presentModeCount > 0 &&
		c.samplerAnisotropy
}

// firstSuitable returns the index of the first suitable candidate, -1 when
// none qualifies. Ties are not broken; order is the enumeration order.
func firstSuitable(candidates []deviceCandidate) int {
	for i, c := range candidates {
		if c.suitable() {
			return i
		}
	}
	return -1
}

// pickSampleCount returns the largest power-of-two sample count supported
// by both masks, capped at 64.
func pickSampleCount(colorCounts, depthCounts vk.SampleCountFlags) vk.SampleCountFlagBits {
	counts := colorCounts & depthCounts
	for _, bit := range []vk.SampleCountFlagBits{
		vk.SampleCount64Bit, vk.SampleCount32Bit, vk.SampleCount16Bit,
		vk.SampleCount8Bit, vk.SampleCount4Bit, vk.SampleCount2Bit,
	} {
		if counts&vk.SampleCountFlags(bit) != 0 {
			return bit
		}
	}
	return vk.SampleCount1Bit
}

// DeviceCreate picks the first suitable physical device and builds the
// logical device with its graphics and present queues.
func DeviceCreate(context *VulkanContext) error {
	if context.Device == nil {
		context.Device = &VulkanDevice{
			GraphicsQueueIndex: -1,
			PresentQueueIndex:  -1,
		}
	}
	if err := selectPhysicalDevice(context); err != nil {
		return err
	}

	device := context.Device
	logDeviceInfo(device)

	if !deviceDetectDepthFormat(device) {
		return fmt.Errorf("%w: no supported depth format", core.ErrNoSuitableDevice)
	}
	device.MsaaSamples = maxUsableSampleCount(device)
	core.LogInfo("MSAA sample count: %d", device.MsaaSamples)

	core.LogInfo("Creating logical device...")

	// NOTE: Do not create additional queues for shared indices.
	indices := []uint32{uint32(device.GraphicsQueueIndex)}
	if device.PresentQueueIndex != device.GraphicsQueueIndex {
		indices = append(indices, uint32(device.PresentQueueIndex))
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, len(indices))
	for i, family := range indices {
		queueCreateInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: vk.True,
	}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if devicePortabilityRequired(device.PhysicalDevice) {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
	}

	if res := vk.CreateDevice(device.PhysicalDevice, &deviceCreateInfo, context.Allocator, &device.LogicalDevice); res != vk.Success {
		return fmt.Errorf("failed to create logical device: %s", ResultString(res))
	}
	core.LogInfo("Logical device created.")

	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.GraphicsQueueIndex), 0, &device.GraphicsQueue)
	vk.GetDeviceQueue(device.LogicalDevice, uint32(device.PresentQueueIndex), 0, &device.PresentQueue)
	core.LogInfo("Queues obtained.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	device := context.Device
	device.GraphicsQueue = nil
	device.PresentQueue = nil

	core.LogInfo("Destroying logical device...")
	if device.LogicalDevice != nil {
		vk.DestroyDevice(device.LogicalDevice, context.Allocator)
		device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	device.PhysicalDevice = nil
	device.SwapchainSupport = VulkanSwapchainSupportInfo{}
	device.GraphicsQueueIndex = -1
	device.PresentQueueIndex = -1
}

func selectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices: %s", ResultString(res))
	}
	if physicalDeviceCount == 0 {
		return fmt.Errorf("%w: no devices which support Vulkan were found", core.ErrNoSuitableDevice)
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		return fmt.Errorf("failed to enumerate physical devices: %s", ResultString(res))
	}

	candidates := make([]deviceCandidate, physicalDeviceCount)
	for i, pd := range physicalDevices {
		candidates[i] = queryCandidate(pd, context.Surface)
	}

	chosen := firstSuitable(candidates)
	if chosen < 0 {
		return fmt.Errorf("%w: %d device(s) enumerated", core.ErrNoSuitableDevice, physicalDeviceCount)
	}

	pd := physicalDevices[chosen]
	device := context.Device
	device.PhysicalDevice = pd
	device.GraphicsQueueIndex = candidates[chosen].graphicsFamily
	device.PresentQueueIndex = candidates[chosen].presentFamily

	vk.GetPhysicalDeviceProperties(pd, &device.Properties)
	device.Properties.Deref()
	device.Properties.Limits.Deref()
	vk.GetPhysicalDeviceFeatures(pd, &device.Features)
	device.Features.Deref()
	vk.GetPhysicalDeviceMemoryProperties(pd, &device.Memory)
	device.Memory.Deref()

	if err := DeviceQuerySwapchainSupport(pd, context.Surface, &device.SwapchainSupport); err != nil {
		return err
	}
	return nil
}

// queryCandidate gathers the suitability inputs for one physical device.
func queryCandidate(pd vk.PhysicalDevice, surface vk.Surface) deviceCandidate {
	c := deviceCandidate{
		graphicsFamily: -1,
		presentFamily:  -1,
	}

	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &properties)
	properties.Deref()
	end := FindFirstZeroInByteArray(properties.DeviceName[:])
	c.name = string(properties.DeviceName[:end])

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, queueFamilies)

	for i := range queueFamilies {
		queueFamilies[i].Deref()
		if c.graphicsFamily < 0 && queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			c.graphicsFamily = int32(i)
		}
		var supportsPresent vk.Bool32
		if res := vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), surface, &supportsPresent); res == vk.Success {
			if c.presentFamily < 0 && supportsPresent == vk.True {
				c.presentFamily = int32(i)
			}
		}
	}

	c.hasSwapchainExtension = deviceSupportsExtension(pd, vk.KhrSwapchainExtensionName)

	var formatCount, presentModeCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, nil)
	vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &presentModeCount, nil)
	c.formatCount = formatCount
	c.presentModeCount = presentModeCount

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(pd, &features)
	features.Deref()
	c.samplerAnisotropy = features.SamplerAnisotropy == vk.True

	return c
}

func deviceSupportsExtension(pd vk.PhysicalDevice, name string) bool {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil); res != vk.Success {
		return false
	}
	available := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, available); res != vk.Success {
		return false
	}
	for i := range available {
		available[i].Deref()
		end := FindFirstZeroInByteArray(available[i].ExtensionName[:])
		if name == string(available[i].ExtensionName[:end]) {
			return true
		}
	}
	return false
}

func devicePortabilityRequired(pd vk.PhysicalDevice) bool {
	return deviceSupportsExtension(pd, "VK_KHR_portability_subset")
}

// DeviceQuerySwapchainSupport refreshes the surface capabilities, formats
// and present modes. Called again on every swapchain (re)build.
func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *VulkanSwapchainSupportInfo) error {
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		return fmt.Errorf("failed to get surface capabilities: %s", ResultString(res))
	}
	supportInfo.Capabilities.Deref()
	supportInfo.Capabilities.CurrentExtent.Deref()
	supportInfo.Capabilities.MinImageExtent.Deref()
	supportInfo.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); res != vk.Success {
		return fmt.Errorf("failed to get surface formats: %s", ResultString(res))
	}
	if formatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, supportInfo.Formats); res != vk.Success {
			return fmt.Errorf("failed to get surface formats: %s", ResultString(res))
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	var presentModeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, nil); res != vk.Success {
		return fmt.Errorf("failed to get surface present modes: %s", ResultString(res))
	}
	if presentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, presentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, supportInfo.PresentModes); res != vk.Success {
			return fmt.Errorf("failed to get surface present modes: %s", ResultString(res))
		}
	}
	return nil
}

// deviceDetectDepthFormat picks the first depth format usable as a
// depth-stencil attachment with optimal tiling.
func deviceDetectDepthFormat(device *VulkanDevice) bool {
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, candidate := range candidates {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, candidate, &properties)
		properties.Deref()
		if properties.OptimalTilingFeatures&flags == flags {
			device.DepthFormat = candidate
			return true
		}
	}
	return false
}

func maxUsableSampleCount(device *VulkanDevice) vk.SampleCountFlagBits {
	limits := device.Properties.Limits
	return pickSampleCount(limits.FramebufferColorSampleCounts, limits.FramebufferDepthSampleCounts)
}

func logDeviceInfo(device *VulkanDevice) {
	properties := device.Properties
	end := FindFirstZeroInByteArray(properties.DeviceName[:])
	core.LogInfo("Selected device: '%s'.", string(properties.DeviceName[:end]))

	switch properties.DeviceType {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		core.LogInfo("GPU type is Integrated.")
	case vk.PhysicalDeviceTypeDiscreteGpu:
		core.LogInfo("GPU type is Discrete.")
	case vk.PhysicalDeviceTypeVirtualGpu:
		core.LogInfo("GPU type is Virtual.")
	case vk.PhysicalDeviceTypeCpu:
		core.LogInfo("GPU type is CPU.")
	default:
		core.LogInfo("GPU type is Unknown.")
	}

	core.LogInfo(
		"GPU Driver version: %d.%d.%d",
		vk.Version.Major(vk.Version(properties.DriverVersion)),
		vk.Version.Minor(vk.Version(properties.DriverVersion)),
		vk.Version.Patch(vk.Version(properties.DriverVersion)),
	)
	core.LogInfo(
		"Vulkan API version: %d.%d.%d",
		vk.Version.Major(vk.Version(properties.ApiVersion)),
		vk.Version.Minor(vk.Version(properties.ApiVersion)),
		vk.Version.Patch(vk.Version(properties.ApiVersion)),
	)

	for j := 0; j < int(device.Memory.MemoryHeapCount); j++ {
		device.Memory.MemoryHeaps[j].Deref()
		memorySizeGib := float32(device.Memory.MemoryHeaps[j].Size) / 1024.0 / 1024.0 / 1024.0
		if vk.MemoryHeapFlagBits(device.Memory.MemoryHeaps[j].Flags)&vk.MemoryHeapDeviceLocalBit > 0 {
			core.LogInfo("Local GPU memory: %.2f GiB", memorySizeGib)
		} else {
			core.LogInfo("Shared System memory: %.2f GiB", memorySizeGib)
		}
	}
}
