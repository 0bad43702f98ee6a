package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/core"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// createInstance builds the Vulkan instance with the platform's surface
// extensions and, when validation is enabled, the verified validation layer
// plus the debug-report extension.
func createInstance(context *VulkanContext, appName string, platformExtensions []string, enableValidation bool) error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Vesper Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{vk.KhrSurfaceExtensionName}
	requiredExtensions = append(requiredExtensions, platformExtensions...)
	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}
	if enableValidation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}

	if err := verifyInstanceExtensions(requiredExtensions); err != nil {
		return err
	}
	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	requiredLayers := []string{}
	if enableValidation {
		requiredLayers = append(requiredLayers, validationLayerName)
		if err := verifyValidationLayers(requiredLayers); err != nil {
			return err
		}
	}
	createInfo.EnabledLayerCount = uint32(len(requiredLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredLayers)

	if res := vk.CreateInstance(&createInfo, context.Allocator, &context.Instance); res != vk.Success {
		return fmt.Errorf("failed to create the Vulkan instance: %s", ResultString(res))
	}
	if err := vk.InitInstance(context.Instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan instance created")
	return nil
}

// verifyInstanceExtensions checks every required extension against what the
// loader reports.
func verifyInstanceExtensions(required []string) error {
	var count uint32
	if res := vk.EnumerateInstanceExtensionProperties("", &count, nil); res != vk.Success {
		return fmt.Errorf("failed to enumerate instance extensions: %s", ResultString(res))
	}
	available := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateInstanceExtensionProperties("", &count, available); res != vk.Success {
		return fmt.Errorf("failed to enumerate instance extensions: %s", ResultString(res))
	}

	for _, want := range required {
		found := false
		for i := range available {
			available[i].Deref()
			end := FindFirstZeroInByteArray(available[i].ExtensionName[:])
			if want == string(available[i].ExtensionName[:end]) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", core.ErrExtensionUnsupported, want)
		}
	}
	return nil
}

// verifyValidationLayers confirms the requested layers are installed.
func verifyValidationLayers(required []string) error {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return fmt.Errorf("failed to enumerate instance layers: %s", ResultString(res))
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return fmt.Errorf("failed to enumerate instance layers: %s", ResultString(res))
	}

	for _, want := range required {
		found := false
		for i := range available {
			available[i].Deref()
			end := FindFirstZeroInByteArray(available[i].LayerName[:])
			if want == string(available[i].LayerName[:end]) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", core.ErrLayerUnavailable, want)
		}
	}
	core.LogInfo("All required validation layers are present")
	return nil
}

// createDebugger installs the debug-report callback. Only called when
// validation is enabled, so the extension is guaranteed present.
func createDebugger(context *VulkanContext) error {
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit | vk.DebugReportDebugBit),
		PfnCallback: dbgCallbackFunc,
	}

	var dbg vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(context.Instance, &debugCreateInfo, nil, &dbg); res != vk.Success {
		return fmt.Errorf("failed to create debug callback: %s", ResultString(res))
	}
	context.debugCallback = dbg
	core.LogDebug("Vulkan debug callback installed")
	return nil
}

func destroyDebugger(context *VulkanContext) {
	if context.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(context.Instance, context.debugCallback, context.Allocator)
		context.debugCallback = vk.NullDebugReportCallback
	}
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64,
	location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] %s", pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] %s", pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("[%s] perf: %s", pLayerPrefix, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		core.LogInfo("[%s] %s", pLayerPrefix, pMessage)
	default:
		core.LogDebug("[%s] %s", pLayerPrefix, pMessage)
	}
	return vk.Bool32(vk.False)
}
