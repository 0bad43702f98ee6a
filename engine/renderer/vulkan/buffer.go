package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// VulkanBuffer pairs a buffer handle with its backing allocation. Mapped is
// non-nil while the memory is host-mapped; uniform ring buffers stay mapped
// for their whole lifetime.
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Mapped unsafe.Pointer
}

func BufferCreate(
	context *VulkanContext,
	size vk.DeviceSize,
	usage vk.BufferUsageFlags,
	memoryFlags vk.MemoryPropertyFlags,
) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		Size: size,
	}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("failed to create buffer: %s", ResultString(res))
	}
	buffer.Handle = handle

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryIndex := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if memoryIndex < 0 {
		buffer.Destroy(context)
		return nil, fmt.Errorf("no suitable memory type for buffer")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}

	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		buffer.Destroy(context)
		return nil, fmt.Errorf("failed to allocate buffer memory: %s", ResultString(res))
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		buffer.Destroy(context)
		return nil, fmt.Errorf("failed to bind buffer memory: %s", ResultString(res))
	}

	return buffer, nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	if b.Mapped != nil {
		b.Unmap(context)
	}
	if b.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, b.Handle, context.Allocator)
		b.Handle = nil
	}
	if b.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, b.Memory, context.Allocator)
		b.Memory = nil
	}
	b.Size = 0
}

func (b *VulkanBuffer) Map(context *VulkanContext) error {
	var data unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, b.Size, 0, &data); res != vk.Success {
		return fmt.Errorf("failed to map buffer memory: %s", ResultString(res))
	}
	b.Mapped = data
	return nil
}

func (b *VulkanBuffer) Unmap(context *VulkanContext) {
	if b.Mapped == nil {
		return
	}
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	b.Mapped = nil
}

// LoadData copies src into the mapped region. The buffer must be mapped.
func (b *VulkanBuffer) LoadData(src []byte) {
	vk.Memcopy(b.Mapped, src)
}

// BufferCopy records and submits a single-use transfer from src to dst.
func BufferCopy(context *VulkanContext, pool vk.CommandPool, src, dst *VulkanBuffer, size vk.DeviceSize) error {
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}

	copyRegion := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      size,
	}
	vk.CmdCopyBuffer(cb.Handle, src.Handle, dst.Handle, 1, []vk.BufferCopy{copyRegion})

	return cb.EndSingleUse(context, pool)
}

// CreateDeviceLocalBuffer uploads data into a new device-local buffer through
// a host-visible staging buffer.
func CreateDeviceLocalBuffer(context *VulkanContext, pool vk.CommandPool, data []byte, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	size := vk.DeviceSize(len(data))

	staging, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.Map(context); err != nil {
		return nil, err
	}
	staging.LoadData(data)
	staging.Unmap(context)

	deviceLocal, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)|usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}

	if err := BufferCopy(context, pool, staging, deviceLocal, size); err != nil {
		deviceLocal.Destroy(context)
		return nil, err
	}
	return deviceLocal, nil
}
