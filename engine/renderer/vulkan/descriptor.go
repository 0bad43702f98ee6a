package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/core"
	"github.com/vesper3d/vesper/engine/renderer/metadata"
)

const (
	bindingGlobalUBO   = 0
	bindingInstanceUBO = 1
	bindingSampler     = 2
)

// descriptorPoolSizing returns the uniform descriptor count, sampler
// descriptor count and set cap the pool is created with. Two uniform
// bindings per set, one sampler per set plus headroom for standalone
// texture sets.
func descriptorPoolSizing(setCap, samplerHeadroom, framesInFlight uint32) (uniformCount, samplerCount, maxSets uint32) {
	uniformCount = 2 * setCap * framesInFlight
	samplerCount = setCap*framesInFlight + samplerHeadroom
	maxSets = 2 * setCap * framesInFlight
	return uniformCount, samplerCount, maxSets
}

// DescriptorAllocator owns the single set layout shared by all mesh parts
// and the pool their per-frame sets come from.
type DescriptorAllocator struct {
	Layout vk.DescriptorSetLayout
	Pool   vk.DescriptorPool
}

func NewDescriptorAllocator(context *VulkanContext) (*DescriptorAllocator, error) {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         bindingGlobalUBO,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         bindingInstanceUBO,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         bindingSampler,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}

	layoutCreateInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutCreateInfo, context.Allocator, &layout); res != vk.Success {
		return nil, fmt.Errorf("failed to create descriptor set layout: %s", ResultString(res))
	}

	uniformCount, samplerCount, maxSets := descriptorPoolSizing(DescriptorSetCap, ImageSamplerPoolSize, MaxFramesInFlight)
	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBuffer,
			DescriptorCount: uniformCount,
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: samplerCount,
		},
	}

	poolCreateInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       maxSets,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
	}

	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolCreateInfo, context.Allocator, &pool); res != vk.Success {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, layout, context.Allocator)
		return nil, fmt.Errorf("failed to create descriptor pool: %s", ResultString(res))
	}

	return &DescriptorAllocator{
		Layout: layout,
		Pool:   pool,
	}, nil
}

// AllocateSets hands out count sets with the shared layout. Pool exhaustion
// and fragmentation surface as ErrPoolExhausted.
func (d *DescriptorAllocator) AllocateSets(context *VulkanContext, count uint32) ([]vk.DescriptorSet, error) {
	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = d.Layout
	}

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.Pool,
		DescriptorSetCount: count,
		PSetLayouts:        layouts,
	}

	sets := make([]vk.DescriptorSet, count)
	res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &sets[0])
	switch res {
	case vk.Success:
		return sets, nil
	case vk.ErrorOutOfPoolMemory, vk.ErrorFragmentedPool:
		return nil, fmt.Errorf("descriptor allocation of %d sets: %w", count, core.ErrPoolExhausted)
	default:
		return nil, fmt.Errorf("failed to allocate descriptor sets: %s", ResultString(res))
	}
}

// UpdateSet points one frame's set at that frame's uniform ring buffers and
// the part's texture.
func (d *DescriptorAllocator) UpdateSet(
	context *VulkanContext,
	set vk.DescriptorSet,
	globalBuffer *VulkanBuffer,
	instanceBuffer *VulkanBuffer,
	textureView vk.ImageView,
	sampler vk.Sampler,
) {
	globalInfo := vk.DescriptorBufferInfo{
		Buffer: globalBuffer.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(metadata.GlobalUBOSize),
	}
	instanceInfo := vk.DescriptorBufferInfo{
		Buffer: instanceBuffer.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(metadata.InstanceUBOSize),
	}
	imageInfo := vk.DescriptorImageInfo{
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		ImageView:   textureView,
		Sampler:     sampler,
	}

	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      bindingGlobalUBO,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			PBufferInfo:     []vk.DescriptorBufferInfo{globalInfo},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      bindingInstanceUBO,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			PBufferInfo:     []vk.DescriptorBufferInfo{instanceInfo},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      bindingSampler,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
		},
	}

	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
}

// FreeSets returns sets to the pool. The pool is created with the free bit
// so per-mesh sets can be released when a mesh is replaced.
func (d *DescriptorAllocator) FreeSets(context *VulkanContext, sets []vk.DescriptorSet) {
	if len(sets) == 0 {
		return
	}
	vk.FreeDescriptorSets(context.Device.LogicalDevice, d.Pool, uint32(len(sets)), &sets[0])
}

func (d *DescriptorAllocator) Destroy(context *VulkanContext) {
	if d.Pool != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, d.Pool, context.Allocator)
		d.Pool = nil
	}
	if d.Layout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.Layout, context.Allocator)
		d.Layout = nil
	}
}
