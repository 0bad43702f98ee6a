package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/vesper3d/vesper/engine/core"
	"github.com/vesper3d/vesper/engine/renderer/metadata"
)

// CalcMipLevels returns the full mip chain length for a base extent.
func CalcMipLevels(width, height uint32) uint32 {
	longest := width
	if height > longest {
		longest = height
	}
	if longest == 0 {
		return 1
	}
	return uint32(math.Floor(math.Log2(float64(longest)))) + 1
}

// nextMipExtent halves an extent, clamping at one texel.
func nextMipExtent(width, height int32) (int32, int32) {
	if width > 1 {
		width /= 2
	}
	if height > 1 {
		height /= 2
	}
	return width, height
}

// VulkanTexture is a sampled, mipmapped 2D image uploaded from host pixels.
type VulkanTexture struct {
	Name      string
	Image     *VulkanImage
	Sampler   vk.Sampler
	MipLevels uint32
}

// TextureCreate uploads pixels into a device-local image, generates the full
// mip chain with blits and builds an anisotropic sampler.
func TextureCreate(context *VulkanContext, pool vk.CommandPool, pixels *metadata.TexturePixels) (*VulkanTexture, error) {
	format := vk.FormatR8g8b8a8Srgb
	mipLevels := CalcMipLevels(pixels.Width, pixels.Height)

	var formatProperties vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(context.Device.PhysicalDevice, format, &formatProperties)
	formatProperties.Deref()
	if formatProperties.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureSampledImageFilterLinearBit) == 0 {
		return nil, fmt.Errorf("texture %q: %w", pixels.Name, core.ErrMipFormatUnsupported)
	}

	staging, err := BufferCreate(context, vk.DeviceSize(pixels.Size()),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.Map(context); err != nil {
		return nil, err
	}
	staging.LoadData(pixels.Pixels)
	staging.Unmap(context)

	image, err := ImageCreate(context, pixels.Width, pixels.Height, mipLevels,
		vk.SampleCount1Bit, format, vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit|vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	texture := &VulkanTexture{
		Name:      pixels.Name,
		Image:     image,
		MipLevels: mipLevels,
	}

	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		texture.Destroy(context)
		return nil, err
	}

	transitionImageLayout(cb, image.Handle, mipLevels,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	copyBufferToImage(cb, staging.Handle, image.Handle, pixels.Width, pixels.Height)
	generateMipmaps(cb, image.Handle, int32(pixels.Width), int32(pixels.Height), mipLevels)

	if err := cb.EndSingleUse(context, pool); err != nil {
		texture.Destroy(context)
		return nil, err
	}

	sampler, err := createTextureSampler(context, mipLevels)
	if err != nil {
		texture.Destroy(context)
		return nil, err
	}
	texture.Sampler = sampler

	return texture, nil
}

func (t *VulkanTexture) Destroy(context *VulkanContext) {
	if t.Sampler != nil {
		vk.DestroySampler(context.Device.LogicalDevice, t.Sampler, context.Allocator)
		t.Sampler = nil
	}
	if t.Image != nil {
		t.Image.ImageDestroy(context)
		t.Image = nil
	}
}

func transitionImageLayout(cb *VulkanCommandBuffer, image vk.Image, mipLevels uint32, oldLayout, newLayout vk.ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     mipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		SrcAccessMask: 0,
		DstAccessMask: vk.AccessFlags(vk.AccessTransferWriteBit),
	}

	vk.CmdPipelineBarrier(cb.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func copyBufferToImage(cb *VulkanCommandBuffer, buffer vk.Buffer, image vk.Image, width, height uint32) {
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
	}
	vk.CmdCopyBufferToImage(cb.Handle, buffer, image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}

// generateMipmaps blits each level from the one above it, transitioning the
// source level to TRANSFER_SRC before the blit and to SHADER_READ_ONLY after.
func generateMipmaps(cb *VulkanCommandBuffer, image vk.Image, width, height int32, mipLevels uint32) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		Image:               image,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseArrayLayer: 0,
			LayerCount:     1,
			LevelCount:     1,
		},
	}

	mipWidth := width
	mipHeight := height
	for i := uint32(1); i < mipLevels; i++ {
		barrier.SubresourceRange.BaseMipLevel = i - 1
		barrier.OldLayout = vk.ImageLayoutTransferDstOptimal
		barrier.NewLayout = vk.ImageLayoutTransferSrcOptimal
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)

		vk.CmdPipelineBarrier(cb.Handle,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})

		dstWidth, dstHeight := nextMipExtent(mipWidth, mipHeight)
		blit := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       i - 1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       i,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		blit.SrcOffsets[1] = vk.Offset3D{X: mipWidth, Y: mipHeight, Z: 1}
		blit.DstOffsets[1] = vk.Offset3D{X: dstWidth, Y: dstHeight, Z: 1}

		vk.CmdBlitImage(cb.Handle,
			image, vk.ImageLayoutTransferSrcOptimal,
			image, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, vk.FilterLinear)

		barrier.OldLayout = vk.ImageLayoutTransferSrcOptimal
		barrier.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferReadBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)

		vk.CmdPipelineBarrier(cb.Handle,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})

		mipWidth, mipHeight = dstWidth, dstHeight
	}

	// The last level was written but never used as a blit source.
	barrier.SubresourceRange.BaseMipLevel = mipLevels - 1
	barrier.OldLayout = vk.ImageLayoutTransferDstOptimal
	barrier.NewLayout = vk.ImageLayoutShaderReadOnlyOptimal
	barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
	barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)

	vk.CmdPipelineBarrier(cb.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func createTextureSampler(context *VulkanContext, mipLevels uint32) (vk.Sampler, error) {
	samplerCreateInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           context.Device.Properties.Limits.MaxSamplerAnisotropy,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MinLod:                  0,
		MaxLod:                  float32(mipLevels),
		MipLodBias:              0,
	}

	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerCreateInfo, context.Allocator, &sampler); res != vk.Success {
		return nil, fmt.Errorf("failed to create texture sampler: %s", ResultString(res))
	}
	return sampler, nil
}
