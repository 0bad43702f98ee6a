package vulkan

// Number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

/**
 * @brief Max number of mesh parts the descriptor pool is sized for
 * @todo TODO: make configurable
 */
const DescriptorSetCap uint32 = 1000

// Extra combined-image-sampler descriptors kept in reserve for textures
// bound outside the per-part sets.
const ImageSamplerPoolSize uint32 = 100

// Near and far clip planes shared by every projection the engine builds.
const (
	ZNear float32 = 0.1
	ZFar  float32 = 1000.0
)
