package vulkan

import "testing"

func TestDescriptorPoolSizing(t *testing.T) {
	for _, tt := range []struct {
		name            string
		setCap          uint32
		samplerHeadroom uint32
		frames          uint32
		wantUniform     uint32
		wantSampler     uint32
		wantMaxSets     uint32
	}{
		{
			name:            "defaults",
			setCap:          DescriptorSetCap,
			samplerHeadroom: ImageSamplerPoolSize,
			frames:          MaxFramesInFlight,
			wantUniform:     4000,
			wantSampler:     2100,
			wantMaxSets:     4000,
		},
		{
			name:            "single frame",
			setCap:          10,
			samplerHeadroom: 5,
			frames:          1,
			wantUniform:     20,
			wantSampler:     15,
			wantMaxSets:     20,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			uniform, sampler, maxSets := descriptorPoolSizing(tt.setCap, tt.samplerHeadroom, tt.frames)
			if uniform != tt.wantUniform {
				t.Errorf("uniform count = %d, want %d", uniform, tt.wantUniform)
			}
			if sampler != tt.wantSampler {
				t.Errorf("sampler count = %d, want %d", sampler, tt.wantSampler)
			}
			if maxSets != tt.wantMaxSets {
				t.Errorf("max sets = %d, want %d", maxSets, tt.wantMaxSets)
			}
		})
	}
}
