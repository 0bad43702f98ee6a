package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func suitableCandidate(name string) deviceCandidate {
	return deviceCandidate{
		name:                  name,
		graphicsFamily:        0,
		presentFamily:         0,
		hasSwapchainExtension: true,
		formatCount:           2,
		presentModeCount:      2,
		samplerAnisotropy:     true,
	}
}

func TestFirstSuitableIsDeterministic(t *testing.T) {
	noGraphics := suitableCandidate("igpu")
	noGraphics.graphicsFamily = -1

	candidates := []deviceCandidate{
		noGraphics,
		suitableCandidate("dgpu-a"),
		suitableCandidate("dgpu-b"),
	}

	// Same fixed list must always produce the same pick.
	for run := 0; run < 10; run++ {
		if got := firstSuitable(candidates); got != 1 {
			t.Fatalf("run %d: picked index %d, want 1", run, got)
		}
	}
}

func TestSuitabilityRequirements(t *testing.T) {
	mutations := map[string]func(*deviceCandidate){
		"no graphics family":     func(c *deviceCandidate) { c.graphicsFamily = -1 },
		"no present family":      func(c *deviceCandidate) { c.presentFamily = -1 },
		"no swapchain extension": func(c *deviceCandidate) { c.hasSwapchainExtension = false },
		"zero surface formats":   func(c *deviceCandidate) { c.formatCount = 0 },
		"zero present modes":     func(c *deviceCandidate) { c.presentModeCount = 0 },
		"no sampler anisotropy":  func(c *deviceCandidate) { c.samplerAnisotropy = false },
	}
	for label, mutate := range mutations {
		c := suitableCandidate("gpu")
		mutate(&c)
		if c.suitable() {
			t.Errorf("%s: candidate should not be suitable", label)
		}
	}
	if got := firstSuitable(nil); got != -1 {
		t.Errorf("empty list: got %d, want -1", got)
	}
}

func TestPickSampleCount(t *testing.T) {
	all := vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount2Bit | vk.SampleCount4Bit |
		vk.SampleCount8Bit | vk.SampleCount16Bit | vk.SampleCount32Bit | vk.SampleCount64Bit)

	cases := []struct {
		name  string
		color vk.SampleCountFlags
		depth vk.SampleCountFlags
		want  vk.SampleCountFlagBits
	}{
		{"everything supported caps at 64", all, all, vk.SampleCount64Bit},
		{"joint support is the intersection", all, vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount4Bit), vk.SampleCount4Bit},
		{"color limits depth", vk.SampleCountFlags(vk.SampleCount1Bit | vk.SampleCount8Bit), all, vk.SampleCount8Bit},
		{"no common multisample falls back to 1", vk.SampleCountFlags(vk.SampleCount2Bit), vk.SampleCountFlags(vk.SampleCount4Bit), vk.SampleCount1Bit},
	}
	for _, tc := range cases {
		if got := pickSampleCount(tc.color, tc.depth); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}
