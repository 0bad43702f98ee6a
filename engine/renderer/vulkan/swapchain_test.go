package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	other := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	if got := chooseSurfaceFormat([]vk.SurfaceFormat{other, preferred}); got != preferred {
		t.Errorf("preferred format present but not chosen: %+v", got)
	}
	// A single-entry list yields that entry.
	if got := chooseSurfaceFormat([]vk.SurfaceFormat{other}); got != other {
		t.Errorf("single format list: got %+v, want %+v", got, other)
	}
}

func TestChoosePresentMode(t *testing.T) {
	withMailbox := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox, vk.PresentModeFifo}
	if got := choosePresentMode(withMailbox); got != vk.PresentModeMailbox {
		t.Errorf("mailbox available but got %d", got)
	}
	noMailbox := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifoRelaxed}
	if got := choosePresentMode(noMailbox); got != vk.PresentModeFifo {
		t.Errorf("without mailbox must fall back to FIFO, got %d", got)
	}
}

func TestChooseExtent(t *testing.T) {
	fixed := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 1024, Height: 768},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	if got := chooseExtent(fixed, 1920, 1080); got != fixed.CurrentExtent {
		t.Errorf("fixed extent ignored: %+v", got)
	}

	flexible := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 320, Height: 240},
		MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
	}
	cases := []struct {
		w, h       uint32
		wantW, wantH uint32
	}{
		{800, 600, 800, 600},
		{8000, 6000, 1920, 1080},
		{16, 16, 320, 240},
	}
	for _, tc := range cases {
		got := chooseExtent(flexible, tc.w, tc.h)
		if got.Width != tc.wantW || got.Height != tc.wantH {
			t.Errorf("chooseExtent(%d,%d) = %dx%d, want %dx%d", tc.w, tc.h, got.Width, got.Height, tc.wantW, tc.wantH)
		}
	}
}

func TestChooseImageCount(t *testing.T) {
	if got := chooseImageCount(2, 8); got != 3 {
		t.Errorf("min+1 expected: got %d, want 3", got)
	}
	if got := chooseImageCount(3, 3); got != 3 {
		t.Errorf("cap by maxImageCount: got %d, want 3", got)
	}
	// maxImageCount == 0 means no upper bound.
	if got := chooseImageCount(7, 0); got != 8 {
		t.Errorf("unbounded surface: got %d, want 8", got)
	}
}
