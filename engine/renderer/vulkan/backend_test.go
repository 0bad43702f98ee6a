package vulkan

import "testing"

func TestTextureAtBeforeAnyUpload(t *testing.T) {
	vr := &VulkanRenderer{}
	if got := vr.textureAt(0); got != nil {
		t.Errorf("empty texture list: got %v, want nil", got)
	}
	if got := vr.textureAt(7); got != nil {
		t.Errorf("empty texture list, out-of-range index: got %v, want nil", got)
	}
}

func TestTextureAtFallsBackToFirst(t *testing.T) {
	fallback := &VulkanTexture{Name: "fallback"}
	crate := &VulkanTexture{Name: "crate"}
	vr := &VulkanRenderer{textures: []*VulkanTexture{fallback, crate}}

	if got := vr.textureAt(1); got != crate {
		t.Errorf("in-range index: got %q", got.Name)
	}
	if got := vr.textureAt(42); got != fallback {
		t.Errorf("unknown index should yield the fallback, got %q", got.Name)
	}
}

func TestUploadPoolIsNotTheGraphicsPool(t *testing.T) {
	// Texture uploads record on their own pool so a worker goroutine
	// never touches the pool the frame scheduler records from.
	if uploadPoolName == graphicsPoolName {
		t.Fatalf("upload pool %q must differ from the graphics pool", uploadPoolName)
	}
}

func TestResizeCoalescesIntoOneRebuild(t *testing.T) {
	vr := &VulkanRenderer{}

	vr.OnResized(800, 600)
	vr.OnResized(1024, 768)

	requested, w, h := vr.takeResize()
	if !requested {
		t.Fatal("takeResize after two resize events should report a pending rebuild")
	}
	if w != 1024 || h != 768 {
		t.Errorf("pending dimensions = %dx%d, want the latest 1024x768", w, h)
	}

	if again, _, _ := vr.takeResize(); again {
		t.Error("second takeResize must report nothing pending")
	}
}
