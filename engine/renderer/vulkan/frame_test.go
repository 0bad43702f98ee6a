package vulkan

import "testing"

func TestFreeSlotIndex(t *testing.T) {
	// With two frames in flight the free slot always trails by one.
	for frame := 0; frame < MaxFramesInFlight*3; frame++ {
		current := frame % MaxFramesInFlight
		got := freeSlotIndex(current)
		want := (current + 1) % MaxFramesInFlight
		if got != want {
			t.Errorf("freeSlotIndex(%d) = %d, want %d", current, got, want)
		}
		if got == current {
			t.Errorf("freeSlotIndex(%d) returned the in-flight slot", current)
		}
	}
}

func TestBufferGraveyardCollectClears(t *testing.T) {
	var g bufferGraveyard
	a := &VulkanBuffer{Size: 1}
	b := &VulkanBuffer{Size: 2}
	c := &VulkanBuffer{Size: 3}

	g.Bury(0, a, b)
	g.Bury(1, c)
	g.Bury(0, nil)

	if g.Pending(0) != 2 {
		t.Fatalf("slot 0 pending = %d, want 2", g.Pending(0))
	}

	got := g.Collect(0)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("Collect(0) returned %v", got)
	}
	if g.Pending(0) != 0 {
		t.Errorf("slot 0 not cleared after Collect")
	}
	if g.Pending(1) != 1 {
		t.Errorf("slot 1 disturbed by Collect(0)")
	}
	if got := g.Collect(0); len(got) != 0 {
		t.Errorf("second Collect(0) returned %v, want empty", got)
	}
}

func TestBufferGraveyardSurvivesFullCycle(t *testing.T) {
	// A buffer buried while frame N is in flight must not surface until the
	// ring wraps back to its slot.
	var g bufferGraveyard
	retired := &VulkanBuffer{Size: 64}

	current := 0
	g.Bury(current, retired)

	seen := 0
	for tick := 0; tick < MaxFramesInFlight; tick++ {
		current = (current + 1) % MaxFramesInFlight
		for _, b := range g.Collect(freeSlotIndex(current)) {
			if b == retired {
				seen++
			}
		}
	}
	if seen != 1 {
		t.Fatalf("retired buffer collected %d times over a full cycle, want exactly 1", seen)
	}
}
