package vulkan

import "testing"

func TestCalcMipLevels(t *testing.T) {
	for _, tt := range []struct {
		width, height uint32
		want          uint32
	}{
		{1, 1, 1},
		{2, 2, 2},
		{256, 256, 9},
		{1024, 512, 11},
		{512, 1024, 11},
		{300, 200, 9},
		{0, 0, 1},
	} {
		if got := CalcMipLevels(tt.width, tt.height); got != tt.want {
			t.Errorf("CalcMipLevels(%d, %d) = %d, want %d", tt.width, tt.height, got, tt.want)
		}
	}
}

func TestNextMipExtent(t *testing.T) {
	w, h := int32(8), int32(2)
	steps := [][2]int32{{4, 1}, {2, 1}, {1, 1}, {1, 1}}
	for i, want := range steps {
		w, h = nextMipExtent(w, h)
		if w != want[0] || h != want[1] {
			t.Fatalf("step %d: got %dx%d, want %dx%d", i, w, h, want[0], want[1])
		}
	}
}
