package components

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func vec3Near(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() < eps
}

func TestCameraReset(t *testing.T) {
	c := NewCamera()
	if !vec3Near(c.Position(), mgl32.Vec3{2, 2, 2}, 1e-6) {
		t.Errorf("reset position = %v", c.Position())
	}

	// Looking back at the origin from {2,2,2}: the forward vector points
	// toward negative X and Y and downward.
	f := c.Forward()
	if f.X() >= 0 || f.Y() >= 0 || f.Z() >= 0 {
		t.Errorf("reset forward = %v, want all components negative", f)
	}
}

func TestCameraPitchClamp(t *testing.T) {
	c := NewCamera()
	c.Pitch(mgl32.DegToRad(500))
	f := c.Forward()
	if f.Z() < float32(math.Sin(float64(mgl32.DegToRad(88)))) {
		t.Errorf("pitch not clamped near straight up, forward = %v", f)
	}

	c.Pitch(mgl32.DegToRad(-1000))
	f = c.Forward()
	if f.Z() > -float32(math.Sin(float64(mgl32.DegToRad(88)))) {
		t.Errorf("pitch not clamped near straight down, forward = %v", f)
	}
}

func TestCameraViewInvalidation(t *testing.T) {
	c := NewCamera()
	before := c.View()
	c.MoveForward(1)
	after := c.View()
	if before == after {
		t.Error("view unchanged after moving")
	}
	if again := c.View(); again != after {
		t.Error("cached view differs between calls without changes")
	}
}

func TestCameraOppositeMovesCancel(t *testing.T) {
	c := NewCamera()
	start := c.Position()
	c.MoveRight(3)
	c.MoveLeft(3)
	c.MoveUp(2)
	c.MoveDown(2)
	if !vec3Near(c.Position(), start, 1e-5) {
		t.Errorf("position drifted: %v -> %v", start, c.Position())
	}
}
