package components

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-fly spectator camera. The view matrix is cached and
// rebuilt lazily after position or orientation changes.
type Camera struct {
	position mgl32.Vec3
	yaw      float32
	pitch    float32

	isDirty bool
	view    mgl32.Mat4
}

func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

func (c *Camera) Reset() {
	c.position = mgl32.Vec3{2, 2, 2}
	c.yaw = mgl32.DegToRad(-135)
	c.pitch = mgl32.DegToRad(-30)
	c.isDirty = true
}

func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.position = position
	c.isDirty = true
}

// Forward derives the view direction from yaw and pitch.
func (c *Camera) Forward() mgl32.Vec3 {
	cy, sy := cosSin(c.yaw)
	cp, sp := cosSin(c.pitch)
	return mgl32.Vec3{cy * cp, sy * cp, sp}.Normalize()
}

func (c *Camera) View() mgl32.Mat4 {
	if c.isDirty {
		c.view = mgl32.LookAtV(c.position, c.position.Add(c.Forward()), mgl32.Vec3{0, 0, 1})
		c.isDirty = false
	}
	return c.view
}

func (c *Camera) MoveForward(amount float32) {
	c.position = c.position.Add(c.Forward().Mul(amount))
	c.isDirty = true
}

func (c *Camera) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}

func (c *Camera) MoveRight(amount float32) {
	right := c.Forward().Cross(mgl32.Vec3{0, 0, 1}).Normalize()
	c.position = c.position.Add(right.Mul(amount))
	c.isDirty = true
}

func (c *Camera) MoveLeft(amount float32) {
	c.MoveRight(-amount)
}

func (c *Camera) MoveUp(amount float32) {
	c.position = c.position.Add(mgl32.Vec3{0, 0, amount})
	c.isDirty = true
}

func (c *Camera) MoveDown(amount float32) {
	c.MoveUp(-amount)
}

func (c *Camera) Yaw(amount float32) {
	c.yaw += amount
	c.isDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.pitch += amount

	// Clamp to avoid Gimbal lock.
	limit := mgl32.DegToRad(89)
	if c.pitch > limit {
		c.pitch = limit
	} else if c.pitch < -limit {
		c.pitch = -limit
	}
	c.isDirty = true
}

func cosSin(radians float32) (float32, float32) {
	return float32(gomath.Cos(float64(radians))), float32(gomath.Sin(float64(radians)))
}
