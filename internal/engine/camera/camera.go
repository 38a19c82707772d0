// Package camera provides the orbit camera used to inspect a single model.
package camera

import (
	"math"

	"github.com/Faultbox/midgard-assets/internal/engine/model"
)

// Orbit circles a center point at a fixed distance.
type Orbit struct {
	Center [3]float32

	Distance float32
	Pitch    float32 // radians, positive looks down
	Yaw      float32 // radians
	FovY     float32 // radians

	MinDistance float32
	MaxDistance float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// Pitch limits keep the up vector from flipping.
const (
	minPitch = -1.5
	maxPitch = 1.5
)

// NewOrbit creates a camera looking at the origin from a unit distance.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:        3,
		Pitch:           0.4,
		FovY:            float32(math.Pi / 4),
		MinDistance:     0.01,
		MaxDistance:     1000,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Frame centers the camera on b and backs off until the bounding sphere fits
// the vertical field of view.
func (c *Orbit) Frame(b model.Bounds) {
	c.Center = b.Center()

	radius := length(b.Size()) / 2
	if radius == 0 {
		radius = 1
	}

	c.Distance = radius / float32(math.Sin(float64(c.FovY)/2)) * 1.1
	c.MinDistance = radius * 0.25
	c.MaxDistance = radius * 50
}

// Position returns the eye position in world space.
func (c *Orbit) Position() [3]float32 {
	cp, sp := math.Cos(float64(c.Pitch)), math.Sin(float64(c.Pitch))
	cy, sy := math.Cos(float64(c.Yaw)), math.Sin(float64(c.Yaw))

	return [3]float32{
		c.Center[0] + c.Distance*float32(cp*sy),
		c.Center[1] + c.Distance*float32(sp),
		c.Center[2] + c.Distance*float32(cp*cy),
	}
}

// View returns the view matrix.
func (c *Orbit) View() Mat4 {
	return LookAt(c.Position(), c.Center, [3]float32{0, 1, 0})
}

// ViewProjection returns projection * view for the given aspect ratio. The
// clip planes follow the distance so small and large models both fit.
func (c *Orbit) ViewProjection(aspect float32) Mat4 {
	near := c.Distance / 100
	far := c.Distance * 100
	return Perspective(c.FovY, aspect, near, far).Mul(c.View())
}

// Drag rotates the camera by a mouse delta in pixels.
func (c *Orbit) Drag(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = min(max(c.Pitch+dy*c.DragSensitivity, minPitch), maxPitch)
}

// Zoom moves the camera along its view axis. Positive delta moves closer.
func (c *Orbit) Zoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}
