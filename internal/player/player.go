// Package player provides the scripted flying camera that drives chunk loading.
package player

import (
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera flies at a fixed height along a heading that turns slowly, so
// the loaded area keeps moving through fresh terrain.
type Camera struct {
	mu       sync.RWMutex
	pos      mgl32.Vec3
	yaw      float32 // radians, 0 faces +X
	speed    float32 // blocks per second
	turnRate float32 // radians per second
}

// NewCamera creates a camera at spawn moving at speed blocks per second.
func NewCamera(spawn mgl32.Vec3, speed, turnRate float32) *Camera {
	return &Camera{pos: spawn, speed: speed, turnRate: turnRate}
}

// Position returns the current camera position.
func (c *Camera) Position() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pos
}

// SetPosition teleports the camera.
func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.mu.Lock()
	c.pos = pos
	c.mu.Unlock()
}

// Heading returns the unit vector the camera moves along.
func (c *Camera) Heading() mgl32.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return heading(c.yaw)
}

// Advance moves the camera by dt of flight.
func (c *Camera) Advance(dt time.Duration) {
	secs := float32(dt.Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = c.pos.Add(heading(c.yaw).Mul(c.speed * secs))
	c.yaw = float32(math.Mod(float64(c.yaw+c.turnRate*secs), 2*math.Pi))
}

func heading(yaw float32) mgl32.Vec3 {
	s, co := math.Sincos(float64(yaw))
	return mgl32.Vec3{float32(co), 0, float32(s)}
}
