package camera

import (
	"sync"

	"github.com/Carmen-Shannon/c3-preview/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	fovDegrees float32
	aspect     float32
	near       float32
	far        float32

	target     mgl32.Vec3
	radius     float32
	minRadius  float32
	maxRadius  float32
	height     float32
	azimuth    float32
	orbitSpeed float32

	viewProjection mgl32.Mat4
}

// Camera is a perspective camera orbiting a target point on a horizontal circle.
// The combined view-projection matrix is recomputed whenever a parameter changes.
type Camera interface {
	// Eye returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the target position
	Target() mgl32.Vec3

	// Radius returns the current orbit radius.
	//
	// Returns:
	//   - float32: distance from the target on the XZ plane
	Radius() float32

	// Azimuth returns the current orbit angle in radians.
	//
	// Returns:
	//   - float32: the orbit angle
	Azimuth() float32

	// ViewProjection returns projection * view.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjection() mgl32.Mat4

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the new aspect ratio
	SetAspect(aspect float32)

	// Zoom moves the camera towards (positive delta) or away from the target, clamped to the radius bounds.
	//
	// Parameters:
	//   - delta: distance to move in world units
	Zoom(delta float32)

	// Update advances the automatic orbit by the orbit speed times deltaTime.
	//
	// Parameters:
	//   - deltaTime: elapsed time in seconds
	Update(deltaTime float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new orbit Camera.
// Defaults: 45 degree vertical FOV, aspect 16:9, near 0.1, far 100, radius 7 around the origin at height 2, no orbit.
//
// Parameters:
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		fovDegrees: 45,
		aspect:     16.0 / 9.0,
		near:       0.1,
		far:        100,
		radius:     7,
		minRadius:  0.5,
		maxRadius:  100,
		height:     2,
	}
	for _, opt := range options {
		opt(c)
	}
	c.radius = common.Clamp(c.radius, c.minRadius, c.maxRadius)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye()
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

func (c *cameraImpl) Azimuth() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.azimuth
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = common.Clamp(c.radius-delta, c.minRadius, c.maxRadius)
	c.updateMatrices()
}

func (c *cameraImpl) Update(deltaTime float32) {
	if c.orbitSpeed == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += c.orbitSpeed * deltaTime
	c.updateMatrices()
}

// eye must be called with mu held.
func (c *cameraImpl) eye() mgl32.Vec3 {
	return common.OrbitEye(c.radius, c.height, c.azimuth).Add(mgl32.Vec3{c.target.X(), 0, c.target.Z()})
}

// updateMatrices must be called with mu held.
func (c *cameraImpl) updateMatrices() {
	c.viewProjection = common.ViewProjection(c.fovDegrees, c.aspect, c.near, c.far, c.eye(), c.target)
}
