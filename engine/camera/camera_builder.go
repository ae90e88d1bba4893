package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithFov sets the vertical field of view in degrees.
//
// Parameters:
//   - degrees: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFov(degrees float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fovDegrees = degrees
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithTarget sets the look-at point the camera orbits.
//
// Parameters:
//   - x, y, z: world-space target coordinates
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = mgl32.Vec3{x, y, z}
	}
}

// WithOrbit sets the orbit radius and eye height.
//
// Parameters:
//   - radius: distance from the target on the XZ plane
//   - height: world-space Y of the eye
//
// Returns:
//   - CameraBuilderOption: a function that sets the orbit shape
func WithOrbit(radius, height float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.radius = radius
		c.height = height
	}
}

// WithRadiusBounds sets the minimum and maximum orbit radius for Zoom.
//
// Parameters:
//   - minRadius: closest allowed distance
//   - maxRadius: farthest allowed distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the radius bounds
func WithRadiusBounds(minRadius, maxRadius float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.minRadius = minRadius
		c.maxRadius = maxRadius
	}
}

// WithOrbitSpeed sets the automatic orbit speed used by Update.
//
// Parameters:
//   - radiansPerSecond: orbit speed; 0 disables the automatic orbit
//
// Returns:
//   - CameraBuilderOption: a function that sets the orbit speed
func WithOrbitSpeed(radiansPerSecond float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orbitSpeed = radiansPerSecond
	}
}
