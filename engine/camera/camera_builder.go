package camera

type CameraBuilderOption func(*cameraImpl)

// WithTarget sets the point the camera orbits.
//
// Parameters:
//   - x, y, z: target position components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = [3]float32{x, y, z}
	}
}

// WithDistance sets the initial orbit radius. Clamped to the distance limits
// after all options are applied.
//
// Parameters:
//   - distance: the orbit radius
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's distance
func WithDistance(distance float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.distance = distance
	}
}

// WithZenith sets the initial polar angle from the +z axis in radians.
//
// Parameters:
//   - zenith: polar angle in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's zenith
func WithZenith(zenith float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.zenith = zenith
	}
}

// WithAzimuth sets the initial angle in the xy plane in radians.
//
// Parameters:
//   - azimuth: azimuth angle in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's azimuth
func WithAzimuth(azimuth float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.azimuth = azimuth
	}
}

// WithDistanceLimits sets the zoom clamp range.
//
// Parameters:
//   - closest: minimum orbit radius
//   - farthest: maximum orbit radius
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's distance limits
func WithDistanceLimits(closest, farthest float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.closest = closest
		c.farthest = farthest
	}
}

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
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

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}
