package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/gridforge/gridforge/common"
)

const (
	// zenithEpsilon keeps the polar angle off the z axis so the view basis
	// never degenerates at the poles.
	zenithEpsilon = 0.01

	defaultClosest  = 0.5
	defaultFarthest = 100.0
)

type cameraImpl struct {
	mu *sync.Mutex

	target   [3]float32
	distance float32
	zenith   float32
	azimuth  float32
	closest  float32
	farthest float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
}

// Camera is an orbital camera: it circles a target point on a z-up sphere
// described by distance, zenith (polar angle from +z) and azimuth (angle in
// the xy plane). All mutations clamp their own inputs and recompute the
// matrices, so every getter always reflects a consistent view.
type Camera interface {
	// Target returns the point the camera orbits and looks at.
	//
	// Returns:
	//   - x, y, z: target position components
	Target() (x, y, z float32)

	// Distance returns the current orbit radius.
	//
	// Returns:
	//   - float32: distance from the target, within [closest, farthest]
	Distance() float32

	// Zenith returns the polar angle measured from the +z axis.
	//
	// Returns:
	//   - float32: zenith in radians, within [epsilon, pi-epsilon]
	Zenith() float32

	// Azimuth returns the angle in the xy plane measured from the +x axis.
	//
	// Returns:
	//   - float32: azimuth in radians, within [0, 2*pi)
	Azimuth() float32

	// Eye returns the camera's world-space position derived from the orbit
	// parameters.
	//
	// Returns:
	//   - x, y, z: eye position components
	Eye() (x, y, z float32)

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix
	// as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// RotateZenith tilts the orbit by delta radians, clamped so the camera
	// never reaches the poles.
	//
	// Parameters:
	//   - delta: zenith change in radians
	RotateZenith(delta float32)

	// RotateAzimuth swings the orbit by delta radians, wrapped into [0, 2*pi)
	// so repeated rotation never accumulates an unbounded angle.
	//
	// Parameters:
	//   - delta: azimuth change in radians
	RotateAzimuth(delta float32)

	// MoveDistance zooms multiplicatively: the new distance is
	// distance * (1 - delta), clamped to [closest, farthest]. Positive delta
	// moves toward the target, negative away from it.
	//
	// Parameters:
	//   - delta: zoom factor change, typically a small fraction per step
	MoveDistance(delta float32)

	// SetTarget moves the orbit center.
	//
	// Parameters:
	//   - x, y, z: new target position components
	SetTarget(x, y, z float32)

	// SetDistance sets the orbit radius directly, clamped to [closest, farthest].
	//
	// Parameters:
	//   - distance: the new orbit radius
	SetDistance(distance float32)

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new orbital Camera with default perspective settings,
// orbiting the origin at distance 5 with a 45 degree downward tilt.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		target:   [3]float32{0, 0, 0},
		distance: 5.0,
		zenith:   math32.Pi / 4,
		azimuth:  0,
		closest:  defaultClosest,
		farthest: defaultFarthest,
		fov:      45.0 * (math32.Pi / 180.0), // radians
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
	}
	for _, option := range options {
		option(c)
	}
	c.clampOrbit()
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Target() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target[0], c.target[1], c.target[2]
}

func (c *cameraImpl) Distance() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.distance
}

func (c *cameraImpl) Zenith() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zenith
}

func (c *cameraImpl) Azimuth() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.azimuth
}

func (c *cameraImpl) Eye() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) RotateZenith(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zenith += delta
	c.clampOrbit()
	c.updateMatrices()
}

func (c *cameraImpl) RotateAzimuth(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += delta
	c.clampOrbit()
	c.updateMatrices()
}

func (c *cameraImpl) MoveDistance(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distance *= 1.0 - delta
	c.clampOrbit()
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetDistance(distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.distance = distance
	c.clampOrbit()
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

// eye computes the world-space camera position on the z-up orbit sphere.
// Caller must hold the mutex.
func (c *cameraImpl) eye() (x, y, z float32) {
	sinZenith := math32.Sin(c.zenith)
	x = c.target[0] + c.distance*sinZenith*math32.Cos(c.azimuth)
	y = c.target[1] + c.distance*sinZenith*math32.Sin(c.azimuth)
	z = c.target[2] + c.distance*math32.Cos(c.zenith)
	return x, y, z
}

// clampOrbit re-establishes the orbit invariants: zenith inside
// [epsilon, pi-epsilon], azimuth wrapped into [0, 2*pi) by floor modulo,
// distance inside [closest, farthest]. Caller must hold the mutex.
func (c *cameraImpl) clampOrbit() {
	c.zenith = math32.Max(zenithEpsilon, math32.Min(c.zenith, math32.Pi-zenithEpsilon))

	// Floor modulo in two steps. The trailing Mod folds the case where a tiny
	// negative remainder plus 2*pi rounds to exactly 2*pi in float32.
	c.azimuth = math32.Mod(c.azimuth, 2*math32.Pi)
	if c.azimuth < 0 {
		c.azimuth += 2 * math32.Pi
	}
	c.azimuth = math32.Mod(c.azimuth, 2*math32.Pi)

	c.distance = math32.Max(c.closest, math32.Min(c.distance, c.farthest))
}

// updateMatrices recalculates the view, projection, and view-projection
// matrices from the orbit parameters. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	ex, ey, ez := c.eye()

	common.LookAt(c.viewMatrix[:],
		ex, ey, ez,
		c.target[0], c.target[1], c.target[2],
		0, 0, 1,
	)

	common.Perspective(c.projectionMatrix[:],
		c.fov, c.aspect, c.near, c.far,
	)

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
