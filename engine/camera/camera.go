package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/irid-game-framework/irid/common"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	eye    common.Vec3
	target common.Vec3
	up     common.Vec3

	fovY   float32
	aspect float32
	near   float32
	far    float32
}

// Camera defines the interface for the engine's perspective camera. It owns
// the view parameters (eye, target, up) and the projection parameters
// (field of view, aspect, near/far planes) and derives the combined
// view-projection matrix written to the GPU each frame.
type Camera interface {
	// Eye returns the camera position in world space.
	//
	// Returns:
	//   - common.Vec3: the eye position
	Eye() common.Vec3

	// Target returns the look-at point in world space.
	//
	// Returns:
	//   - common.Vec3: the target position
	Target() common.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - common.Vec3: the up vector
	Up() common.Vec3

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetEye sets the camera position in world space.
	//
	// Parameters:
	//   - eye: the new eye position
	SetEye(eye common.Vec3)

	// SetTarget sets the look-at point in world space.
	//
	// Parameters:
	//   - target: the new target position
	SetTarget(target common.Vec3)

	// SetAspect sets the aspect ratio. Called on window resize so the
	// projection matches the new surface proportions.
	//
	// Parameters:
	//   - aspect: the new aspect ratio (width / height)
	SetAspect(aspect float32)

	// ViewProjection computes the combined view-projection matrix from the
	// current camera state as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view-projection matrix
	ViewProjection() [16]float32

	// Uniform returns the GPU uniform payload for the current camera state.
	//
	// Returns:
	//   - Uniform: the uniform struct ready for buffer upload
	Uniform() Uniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with defaults matching a window of the given
// pixel size: eye (0, 1, 2) looking at the origin, Y up, 45 degree vertical
// field of view, near 0.1, far 100.
//
// Parameters:
//   - width: surface width in pixels, used for the initial aspect ratio
//   - height: surface height in pixels, used for the initial aspect ratio
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(width, height float32, options ...CameraBuilderOption) Camera {
	aspect := float32(1)
	if height > 0 {
		aspect = width / height
	}
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    common.Vec3{0, 1, 2},
		target: common.Vec3{0, 0, 0},
		up:     common.Vec3{0, 1, 0},
		fovY:   45.0 * (math32.Pi / 180.0),
		aspect: aspect,
		near:   0.1,
		far:    100.0,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Eye() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetEye(eye common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
}

func (c *cameraImpl) SetTarget(target common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) ViewProjection() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var view, proj, viewProj [16]float32
	common.LookAt(view[:],
		c.eye[0], c.eye[1], c.eye[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)
	common.Perspective(proj[:], c.fovY, c.aspect, c.near, c.far)
	common.Mul4(viewProj[:], proj[:], view[:])
	return viewProj
}

func (c *cameraImpl) Uniform() Uniform {
	return Uniform{ViewProj: c.ViewProjection()}
}
