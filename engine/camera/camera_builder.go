package camera

import "github.com/irid-game-framework/irid/common"

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithEye sets the initial camera position in world space.
//
// Parameters:
//   - eye: the eye position
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithEye(eye common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.eye = eye
	}
}

// WithTarget sets the initial look-at point in world space.
//
// Parameters:
//   - target: the target position
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithTarget(target common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: the up vector (typically 0,1,0)
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithUp(up common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFovY sets the vertical field of view.
//
// Parameters:
//   - fovY: field of view in radians
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithFovY(fovY float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fovY = fovY
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance (must be > 0)
//   - far: far plane distance (must be > near)
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}
