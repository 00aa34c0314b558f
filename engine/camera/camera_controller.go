package camera

import (
	"sync"

	"github.com/irid-game-framework/irid/common"
)

// controllerImpl is the implementation of the Controller interface.
// Key state accumulates between frames and is consumed by UpdateCamera.
type controllerImpl struct {
	mu *sync.Mutex

	speed float32

	forwardPressed  bool
	backwardPressed bool
	leftPressed     bool
	rightPressed    bool
}

// Controller defines the interface for keyboard-driven camera movement.
// The controller accumulates key state from window input callbacks and
// mutates the Camera's eye position once per frame, before the camera
// uniform is uploaded.
type Controller interface {
	// ProcessKeyEvent records a key press or release.
	// Recognized keys: W/Up (forward), S/Down (backward), A/Left (strafe
	// left), D/Right (strafe right).
	//
	// Parameters:
	//   - keyCode: the virtual key code (see common key code constants)
	//   - pressed: true on press, false on release
	//
	// Returns:
	//   - bool: true if the key was recognized and consumed
	ProcessKeyEvent(keyCode uint32, pressed bool) bool

	// UpdateCamera applies the accumulated key state to the camera,
	// moving the eye toward/away from the target and orbiting it sideways.
	// Called once per frame by the renderer before the uniform upload.
	//
	// Parameters:
	//   - cam: the camera to mutate
	UpdateCamera(cam Camera)

	// Speed returns the movement speed in world units per frame.
	//
	// Returns:
	//   - float32: the configured speed
	Speed() float32
}

var _ Controller = &controllerImpl{}

// NewController creates a Controller with the given movement speed.
//
// Parameters:
//   - speed: movement in world units per frame (the engine default is 0.2)
//
// Returns:
//   - Controller: the newly created controller
func NewController(speed float32) Controller {
	return &controllerImpl{
		mu:    &sync.Mutex{},
		speed: speed,
	}
}

func (cc *controllerImpl) ProcessKeyEvent(keyCode uint32, pressed bool) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	switch keyCode {
	case common.KeyW, common.KeyUp:
		cc.forwardPressed = pressed
	case common.KeyS, common.KeyDown:
		cc.backwardPressed = pressed
	case common.KeyA, common.KeyLeft:
		cc.leftPressed = pressed
	case common.KeyD, common.KeyRight:
		cc.rightPressed = pressed
	default:
		return false
	}
	return true
}

func (cc *controllerImpl) UpdateCamera(cam Camera) {
	cc.mu.Lock()
	forward := cc.forwardPressed
	backward := cc.backwardPressed
	left := cc.leftPressed
	right := cc.rightPressed
	speed := cc.speed
	cc.mu.Unlock()

	eye := cam.Eye()
	target := cam.Target()

	toTarget := target.Sub(eye)
	dir := toTarget.Normalized()
	dist := toTarget.Length()

	// The distance check keeps the eye from overshooting through the target.
	if forward && dist > speed {
		eye = eye.Add(dir.Scale(speed))
	}
	if backward {
		eye = eye.Sub(dir.Scale(speed))
	}

	if left || right {
		rightAxis := dir.Cross(cam.Up())

		// Recompute after the forward/backward move so strafing orbits at
		// the post-move radius.
		toTarget = target.Sub(eye)
		dist = toTarget.Length()

		if right {
			eye = target.Sub(toTarget.Sub(rightAxis.Scale(speed)).Normalized().Scale(dist))
		}
		if left {
			eye = target.Sub(toTarget.Add(rightAxis.Scale(speed)).Normalized().Scale(dist))
		}
	}

	cam.SetEye(eye)
}

func (cc *controllerImpl) Speed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.speed
}
