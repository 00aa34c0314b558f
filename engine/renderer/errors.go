package renderer

import (
	"errors"
	"strings"
)

// ErrSurfaceOutdated indicates the surface no longer matches the window,
// usually after a resize. The renderer reconfigures and retries the frame.
var ErrSurfaceOutdated = errors.New("surface outdated")

// ErrSurfaceLost indicates the surface was lost and must be reconfigured
// before another frame can be acquired.
var ErrSurfaceLost = errors.New("surface lost")

// ErrOutOfMemory indicates the GPU could not allocate a frame. This is fatal;
// the render loop must stop.
var ErrOutOfMemory = errors.New("surface out of memory")

// ErrNoSurfaceFormat indicates the adapter/surface pair offers no usable
// surface format or alpha mode. Fatal at build time.
var ErrNoSurfaceFormat = errors.New("no surface format negotiable")

// classifySurfaceError maps an acquisition error from the GPU binding onto
// the renderer's sentinel errors. The binding reports the surface status in
// the error text, so classification matches on it case-insensitively.
// Acquisition timeouts count as outdated: the surface is reconfigured and the
// frame retried rather than treated as fatal.
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "outdated") || strings.Contains(msg, "suboptimal") || strings.Contains(msg, "timeout"):
		return ErrSurfaceOutdated
	case strings.Contains(msg, "lost"):
		return ErrSurfaceLost
	case strings.Contains(msg, "out of memory") || strings.Contains(msg, "outofmemory"):
		return ErrOutOfMemory
	default:
		return err
	}
}
