package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/irid-game-framework/irid/engine/assets"
	"github.com/irid-game-framework/irid/engine/camera"
	"github.com/irid-game-framework/irid/engine/instance"
	"github.com/irid-game-framework/irid/engine/model"
	"github.com/irid-game-framework/irid/engine/renderer/shader"
)

// RendererBuilderOption is a functional option used to configure a Renderer during construction.
type RendererBuilderOption func(*renderer)

// WithClearColor sets the color the render pass clears to. Defaults to white.
//
// Parameters:
//   - r, g, b, a: the clear color components in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that sets the clear color
func WithClearColor(r, g, b, a float64) RendererBuilderOption {
	return func(rd *renderer) {
		rd.clearColor = wgpu.Color{R: r, G: g, B: b, A: a}
	}
}

// WithPresentMode sets the surface present mode. Defaults to
// wgpu.PresentModeFifo (vsync).
//
// Parameters:
//   - mode: the present mode to configure the surface with
//
// Returns:
//   - RendererBuilderOption: a function that sets the present mode
func WithPresentMode(mode wgpu.PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithPowerPreference sets the adapter power preference. Defaults to
// wgpu.PowerPreferenceHighPerformance.
//
// Parameters:
//   - preference: the power preference used when requesting an adapter
//
// Returns:
//   - RendererBuilderOption: a function that sets the power preference
func WithPowerPreference(preference wgpu.PowerPreference) RendererBuilderOption {
	return func(r *renderer) {
		r.powerPreference = preference
	}
}

// WithSurfaceFormat sets the preferred surface texture format. The format is
// used when the adapter/surface pair supports it; otherwise the first
// supported format is selected, which is also the default behavior.
//
// Parameters:
//   - format: the preferred surface format
//
// Returns:
//   - RendererBuilderOption: a function that sets the preferred surface format
func WithSurfaceFormat(format wgpu.TextureFormat) RendererBuilderOption {
	return func(r *renderer) {
		r.surfaceFormat = format
	}
}

// WithForceFallbackAdapter forces the use of a software fallback adapter.
//
// Returns:
//   - RendererBuilderOption: a function that enables the fallback adapter
func WithForceFallbackAdapter() RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = true
	}
}

// WithShader sets the shader module used by the default pipeline. Defaults
// to the built-in textured instancing shader.
//
// Parameters:
//   - s: the shader module to draw with
//
// Returns:
//   - RendererBuilderOption: a function that sets the shader
func WithShader(s shader.Shader) RendererBuilderOption {
	return func(r *renderer) {
		r.shdr = s
	}
}

// WithTexture sets the texture uploaded and bound for the draw call. Its
// dimensions must be powers of two within the device limit.
//
// Parameters:
//   - t: the decoded texture to upload
//
// Returns:
//   - RendererBuilderOption: a function that sets the texture
func WithTexture(t *assets.Texture) RendererBuilderOption {
	return func(r *renderer) {
		r.sourceTexture = t
	}
}

// WithMesh sets the indexed mesh drawn each frame. The vertex layout is
// derived from the vertex type. Indices are 16-bit.
//
// Parameters:
//   - vertices: the mesh vertices
//   - indices: the triangle list indices
//
// Returns:
//   - RendererBuilderOption: a function that sets the mesh
func WithMesh[V model.Vertex](vertices []V, indices []uint16) RendererBuilderOption {
	return func(r *renderer) {
		var v V
		r.vertexData = model.VertexBytes(vertices)
		r.indexData = model.IndexBytes(indices)
		r.indexCount = uint32(len(indices))
		r.vertexLayout = v.Layout()
		r.hasMesh = len(vertices) > 0 && len(indices) > 0
	}
}

// WithGridConfig sets the instance grid configuration. Defaults to the
// 10x10 centered grid.
//
// Parameters:
//   - cfg: the grid configuration
//
// Returns:
//   - RendererBuilderOption: a function that sets the grid configuration
func WithGridConfig(cfg instance.Config) RendererBuilderOption {
	return func(r *renderer) {
		r.gridConfig = cfg
	}
}

// WithCamera sets the scene camera. Defaults to a camera at (0, 1, 2)
// looking at the origin with the window's aspect ratio.
//
// Parameters:
//   - cam: the camera to render with
//
// Returns:
//   - RendererBuilderOption: a function that sets the camera
func WithCamera(cam camera.Camera) RendererBuilderOption {
	return func(r *renderer) {
		r.cam = cam
	}
}

// WithCameraController sets the camera controller driving per-frame camera
// updates. Defaults to a keyboard controller with speed 0.2.
//
// Parameters:
//   - controller: the camera controller
//
// Returns:
//   - RendererBuilderOption: a function that sets the camera controller
func WithCameraController(controller camera.Controller) RendererBuilderOption {
	return func(r *renderer) {
		r.controller = controller
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
//
// Parameters:
//   - logger: the zap logger to use
//
// Returns:
//   - RendererBuilderOption: a function that sets the logger
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.logger = logger
	}
}
