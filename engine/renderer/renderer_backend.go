package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/irid-game-framework/irid/engine/camera"
	"github.com/irid-game-framework/irid/engine/renderer/pipeline"
	"github.com/irid-game-framework/irid/engine/renderer/texture"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// MeshBuffers holds the GPU buffers for one indexed mesh. Indices are 16-bit.
type MeshBuffers struct {
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	IndexCount   uint32
}

// wgpuRendererBackend is the backend surface the Renderer drives. It isolates
// every GPU call behind an interface so the frame orchestration can be tested
// without a device.
type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Surface() *wgpu.Surface

	// ConfigureSurface negotiates the surface format with the adapter,
	// configures the swapchain for the given size and recreates the depth
	// texture to match. Required on startup and after every resize.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the depth texture could not be created
	ConfigureSurface(width, height int) error

	// SurfaceFormat returns the negotiated surface texture format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format; valid after ConfigureSurface
	SurfaceFormat() wgpu.TextureFormat

	// MaxTextureDimension returns the device's maximum 2D texture dimension,
	// used to size the texture metadata cache.
	//
	// Returns:
	//   - uint32: the maximum texture dimension in pixels
	MaxTextureDimension() uint32

	// CreateTextureMetadata creates the texture, view, sampler and bind
	// group for one metadata cache size class.
	//
	// Parameters:
	//   - width: the size class width in pixels
	//   - height: the size class height in pixels
	//
	// Returns:
	//   - texture.Metadata: the created record
	//   - error: an error if any GPU resource could not be created
	CreateTextureMetadata(width, height uint32) (texture.Metadata, error)

	// WriteTextureData uploads RGBA8 pixel rows into the metadata record's
	// texture using its stored data layout and extent.
	//
	// Parameters:
	//   - metadata: the size class record to write into
	//   - pixels: the tightly packed RGBA8 pixel data
	//
	// Returns:
	//   - error: an error if the write could not be queued
	WriteTextureData(metadata texture.Metadata, pixels []byte) error

	// TextureBindGroupLayout returns the shared layout for texture bind
	// groups: a sampled 2D float texture at binding 0 and a filtering
	// sampler at binding 1, both visible to the fragment stage.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the shared texture bind group layout
	TextureBindGroupLayout() *wgpu.BindGroupLayout

	// InitCameraMetadata creates the camera uniform buffer, bind group
	// layout and bind group, and uploads the initial uniform contents.
	//
	// Parameters:
	//   - data: the initial uniform bytes
	//
	// Returns:
	//   - camera.Metadata: the created camera GPU bundle
	//   - error: an error if any GPU resource could not be created
	InitCameraMetadata(data []byte) (*camera.Metadata, error)

	// WriteCameraUniform uploads new uniform contents into the camera's
	// buffer.
	//
	// Parameters:
	//   - metadata: the camera GPU bundle
	//   - data: the uniform bytes to write
	//
	// Returns:
	//   - error: an error if the write could not be queued
	WriteCameraUniform(metadata *camera.Metadata, data []byte) error

	// InitMeshBuffers creates and fills the vertex and index buffers for an
	// indexed mesh.
	//
	// Parameters:
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw 16-bit index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - MeshBuffers: the created buffers
	//   - error: an error if the buffers could not be created
	InitMeshBuffers(vertexData, indexData []byte, indexCount uint32) (MeshBuffers, error)

	// InitInstanceBuffer creates and fills the per-instance transform
	// buffer bound at vertex slot 1.
	//
	// Parameters:
	//   - data: the raw instance matrix bytes
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if the buffer could not be created
	InitInstanceBuffer(data []byte) (*wgpu.Buffer, error)

	// RegisterRenderPipeline creates the GPU render pipeline described by
	// the pipeline configuration and stores the handle back on it. The
	// fragment stage is omitted when the shader has no fragment entry point.
	//
	// Parameters:
	//   - p: the pipeline configuration to realize
	//
	// Returns:
	//   - error: an error if the pipeline could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// BeginFrame acquires the next swapchain texture, creates a command
	// encoder and begins the render pass with the given clear color. Must
	// be paired with EndFrame.
	//
	// Parameters:
	//   - clearValue: the color the pass clears to
	//
	// Returns:
	//   - error: ErrSurfaceOutdated, ErrSurfaceLost or ErrOutOfMemory when
	//     acquisition fails with the matching surface status
	BeginFrame(clearValue wgpu.Color) error

	// DrawCall encodes a single instanced indexed draw within the current
	// render pass.
	//
	// Parameters:
	//   - p: the pipeline to draw with
	//   - mesh: the mesh buffers to bind at vertex slot 0
	//   - instanceBuffer: the instance buffer to bind at vertex slot 1
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: the bind groups in slot order, texture then camera
	DrawCall(p pipeline.Pipeline, mesh MeshBuffers, instanceBuffer *wgpu.Buffer, instanceCount uint32, bindGroups []*wgpu.BindGroup)

	// EndFrame ends the render pass and submits the command buffer to the
	// GPU queue. Does not present — call Present afterwards.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired surface texture to the display and
	// releases the frame's swapchain references. Must be called once per
	// frame after EndFrame.
	Present()
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
