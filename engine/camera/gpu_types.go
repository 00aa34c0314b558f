package camera

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/irid-game-framework/irid/common"
)

// Uniform is the GPU-aligned camera uniform written to the camera buffer
// each frame. Matches the WGSL CameraUniform struct layout exactly
// (a single column-major mat4x4<f32>, 64 bytes).
type Uniform struct {
	ViewProj [16]float32
}

// Bytes serializes the uniform for a queue buffer write.
//
// Returns:
//   - []byte: a 64-byte view of the uniform's memory
func (u *Uniform) Bytes() []byte {
	return common.StructToBytes(u)
}

// Metadata bundles the camera's GPU resources: the uniform buffer the
// view-projection matrix is written into, its bind group layout, and the
// bind group bound at group index 1 during the render pass. Created once
// by the renderer backend at build time; immutable afterwards.
type Metadata struct {
	buffer    *wgpu.Buffer
	layout    *wgpu.BindGroupLayout
	bindGroup *wgpu.BindGroup
}

// NewMetadata bundles pre-created camera GPU resources.
// Called by the renderer backend (and by test fakes).
//
// Parameters:
//   - buffer: the camera uniform buffer
//   - layout: the camera bind group layout
//   - bindGroup: the camera bind group
//
// Returns:
//   - *Metadata: the immutable resource bundle
func NewMetadata(buffer *wgpu.Buffer, layout *wgpu.BindGroupLayout, bindGroup *wgpu.BindGroup) *Metadata {
	return &Metadata{
		buffer:    buffer,
		layout:    layout,
		bindGroup: bindGroup,
	}
}

// Buffer returns the camera uniform buffer.
func (m *Metadata) Buffer() *wgpu.Buffer {
	return m.buffer
}

// BindGroupLayout returns the camera bind group layout.
func (m *Metadata) BindGroupLayout() *wgpu.BindGroupLayout {
	return m.layout
}

// BindGroup returns the camera bind group.
func (m *Metadata) BindGroup() *wgpu.BindGroup {
	return m.bindGroup
}
