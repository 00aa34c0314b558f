// Package texture holds the GPU-side texture metadata records and the eager
// power-of-two metadata cache the renderer binds textures through.
package texture

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Metadata bundles the GPU handles and upload geometry for one texture
// size class. Entries are created once at cache construction and reused for
// every texture whose dimensions match.
type Metadata interface {
	// Texture returns the GPU texture handle.
	//
	// Returns:
	//   - *wgpu.Texture: the texture
	Texture() *wgpu.Texture

	// View returns the texture view bound into the pipeline's texture
	// bind group.
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view
	View() *wgpu.TextureView

	// Sampler returns the sampler bound alongside the view.
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	Sampler() *wgpu.Sampler

	// BindGroup returns the texture bind group for group slot 0.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group
	BindGroup() *wgpu.BindGroup

	// DataLayout returns the row layout used when writing pixel data into
	// the texture.
	//
	// Returns:
	//   - wgpu.TextureDataLayout: offset, bytes per row and rows per image
	DataLayout() wgpu.TextureDataLayout

	// Extent returns the texture's full copy extent.
	//
	// Returns:
	//   - wgpu.Extent3D: width, height and one array layer
	Extent() wgpu.Extent3D
}

type metadataImpl struct {
	texture    *wgpu.Texture
	view       *wgpu.TextureView
	sampler    *wgpu.Sampler
	bindGroup  *wgpu.BindGroup
	dataLayout wgpu.TextureDataLayout
	extent     wgpu.Extent3D
}

var _ Metadata = &metadataImpl{}

// NewMetadata assembles a metadata record from already-created GPU handles.
// The data layout and extent are derived from the dimensions assuming
// tightly-packed RGBA8 rows.
//
// Parameters:
//   - texture: the GPU texture handle
//   - view: the texture view
//   - sampler: the sampler
//   - bindGroup: the texture bind group
//   - width: the texture width in pixels
//   - height: the texture height in pixels
//
// Returns:
//   - Metadata: the assembled record
func NewMetadata(texture *wgpu.Texture, view *wgpu.TextureView, sampler *wgpu.Sampler, bindGroup *wgpu.BindGroup, width, height uint32) Metadata {
	return &metadataImpl{
		texture:   texture,
		view:      view,
		sampler:   sampler,
		bindGroup: bindGroup,
		dataLayout: wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		extent: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	}
}

func (m *metadataImpl) Texture() *wgpu.Texture {
	return m.texture
}

func (m *metadataImpl) View() *wgpu.TextureView {
	return m.view
}

func (m *metadataImpl) Sampler() *wgpu.Sampler {
	return m.sampler
}

func (m *metadataImpl) BindGroup() *wgpu.BindGroup {
	return m.bindGroup
}

func (m *metadataImpl) DataLayout() wgpu.TextureDataLayout {
	return m.dataLayout
}

func (m *metadataImpl) Extent() wgpu.Extent3D {
	return m.extent
}

// DepthMetadata holds the depth attachment for the render pass. Recreated on
// every surface resize so the depth buffer always matches the surface size.
type DepthMetadata struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

// Release drops the depth texture handles. Safe to call on a zero value.
func (d *DepthMetadata) Release() {
	if d.View != nil {
		d.View.Release()
		d.View = nil
	}
	if d.Texture != nil {
		d.Texture.Release()
		d.Texture = nil
	}
}
