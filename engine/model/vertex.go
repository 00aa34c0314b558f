package model

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/irid-game-framework/irid/common"
)

// Vertex is the capability contract for mesh vertex types: a type that can
// describe its own GPU buffer layout. Each concrete vertex struct reports
// the wgpu.VertexBufferLayout matching its in-memory representation, so the
// pipeline configuration can consume any of the closed set of vertex kinds
// without reflection.
type Vertex interface {
	// Layout returns the vertex buffer layout describing this vertex type's
	// memory representation for vertex buffer slot 0.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: the per-vertex buffer layout
	Layout() wgpu.VertexBufferLayout
}

// ModelVertex is the standard mesh vertex: position, texture coordinates
// and normal. Size: 32 bytes, tightly packed.
type ModelVertex struct {
	Position  [3]float32
	TexCoords [2]float32
	Normal    [3]float32
}

var _ Vertex = ModelVertex{}

func (ModelVertex) Layout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 8 * 4,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 3 * 4, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 5 * 4, ShaderLocation: 2},
		},
	}
}

// ColorVertex is a minimal vertex carrying a position and an RGB color,
// used by untextured debug geometry. Size: 24 bytes.
type ColorVertex struct {
	Position [3]float32
	Color    [3]float32
}

var _ Vertex = ColorVertex{}

func (ColorVertex) Layout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 6 * 4,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 3 * 4, ShaderLocation: 1},
		},
	}
}

// TexturedVertex carries a position and texture coordinates with no normal.
// Size: 20 bytes.
type TexturedVertex struct {
	Position  [3]float32
	TexCoords [2]float32
}

var _ Vertex = TexturedVertex{}

func (TexturedVertex) Layout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 5 * 4,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 3 * 4, ShaderLocation: 1},
		},
	}
}

// VertexBytes serializes a slice of vertices into the raw byte stream
// uploaded to a GPU vertex buffer. The vertex structs are tightly packed
// float32 fields, so the in-memory representation is the wire format.
//
// Parameters:
//   - vertices: the vertex slice to serialize
//
// Returns:
//   - []byte: the raw vertex data, or nil for an empty slice
func VertexBytes[V Vertex](vertices []V) []byte {
	return common.SliceToBytes(vertices)
}

// IndexBytes serializes 16-bit mesh indices for a GPU index buffer.
// The engine draws with a fixed 16-bit index format.
//
// Parameters:
//   - indices: the index slice to serialize
//
// Returns:
//   - []byte: the raw index data, or nil for an empty slice
func IndexBytes(indices []uint16) []byte {
	return common.SliceToBytes(indices)
}
