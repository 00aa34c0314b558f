package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestModelVertexLayout(t *testing.T) {
	layout := ModelVertex{}.Layout()

	assert.Equal(t, uint64(32), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	assert.Len(t, layout.Attributes, 3)

	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)
	assert.Equal(t, uint64(0), layout.Attributes[0].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[2].Format)
	assert.Equal(t, uint64(20), layout.Attributes[2].Offset)
}

func TestColorVertexLayout(t *testing.T) {
	layout := ColorVertex{}.Layout()

	assert.Equal(t, uint64(24), layout.ArrayStride)
	assert.Len(t, layout.Attributes, 2)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
}

func TestTexturedVertexLayout(t *testing.T) {
	layout := TexturedVertex{}.Layout()

	assert.Equal(t, uint64(20), layout.ArrayStride)
	assert.Len(t, layout.Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
}

func TestShaderLocationsAreSequential(t *testing.T) {
	for _, layout := range []wgpu.VertexBufferLayout{
		ModelVertex{}.Layout(),
		ColorVertex{}.Layout(),
		TexturedVertex{}.Layout(),
	} {
		for i, attr := range layout.Attributes {
			assert.Equal(t, uint32(i), attr.ShaderLocation)
		}
	}
}

func TestVertexBytes(t *testing.T) {
	vertices := []ModelVertex{
		{Position: [3]float32{1, 2, 3}, TexCoords: [2]float32{0.5, 0.25}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{4, 5, 6}},
	}

	data := VertexBytes(vertices)
	assert.Len(t, data, 64)

	// First float of the stream is Position[0] of the first vertex.
	first := math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, float32(1), first)

	// Second vertex begins one stride in.
	second := math.Float32frombits(binary.LittleEndian.Uint32(data[32:36]))
	assert.Equal(t, float32(4), second)

	assert.Nil(t, VertexBytes([]ModelVertex(nil)))
}

func TestIndexBytes(t *testing.T) {
	data := IndexBytes([]uint16{0, 1, 4, 1, 2, 4})
	assert.Len(t, data, 12)
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(data[4:6]))

	assert.Nil(t, IndexBytes(nil))
}
