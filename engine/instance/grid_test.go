package instance

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irid-game-framework/irid/common"
)

func TestGenerateDefaultGrid(t *testing.T) {
	instances := Generate(DefaultConfig())
	require.Len(t, instances, 100)

	// z-major order: index = z*rows + x, position = (x,0,z) - (5,0,5).
	assert.Equal(t, common.Vec3{-5, 0, -5}, instances[0].Position)
	assert.Equal(t, common.Vec3{-4, 0, -5}, instances[1].Position)
	assert.Equal(t, common.Vec3{-5, 0, -4}, instances[10].Position)
	assert.Equal(t, common.Vec3{4, 0, 4}, instances[99].Position)
}

func TestGenerateIdentityRotationAtOrigin(t *testing.T) {
	cfg := ConfigForRows(3) // displacement (1.5, 0, 1.5), no instance lands on the origin
	for _, inst := range Generate(cfg) {
		assert.False(t, inst.Position.IsZero())
	}

	cfg = Config{Rows: 3, Displacement: common.Vec3{1, 0, 1}}
	instances := Generate(cfg)
	origin := instances[1*3+1]
	require.True(t, origin.Position.IsZero())
	assert.Equal(t, common.QuatIdentity(), origin.Rotation)

	// Every other instance rotates π/4 about its normalized position.
	for i, inst := range instances {
		if i == 1*3+1 {
			continue
		}
		axis := inst.Position.Normalized()
		expected := common.QuatFromAxisAngle(axis, math32.Pi/4)
		assert.Equal(t, expected, inst.Rotation, "instance %d", i)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	a := RawBytes(Generate(cfg))
	b := RawBytes(Generate(cfg))
	assert.Equal(t, a, b)
}

func TestRawBytesLength(t *testing.T) {
	instances := Generate(ConfigForRows(4))
	raw := RawBytes(instances)
	assert.Len(t, raw, 16*16*4)
}

func TestRawTranslationColumn(t *testing.T) {
	inst := Instance{
		Position: common.Vec3{1, 2, 3},
		Rotation: common.QuatIdentity(),
	}
	m := inst.Raw()

	// Column-major: translation occupies elements 12..14.
	assert.Equal(t, float32(1), m[12])
	assert.Equal(t, float32(2), m[13])
	assert.Equal(t, float32(3), m[14])
	assert.Equal(t, float32(1), m[15])
	// Identity rotation leaves the upper 3x3 as identity.
	assert.Equal(t, float32(1), m[0])
	assert.Equal(t, float32(1), m[5])
	assert.Equal(t, float32(1), m[10])
}

func TestRawLayout(t *testing.T) {
	layout := RawLayout()
	assert.Equal(t, uint64(64), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeInstance, layout.StepMode)
	require.Len(t, layout.Attributes, 4)
	for i, attr := range layout.Attributes {
		assert.Equal(t, wgpu.VertexFormatFloat32x4, attr.Format)
		assert.Equal(t, uint64(i*16), attr.Offset)
		assert.Equal(t, uint32(5+i), attr.ShaderLocation)
	}
}
