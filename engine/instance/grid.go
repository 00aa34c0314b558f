// Package instance generates the fixed per-instance transform grid drawn by
// the instanced render pass. Generation is a pure function of the grid
// configuration: no randomness, bit-for-bit reproducible.
package instance

import (
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/irid-game-framework/irid/common"
)

// Instance is one per-copy transform in the instanced draw call.
// Immutable once generated; the grid does not move for the engine's lifetime.
type Instance struct {
	Position common.Vec3
	Rotation common.Quat
}

// Raw converts the instance transform to the 4x4 column-major model matrix
// consumed by the vertex shader.
//
// Returns:
//   - [16]float32: the model matrix
func (i Instance) Raw() [16]float32 {
	var m [16]float32
	common.RotationTranslation(m[:], i.Rotation, i.Position)
	return m
}

// Config holds the grid generation parameters. They are explicit
// configuration rather than package-level constants so tests and callers can
// generate grids of any size.
type Config struct {
	// Rows is the number of instances per grid axis; the grid holds Rows²
	// instances in total.
	Rows uint32

	// Displacement is subtracted from every raw grid coordinate to center
	// the grid on the origin.
	Displacement common.Vec3
}

// DefaultConfig returns the engine's stock grid: 10 rows centered on the
// origin with displacement (5, 0, 5).
//
// Returns:
//   - Config: the default grid configuration
func DefaultConfig() Config {
	return ConfigForRows(10)
}

// ConfigForRows returns a centered grid configuration for the given row
// count, with displacement (rows/2, 0, rows/2).
//
// Parameters:
//   - rows: the number of instances per grid axis
//
// Returns:
//   - Config: the centered grid configuration
func ConfigForRows(rows uint32) Config {
	half := float32(rows) * 0.5
	return Config{
		Rows:         rows,
		Displacement: common.Vec3{half, 0, half},
	}
}

// Generate produces the Rows×Rows instance grid in z-major order. For grid
// coordinates (x, z) the position is (x, 0, z) minus the displacement. The
// rotation is π/4 about the normalized position vector, except at the
// exact origin where the identity rotation is used — a zero-length axis
// would produce a degenerate quaternion that scales the instance to zero.
//
// Parameters:
//   - cfg: the grid configuration
//
// Returns:
//   - []Instance: the generated instances, len = cfg.Rows²
func Generate(cfg Config) []Instance {
	instances := make([]Instance, 0, cfg.Rows*cfg.Rows)

	for z := uint32(0); z < cfg.Rows; z++ {
		for x := uint32(0); x < cfg.Rows; x++ {
			position := common.Vec3{float32(x), 0, float32(z)}.Sub(cfg.Displacement)

			var rotation common.Quat
			if position.IsZero() {
				rotation = common.QuatIdentity()
			} else {
				rotation = common.QuatFromAxisAngle(position.Normalized(), math32.Pi/4)
			}

			instances = append(instances, Instance{
				Position: position,
				Rotation: rotation,
			})
		}
	}

	return instances
}

// RawBytes serializes the instances' model matrices into the raw byte
// stream uploaded to the instance vertex buffer (slot 1).
//
// Parameters:
//   - instances: the instances to serialize
//
// Returns:
//   - []byte: the raw instance data, or nil for an empty slice
func RawBytes(instances []Instance) []byte {
	raw := make([][16]float32, len(instances))
	for i, inst := range instances {
		raw[i] = inst.Raw()
	}
	return common.SliceToBytes(raw)
}

// RawLayout returns the instance-step vertex buffer layout for slot 1:
// one 4x4 model matrix per instance split across four vec4 attributes at
// shader locations 5 through 8.
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-instance buffer layout
func RawLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 16 * 4,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 5},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 4 * 4, ShaderLocation: 6},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 8 * 4, ShaderLocation: 7},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 12 * 4, ShaderLocation: 8},
		},
	}
}
