package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irid-game-framework/irid/engine/model"
	"github.com/irid-game-framework/irid/engine/renderer/shader"
)

const testSource = `
@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("main")
	assert.Equal(t, "main", p.PipelineKey())
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Nil(t, p.RenderPipeline())
}

func TestValidateRequiresShader(t *testing.T) {
	p := NewPipeline("main")
	assert.ErrorIs(t, p.Validate(), ErrMissingShader)
}

func TestValidateRequiresVertexStage(t *testing.T) {
	s := shader.NewShader("main", testSource, shader.WithVertexEntryPoint(""))
	p := NewPipeline("main", WithShader(s))
	assert.ErrorIs(t, p.Validate(), ErrMissingVertexStage)
}

func TestValidateAllowsMissingFragmentStage(t *testing.T) {
	s := shader.NewShader("depth-only", testSource, shader.WithoutFragmentStage())
	p := NewPipeline("depth-only", WithShader(s))
	require.NoError(t, p.Validate())
	assert.Empty(t, p.Shader().FragmentEntryPoint())
}

func TestWithVertexLayouts(t *testing.T) {
	var v model.ModelVertex
	p := NewPipeline("main",
		WithShader(shader.NewShader("main", testSource)),
		WithVertexLayouts(v.Layout()),
	)
	require.NoError(t, p.Validate())
	require.Len(t, p.VertexLayouts(), 1)
	assert.Equal(t, uint64(32), p.VertexLayouts()[0].ArrayStride)
}
