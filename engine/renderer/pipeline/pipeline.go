// Package pipeline holds the render pipeline configuration assembled by the
// renderer before GPU pipeline creation.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/irid-game-framework/irid/engine/renderer/shader"
)

// ErrMissingVertexStage is returned by Validate when the pipeline's shader
// does not declare a vertex entry point. A render pipeline cannot exist
// without a vertex stage.
var ErrMissingVertexStage = errors.New("render pipeline requires a vertex entry point")

// ErrMissingShader is returned by Validate when no shader module is set.
var ErrMissingShader = errors.New("render pipeline requires a shader module")

// pipeline is the implementation of the Pipeline interface.
// It holds the shader, buffer layouts and fixed-function state used during
// GPU pipeline creation, plus the created pipeline handle afterwards.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	shader shader.Shader

	// vertexLayouts are the vertex buffer layouts in slot order; slot 0 is
	// the per-vertex mesh layout, slot 1 the per-instance transform layout.
	vertexLayouts []wgpu.VertexBufferLayout

	// bindGroupLayouts are the bind group layouts in group slot order:
	// group 0 the texture layout, group 1 the camera layout.
	bindGroupLayouts []*wgpu.BindGroupLayout

	// renderPipeline is the created pipeline handle, nil before creation
	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline defines the interface for a render pipeline configuration. It
// carries the shader module, vertex buffer layouts, bind group layouts and
// fixed-function state, and stores the GPU pipeline handle after creation.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the shader module this pipeline draws with.
	//
	// Returns:
	//   - shader.Shader: the shader module, or nil if not set
	Shader() shader.Shader

	// VertexLayouts returns the vertex buffer layouts in slot order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayouts returns the bind group layouts in group slot order:
	// texture at group 0, camera at group 1.
	//
	// Returns:
	//   - []*wgpu.BindGroupLayout: the bind group layouts
	BindGroupLayouts() []*wgpu.BindGroupLayout

	// Validate checks that the configuration can produce a render pipeline.
	//
	// Returns:
	//   - error: ErrMissingShader if no shader is set, ErrMissingVertexStage
	//     if the shader declares no vertex entry point, nil otherwise
	Validate() error

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, only applied when blending is enabled
	BlendState() *wgpu.BlendState

	// SetBindGroupLayouts sets the bind group layouts in group slot order.
	//
	// Parameters:
	//   - layouts: the bind group layouts, texture first then camera
	SetBindGroupLayouts(layouts ...*wgpu.BindGroupLayout)

	// SetRenderPipeline stores the created GPU pipeline handle.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// RenderPipeline returns the created GPU pipeline handle.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the pipeline handle, nil before creation
	RenderPipeline() *wgpu.RenderPipeline
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) BindGroupLayouts() []*wgpu.BindGroupLayout {
	return p.bindGroupLayouts
}

func (p *pipeline) Validate() error {
	if p.shader == nil {
		return fmt.Errorf("pipeline %q: %w", p.pipelineKey, ErrMissingShader)
	}
	if p.shader.VertexEntryPoint() == "" {
		return fmt.Errorf("pipeline %q: %w", p.pipelineKey, ErrMissingVertexStage)
	}
	return nil
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetBindGroupLayouts(layouts ...*wgpu.BindGroupLayout) {
	p.bindGroupLayouts = layouts
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}
