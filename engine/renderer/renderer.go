// Package renderer drives the frame loop: it owns the GPU backend, the
// texture metadata cache, the camera GPU state and the render pipeline, and
// orchestrates the redraw sequence each frame.
package renderer

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/irid-game-framework/irid/engine/assets"
	"github.com/irid-game-framework/irid/engine/camera"
	"github.com/irid-game-framework/irid/engine/instance"
	"github.com/irid-game-framework/irid/engine/model"
	"github.com/irid-game-framework/irid/engine/renderer/pipeline"
	"github.com/irid-game-framework/irid/engine/renderer/shader"
	"github.com/irid-game-framework/irid/engine/renderer/texture"
	"github.com/irid-game-framework/irid/engine/window"
)

//go:embed assets/shader.wgsl
var defaultShaderSource string

// DefaultShader returns the built-in textured instancing shader used when no
// shader option is provided.
//
// Returns:
//   - shader.Shader: the default shader module
func DefaultShader() shader.Shader {
	return shader.NewShader("default", defaultShaderSource)
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	backend RendererBackend

	width  int
	height int

	clearColor           wgpu.Color
	presentMode          wgpu.PresentMode
	powerPreference      wgpu.PowerPreference
	forceFallbackAdapter bool
	surfaceFormat        wgpu.TextureFormat

	shdr shader.Shader
	pipe pipeline.Pipeline

	cam        camera.Camera
	controller camera.Controller
	cameraMeta *camera.Metadata

	textureCache  texture.MetadataCache
	boundTexture  texture.Metadata
	sourceTexture *assets.Texture

	// Mesh staging collected from builder options
	vertexData   []byte
	indexData    []byte
	indexCount   uint32
	vertexLayout wgpu.VertexBufferLayout
	hasMesh      bool

	mesh MeshBuffers

	gridConfig     instance.Config
	instanceBuffer *wgpu.Buffer
	instanceCount  uint32

	warnedMissingTexture bool
}

// Renderer owns the full GPU state for one window and drives the frame loop.
//
// Construction performs the ordered GPU bring-up: backend and surface,
// camera state, the eager texture metadata cache, the render pipeline, and
// finally the texture, mesh and instance uploads. Any failure aborts
// construction with an error describing the failing stage.
type Renderer interface {
	// Redraw renders one frame: updates the camera uniform, acquires the
	// next surface texture, encodes the draw, submits and presents. When
	// the surface is outdated or lost it is reconfigured and acquisition
	// retried once.
	//
	// Returns:
	//   - error: ErrOutOfMemory when the GPU cannot allocate a frame (the
	//     caller must stop the loop), or any other unrecoverable error
	Redraw() error

	// Resize reconfigures the surface and depth buffer for a new
	// framebuffer size and updates the camera aspect ratio. Zero-sized
	// framebuffers (minimized windows) are ignored.
	//
	// Parameters:
	//   - width: the new framebuffer width in pixels
	//   - height: the new framebuffer height in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be reconfigured
	Resize(width, height int) error

	// ProcessKeyEvent forwards a key event to the camera controller.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	//   - pressed: true on press, false on release
	//
	// Returns:
	//   - bool: true if the controller consumed the event
	ProcessKeyEvent(keyCode uint32, pressed bool) bool

	// SetClearColor sets the color the render pass clears to.
	//
	// Parameters:
	//   - r, g, b, a: the clear color components in [0, 1]
	SetClearColor(r, g, b, a float64)

	// Camera returns the scene camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Size returns the current surface size in pixels.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	Size() (int, int)
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer bound to the given window and brings up all
// GPU state in order. The surface descriptor and initial size come from the
// window; everything else is configured through options.
//
// Parameters:
//   - win: the window to render into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the fully initialized renderer
//   - error: an error naming the build stage that failed
func NewRenderer(win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:              &sync.Mutex{},
		logger:          zap.NewNop(),
		width:           win.Width(),
		height:          win.Height(),
		clearColor:      wgpu.Color{R: 1, G: 1, B: 1, A: 1},
		presentMode:     wgpu.PresentModeFifo,
		powerPreference: wgpu.PowerPreferenceHighPerformance,
		gridConfig:      instance.DefaultConfig(),
		vertexLayout:    model.ModelVertex{}.Layout(),
	}
	for _, opt := range options {
		opt(r)
	}

	if r.shdr == nil {
		r.shdr = DefaultShader()
	}
	if r.controller == nil {
		r.controller = camera.NewController(0.2)
	}

	if r.backend == nil {
		backend, err := newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, r.powerPreference, r.presentMode, r.surfaceFormat, r.logger)
		if err != nil {
			return nil, fmt.Errorf("backend init: %w", err)
		}
		r.backend = backend
	}

	if err := r.backend.ConfigureSurface(r.width, r.height); err != nil {
		return nil, fmt.Errorf("surface configuration: %w", err)
	}

	if r.cam == nil {
		r.cam = camera.NewCamera(float32(r.width), float32(r.height))
	}
	uniform := r.cam.Uniform()
	cameraMeta, err := r.backend.InitCameraMetadata(uniform.Bytes())
	if err != nil {
		return nil, fmt.Errorf("camera state init: %w", err)
	}
	r.cameraMeta = cameraMeta

	cache, err := texture.NewMetadataCache(r.backend.MaxTextureDimension(), r.backend.CreateTextureMetadata)
	if err != nil {
		return nil, fmt.Errorf("texture metadata cache init: %w", err)
	}
	r.textureCache = cache

	if r.pipe == nil {
		r.pipe = pipeline.NewPipeline("main",
			pipeline.WithShader(r.shdr),
			pipeline.WithVertexLayouts(r.vertexLayout, instance.RawLayout()),
		)
	}
	if err := r.pipe.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline validation: %w", err)
	}
	r.pipe.SetBindGroupLayouts(r.backend.TextureBindGroupLayout(), r.cameraMeta.BindGroupLayout())
	if err := r.backend.RegisterRenderPipeline(r.pipe); err != nil {
		return nil, fmt.Errorf("pipeline creation: %w", err)
	}

	if r.sourceTexture != nil {
		if err := r.bindTexture(r.sourceTexture); err != nil {
			return nil, err
		}
	}

	if r.hasMesh {
		mesh, err := r.backend.InitMeshBuffers(r.vertexData, r.indexData, r.indexCount)
		if err != nil {
			return nil, fmt.Errorf("mesh buffer init: %w", err)
		}
		r.mesh = mesh
	}

	instances := instance.Generate(r.gridConfig)
	r.instanceCount = uint32(len(instances))
	instanceBuffer, err := r.backend.InitInstanceBuffer(instance.RawBytes(instances))
	if err != nil {
		return nil, fmt.Errorf("instance buffer init: %w", err)
	}
	r.instanceBuffer = instanceBuffer

	r.logger.Info("renderer initialized",
		zap.Int("width", r.width),
		zap.Int("height", r.height),
		zap.Uint32("instances", r.instanceCount),
		zap.Bool("mesh", r.hasMesh),
		zap.Bool("texture", r.boundTexture != nil),
	)
	return r, nil
}

// bindTexture resolves the cache entry matching the texture's dimensions and
// uploads its pixels into that entry.
func (r *renderer) bindTexture(t *assets.Texture) error {
	metadata, err := r.textureCache.Lookup(t.Width(), t.Height())
	if err != nil {
		return fmt.Errorf("texture %q: %w", t.Path(), err)
	}
	pixels, err := t.RGBA8Bytes()
	if err != nil {
		return fmt.Errorf("texture %q: %w", t.Path(), err)
	}
	if err := r.backend.WriteTextureData(metadata, pixels); err != nil {
		return fmt.Errorf("texture %q upload: %w", t.Path(), err)
	}
	r.boundTexture = metadata
	return nil
}

func (r *renderer) Redraw() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.controller.UpdateCamera(r.cam)
	uniform := r.cam.Uniform()
	if err := r.backend.WriteCameraUniform(r.cameraMeta, uniform.Bytes()); err != nil {
		return fmt.Errorf("camera uniform write: %w", err)
	}

	if err := r.backend.BeginFrame(r.clearColor); err != nil {
		if !errors.Is(err, ErrSurfaceOutdated) && !errors.Is(err, ErrSurfaceLost) {
			return err
		}
		// One reconfigure-and-retry; a second failure propagates.
		r.logger.Warn("surface reconfiguration required", zap.Error(err))
		if cfgErr := r.backend.ConfigureSurface(r.width, r.height); cfgErr != nil {
			return fmt.Errorf("surface reconfiguration: %w", cfgErr)
		}
		if err = r.backend.BeginFrame(r.clearColor); err != nil {
			return err
		}
	}

	switch {
	case r.hasMesh && r.boundTexture != nil:
		r.backend.DrawCall(r.pipe, r.mesh, r.instanceBuffer, r.instanceCount, []*wgpu.BindGroup{
			r.boundTexture.BindGroup(),
			r.cameraMeta.BindGroup(),
		})
	case r.hasMesh && !r.warnedMissingTexture:
		r.logger.Warn("mesh has no bound texture, draw skipped")
		r.warnedMissingTexture = true
	}

	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("frame submission: %w", err)
	}
	r.backend.Present()
	return nil
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if width == 0 || height == 0 {
		return nil
	}
	r.width = width
	r.height = height
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("surface reconfiguration: %w", err)
	}
	r.cam.SetAspect(float32(width) / float32(height))
	return nil
}

func (r *renderer) ProcessKeyEvent(keyCode uint32, pressed bool) bool {
	return r.controller.ProcessKeyEvent(keyCode, pressed)
}

func (r *renderer) SetClearColor(red, green, blue, alpha float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = wgpu.Color{R: red, G: green, B: blue, A: alpha}
}

func (r *renderer) Camera() camera.Camera {
	return r.cam
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}
