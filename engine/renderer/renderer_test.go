package renderer

import (
	"fmt"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irid-game-framework/irid/engine/assets"
	"github.com/irid-game-framework/irid/engine/camera"
	"github.com/irid-game-framework/irid/engine/model"
	"github.com/irid-game-framework/irid/engine/renderer/pipeline"
	"github.com/irid-game-framework/irid/engine/renderer/shader"
	"github.com/irid-game-framework/irid/engine/renderer/texture"
)

func shaderWithoutVertexStage() shader.Shader {
	return shader.NewShader("broken", "@fragment fn fs_main() {}", shader.WithVertexEntryPoint(""))
}

// fakeWindow satisfies window.Window for tests without GLFW.
type fakeWindow struct {
	width  int
	height int
}

func (w *fakeWindow) SetUpdateCallback(func())                  {}
func (w *fakeWindow) SetResizeCallback(func(int, int))          {}
func (w *fakeWindow) SetKeyCallback(func(uint32, bool))         {}
func (w *fakeWindow) SetCursorCallback(func(float64, float64))  {}
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) IsRunning() bool                           { return true }
func (w *fakeWindow) Close() error                              { return nil }
func (w *fakeWindow) ProcessMessages()                          {}
func (w *fakeWindow) Width() int                                { return w.width }
func (w *fakeWindow) Height() int                               { return w.height }

type recordedDraw struct {
	mesh          MeshBuffers
	instanceCount uint32
	bindGroups    []*wgpu.BindGroup
}

// fakeBackend records the backend call stream so frame orchestration can be
// asserted without a GPU device.
type fakeBackend struct {
	maxDimension uint32

	events     []string
	configures [][2]int

	created         map[[2]uint32]texture.Metadata
	textureWrites   map[[2]uint32]int
	cameraBindGroup *wgpu.BindGroup
	cameraWrites    [][]byte

	pipelines []pipeline.Pipeline
	draws     []recordedDraw

	beginErrors []error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		maxDimension:    512,
		created:         make(map[[2]uint32]texture.Metadata),
		textureWrites:   make(map[[2]uint32]int),
		cameraBindGroup: &wgpu.BindGroup{},
	}
}

var _ RendererBackend = &fakeBackend{}

func (f *fakeBackend) Device() *wgpu.Device   { return nil }
func (f *fakeBackend) Queue() *wgpu.Queue     { return nil }
func (f *fakeBackend) Surface() *wgpu.Surface { return nil }

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	f.events = append(f.events, fmt.Sprintf("configure %dx%d", width, height))
	f.configures = append(f.configures, [2]int{width, height})
	return nil
}

func (f *fakeBackend) SurfaceFormat() wgpu.TextureFormat {
	return wgpu.TextureFormatRGBA8UnormSrgb
}

func (f *fakeBackend) MaxTextureDimension() uint32 {
	return f.maxDimension
}

func (f *fakeBackend) CreateTextureMetadata(width, height uint32) (texture.Metadata, error) {
	m := texture.NewMetadata(nil, nil, nil, &wgpu.BindGroup{}, width, height)
	f.created[[2]uint32{width, height}] = m
	return m, nil
}

func (f *fakeBackend) WriteTextureData(metadata texture.Metadata, pixels []byte) error {
	f.events = append(f.events, "texture-write")
	extent := metadata.Extent()
	f.textureWrites[[2]uint32{extent.Width, extent.Height}] = len(pixels)
	return nil
}

func (f *fakeBackend) TextureBindGroupLayout() *wgpu.BindGroupLayout { return nil }

func (f *fakeBackend) InitCameraMetadata(data []byte) (*camera.Metadata, error) {
	f.events = append(f.events, "camera-init")
	f.cameraWrites = append(f.cameraWrites, data)
	return camera.NewMetadata(nil, nil, f.cameraBindGroup), nil
}

func (f *fakeBackend) WriteCameraUniform(metadata *camera.Metadata, data []byte) error {
	f.events = append(f.events, "camera-write")
	f.cameraWrites = append(f.cameraWrites, data)
	return nil
}

func (f *fakeBackend) InitMeshBuffers(vertexData, indexData []byte, indexCount uint32) (MeshBuffers, error) {
	f.events = append(f.events, "mesh-init")
	return MeshBuffers{IndexCount: indexCount}, nil
}

func (f *fakeBackend) InitInstanceBuffer(data []byte) (*wgpu.Buffer, error) {
	f.events = append(f.events, "instance-init")
	return nil, nil
}

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.events = append(f.events, "pipeline")
	f.pipelines = append(f.pipelines, p)
	return nil
}

func (f *fakeBackend) BeginFrame(clearValue wgpu.Color) error {
	if len(f.beginErrors) > 0 {
		err := f.beginErrors[0]
		f.beginErrors = f.beginErrors[1:]
		if err != nil {
			return err
		}
	}
	f.events = append(f.events, "begin")
	return nil
}

func (f *fakeBackend) DrawCall(p pipeline.Pipeline, mesh MeshBuffers, instanceBuffer *wgpu.Buffer, instanceCount uint32, bindGroups []*wgpu.BindGroup) {
	f.events = append(f.events, "draw")
	f.draws = append(f.draws, recordedDraw{mesh: mesh, instanceCount: instanceCount, bindGroups: bindGroups})
}

func (f *fakeBackend) EndFrame() error {
	f.events = append(f.events, "submit")
	return nil
}

func (f *fakeBackend) Present() {
	f.events = append(f.events, "present")
}

func withTestBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}

func countEvents(events []string, name string) int {
	n := 0
	for _, e := range events {
		if e == name {
			n++
		}
	}
	return n
}

func quadMesh() ([]model.ModelVertex, []uint16) {
	vertices := []model.ModelVertex{
		{Position: [3]float32{-1, -1, 0}, TexCoords: [2]float32{0, 1}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{1, -1, 0}, TexCoords: [2]float32{1, 1}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{1, 1, 0}, TexCoords: [2]float32{1, 0}, Normal: [3]float32{0, 0, 1}},
		{Position: [3]float32{-1, 1, 0}, TexCoords: [2]float32{0, 0}, Normal: [3]float32{0, 0, 1}},
	}
	indices := []uint16{0, 1, 2, 2, 3, 0}
	return vertices, indices
}

func testTexture(t *testing.T, size uint32) *assets.Texture {
	t.Helper()
	tex, err := assets.FromRGBA("checker", make([]byte, size*size*4), size, size)
	require.NoError(t, err)
	return tex
}

func TestNewRendererBuildsGPUState(t *testing.T) {
	backend := newFakeBackend()
	win := &fakeWindow{width: 800, height: 600}

	_, err := NewRenderer(win, withTestBackend(backend))
	require.NoError(t, err)

	// Surface configured once at the window's framebuffer size.
	require.Len(t, backend.configures, 1)
	assert.Equal(t, [2]int{800, 600}, backend.configures[0])

	// Eager cache: every power-of-two class up to 512 (exponents 0..9).
	assert.Len(t, backend.created, 10*10)

	// Initial camera uniform uploaded at creation: one 4x4 float matrix.
	require.NotEmpty(t, backend.cameraWrites)
	assert.Len(t, backend.cameraWrites[0], 64)

	require.Len(t, backend.pipelines, 1)
	assert.Equal(t, "main", backend.pipelines[0].PipelineKey())
}

func TestNewRendererBuildOrder(t *testing.T) {
	backend := newFakeBackend()
	vertices, indices := quadMesh()
	_, err := NewRenderer(&fakeWindow{width: 640, height: 480},
		withTestBackend(backend),
		WithTexture(testTexture(t, 256)),
		WithMesh(vertices, indices),
	)
	require.NoError(t, err)

	// Pipeline creation precedes the texture, mesh and instance uploads;
	// the cache is populated between camera init and pipeline creation.
	assert.Equal(t, []string{
		"configure 640x480",
		"camera-init",
		"pipeline",
		"texture-write",
		"mesh-init",
		"instance-init",
	}, backend.events)
}

func TestRedrawSubmitsAndPresentsOnce(t *testing.T) {
	backend := newFakeBackend()
	vertices, indices := quadMesh()
	r, err := NewRenderer(&fakeWindow{width: 640, height: 480},
		withTestBackend(backend),
		WithTexture(testTexture(t, 256)),
		WithMesh(vertices, indices),
	)
	require.NoError(t, err)

	backend.events = nil
	require.NoError(t, r.Redraw())

	assert.Equal(t, []string{"camera-write", "begin", "draw", "submit", "present"}, backend.events)
}

func TestRedrawBindsTextureCacheEntry(t *testing.T) {
	backend := newFakeBackend()
	vertices, indices := quadMesh()
	r, err := NewRenderer(&fakeWindow{width: 640, height: 480},
		withTestBackend(backend),
		WithTexture(testTexture(t, 256)),
		WithMesh(vertices, indices),
	)
	require.NoError(t, err)

	// The texture's pixels landed in the matching size class.
	assert.Equal(t, 256*256*4, backend.textureWrites[[2]uint32{256, 256}])

	require.NoError(t, r.Redraw())
	require.Len(t, backend.draws, 1)

	draw := backend.draws[0]
	// Bind group order is fixed: texture at slot 0, camera at slot 1.
	require.Len(t, draw.bindGroups, 2)
	assert.Same(t, backend.created[[2]uint32{256, 256}].BindGroup(), draw.bindGroups[0])
	assert.Same(t, backend.cameraBindGroup, draw.bindGroups[1])

	// Default grid draws 100 instances of the 6-index quad.
	assert.Equal(t, uint32(100), draw.instanceCount)
	assert.Equal(t, uint32(6), draw.mesh.IndexCount)
}

func TestRedrawWithoutMeshStillPresents(t *testing.T) {
	backend := newFakeBackend()
	r, err := NewRenderer(&fakeWindow{width: 640, height: 480}, withTestBackend(backend))
	require.NoError(t, err)

	backend.events = nil
	require.NoError(t, r.Redraw())

	assert.Empty(t, backend.draws)
	assert.Equal(t, 1, countEvents(backend.events, "submit"))
	assert.Equal(t, 1, countEvents(backend.events, "present"))
}

func TestRedrawReconfiguresAndRetriesOnOutdatedSurface(t *testing.T) {
	backend := newFakeBackend()
	r, err := NewRenderer(&fakeWindow{width: 640, height: 480}, withTestBackend(backend))
	require.NoError(t, err)

	backend.events = nil
	backend.configures = nil
	backend.beginErrors = []error{ErrSurfaceOutdated}

	require.NoError(t, r.Redraw())

	require.Len(t, backend.configures, 1)
	assert.Equal(t, [2]int{640, 480}, backend.configures[0])
	assert.Equal(t, 1, countEvents(backend.events, "begin"))
	assert.Equal(t, 1, countEvents(backend.events, "submit"))
	assert.Equal(t, 1, countEvents(backend.events, "present"))
}

func TestRedrawFailsWhenRetryFails(t *testing.T) {
	backend := newFakeBackend()
	r, err := NewRenderer(&fakeWindow{width: 640, height: 480}, withTestBackend(backend))
	require.NoError(t, err)

	backend.beginErrors = []error{ErrSurfaceLost, ErrSurfaceLost}

	err = r.Redraw()
	assert.ErrorIs(t, err, ErrSurfaceLost)
}

func TestRedrawPropagatesOutOfMemory(t *testing.T) {
	backend := newFakeBackend()
	r, err := NewRenderer(&fakeWindow{width: 640, height: 480}, withTestBackend(backend))
	require.NoError(t, err)

	backend.events = nil
	backend.beginErrors = []error{ErrOutOfMemory}

	err = r.Redraw()
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, 0, countEvents(backend.events, "submit"))
	assert.Equal(t, 0, countEvents(backend.events, "present"))
}

func TestResizeReconfiguresSurfaceAndCamera(t *testing.T) {
	backend := newFakeBackend()
	r, err := NewRenderer(&fakeWindow{width: 640, height: 480}, withTestBackend(backend))
	require.NoError(t, err)

	backend.configures = nil
	require.NoError(t, r.Resize(1024, 768))

	require.Len(t, backend.configures, 1)
	assert.Equal(t, [2]int{1024, 768}, backend.configures[0])
	assert.InDelta(t, float32(1024)/float32(768), r.Camera().Aspect(), 1e-6)

	w, h := r.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)

	// Minimized windows report zero dimensions; nothing to reconfigure.
	backend.configures = nil
	require.NoError(t, r.Resize(0, 0))
	assert.Empty(t, backend.configures)
}

func TestNewRendererRejectsOversizedTexture(t *testing.T) {
	backend := newFakeBackend()
	_, err := NewRenderer(&fakeWindow{width: 640, height: 480},
		withTestBackend(backend),
		WithTexture(testTexture(t, 1024)),
	)
	assert.ErrorIs(t, err, texture.ErrUnsupportedTextureSize)
}

func TestNewRendererRejectsShaderWithoutVertexStage(t *testing.T) {
	backend := newFakeBackend()
	vertices, indices := quadMesh()
	_, err := NewRenderer(&fakeWindow{width: 640, height: 480},
		withTestBackend(backend),
		WithMesh(vertices, indices),
		WithShader(shaderWithoutVertexStage()),
	)
	assert.ErrorIs(t, err, pipeline.ErrMissingVertexStage)
}

func TestSelectSurfaceFormat(t *testing.T) {
	supported := []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb}

	// No preference: first supported format wins.
	got, err := selectSurfaceFormat(supported, wgpu.TextureFormatUndefined)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, got)

	// Supported preference is honored.
	got, err = selectSurfaceFormat(supported, wgpu.TextureFormatRGBA8UnormSrgb)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, got)

	// Unsupported preference falls back to the first supported format.
	got, err = selectSurfaceFormat(supported, wgpu.TextureFormatRGBA16Float)
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, got)

	// An adapter/surface pair with no formats aborts the build.
	_, err = selectSurfaceFormat(nil, wgpu.TextureFormatUndefined)
	assert.ErrorIs(t, err, ErrNoSurfaceFormat)
}

func TestWithSurfaceFormat(t *testing.T) {
	r := &renderer{}
	WithSurfaceFormat(wgpu.TextureFormatBGRA8Unorm)(r)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, r.surfaceFormat)
}

func TestClassifySurfaceError(t *testing.T) {
	assert.ErrorIs(t, classifySurfaceError(fmt.Errorf("Surface is Outdated")), ErrSurfaceOutdated)
	assert.ErrorIs(t, classifySurfaceError(fmt.Errorf("surface was lost")), ErrSurfaceLost)
	assert.ErrorIs(t, classifySurfaceError(fmt.Errorf("device Out of Memory")), ErrOutOfMemory)
	assert.ErrorIs(t, classifySurfaceError(fmt.Errorf("Timeout acquiring texture")), ErrSurfaceOutdated)
	other := fmt.Errorf("validation error in render pass")
	assert.Equal(t, other, classifySurfaceError(other))
	assert.NoError(t, classifySurfaceError(nil))
}
