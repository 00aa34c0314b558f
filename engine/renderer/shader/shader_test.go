package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `
@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

func TestNewShaderDefaults(t *testing.T) {
	s := NewShader("flat", testSource)

	assert.Equal(t, "flat", s.Key())
	assert.Equal(t, testSource, s.Source())
	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Equal(t, "fs_main", s.FragmentEntryPoint())
}

func TestNewShaderEntryPointOverrides(t *testing.T) {
	s := NewShader("custom", testSource,
		WithVertexEntryPoint("vertex_entry"),
		WithFragmentEntryPoint("fragment_entry"),
	)

	assert.Equal(t, "vertex_entry", s.VertexEntryPoint())
	assert.Equal(t, "fragment_entry", s.FragmentEntryPoint())
}

func TestWithoutFragmentStage(t *testing.T) {
	s := NewShader("depth-only", testSource, WithoutFragmentStage())

	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Empty(t, s.FragmentEntryPoint())
}

func TestLoadShader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.wgsl")
	require.NoError(t, os.WriteFile(path, []byte(testSource), 0o644))

	s, err := LoadShader("flat", path)
	require.NoError(t, err)

	assert.Equal(t, "flat", s.Key())
	assert.Equal(t, testSource, s.Source())
}

func TestLoadShaderMissingFile(t *testing.T) {
	_, err := LoadShader("missing", filepath.Join(t.TempDir(), "missing.wgsl"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing.wgsl")
}
