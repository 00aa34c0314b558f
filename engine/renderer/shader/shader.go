package shader

import (
	"fmt"
	"os"
)

// shader is the implementation of the Shader interface.
// It holds the WGSL source text and the render entry point names. The engine
// treats the source as an opaque handle; parsing and validation happen on the
// GPU side when the pipeline is registered.
type shader struct {
	key                string
	source             string
	vertexEntryPoint   string
	fragmentEntryPoint string
}

// Shader defines the interface for an opaque WGSL shader module. A Shader is
// an immutable value shared by the pipeline configuration and the renderer;
// it carries a cache key, the source text, and the entry point names for the
// vertex and optional fragment stages.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labeling
	// GPU objects and caching.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the vertex stage entry point name.
	//
	// Returns:
	//   - string: the vertex entry point (e.g. "vs_main")
	VertexEntryPoint() string

	// FragmentEntryPoint returns the fragment stage entry point name.
	// An empty string means the shader has no fragment stage and the
	// pipeline renders depth/vertex-only.
	//
	// Returns:
	//   - string: the fragment entry point, or "" when absent
	FragmentEntryPoint() string
}

var _ Shader = &shader{}

// NewShader creates a Shader from in-memory WGSL source.
// Entry points default to "vs_main" and "fs_main"; use the options to
// override them or to drop the fragment stage.
//
// Parameters:
//   - key: the unique identifier for this shader
//   - source: the WGSL source text
//   - options: functional options to configure the shader
//
// Returns:
//   - Shader: the immutable shader value
func NewShader(key, source string, options ...ShaderOption) Shader {
	s := &shader{
		key:                key,
		source:             source,
		vertexEntryPoint:   "vs_main",
		fragmentEntryPoint: "fs_main",
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// LoadShader reads WGSL source from a file and wraps it in a Shader keyed by
// the given key.
//
// Parameters:
//   - key: the unique identifier for this shader
//   - path: the path of the .wgsl file on disk
//   - options: functional options to configure the shader
//
// Returns:
//   - Shader: the loaded shader
//   - error: an error if the file could not be read
func LoadShader(key, path string, options ...ShaderOption) (Shader, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader source %s: %w", path, err)
	}
	return NewShader(key, string(src), options...), nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}
