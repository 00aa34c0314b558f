package shader

// ShaderOption is a functional option used to configure a Shader during construction.
type ShaderOption func(*shader)

// WithVertexEntryPoint overrides the vertex stage entry point name.
//
// Parameters:
//   - name: the vertex entry point function name
//
// Returns:
//   - ShaderOption: option function to apply
func WithVertexEntryPoint(name string) ShaderOption {
	return func(s *shader) {
		s.vertexEntryPoint = name
	}
}

// WithFragmentEntryPoint overrides the fragment stage entry point name.
//
// Parameters:
//   - name: the fragment entry point function name
//
// Returns:
//   - ShaderOption: option function to apply
func WithFragmentEntryPoint(name string) ShaderOption {
	return func(s *shader) {
		s.fragmentEntryPoint = name
	}
}

// WithoutFragmentStage marks the shader as vertex-only. Pipelines built from
// it carry no fragment state and render depth-only passes.
//
// Returns:
//   - ShaderOption: option function to apply
func WithoutFragmentStage() ShaderOption {
	return func(s *shader) {
		s.fragmentEntryPoint = ""
	}
}
