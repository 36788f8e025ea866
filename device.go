package prism

// Texture is a GPU image owned by whoever allocated it.
type Texture interface {
	Size() Size
	Dispose()
}

// Program is a compiled draw program: a user shader or a blend.
type Program interface {
	Dispose()
}

// Face is a font face at a fixed size.
type Face interface {
	LineHeight() float64
}

// ProgramSource is the source text of a shader program. Vertex is empty
// when the node names no vertex stage.
type ProgramSource struct {
	VertexPath   string
	Vertex       string
	FragmentPath string
	Fragment     string
}

// Device is the GPU binding used by a Graph. All calls happen on the
// goroutine that renders.
type Device interface {
	// NewTexture allocates a cleared render target.
	NewTexture(size Size) (Texture, error)

	// CompileProgram compiles a user shader. Failures are reported as
	// *ShaderCompileError or *ShaderLinkError.
	CompileProgram(src ProgramSource) (Program, error)

	// BlendProgram returns a program that combines its samplers with op,
	// weighting sampler i by component i of the "alpha" uniform.
	BlendProgram(op BlendOp) (Program, error)

	// NewFace loads a font face from TTF/OTF data. Nil data selects the
	// built-in default font.
	NewFace(data []byte, size float64) (Face, error)

	// MaxSamplers is the number of textures a single draw can sample.
	MaxSamplers() int

	Clear(target Texture, color [4]float32)
	Draw(target Texture, prog Program, uniforms Uniforms)
	DrawText(target Texture, face Face, s string, pos [2]float32, color [4]float32)

	// Composite draws src over dst (source-over).
	Composite(dst, src Texture)
}

// Sources provides the bytes a graph is built from. Paths are as written in
// the configuration.
type Sources interface {
	ReadText(path string) (string, error)
	LoadImage(path string) (Texture, error)
}
