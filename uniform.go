package prism

import "strconv"

// UniformKind tags the variant held by a Uniform.
type UniformKind uint8

const (
	UniformFloat UniformKind = iota
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat4
	UniformSampler
)

// Components returns the number of floats carried by the kind, 0 for
// samplers.
func (k UniformKind) Components() int {
	switch k {
	case UniformFloat:
		return 1
	case UniformVec2:
		return 2
	case UniformVec3:
		return 3
	case UniformVec4:
		return 4
	case UniformMat4:
		return 16
	}
	return 0
}

// Uniform is one named value bound to a program for a single draw.
type Uniform struct {
	Name    string
	Kind    UniformKind
	Value   [16]float32
	Sampler Texture
}

// Floats returns the numeric components of u. Nil for samplers.
func (u *Uniform) Floats() []float32 {
	return u.Value[:u.Kind.Components()]
}

func FloatUniform(name string, v float32) Uniform {
	u := Uniform{Name: name, Kind: UniformFloat}
	u.Value[0] = v
	return u
}

func Vec2Uniform(name string, x, y float32) Uniform {
	u := Uniform{Name: name, Kind: UniformVec2}
	u.Value[0], u.Value[1] = x, y
	return u
}

func Vec4Uniform(name string, v [4]float32) Uniform {
	u := Uniform{Name: name, Kind: UniformVec4}
	copy(u.Value[:], v[:])
	return u
}

func Mat4Uniform(name string, m [16]float32) Uniform {
	return Uniform{Name: name, Kind: UniformMat4, Value: m}
}

func SamplerUniform(name string, t Texture) Uniform {
	return Uniform{Name: name, Kind: UniformSampler, Sampler: t}
}

// Uniforms is the full set of values bound for one draw.
type Uniforms []Uniform

// Lookup returns the uniform with the given name.
func (us Uniforms) Lookup(name string) (Uniform, bool) {
	for _, u := range us {
		if u.Name == name {
			return u, true
		}
	}
	return Uniform{}, false
}

// Samplers returns the bound textures in binding order.
func (us Uniforms) Samplers() []Texture {
	var out []Texture
	for _, u := range us {
		if u.Kind == UniformSampler {
			out = append(out, u.Sampler)
		}
	}
	return out
}

// Precomputed sampler names; passes rarely bind more than a handful.
var (
	textureNames = samplerNames("texture", 8)
	bufferNames  = samplerNames("buffer", 8)
)

func samplerNames(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i)
	}
	return out
}

func samplerName(names []string, prefix string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return prefix + strconv.Itoa(i)
}

// assembleUniforms appends the uniforms for one draw of pass p into target
// of size size, reusing dst's storage.
//
//	resolution  vec2     target size
//	time        float    seconds since build or reload
//	pointer     vec4     (x, H-y, dragX, H-dragY), zw zero without a drag
//	texture{i}  sampler  static attachments in input order
//	buffer{i}   sampler  dependency outputs in input order
//	alpha       vec4     blend weights in sampler order (blend only)
//	operation   float    BlendOp (blend only)
func assembleUniforms(dst Uniforms, p *RenderPass, size Size, frame Frame, src ValueSource, deps []Texture) Uniforms {
	dst = dst[:0]
	dst = append(dst,
		Vec2Uniform("resolution", float32(size.Width), float32(size.Height)),
		FloatUniform("time", frame.Time),
		Vec4Uniform("pointer", frame.Pointer.Uniform(float32(size.Height))),
	)
	for i, t := range p.attachments {
		dst = append(dst, SamplerUniform(samplerName(textureNames, "texture", i), t))
	}
	for i, t := range deps {
		dst = append(dst, SamplerUniform(samplerName(bufferNames, "buffer", i), t))
	}
	if p.kind == KindBlend {
		var alpha [4]float32
		for i, b := range p.alphas {
			if i < len(alpha) {
				alpha[i] = b.Resolve(src)
			}
		}
		dst = append(dst,
			Vec4Uniform("alpha", alpha),
			FloatUniform("operation", float32(p.op)),
		)
	}
	return dst
}
