package prism

import (
	"bufio"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// EbitenDevice implements Device with ebiten images and Kage shaders.
//
// User programs are Kage fragment shaders. Uniforms are exposed under their
// capitalised names (Resolution, Time, Pointer); samplers are bound to
// image slots in order, so texture0..N come first, followed by buffer0..M,
// read with imageSrc0At, imageSrc1At and so on.
type EbitenDevice struct {
	faces faceCache

	shaderOp ebiten.DrawRectShaderOptions
	uniforms map[string]any
}

// NewEbitenDevice returns a device drawing through ebiten. It must be used
// from the ebiten game loop.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{uniforms: make(map[string]any)}
}

type kageProgram struct {
	shader *ebiten.Shader
}

func (p *kageProgram) Dispose() {
	if p.shader != nil {
		p.shader.Deallocate()
		p.shader = nil
	}
}

// blendProgram folds its samplers into the target one after another with
// op's ebiten.Blend.
type blendProgram struct {
	op BlendOp
}

func (*blendProgram) Dispose() {}

func (d *EbitenDevice) NewTexture(size Size) (Texture, error) {
	if !size.Valid() {
		return nil, errInvalidSize(size)
	}
	return newRenderTarget(size), nil
}

func (d *EbitenDevice) CompileProgram(src ProgramSource) (Program, error) {
	code := src.Fragment
	if src.Vertex != "" {
		code = mergeKage(src.Fragment, src.Vertex)
	}
	s, err := ebiten.NewShader([]byte(code))
	if err != nil {
		if src.Vertex != "" {
			return nil, &ShaderLinkError{
				VertexPath:   src.VertexPath,
				FragmentPath: src.FragmentPath,
				Diagnostic:   err.Error(),
			}
		}
		return nil, &ShaderCompileError{Path: src.FragmentPath, Diagnostic: err.Error()}
	}
	return &kageProgram{shader: s}, nil
}

func (d *EbitenDevice) BlendProgram(op BlendOp) (Program, error) {
	if int(op) >= len(blendOpNames) {
		return nil, fmt.Errorf("unsupported blend operation %s", op)
	}
	return &blendProgram{op: op}, nil
}

func (d *EbitenDevice) NewFace(data []byte, size float64) (Face, error) {
	return d.faces.face(data, size)
}

func (d *EbitenDevice) MaxSamplers() int {
	return len(ebiten.DrawRectShaderOptions{}.Images)
}

func (d *EbitenDevice) Clear(target Texture, c [4]float32) {
	img := ebitenImage(target).image
	if c == transparent {
		img.Clear()
		return
	}
	img.Fill(premultiplied(c))
}

func (d *EbitenDevice) Draw(target Texture, prog Program, us Uniforms) {
	dst := ebitenImage(target)
	size := dst.Size()

	switch p := prog.(type) {
	case *kageProgram:
		op := &d.shaderOp
		clear(op.Images[:])
		clear(d.uniforms)
		slot := 0
		for i := range us {
			u := &us[i]
			if u.Kind == UniformSampler {
				if slot < len(op.Images) {
					op.Images[slot] = ebitenImage(u.Sampler).sampleAt(size)
				}
				slot++
				continue
			}
			d.uniforms[kageName(u.Name)] = kageValue(u)
		}
		op.Uniforms = d.uniforms
		dst.image.DrawRectShader(size.Width, size.Height, p.shader, op)

	case *blendProgram:
		var alpha [4]float32
		if u, ok := us.Lookup("alpha"); ok {
			copy(alpha[:], u.Floats())
		}
		k := 0
		for i := range us {
			u := &us[i]
			if u.Kind != UniformSampler {
				continue
			}
			src := ebitenImage(u.Sampler)
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(fitScale(src.Size(), size))
			op.Filter = ebiten.FilterLinear
			if k < len(alpha) {
				op.ColorScale.ScaleAlpha(alpha[k])
			}
			if k == 0 {
				op.Blend = ebiten.BlendCopy
			} else {
				op.Blend = p.op.EbitenBlend()
			}
			dst.image.DrawImage(src.image, op)
			k++
		}

	default:
		panic(fmt.Sprintf("prism: program %T was not created by EbitenDevice", prog))
	}
}

func (d *EbitenDevice) DrawText(target Texture, face Face, s string, pos [2]float32, c [4]float32) {
	f, ok := face.(*ttfFace)
	if !ok {
		panic(fmt.Sprintf("prism: face %T was not created by EbitenDevice", face))
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(pos[0]), float64(pos[1]))
	a := clamp01(c[3])
	op.ColorScale.Scale(c[0]*a, c[1]*a, c[2]*a, a)
	op.LineSpacing = f.lh
	text.Draw(ebitenImage(target).image, s, f.face, op)
}

func (d *EbitenDevice) Composite(dst, src Texture) {
	s := ebitenImage(src)
	dt := ebitenImage(dst)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(fitScale(s.Size(), dt.Size()))
	op.Filter = ebiten.FilterLinear
	dt.image.DrawImage(s.image, op)
}

// kageName maps a uniform name to the exported Kage variable it binds:
// "resolution" becomes "Resolution".
func kageName(name string) string {
	r, n := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[n:]
}

// kageValue converts a uniform to the Go value DrawRectShader expects.
func kageValue(u *Uniform) any {
	if u.Kind == UniformFloat {
		return u.Value[0]
	}
	return append([]float32(nil), u.Floats()...)
}

// mergeKage appends the declarations of a vertex source file to a fragment
// program so both compile as one Kage shader. The package clause and
// //kage: directives of the vertex file are dropped.
func mergeKage(fragment, vertex string) string {
	var b strings.Builder
	b.WriteString(fragment)
	if !strings.HasSuffix(fragment, "\n") {
		b.WriteByte('\n')
	}
	sc := bufio.NewScanner(strings.NewReader(vertex))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "package ") || strings.HasPrefix(trimmed, "//kage:") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
