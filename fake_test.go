package prism

import (
	"fmt"
	"io/fs"
	"strings"
)

// --- Recording device ---

type fakeTexture struct {
	id       int
	size     Size
	disposed bool
}

func (t *fakeTexture) Size() Size { return t.size }
func (t *fakeTexture) Dispose()   { t.disposed = true }

type fakeProgram struct {
	name     string
	disposed bool
}

func (p *fakeProgram) Dispose() { p.disposed = true }

type fakeFace struct{ size float64 }

func (f *fakeFace) LineHeight() float64 { return f.size }

// fakeDraw is one Draw or DrawText call.
type fakeDraw struct {
	program  string
	target   *fakeTexture
	uniforms Uniforms
	text     string
	pos      [2]float32
	color    [4]float32
}

type fakeDevice struct {
	nextID      int
	textures    []*fakeTexture
	programs    []*fakeProgram
	maxSamplers int

	// compileErrs maps a fragment path to the error CompileProgram returns.
	compileErrs map[string]error
	// failTextures makes NewTexture fail once this many textures exist.
	failTextures int

	log    []string
	draws  []fakeDraw
	clears map[*fakeTexture][4]float32
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		maxSamplers:  4,
		compileErrs:  map[string]error{},
		failTextures: -1,
		clears:       map[*fakeTexture][4]float32{},
	}
}

func (d *fakeDevice) texture(size Size) *fakeTexture {
	d.nextID++
	t := &fakeTexture{id: d.nextID, size: size}
	d.textures = append(d.textures, t)
	return t
}

func (d *fakeDevice) NewTexture(size Size) (Texture, error) {
	if d.failTextures >= 0 && len(d.textures) >= d.failTextures {
		return nil, fmt.Errorf("out of texture memory")
	}
	return d.texture(size), nil
}

func (d *fakeDevice) CompileProgram(src ProgramSource) (Program, error) {
	if err, ok := d.compileErrs[src.FragmentPath]; ok {
		return nil, err
	}
	p := &fakeProgram{name: src.FragmentPath}
	d.programs = append(d.programs, p)
	return p, nil
}

func (d *fakeDevice) BlendProgram(op BlendOp) (Program, error) {
	p := &fakeProgram{name: "blend:" + op.String()}
	d.programs = append(d.programs, p)
	return p, nil
}

func (d *fakeDevice) NewFace(data []byte, size float64) (Face, error) {
	if string(data) == "not a font" {
		return nil, fmt.Errorf("bad font data")
	}
	return &fakeFace{size: size}, nil
}

func (d *fakeDevice) MaxSamplers() int { return d.maxSamplers }

func (d *fakeDevice) Clear(target Texture, c [4]float32) {
	t := target.(*fakeTexture)
	d.clears[t] = c
	d.log = append(d.log, fmt.Sprintf("clear %d %v", t.id, c))
}

func (d *fakeDevice) Draw(target Texture, prog Program, us Uniforms) {
	t := target.(*fakeTexture)
	p := prog.(*fakeProgram)
	d.draws = append(d.draws, fakeDraw{program: p.name, target: t, uniforms: append(Uniforms(nil), us...)})
	d.log = append(d.log, fmt.Sprintf("draw %s -> %d %s", p.name, t.id, formatUniforms(us)))
}

func (d *fakeDevice) DrawText(target Texture, face Face, s string, pos [2]float32, c [4]float32) {
	t := target.(*fakeTexture)
	d.draws = append(d.draws, fakeDraw{program: "text", target: t, text: s, pos: pos, color: c})
	d.log = append(d.log, fmt.Sprintf("text %q -> %d at %v %v", s, t.id, pos, c))
}

func (d *fakeDevice) Composite(dst, src Texture) {
	d.log = append(d.log, fmt.Sprintf("composite %d -> %d", src.(*fakeTexture).id, dst.(*fakeTexture).id))
}

// drawsOf counts draws issued with the named program.
func (d *fakeDevice) drawsOf(program string) int {
	n := 0
	for _, dr := range d.draws {
		if dr.program == program {
			n++
		}
	}
	return n
}

// lastDraw returns the most recent draw with the named program.
func (d *fakeDevice) lastDraw(program string) (fakeDraw, bool) {
	for i := len(d.draws) - 1; i >= 0; i-- {
		if d.draws[i].program == program {
			return d.draws[i], true
		}
	}
	return fakeDraw{}, false
}

func (d *fakeDevice) reset() {
	d.log = nil
	d.draws = nil
}

// live counts textures and programs not yet disposed.
func (d *fakeDevice) live() (textures, programs int) {
	for _, t := range d.textures {
		if !t.disposed {
			textures++
		}
	}
	for _, p := range d.programs {
		if !p.disposed {
			programs++
		}
	}
	return textures, programs
}

func formatUniforms(us Uniforms) string {
	parts := make([]string, 0, len(us))
	for i := range us {
		u := &us[i]
		if u.Kind == UniformSampler {
			parts = append(parts, fmt.Sprintf("%s=#%d", u.Name, u.Sampler.(*fakeTexture).id))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", u.Name, u.Floats()))
	}
	return strings.Join(parts, " ")
}

// --- In-memory sources ---

type fakeSources struct {
	dev    *fakeDevice
	texts  map[string]string
	images map[string]Size
}

func newFakeSources(dev *fakeDevice) *fakeSources {
	return &fakeSources{dev: dev, texts: map[string]string{}, images: map[string]Size{}}
}

func (s *fakeSources) ReadText(path string) (string, error) {
	if t, ok := s.texts[path]; ok {
		return t, nil
	}
	if strings.HasSuffix(path, ".kage") {
		return "package main\n", nil
	}
	return "", fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
}

func (s *fakeSources) LoadImage(path string) (Texture, error) {
	size, ok := s.images[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return s.dev.texture(size), nil
}

// --- Node helpers ---

func imageNode(name, path string) NodeConfig {
	return NodeConfig{Name: name, Spec: &ImageConfig{Path: path}}
}

func shaderNode(name string, inputs ...string) NodeConfig {
	return NodeConfig{Name: name, Spec: &ShaderConfig{Fragment: name + ".kage", Inputs: inputs}}
}

func blendNode(name string, op BlendOp, inputs ...BlendInput) NodeConfig {
	return NodeConfig{Name: name, Spec: &BlendConfig{Operation: op, Inputs: inputs}}
}

func textNode(name string, text Parameter[string]) NodeConfig {
	return NodeConfig{Name: name, Spec: &TextConfig{
		Text:     text,
		Position: Static([2]float32{}),
		Color:    Static(defaultColor),
		Size:     DefaultFontSize,
	}}
}

func fpsNode(name string) NodeConfig {
	return NodeConfig{Name: name, Spec: &FpsConfig{
		Color:    Static(defaultColor),
		Size:     DefaultFontSize,
		Interval: DefaultFpsInterval,
	}}
}

func tweenNode(name string, from, to []float32, duration float32, loop LoopMode) NodeConfig {
	return NodeConfig{Name: name, Spec: &TweenConfig{
		From: from, To: to, Duration: duration, Easing: "linear", Loop: loop,
	}}
}

// buildFake builds nodes on a fresh fake device at 64x48.
func buildFake(nodes ...NodeConfig) (*Graph, *fakeDevice, error) {
	dev := newFakeDevice()
	src := newFakeSources(dev)
	src.images["bg.png"] = Size{Width: 32, Height: 32}
	g, err := Build(nodes, dev, src, Size{Width: 64, Height: 48})
	return g, dev, err
}
