package prism

import (
	"image/color"
	"reflect"
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestKageName(t *testing.T) {
	tests := map[string]string{
		"resolution": "Resolution",
		"time":       "Time",
		"alpha":      "Alpha",
		"Already":    "Already",
		"":           "",
	}
	for in, want := range tests {
		if got := kageName(in); got != want {
			t.Errorf("kageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKageValue(t *testing.T) {
	f := FloatUniform("time", 2.5)
	if got, ok := kageValue(&f).(float32); !ok || got != 2.5 {
		t.Errorf("float uniform = %#v, want float32 2.5", kageValue(&f))
	}
	v := Vec2Uniform("resolution", 640, 480)
	if got := kageValue(&v); !reflect.DeepEqual(got, []float32{640, 480}) {
		t.Errorf("vec2 uniform = %#v", got)
	}
	// The returned slice must not alias the uniform.
	got := kageValue(&v).([]float32)
	got[0] = 0
	if v.Value[0] != 640 {
		t.Error("kageValue aliased the uniform storage")
	}
}

func TestMergeKage(t *testing.T) {
	fragment := "//kage:unit pixels\n\npackage main\n\nfunc Fragment() vec4 { return wave() }"
	vertex := "//kage:unit pixels\npackage main\n\nfunc wave() vec4 {\n\treturn vec4(1)\n}\n"

	got := mergeKage(fragment, vertex)
	if strings.Count(got, "package main") != 1 {
		t.Errorf("merged source has %d package clauses:\n%s", strings.Count(got, "package main"), got)
	}
	if strings.Count(got, "//kage:unit") != 1 {
		t.Errorf("merged source kept the vertex directive:\n%s", got)
	}
	if !strings.HasPrefix(got, fragment+"\n") {
		t.Errorf("fragment not kept verbatim at the top:\n%s", got)
	}
	if !strings.Contains(got, "func wave() vec4 {\n\treturn vec4(1)\n}\n") {
		t.Errorf("vertex declarations missing:\n%s", got)
	}
}

func TestFitScale(t *testing.T) {
	sx, sy := fitScale(Size{Width: 32, Height: 16}, Size{Width: 64, Height: 64})
	if sx != 2 || sy != 4 {
		t.Errorf("fitScale = %v, %v; want 2, 4", sx, sy)
	}
	sx, sy = fitScale(Size{}, Size{Width: 64, Height: 64})
	if sx != 1 || sy != 1 {
		t.Errorf("fitScale from empty = %v, %v; want 1, 1", sx, sy)
	}
}

func TestPremultiplied(t *testing.T) {
	tests := []struct {
		in   [4]float32
		want color.RGBA
	}{
		{[4]float32{0, 0, 0, 1}, color.RGBA{A: 255}},
		{[4]float32{1, 1, 1, 1}, color.RGBA{255, 255, 255, 255}},
		{[4]float32{1, 0, 0, 0.5}, color.RGBA{R: 127, A: 127}},
		{[4]float32{2, -1, 0, 1}, color.RGBA{R: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := premultiplied(tt.in); got != tt.want {
			t.Errorf("premultiplied(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEbitenDeviceLimits(t *testing.T) {
	d := NewEbitenDevice()
	if got := d.MaxSamplers(); got != 4 {
		t.Errorf("MaxSamplers = %d, want 4", got)
	}
	if _, err := d.NewTexture(Size{}); err == nil {
		t.Error("NewTexture accepted an empty size")
	}
	for _, op := range []BlendOp{BlendMin, BlendMax, BlendAdd, BlendSub} {
		p, err := d.BlendProgram(op)
		if err != nil {
			t.Errorf("BlendProgram(%v): %v", op, err)
			continue
		}
		p.Dispose()
	}
	if _, err := d.BlendProgram(BlendOp(9)); err == nil {
		t.Error("BlendProgram accepted an unknown operation")
	}
}

func TestBlendOpEbitenBlend(t *testing.T) {
	tests := []struct {
		op     BlendOp
		rgbOp  ebiten.BlendOperation
		srcRGB ebiten.BlendFactor
	}{
		{BlendMin, ebiten.BlendOperationMin, ebiten.BlendFactorOne},
		{BlendMax, ebiten.BlendOperationMax, ebiten.BlendFactorOne},
		{BlendAdd, ebiten.BlendOperationAdd, ebiten.BlendFactorOne},
		{BlendSub, ebiten.BlendOperationReverseSubtract, ebiten.BlendFactorOne},
	}
	for _, tt := range tests {
		b := tt.op.EbitenBlend()
		if b.BlendOperationRGB != tt.rgbOp || b.BlendFactorSourceRGB != tt.srcRGB {
			t.Errorf("%v: got %+v", tt.op, b)
		}
	}
	if b := BlendSub.EbitenBlend(); b.BlendOperationAlpha != ebiten.BlendOperationAdd {
		t.Errorf("sub alpha operation = %v, want add", b.BlendOperationAlpha)
	}
}

func TestParseBlendOp(t *testing.T) {
	for _, name := range []string{"min", "MAX", " add ", "sub"} {
		if _, ok := ParseBlendOp(name); !ok {
			t.Errorf("ParseBlendOp(%q) failed", name)
		}
	}
	if _, ok := ParseBlendOp("multiply"); ok {
		t.Error("ParseBlendOp(multiply) succeeded")
	}
}
