package prism

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenTexture is a Texture backed by an *ebiten.Image.
type EbitenTexture struct {
	image *ebiten.Image
	owned bool
	// static textures never change after creation, so a resampled copy
	// stays valid until the requested size changes.
	static bool
	fitted *ebiten.Image
}

// NewScreenTexture wraps the screen image passed to ebiten.Game.Draw. The
// returned texture does not own the image; Dispose leaves it alone.
func NewScreenTexture(screen *ebiten.Image) *EbitenTexture {
	return &EbitenTexture{image: screen}
}

// newRenderTarget allocates an owned, unmanaged offscreen image.
func newRenderTarget(size Size) *EbitenTexture {
	img := ebiten.NewImageWithOptions(
		image.Rect(0, 0, size.Width, size.Height),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
	return &EbitenTexture{image: img, owned: true}
}

// newStaticTexture uploads a decoded image.
func newStaticTexture(src image.Image) *EbitenTexture {
	return &EbitenTexture{image: ebiten.NewImageFromImage(src), owned: true, static: true}
}

// Image returns the underlying ebiten image.
func (t *EbitenTexture) Image() *ebiten.Image { return t.image }

func (t *EbitenTexture) Size() Size {
	if t.image == nil {
		return Size{}
	}
	b := t.image.Bounds()
	return Size{Width: b.Dx(), Height: b.Dy()}
}

// Dispose deallocates the image if the texture owns it. The texture should
// not be used afterwards.
func (t *EbitenTexture) Dispose() {
	if t.fitted != nil {
		t.fitted.Deallocate()
		t.fitted = nil
	}
	if t.owned && t.image != nil {
		t.image.Deallocate()
	}
	t.image = nil
}

// sampleAt returns an image of exactly size with the texture's contents
// stretched to fill it. DrawRectShader requires all source images to share
// the destination's dimensions.
func (t *EbitenTexture) sampleAt(size Size) *ebiten.Image {
	cur := t.Size()
	if cur == size {
		return t.image
	}
	if t.fitted != nil {
		b := t.fitted.Bounds()
		if b.Dx() == size.Width && b.Dy() == size.Height {
			if t.static {
				return t.fitted
			}
			t.fitted.Clear()
		} else {
			t.fitted.Deallocate()
			t.fitted = nil
		}
	}
	if t.fitted == nil {
		t.fitted = ebiten.NewImage(size.Width, size.Height)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(fitScale(cur, size))
	op.Filter = ebiten.FilterLinear
	op.Blend = ebiten.BlendCopy
	t.fitted.DrawImage(t.image, op)
	return t.fitted
}

// fitScale returns the scale factors that stretch from onto to.
func fitScale(from, to Size) (sx, sy float64) {
	if from.Width == 0 || from.Height == 0 {
		return 1, 1
	}
	return float64(to.Width) / float64(from.Width), float64(to.Height) / float64(from.Height)
}

// ebitenImage extracts the ebiten image of a texture created by this
// package. It panics for foreign Texture implementations, which is a
// programmer error.
func ebitenImage(t Texture) *EbitenTexture {
	et, ok := t.(*EbitenTexture)
	if !ok {
		panic("prism: texture was not created by EbitenDevice")
	}
	return et
}

// premultiplied converts a straight-alpha color for image.Fill.
func premultiplied(c [4]float32) color.RGBA {
	a := clamp01(c[3])
	return color.RGBA{
		R: uint8(clamp01(c[0]*a) * 255),
		G: uint8(clamp01(c[1]*a) * 255),
		B: uint8(clamp01(c[2]*a) * 255),
		A: uint8(a * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
