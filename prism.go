package prism

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Size is a render-target size in pixels.
type Size struct {
	Width, Height int
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// BlendOp selects how a blend node combines its inputs. Each maps to a
// specific ebiten.Blend value.
type BlendOp uint8

const (
	BlendMin BlendOp = iota // per-channel minimum
	BlendMax                // per-channel maximum
	BlendAdd                // additive
	BlendSub                // accumulated result minus each later input
)

var blendOpNames = [...]string{
	BlendMin: "min",
	BlendMax: "max",
	BlendAdd: "add",
	BlendSub: "sub",
}

func (b BlendOp) String() string {
	if int(b) < len(blendOpNames) {
		return blendOpNames[b]
	}
	return fmt.Sprintf("BlendOp(%d)", b)
}

// ParseBlendOp returns the BlendOp named s (case-insensitive).
func ParseBlendOp(s string) (BlendOp, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range blendOpNames {
		if name == s {
			return BlendOp(i), true
		}
	}
	return 0, false
}

// EbitenBlend returns the ebiten.Blend used to fold one more input into a
// blend node's accumulated result.
func (b BlendOp) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendMin:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
			BlendOperationRGB:           ebiten.BlendOperationMin,
			BlendOperationAlpha:         ebiten.BlendOperationMin,
		}
	case BlendMax:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
			BlendOperationRGB:           ebiten.BlendOperationMax,
			BlendOperationAlpha:         ebiten.BlendOperationMax,
		}
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendSub:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
			BlendOperationRGB:           ebiten.BlendOperationReverseSubtract,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

// NodeKind identifies the variant of a configured node.
type NodeKind uint8

const (
	KindImage  NodeKind = iota // static texture loaded from a file
	KindShader                 // fragment shader pass
	KindBlend                  // blend of several inputs
	KindText                   // text overlay
	KindFps                    // frames-per-second overlay
	KindTween                  // animated value, never drawn
)

var nodeKindNames = [...]string{
	KindImage:  "image",
	KindShader: "shader",
	KindBlend:  "blend",
	KindText:   "text",
	KindFps:    "fps",
	KindTween:  "tween",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

// Renderable reports whether nodes of this kind own a RenderPass.
func (k NodeKind) Renderable() bool {
	switch k {
	case KindShader, KindBlend, KindText, KindFps:
		return true
	}
	return false
}

// Pointer is the host's pointer state in surface pixels, y down.
type Pointer struct {
	X, Y float32

	// Dragging is true while the left button is held. DragX and DragY hold
	// the position where the drag began.
	Dragging     bool
	DragX, DragY float32
}

// Uniform returns the pointer as the shader sees it: y flipped against the
// target height, drag origin zeroed when no drag is active.
func (p Pointer) Uniform(height float32) [4]float32 {
	if !p.Dragging {
		return [4]float32{p.X, height - p.Y, 0, 0}
	}
	return [4]float32{p.X, height - p.Y, p.DragX, height - p.DragY}
}

// Frame is the per-frame input to Graph.Render.
type Frame struct {
	// Time is the number of seconds since the graph was built or reloaded.
	Time    float32
	Pointer Pointer
}

var (
	opaqueBlack = [4]float32{0, 0, 0, 1}
	transparent = [4]float32{}
)
