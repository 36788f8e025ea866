package prism

import "github.com/hajimehoshi/ebiten/v2"

// PointerTracker turns ebiten mouse and touch state into a Pointer. The
// left button (or the first touch) drives dragging: the drag origin is
// captured on press and cleared on release.
type PointerTracker struct {
	state    Pointer
	touchIDs []ebiten.TouchID
}

// Update polls ebiten input and returns the pointer for this tick. Call it
// once per ebiten.Game.Update.
func (t *PointerTracker) Update() Pointer {
	t.touchIDs = ebiten.AppendTouchIDs(t.touchIDs[:0])
	if len(t.touchIDs) > 0 {
		tx, ty := ebiten.TouchPosition(t.touchIDs[0])
		return t.update(float32(tx), float32(ty), true)
	}
	mx, my := ebiten.CursorPosition()
	return t.update(float32(mx), float32(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

// Pointer returns the state computed by the last Update.
func (t *PointerTracker) Pointer() Pointer { return t.state }

func (t *PointerTracker) update(x, y float32, pressed bool) Pointer {
	t.state.X, t.state.Y = x, y
	switch {
	case pressed && !t.state.Dragging:
		t.state.Dragging = true
		t.state.DragX, t.state.DragY = x, y
	case !pressed && t.state.Dragging:
		t.state.Dragging = false
		t.state.DragX, t.state.DragY = 0, 0
	}
	return t.state
}
