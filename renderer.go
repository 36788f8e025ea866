package prism

import (
	"errors"
	"time"
)

// Renderer owns the current Graph of a session along with its clock and
// surface size. Reload swaps in a freshly built graph, keeping the old one
// when the build fails.
type Renderer struct {
	dev  Device
	src  Sources
	size Size

	graph *Graph

	now      func() time.Time
	start    time.Time
	paused   bool
	pausedAt time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithClock replaces time.Now as the time source.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer builds the initial graph from nodes.
func NewRenderer(nodes []NodeConfig, dev Device, src Sources, size Size, opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{dev: dev, src: src, size: size, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	g, err := Build(nodes, dev, src, size)
	if err != nil {
		return nil, err
	}
	r.graph = g
	r.start = r.now()
	Logger().Info("graph ready", "passes", g.PassCount(), "outputs", g.Outputs())
	return r, nil
}

// Graph returns the graph currently in effect.
func (r *Renderer) Graph() *Graph { return r.graph }

// Size returns the current surface size.
func (r *Renderer) Size() Size { return r.size }

// Elapsed returns the seconds since the graph was built or reloaded,
// excluding time spent paused.
func (r *Renderer) Elapsed() float32 {
	now := r.now()
	if r.paused {
		now = r.pausedAt
	}
	return float32(now.Sub(r.start).Seconds())
}

// Render draws one frame into surface at the current time.
func (r *Renderer) Render(surface Texture, pointer Pointer) {
	if r.graph == nil {
		return
	}
	r.graph.Render(surface, Frame{Time: r.Elapsed(), Pointer: pointer})
}

// Resize reallocates every pass target when size differs from the current
// size.
func (r *Renderer) Resize(size Size) error {
	if r.graph == nil {
		return ErrNoGraph
	}
	if size == r.size {
		return nil
	}
	if err := r.graph.Resize(size); err != nil {
		return err
	}
	r.size = size
	return nil
}

// Reload builds a new graph from nodes at the current size. On success the
// previous graph is disposed and the clock restarts. On failure the
// previous graph stays in effect and the build error is returned.
func (r *Renderer) Reload(nodes []NodeConfig) error {
	if r.graph == nil {
		return ErrNoGraph
	}
	g, err := Build(nodes, r.dev, r.src, r.size)
	if err != nil {
		Logger().Warn("reload failed, keeping previous graph", "error", err)
		return err
	}
	r.graph.Dispose()
	r.graph = g
	r.start = r.now()
	if r.paused {
		r.pausedAt = r.start
	}
	Logger().Info("graph reloaded", "passes", g.PassCount(), "outputs", g.Outputs())
	return nil
}

// Paused reports whether the clock is stopped.
func (r *Renderer) Paused() bool { return r.paused }

// Pause stops the clock. Hosts skip Render while paused.
func (r *Renderer) Pause() {
	if r.paused {
		return
	}
	r.paused = true
	r.pausedAt = r.now()
}

// Resume restarts the clock where Pause stopped it.
func (r *Renderer) Resume() {
	if !r.paused {
		return
	}
	r.start = r.start.Add(r.now().Sub(r.pausedAt))
	r.paused = false
}

// Dispose releases the current graph.
func (r *Renderer) Dispose() {
	r.graph.Dispose()
	r.graph = nil
}

// ErrNoGraph is returned by operations on a disposed Renderer.
var ErrNoGraph = errors.New("renderer has no graph")
