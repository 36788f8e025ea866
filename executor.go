package prism

import "fmt"

// Stats reports the work done by the last Render call.
type Stats struct {
	Evaluated  int // nodes evaluated
	Draws      int // pass draws issued
	Composites int // offscreen outputs copied into the surface
}

// Stats returns the statistics of the last Render call.
func (g *Graph) Stats() Stats { return g.stats }

// Render draws one frame into surface. The surface is cleared to opaque
// black, then every output is drawn in order. Each node is evaluated at
// most once per call, however many passes sample it.
func (g *Graph) Render(surface Texture, frame Frame) {
	g.frame = frame
	g.stats = Stats{}
	clear(g.rendered)

	g.dev.Clear(surface, opaqueBlack)
	for _, pi := range g.outputs {
		p := &g.passes[pi]
		g.evaluate(p.node)
		if g.direct[pi] {
			g.draw(p, surface, false)
			continue
		}
		g.dev.Composite(surface, p.target)
		g.stats.Composites++
	}
}

// evaluate brings node i up to date for the current frame: its edges
// first, then its own value, then (for sampled passes) its target.
func (g *Graph) evaluate(i int) {
	if g.rendered[i] {
		return
	}
	g.rendered[i] = true
	g.stats.Evaluated++

	n := &g.nodes[i]
	for _, e := range n.edges {
		g.evaluate(e)
	}

	switch n.kind {
	case KindTween:
		n.value = n.tween.value(g.frame.Time)
		return
	case KindImage:
		return
	}

	p := &g.passes[n.pass]
	switch n.kind {
	case KindShader, KindBlend:
		n.value = TextureValue(p.target)
	case KindText:
		n.value = StringValue(p.text.Resolve(g))
	case KindFps:
		n.value = ScalarValue(p.fps.tick(g.frame.Time))
	}
	if !g.direct[n.pass] {
		g.draw(p, p.target, true)
	}
}

// NodeValue returns the current-frame output of node i, evaluating it
// first if needed. It implements ValueSource.
func (g *Graph) NodeValue(i int) Value {
	g.evaluate(i)
	return g.nodes[i].value
}

// Value returns the current-frame output of the named node.
func (g *Graph) Value(name string) (Value, bool) {
	i, ok := g.byName[name]
	if !ok {
		return Value{}, false
	}
	return g.NodeValue(i), true
}

// Resize reallocates every pass target at size. Previous contents are
// discarded.
func (g *Graph) Resize(size Size) error {
	if !size.Valid() {
		return fmt.Errorf("resize: %w", errInvalidSize(size))
	}
	if size == g.size {
		return nil
	}
	for i := range g.passes {
		p := &g.passes[i]
		tex, err := g.dev.NewTexture(size)
		if err != nil {
			return &ResourceError{Node: g.nodes[p.node].name, Op: "reallocate render target", Err: err}
		}
		if p.target != nil {
			p.target.Dispose()
		}
		p.target = tex
		if n := &g.nodes[p.node]; n.value.Kind == ValueTexture {
			n.value = TextureValue(tex)
		}
	}
	g.size = size
	Logger().Debug("graph resized", "size", size.String(), "passes", len(g.passes))
	return nil
}
