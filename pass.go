package prism

// RenderPass is one executable node of a Graph: a render target plus the
// program or face that draws into it.
type RenderPass struct {
	node int
	kind NodeKind

	target  Texture
	program Program // shader and blend passes
	face    Face    // text and fps passes
	op      BlendOp
	fps     *fpsCounter

	// attachments are image textures shared read-only with other passes.
	attachments []Texture
	// deps are node indices of passes sampled as buffer{i}.
	deps   []int
	alphas []Binding[float32] // blend weights in sampler order

	text Binding[string]
	pos  Binding[[2]float32]
	col  Binding[[4]float32]

	uniforms Uniforms
	depTex   []Texture
}

// Kind returns the kind of the owning node.
func (p *RenderPass) Kind() NodeKind { return p.kind }

// Target returns the pass's own render target.
func (p *RenderPass) Target() Texture { return p.target }

// Attachments returns the static textures bound as texture{i}.
func (p *RenderPass) Attachments() []Texture { return p.attachments }

// DependencyCount returns the number of passes bound as buffer{i}.
func (p *RenderPass) DependencyCount() int { return len(p.deps) }

// offscreenClear is the color a pass target is cleared to before drawing.
// Overlays start transparent so they composite cleanly.
func (p *RenderPass) offscreenClear() [4]float32 {
	switch p.kind {
	case KindText, KindFps:
		return transparent
	}
	return opaqueBlack
}

// draw issues the pass's single draw into target. Dependencies and linked
// values must already be evaluated for this frame.
func (g *Graph) draw(p *RenderPass, target Texture, offscreen bool) {
	if offscreen {
		g.dev.Clear(target, p.offscreenClear())
	}

	switch p.kind {
	case KindShader, KindBlend:
		p.depTex = p.depTex[:0]
		for _, d := range p.deps {
			p.depTex = append(p.depTex, g.passes[g.nodes[d].pass].target)
		}
		p.uniforms = assembleUniforms(p.uniforms, p, target.Size(), g.frame, g, p.depTex)
		g.dev.Draw(target, p.program, p.uniforms)

	case KindText:
		g.dev.DrawText(target, p.face, p.text.Resolve(g), p.pos.Resolve(g), p.col.Resolve(g))

	case KindFps:
		g.dev.DrawText(target, p.face, p.fps.label(), p.pos.Resolve(g), p.col.Resolve(g))
	}
	g.stats.Draws++
}
