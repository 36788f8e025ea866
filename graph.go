package prism

import (
	"errors"
	"fmt"
)

// graphNode is one configured node held by value in the Graph arena.
type graphNode struct {
	name  string
	kind  NodeKind
	spec  NodeSpec
	pass  int   // index into Graph.passes, -1 when the kind is not renderable
	edges []int // every referenced node, in reference order

	image *imageInput // KindImage
	tween *tweenState // KindTween
	value Value       // output for the current frame
}

type imageInput struct {
	texture Texture
}

// Graph is a built composition: nodes and their passes in an arena,
// addressed by index. A Graph is not safe for concurrent use.
type Graph struct {
	dev  Device
	size Size

	nodes  []graphNode
	passes []RenderPass
	byName map[string]int
	order  []int // node indices, dependencies first

	outputs []int  // pass indices in config order
	sampled []bool // per pass: read as a dependency by another pass
	direct  []bool // per pass: output drawn straight into the surface

	rendered []bool // per node, reset every frame
	frame    Frame
	stats    Stats
	disposed bool
}

// Build turns an ordered node list into a Graph whose pass targets have
// the given size. Names are resolved, cycles rejected, and every program,
// face and texture is created before Build returns. On failure everything
// allocated so far is disposed.
func Build(nodes []NodeConfig, dev Device, src Sources, size Size) (*Graph, error) {
	logger := Logger()
	if !size.Valid() {
		return nil, errInvalidSize(size)
	}

	g := &Graph{
		dev:    dev,
		size:   size,
		byName: make(map[string]int, len(nodes)),
		nodes:  make([]graphNode, 0, len(nodes)),
	}

	// First pass: index every node by name.
	for _, nc := range nodes {
		if nc.Spec == nil {
			return nil, fmt.Errorf("node %q has no type", nc.Name)
		}
		if _, dup := g.byName[nc.Name]; dup {
			return nil, &ResolutionError{Node: nc.Name, Ref: nc.Name, Reason: "duplicate node name"}
		}
		g.byName[nc.Name] = len(g.nodes)
		g.nodes = append(g.nodes, graphNode{
			name: nc.Name,
			kind: nc.Spec.Kind(),
			spec: nc.Spec,
			pass: -1,
		})
	}

	// Second pass: resolve references into edges and bindings.
	links := make([]nodeLinks, len(g.nodes))
	for i := range g.nodes {
		l, err := g.link(i)
		if err != nil {
			return nil, err
		}
		links[i] = l
	}

	// Third pass: dependency order, rejecting cycles.
	order, err := g.sort()
	if err != nil {
		return nil, err
	}
	g.order = order

	// Fourth pass: create resources dependencies first.
	for _, i := range g.order {
		if err := g.instantiate(i, links[i], src); err != nil {
			g.Dispose()
			return nil, err
		}
	}

	g.selectOutputs()
	g.rendered = make([]bool, len(g.nodes))

	logger.Debug("graph built",
		"nodes", len(g.nodes), "passes", len(g.passes), "outputs", len(g.outputs), "size", size.String())
	return g, nil
}

// nodeLinks holds the bound references of one node between linking and
// instantiation.
type nodeLinks struct {
	inputs   []int // shader/blend inputs in config order
	alphas   []Binding[float32]
	text     Binding[string]
	position Binding[[2]float32]
	color    Binding[[4]float32]
}

func (g *Graph) link(i int) (nodeLinks, error) {
	n := &g.nodes[i]
	var l nodeLinks
	var err error

	switch spec := n.spec.(type) {
	case *ShaderConfig:
		for _, name := range spec.Inputs {
			j, err := g.input(n.name, name)
			if err != nil {
				return l, err
			}
			l.inputs = append(l.inputs, j)
		}

	case *BlendConfig:
		for _, in := range spec.Inputs {
			j, err := g.input(n.name, in.Name)
			if err != nil {
				return l, err
			}
			l.inputs = append(l.inputs, j)
			alpha, err := bindParam(g, i, "alpha", in.Alpha)
			if err != nil {
				return l, err
			}
			l.alphas = append(l.alphas, alpha)
		}

	case *TextConfig:
		if l.text, err = bindParam(g, i, "text", spec.Text); err != nil {
			return l, err
		}
		if l.position, err = bindParam(g, i, "position", spec.Position); err != nil {
			return l, err
		}
		if l.color, err = bindParam(g, i, "color", spec.Color); err != nil {
			return l, err
		}

	case *FpsConfig:
		l.position = StaticBinding(spec.Position)
		if l.color, err = bindParam(g, i, "color", spec.Color); err != nil {
			return l, err
		}
	}

	n.edges = append(n.edges, l.inputs...)
	return l, nil
}

// input resolves a shader or blend input name.
func (g *Graph) input(node, name string) (int, error) {
	j, ok := g.byName[name]
	if !ok {
		return -1, &ResolutionError{Node: node, Field: "inputs", Ref: name, Reason: "unknown node"}
	}
	if g.nodes[j].kind == KindTween {
		return -1, &ResolutionError{Node: node, Field: "inputs", Ref: name, Reason: "cannot sample tween node"}
	}
	return j, nil
}

// bindParam binds p for node i, type-checking links against the output
// kind of their target. Links become value edges of node i.
func bindParam[T ParamType](g *Graph, i int, field string, p Parameter[T]) (Binding[T], error) {
	if !p.IsLink() {
		return StaticBinding(p.Value()), nil
	}
	n := &g.nodes[i]
	j, ok := g.byName[p.Target()]
	if !ok {
		return Binding[T]{}, &ResolutionError{Node: n.name, Field: field, Ref: p.Target(), Reason: "unknown node"}
	}
	if k := g.outputKind(j); !accepts[T](k) {
		return Binding[T]{}, &ResolutionError{
			Node:   n.name,
			Field:  field,
			Ref:    p.Target(),
			Reason: fmt.Sprintf("want %s, got %s from node", typeName[T](), k),
		}
	}
	n.edges = append(n.edges, j)
	return LinkBinding[T](j), nil
}

// outputKind is the kind of Value node j produces. Known before
// instantiation.
func (g *Graph) outputKind(j int) ValueKind {
	switch spec := g.nodes[j].spec.(type) {
	case *ImageConfig, *ShaderConfig, *BlendConfig:
		return ValueTexture
	case *TextConfig:
		return ValueString
	case *FpsConfig:
		return ValueScalar
	case *TweenConfig:
		return vectorKind(min(len(spec.From), len(spec.To)))
	}
	return ValueNone
}

// sort returns node indices in dependency-first order using a depth-first
// walk over all edges. A back edge yields a CycleError naming exactly the
// nodes on the cycle.
func (g *Graph) sort() ([]int, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]uint8, len(g.nodes))
	stack := make([]int, 0, len(g.nodes))
	order := make([]int, 0, len(g.nodes))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			start := len(stack) - 1
			for stack[start] != i {
				start--
			}
			cycle := make([]string, 0, len(stack)-start)
			for _, j := range stack[start:] {
				cycle = append(cycle, g.nodes[j].name)
			}
			return &CycleError{Nodes: cycle}
		}
		state[i] = visiting
		stack = append(stack, i)
		for _, e := range g.nodes[i].edges {
			if err := visit(e); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[i] = done
		order = append(order, i)
		return nil
	}

	for i := range g.nodes {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// instantiate creates the resources of node i. Its dependencies have
// already been instantiated.
func (g *Graph) instantiate(i int, l nodeLinks, src Sources) error {
	n := &g.nodes[i]

	switch spec := n.spec.(type) {
	case *ImageConfig:
		tex, err := src.LoadImage(spec.Path)
		if err != nil {
			return &ResourceError{Node: n.name, Op: "load image " + spec.Path, Err: err}
		}
		n.image = &imageInput{texture: tex}
		n.value = TextureValue(tex)
		return nil

	case *TweenConfig:
		n.tween = newTweenState(spec)
		n.value = n.tween.value(0)
		return nil
	}

	p := RenderPass{
		node: i,
		kind: n.kind,
		text: l.text,
		pos:  l.position,
		col:  l.color,
	}
	for k, j := range l.inputs {
		if g.nodes[j].kind == KindImage {
			p.attachments = append(p.attachments, g.nodes[j].image.texture)
			if n.kind == KindBlend {
				p.alphas = append(p.alphas, l.alphas[k])
			}
		}
	}
	for k, j := range l.inputs {
		if g.nodes[j].kind != KindImage {
			p.deps = append(p.deps, j)
			if n.kind == KindBlend {
				p.alphas = append(p.alphas, l.alphas[k])
			}
		}
	}

	limit := g.dev.MaxSamplers()
	if n.kind == KindBlend {
		limit = min(limit, 4)
	}
	if len(l.inputs) > limit {
		return &ResourceError{
			Node: n.name,
			Op:   "bind samplers",
			Err:  fmt.Errorf("%d inputs exceed the limit of %d", len(l.inputs), limit),
		}
	}

	// Register the pass before allocating so Dispose releases whatever
	// was created if a later step fails.
	idx := len(g.passes)
	g.passes = append(g.passes, p)
	n.pass = idx
	pp := &g.passes[idx]

	var err error
	switch spec := n.spec.(type) {
	case *ShaderConfig:
		pp.program, err = g.compile(n.name, spec, src)
	case *BlendConfig:
		pp.op = spec.Operation
		pp.program, err = g.dev.BlendProgram(spec.Operation)
		if err != nil {
			err = &ResourceError{Node: n.name, Op: "create blend program", Err: err}
		}
	case *TextConfig:
		pp.face, err = g.face(n.name, spec.Font, spec.Size, src)
	case *FpsConfig:
		pp.face, err = g.face(n.name, spec.Font, spec.Size, src)
		pp.fps = newFpsCounter(spec.Interval)
	}
	if err != nil {
		return err
	}

	pp.target, err = g.dev.NewTexture(g.size)
	if err != nil {
		return &ResourceError{Node: n.name, Op: "allocate render target", Err: err}
	}
	return nil
}

func (g *Graph) compile(node string, spec *ShaderConfig, src Sources) (Program, error) {
	ps := ProgramSource{VertexPath: spec.Vertex, FragmentPath: spec.Fragment}
	var err error
	if spec.Vertex != "" {
		if ps.Vertex, err = src.ReadText(spec.Vertex); err != nil {
			return nil, &ResourceError{Node: node, Op: "read " + spec.Vertex, Err: err}
		}
	}
	if ps.Fragment, err = src.ReadText(spec.Fragment); err != nil {
		return nil, &ResourceError{Node: node, Op: "read " + spec.Fragment, Err: err}
	}
	prog, err := g.dev.CompileProgram(ps)
	if err != nil {
		var ce *ShaderCompileError
		var le *ShaderLinkError
		if errors.As(err, &ce) || errors.As(err, &le) {
			return nil, fmt.Errorf("node %q: %w", node, err)
		}
		return nil, &ResourceError{Node: node, Op: "compile program", Err: err}
	}
	return prog, nil
}

func (g *Graph) face(node, font string, size float64, src Sources) (Face, error) {
	var data []byte
	if font != "" {
		s, err := src.ReadText(font)
		if err != nil {
			return nil, &ResourceError{Node: node, Op: "read font " + font, Err: err}
		}
		data = []byte(s)
	}
	f, err := g.dev.NewFace(data, size)
	if err != nil {
		return nil, &ResourceError{Node: node, Op: "load font", Err: err}
	}
	return f, nil
}

// selectOutputs picks the passes composed into the surface: those marked
// output = true, or when none are marked, every pass no other pass samples.
func (g *Graph) selectOutputs() {
	g.sampled = make([]bool, len(g.passes))
	g.direct = make([]bool, len(g.passes))
	for i := range g.passes {
		for _, d := range g.passes[i].deps {
			g.sampled[g.nodes[d].pass] = true
		}
	}

	marked := false
	for i := range g.nodes {
		if g.nodes[i].pass >= 0 && markedOutput(g.nodes[i].spec) {
			marked = true
			break
		}
	}
	for i := range g.nodes {
		p := g.nodes[i].pass
		if p < 0 {
			continue
		}
		if (marked && markedOutput(g.nodes[i].spec)) || (!marked && !g.sampled[p]) {
			g.outputs = append(g.outputs, p)
			g.direct[p] = !g.sampled[p]
		}
	}
}

// Dispose releases every texture and program the graph owns. The graph
// must not be used afterwards. Calling Dispose twice is a no-op.
func (g *Graph) Dispose() {
	if g == nil || g.disposed {
		return
	}
	g.disposed = true
	for i := range g.passes {
		p := &g.passes[i]
		if p.target != nil {
			p.target.Dispose()
			p.target = nil
		}
		if p.program != nil {
			p.program.Dispose()
			p.program = nil
		}
	}
	for i := range g.nodes {
		if img := g.nodes[i].image; img != nil && img.texture != nil {
			img.texture.Dispose()
			img.texture = nil
		}
	}
}

// Size returns the size of every pass target.
func (g *Graph) Size() Size { return g.size }

// PassCount returns the number of render passes.
func (g *Graph) PassCount() int { return len(g.passes) }

// Pass returns pass i. Passes are numbered in dependency-first order.
func (g *Graph) Pass(i int) *RenderPass { return &g.passes[i] }

// Outputs returns the names of the output nodes in composition order.
func (g *Graph) Outputs() []string {
	out := make([]string, len(g.outputs))
	for i, p := range g.outputs {
		out[i] = g.nodes[g.passes[p].node].name
	}
	return out
}

// Lookup returns the pass of the named node.
func (g *Graph) Lookup(name string) (*RenderPass, bool) {
	i, ok := g.byName[name]
	if !ok || g.nodes[i].pass < 0 {
		return nil, false
	}
	return &g.passes[g.nodes[i].pass], true
}

// Order returns node names in dependency-first order.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	for i, j := range g.order {
		out[i] = g.nodes[j].name
	}
	return out
}

func errInvalidSize(s Size) error {
	return fmt.Errorf("invalid size %s", s)
}
