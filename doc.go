// Package prism renders compositions of GPU shader passes described by a
// declarative node graph.
//
// A composition is a list of named nodes: images, Kage fragment shaders,
// blends, text and FPS overlays, and tweens that animate values. Nodes
// reference each other by name, either as sampled inputs or through
// parameter links, and [Build] turns the list into a [Graph] that renders
// once per frame.
//
// # Configuration
//
// Compositions are written in HCL (or its JSON form) and loaded with
// [LoadConfigFile]:
//
//	title  = "plasma"
//	width  = 1280
//	height = 720
//
//	node "bg" {
//	  type = "image"
//	  path = "bg.png"
//	}
//
//	node "wave" {
//	  type     = "shader"
//	  fragment = "wave.kage"
//	  inputs   = ["bg"]
//	}
//
//	node "pulse" {
//	  type     = "tween"
//	  from     = 0.2
//	  to       = 1
//	  duration = 2
//	  loop     = "yoyo"
//	}
//
//	node "mix" {
//	  type      = "blend"
//	  operation = "add"
//	  input "bg"   { alpha = 1 }
//	  input "wave" { alpha = node.pulse }
//	}
//
// A parameter is either a literal or a link written node.<name>; links are
// type checked at build time and resolved against the target's output on
// every frame.
//
// # Shaders
//
// Fragment programs are Kage shaders. Every draw binds:
//
//	Resolution  vec2   target size in pixels
//	Time        float  seconds since the graph was built or reloaded
//	Pointer     vec4   (x, height-y, dragX, height-dragY); zw are 0 without a drag
//
// Image inputs are bound to the first image slots in input order, followed
// by the outputs of the shader, blend, text and fps nodes the pass reads, also
// in input order. Read them with imageSrc0At, imageSrc1At and so on.
//
// # Rendering
//
// [Renderer] owns the graph of a running session. It keeps the clock,
// reallocates targets on [Renderer.Resize], and replaces the graph on
// [Renderer.Reload], keeping the previous graph when the new one fails to
// build.
//
//	r, err := prism.NewRenderer(cfg.Nodes, prism.NewEbitenDevice(),
//		prism.FileSources{Dir: cfg.Dir}, cfg.Size())
//	...
//	func (g *Game) Draw(screen *ebiten.Image) {
//		g.r.Render(prism.NewScreenTexture(screen), g.pointer.Pointer())
//	}
package prism
