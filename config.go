package prism

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Defaults applied to omitted attributes.
const (
	DefaultWidth       = 800
	DefaultHeight      = 600
	DefaultFontSize    = 20
	DefaultFpsInterval = 1.0
)

var defaultColor = [4]float32{1, 1, 1, 1}

// Config is a parsed composition file.
type Config struct {
	Title  string
	Width  int
	Height int
	LogFPS bool
	Nodes  []NodeConfig

	// Dir is the directory relative paths in Nodes resolve against. Set by
	// LoadConfigFile; empty for ParseConfig.
	Dir string
}

// Size returns the configured surface size.
func (c *Config) Size() Size {
	return Size{Width: c.Width, Height: c.Height}
}

// NodeConfig is one named node of a composition.
type NodeConfig struct {
	Name      string
	Spec      NodeSpec
	DeclRange hcl.Range
}

// NodeSpec is the per-kind part of a NodeConfig. It is implemented only by
// the *XxxConfig types of this package.
type NodeSpec interface {
	Kind() NodeKind
	nodeSpec()
}

// ImageConfig loads a static texture.
type ImageConfig struct {
	Path string
}

// ShaderConfig draws a fragment program over the whole target. Vertex
// optionally names shared source compiled together with Fragment.
type ShaderConfig struct {
	Vertex   string
	Fragment string
	Inputs   []string
	Output   bool
}

// BlendInput is one weighted input of a blend node.
type BlendInput struct {
	Name  string
	Alpha Parameter[float32]
}

// BlendConfig combines its inputs with Operation.
type BlendConfig struct {
	Operation BlendOp
	Inputs    []BlendInput
	Output    bool
}

// TextConfig draws a line of text.
type TextConfig struct {
	Text     Parameter[string]
	Position Parameter[[2]float32]
	Color    Parameter[[4]float32]
	Font     string
	Size     float64
	Output   bool
}

// FpsConfig draws the measured frame rate, refreshed every Interval
// seconds.
type FpsConfig struct {
	Position [2]float32
	Color    Parameter[[4]float32]
	Font     string
	Size     float64
	Interval float32
	Output   bool
}

// TweenConfig animates between From and To (1 to 4 components) over
// Duration seconds of frame time.
type TweenConfig struct {
	From     []float32
	To       []float32
	Duration float32
	Easing   string
	Loop     LoopMode
}

func (*ImageConfig) Kind() NodeKind  { return KindImage }
func (*ShaderConfig) Kind() NodeKind { return KindShader }
func (*BlendConfig) Kind() NodeKind  { return KindBlend }
func (*TextConfig) Kind() NodeKind   { return KindText }
func (*FpsConfig) Kind() NodeKind    { return KindFps }
func (*TweenConfig) Kind() NodeKind  { return KindTween }

func (*ImageConfig) nodeSpec()  {}
func (*ShaderConfig) nodeSpec() {}
func (*BlendConfig) nodeSpec()  {}
func (*TextConfig) nodeSpec()   {}
func (*FpsConfig) nodeSpec()    {}
func (*TweenConfig) nodeSpec()  {}

// markedOutput reports whether the node was explicitly marked as an output.
func markedOutput(s NodeSpec) bool {
	switch s := s.(type) {
	case *ShaderConfig:
		return s.Output
	case *BlendConfig:
		return s.Output
	case *TextConfig:
		return s.Output
	case *FpsConfig:
		return s.Output
	}
	return false
}

// --- HCL schema ---

type fileBody struct {
	Title  *string     `hcl:"title,optional"`
	Width  *int        `hcl:"width,optional"`
	Height *int        `hcl:"height,optional"`
	LogFPS *bool       `hcl:"log_fps,optional"`
	Nodes  []nodeBlock `hcl:"node,block"`
}

type nodeBlock struct {
	Name      string    `hcl:"name,label"`
	Type      string    `hcl:"type"`
	TypeRange hcl.Range `hcl:"type,attr_range"`
	Remain    hcl.Body  `hcl:",remain"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type imageBody struct {
	Path string `hcl:"path"`
}

type shaderBody struct {
	Vertex   string   `hcl:"vertex,optional"`
	Fragment string   `hcl:"fragment"`
	Inputs   []string `hcl:"inputs,optional"`
	Output   bool     `hcl:"output,optional"`
}

type blendBody struct {
	Operation      string           `hcl:"operation"`
	OperationRange hcl.Range        `hcl:"operation,attr_range"`
	Inputs         []blendInputBody `hcl:"input,block"`
	Output         bool             `hcl:"output,optional"`
}

type blendInputBody struct {
	Name  string         `hcl:"name,label"`
	Alpha hcl.Expression `hcl:"alpha,optional"`
}

type textBody struct {
	Text     hcl.Expression `hcl:"text"`
	Position hcl.Expression `hcl:"position,optional"`
	Color    hcl.Expression `hcl:"color,optional"`
	Font     string         `hcl:"font,optional"`
	Size     *float64       `hcl:"size,optional"`
	Output   bool           `hcl:"output,optional"`
}

type fpsBody struct {
	Position []float64     `hcl:"position,optional"`
	Color    hcl.Expression `hcl:"color,optional"`
	Font     string         `hcl:"font,optional"`
	Size     *float64       `hcl:"size,optional"`
	Interval *float64       `hcl:"interval,optional"`
	Output   bool           `hcl:"output,optional"`
}

type tweenBody struct {
	From          hcl.Expression `hcl:"from"`
	To            hcl.Expression `hcl:"to"`
	Duration      float64        `hcl:"duration"`
	DurationRange hcl.Range      `hcl:"duration,attr_range"`
	Easing        string         `hcl:"easing,optional"`
	EasingRange   hcl.Range      `hcl:"easing,attr_range"`
	Loop          string         `hcl:"loop,optional"`
	LoopRange     hcl.Range      `hcl:"loop,attr_range"`
}

// LoadConfigFile reads and parses a composition file. Files ending in
// ".json" use the HCL JSON syntax; everything else uses native HCL.
func LoadConfigFile(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := ParseConfig(src, path)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// ParseConfig parses a composition from src. filename selects the syntax
// by extension and appears in diagnostics.
func ParseConfig(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()

	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		file, diags = parser.ParseJSON(src, filename)
	} else {
		file, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, &ConfigError{Filename: filename, Diags: diags}
	}

	var body fileBody
	if diags := gohcl.DecodeBody(file.Body, nil, &body); diags.HasErrors() {
		return nil, &ConfigError{Filename: filename, Diags: diags}
	}

	cfg := &Config{
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
	if body.Title != nil {
		cfg.Title = *body.Title
	}
	if body.LogFPS != nil {
		cfg.LogFPS = *body.LogFPS
	}
	if body.Width != nil {
		cfg.Width = *body.Width
	}
	if body.Height != nil {
		cfg.Height = *body.Height
	}
	if !cfg.Size().Valid() {
		diags = append(diags, diagError("Invalid surface size",
			fmt.Sprintf("width and height must be positive, got %s.", cfg.Size()),
			file.Body.MissingItemRange()))
	}

	for _, nb := range body.Nodes {
		spec, nodeDiags := decodeNode(nb)
		diags = append(diags, nodeDiags...)
		if spec == nil {
			continue
		}
		cfg.Nodes = append(cfg.Nodes, NodeConfig{
			Name:      nb.Name,
			Spec:      spec,
			DeclRange: nb.DeclRange,
		})
	}
	if diags.HasErrors() {
		return nil, &ConfigError{Filename: filename, Diags: diags}
	}
	return cfg, nil
}

func decodeNode(nb nodeBlock) (NodeSpec, hcl.Diagnostics) {
	switch nb.Type {
	case "image":
		var b imageBody
		if diags := gohcl.DecodeBody(nb.Remain, nil, &b); diags.HasErrors() {
			return nil, diags
		}
		return &ImageConfig{Path: b.Path}, nil

	case "shader":
		var b shaderBody
		if diags := gohcl.DecodeBody(nb.Remain, nil, &b); diags.HasErrors() {
			return nil, diags
		}
		return &ShaderConfig{
			Vertex:   b.Vertex,
			Fragment: b.Fragment,
			Inputs:   b.Inputs,
			Output:   b.Output,
		}, nil

	case "blend":
		return decodeBlend(nb)

	case "text":
		var b textBody
		if diags := gohcl.DecodeBody(nb.Remain, nil, &b); diags.HasErrors() {
			return nil, diags
		}
		spec := &TextConfig{Font: b.Font, Size: DefaultFontSize, Output: b.Output}
		var diags hcl.Diagnostics
		var d hcl.Diagnostics
		spec.Text, d = decodeParam(b.Text, "")
		diags = append(diags, d...)
		spec.Position, d = decodeParam(b.Position, [2]float32{})
		diags = append(diags, d...)
		spec.Color, d = decodeParam(b.Color, defaultColor)
		diags = append(diags, d...)
		if b.Size != nil {
			spec.Size = *b.Size
		}
		if spec.Size <= 0 {
			diags = append(diags, diagError("Invalid font size", "size must be positive.", nb.DeclRange))
		}
		return spec, diags

	case "fps":
		var b fpsBody
		if diags := gohcl.DecodeBody(nb.Remain, nil, &b); diags.HasErrors() {
			return nil, diags
		}
		spec := &FpsConfig{
			Font:     b.Font,
			Size:     DefaultFontSize,
			Interval: DefaultFpsInterval,
			Output:   b.Output,
		}
		var diags hcl.Diagnostics
		switch len(b.Position) {
		case 0:
		case 2:
			spec.Position = [2]float32{float32(b.Position[0]), float32(b.Position[1])}
		default:
			diags = append(diags, diagError("Invalid position",
				fmt.Sprintf("position needs 2 numbers, got %d.", len(b.Position)), nb.DeclRange))
		}
		var d hcl.Diagnostics
		spec.Color, d = decodeParam(b.Color, defaultColor)
		diags = append(diags, d...)
		if b.Size != nil {
			spec.Size = *b.Size
		}
		if b.Interval != nil {
			spec.Interval = float32(*b.Interval)
		}
		if spec.Size <= 0 {
			diags = append(diags, diagError("Invalid font size", "size must be positive.", nb.DeclRange))
		}
		if spec.Interval <= 0 {
			diags = append(diags, diagError("Invalid interval", "interval must be positive.", nb.DeclRange))
		}
		return spec, diags

	case "tween":
		return decodeTween(nb)
	}

	return nil, hcl.Diagnostics{diagError("Unsupported node type",
		fmt.Sprintf("Node %q has type %q; expected one of image, shader, blend, text, fps, tween.", nb.Name, nb.Type),
		nb.TypeRange)}
}

func decodeBlend(nb nodeBlock) (NodeSpec, hcl.Diagnostics) {
	var b blendBody
	if diags := gohcl.DecodeBody(nb.Remain, nil, &b); diags.HasErrors() {
		return nil, diags
	}
	var diags hcl.Diagnostics
	op, ok := ParseBlendOp(b.Operation)
	if !ok {
		diags = append(diags, diagError("Unsupported blend operation",
			fmt.Sprintf("%q is not one of min, max, add, sub.", b.Operation), b.OperationRange))
	}
	if len(b.Inputs) == 0 {
		diags = append(diags, diagError("Missing blend inputs",
			fmt.Sprintf("Blend node %q needs at least one input block.", nb.Name), nb.DeclRange))
	}
	spec := &BlendConfig{Operation: op, Output: b.Output}
	for _, in := range b.Inputs {
		alpha, d := decodeParam(in.Alpha, float32(1))
		diags = append(diags, d...)
		spec.Inputs = append(spec.Inputs, BlendInput{Name: in.Name, Alpha: alpha})
	}
	return spec, diags
}

func decodeTween(nb nodeBlock) (NodeSpec, hcl.Diagnostics) {
	var b tweenBody
	if diags := gohcl.DecodeBody(nb.Remain, nil, &b); diags.HasErrors() {
		return nil, diags
	}
	var diags hcl.Diagnostics
	from, d := decodeComponents(b.From)
	diags = append(diags, d...)
	to, d := decodeComponents(b.To)
	diags = append(diags, d...)
	if diags.HasErrors() {
		return nil, diags
	}
	if len(from) != len(to) {
		diags = append(diags, diagError("Mismatched tween endpoints",
			fmt.Sprintf("from has %d components, to has %d.", len(from), len(to)), nb.DeclRange))
	}
	if b.Duration <= 0 {
		diags = append(diags, diagError("Invalid duration", "duration must be positive.", b.DurationRange))
	}
	if b.Easing == "" {
		b.Easing = "linear"
	}
	if _, ok := easingFunc(b.Easing); !ok {
		diags = append(diags, diagError("Unsupported easing",
			fmt.Sprintf("%q is not a known easing function.", b.Easing), b.EasingRange))
	}
	loop, ok := ParseLoopMode(b.Loop)
	if !ok {
		diags = append(diags, diagError("Unsupported loop mode",
			fmt.Sprintf("%q is not one of none, repeat, yoyo.", b.Loop), b.LoopRange))
	}
	return &TweenConfig{
		From:     from,
		To:       to,
		Duration: float32(b.Duration),
		Easing:   b.Easing,
		Loop:     loop,
	}, diags
}

// linkTarget returns the node name when expr is the traversal node.<name>
// (in JSON syntax, the string "node.<name>").
func linkTarget(expr hcl.Expression) (string, bool) {
	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(trav) != 2 || trav.RootName() != "node" {
		return "", false
	}
	attr, ok := trav[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}

// decodeParam decodes a literal or link. An omitted attribute yields def.
func decodeParam[T ParamType](expr hcl.Expression, def T) (Parameter[T], hcl.Diagnostics) {
	if expr == nil {
		return Static(def), nil
	}
	if name, ok := linkTarget(expr); ok {
		return Link[T](name), nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return Static(def), diags
	}
	if val.IsNull() {
		return Static(def), nil
	}
	out, err := fromCty[T](val)
	if err != nil {
		return Static(def), hcl.Diagnostics{diagError("Invalid parameter value",
			fmt.Sprintf("Expected a %s or a node.<name> link: %s.", typeName[T](), err), expr.Range())}
	}
	return Static(out), nil
}

func fromCty[T ParamType](val cty.Value) (T, error) {
	var out T
	if !val.IsWhollyKnown() {
		return out, fmt.Errorf("value is not known")
	}
	switch p := any(&out).(type) {
	case *string:
		sv, err := convert.Convert(val, cty.String)
		if err != nil {
			return out, err
		}
		*p = sv.AsString()
	case *float32:
		nv, err := convert.Convert(val, cty.Number)
		if err != nil {
			return out, err
		}
		if err := gocty.FromCtyValue(nv, p); err != nil {
			return out, err
		}
	case *[2]float32:
		if err := ctyVector(val, p[:]); err != nil {
			return out, err
		}
	case *[4]float32:
		if err := ctyVector(val, p[:]); err != nil {
			return out, err
		}
	}
	return out, nil
}

// ctyVector decodes a list of exactly len(dst) numbers into dst.
func ctyVector(val cty.Value, dst []float32) error {
	vals, err := ctyNumbers(val)
	if err != nil {
		return err
	}
	if len(vals) != len(dst) {
		return fmt.Errorf("expected %d numbers, got %d", len(dst), len(vals))
	}
	copy(dst, vals)
	return nil
}

func ctyNumbers(val cty.Value) ([]float32, error) {
	lv, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, err
	}
	if lv.IsNull() {
		return nil, fmt.Errorf("value is null")
	}
	var out []float32
	if err := gocty.FromCtyValue(lv, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decodeComponents decodes a number or a list of 1 to 4 numbers.
func decodeComponents(expr hcl.Expression) ([]float32, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	var out []float32
	var err error
	if val.Type() == cty.Number {
		var f float32
		if err = gocty.FromCtyValue(val, &f); err == nil {
			out = []float32{f}
		}
	} else {
		out, err = ctyNumbers(val)
	}
	if err == nil && (len(out) < 1 || len(out) > 4) {
		err = fmt.Errorf("expected 1 to 4 numbers, got %d", len(out))
	}
	if err != nil {
		return nil, hcl.Diagnostics{diagError("Invalid tween value",
			fmt.Sprintf("Expected a number or a list of numbers: %s.", err), expr.Range())}
	}
	return out, nil
}

func diagError(summary, detail string, rng hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}
}
