package prism

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleHCL = `
title   = "demo"
width   = 640
height  = 360
log_fps = true

node "bg" {
  type = "image"
  path = "bg.png"
}

node "fade" {
  type     = "tween"
  from     = 0
  to       = 1
  duration = 2
  easing   = "in-out-sine"
  loop     = "yoyo"
}

node "wave" {
  type     = "shader"
  vertex   = "shared.kage"
  fragment = "wave.kage"
  inputs   = ["bg"]
}

node "mix" {
  type      = "blend"
  operation = "add"
  input "bg" {}
  input "wave" {
    alpha = node.fade
  }
  output = true
}

node "label" {
  type     = "text"
  text     = "hello"
  position = [10, 20]
  color    = [1, 0, 0, 1]
  size     = 32
  output   = true
}

node "fps" {
  type     = "fps"
  position = [4, 4]
  interval = 0.5
}
`

func TestParseConfigHCL(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleHCL), "demo.hcl")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Title != "demo" || cfg.Width != 640 || cfg.Height != 360 || !cfg.LogFPS {
		t.Errorf("header = %q %dx%d log_fps=%v", cfg.Title, cfg.Width, cfg.Height, cfg.LogFPS)
	}

	var names []string
	for _, n := range cfg.Nodes {
		names = append(names, n.Name)
	}
	if want := []string{"bg", "fade", "wave", "mix", "label", "fps"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("nodes = %v, want %v", names, want)
	}

	if img := cfg.Nodes[0].Spec.(*ImageConfig); img.Path != "bg.png" {
		t.Errorf("image path = %q", img.Path)
	}

	tw := cfg.Nodes[1].Spec.(*TweenConfig)
	if !reflect.DeepEqual(tw.From, []float32{0}) || !reflect.DeepEqual(tw.To, []float32{1}) {
		t.Errorf("tween from/to = %v/%v", tw.From, tw.To)
	}
	if tw.Duration != 2 || tw.Easing != "in-out-sine" || tw.Loop != LoopYoyo {
		t.Errorf("tween = %+v", tw)
	}

	sh := cfg.Nodes[2].Spec.(*ShaderConfig)
	if sh.Vertex != "shared.kage" || sh.Fragment != "wave.kage" || !reflect.DeepEqual(sh.Inputs, []string{"bg"}) || sh.Output {
		t.Errorf("shader = %+v", sh)
	}

	bl := cfg.Nodes[3].Spec.(*BlendConfig)
	if bl.Operation != BlendAdd || !bl.Output || len(bl.Inputs) != 2 {
		t.Fatalf("blend = %+v", bl)
	}
	if in := bl.Inputs[0]; in.Name != "bg" || in.Alpha.IsLink() || in.Alpha.Value() != 1 {
		t.Errorf("blend input 0 = %+v, want bg with default alpha 1", in)
	}
	if in := bl.Inputs[1]; in.Name != "wave" || in.Alpha.Target() != "fade" {
		t.Errorf("blend input 1 = %+v, want wave linked to fade", in)
	}

	tx := cfg.Nodes[4].Spec.(*TextConfig)
	if tx.Text.Value() != "hello" || tx.Position.Value() != [2]float32{10, 20} ||
		tx.Color.Value() != [4]float32{1, 0, 0, 1} || tx.Size != 32 || !tx.Output {
		t.Errorf("text = %+v", tx)
	}

	fps := cfg.Nodes[5].Spec.(*FpsConfig)
	if fps.Position != [2]float32{4, 4} || fps.Interval != 0.5 || fps.Size != DefaultFontSize || fps.Color.Value() != defaultColor {
		t.Errorf("fps = %+v", fps)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	src := `
node "t" {
  type = "text"
  text = "x"
}
node "f" {
  type = "fps"
}
node "tw" {
  type     = "tween"
  from     = [0, 0]
  to       = [1, 1]
  duration = 1
}
`
	cfg, err := ParseConfig([]byte(src), "defaults.hcl")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Size() != (Size{Width: DefaultWidth, Height: DefaultHeight}) || cfg.Title != "" || cfg.LogFPS {
		t.Errorf("header defaults = %+v", cfg)
	}
	tx := cfg.Nodes[0].Spec.(*TextConfig)
	if tx.Position.Value() != [2]float32{} || tx.Color.Value() != defaultColor || tx.Size != DefaultFontSize {
		t.Errorf("text defaults = %+v", tx)
	}
	f := cfg.Nodes[1].Spec.(*FpsConfig)
	if f.Interval != DefaultFpsInterval || f.Size != DefaultFontSize {
		t.Errorf("fps defaults = %+v", f)
	}
	tw := cfg.Nodes[2].Spec.(*TweenConfig)
	if tw.Easing != "linear" || tw.Loop != LoopNone {
		t.Errorf("tween defaults = %+v", tw)
	}
}

func TestParseConfigLinks(t *testing.T) {
	src := `
node "t" {
  type     = "text"
  text     = node.fps
  position = node.pos
  color    = node.tint
}
`
	cfg, err := ParseConfig([]byte(src), "links.hcl")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	tx := cfg.Nodes[0].Spec.(*TextConfig)
	if tx.Text.Target() != "fps" || tx.Position.Target() != "pos" || tx.Color.Target() != "tint" {
		t.Errorf("links = %v %v %v", tx.Text, tx.Position, tx.Color)
	}
}

func TestParseConfigJSON(t *testing.T) {
	src := `{
  "title": "json demo",
  "node": {
    "fade": {"type": "tween", "from": [0], "to": [1], "duration": 1},
    "a": {"type": "shader", "fragment": "a.kage"},
    "mix": {
      "type": "blend",
      "operation": "max",
      "input": {"a": {"alpha": "node.fade"}}
    },
    "label": {"type": "text", "text": "node.fade", "position": [1, 2]}
  }
}`
	cfg, err := ParseConfig([]byte(src), "demo.json")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Title != "json demo" || len(cfg.Nodes) != 4 {
		t.Fatalf("cfg = %+v", cfg)
	}
	byName := map[string]NodeSpec{}
	for _, n := range cfg.Nodes {
		byName[n.Name] = n.Spec
	}
	bl := byName["mix"].(*BlendConfig)
	if bl.Operation != BlendMax || bl.Inputs[0].Alpha.Target() != "fade" {
		t.Errorf("blend = %+v", bl)
	}
	tx := byName["label"].(*TextConfig)
	if tx.Text.Target() != "fade" || tx.Position.Value() != [2]float32{1, 2} {
		t.Errorf("text = %+v", tx)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `node "a" {`, ""},
		{"unknown type", `
node "a" {
  type = "video"
}`, "Unsupported node type"},
		{"unknown attribute", `
node "a" {
  type     = "shader"
  fragment = "a.kage"
  speed    = 2
}`, "Unsupported argument"},
		{"missing fragment", `
node "a" {
  type = "shader"
}`, "Missing required argument"},
		{"bad blend op", `
node "m" {
  type      = "blend"
  operation = "multiply"
  input "a" {}
}`, "Unsupported blend operation"},
		{"blend without inputs", `
node "m" {
  type      = "blend"
  operation = "min"
}`, "Missing blend inputs"},
		{"bad easing", `
node "t" {
  type     = "tween"
  from     = 0
  to       = 1
  duration = 1
  easing   = "wobble"
}`, "Unsupported easing"},
		{"bad loop", `
node "t" {
  type     = "tween"
  from     = 0
  to       = 1
  duration = 1
  loop     = "forever"
}`, "Unsupported loop mode"},
		{"mismatched tween", `
node "t" {
  type     = "tween"
  from     = [0, 0]
  to       = [1, 1, 1]
  duration = 1
}`, "Mismatched tween endpoints"},
		{"too many components", `
node "t" {
  type     = "tween"
  from     = [0, 0, 0, 0, 0]
  to       = [1, 1, 1, 1, 1]
  duration = 1
}`, "Invalid tween value"},
		{"zero duration", `
node "t" {
  type     = "tween"
  from     = 0
  to       = 1
  duration = 0
}`, "Invalid duration"},
		{"bad color", `
node "t" {
  type  = "text"
  text  = "x"
  color = [1, 1]
}`, "Invalid parameter value"},
		{"bad font size", `
node "t" {
  type = "text"
  text = "x"
  size = 0
}`, "Invalid font size"},
		{"bad fps position", `
node "f" {
  type     = "fps"
  position = [1, 2, 3]
}`, "Invalid position"},
		{"bad surface", `
width = 0
`, "Invalid surface size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.src), "bad.hcl")
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want *ConfigError", err)
			}
			if !ce.Diags.HasErrors() {
				t.Error("ConfigError carries no error diagnostics")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigFileSetsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.hcl")
	src := "node \"a\" {\n  type = \"shader\"\n  fragment = \"a.kage\"\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.hcl"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestParsedConfigBuilds(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleHCL), "demo.hcl")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	dev := newFakeDevice()
	src := newFakeSources(dev)
	src.images["bg.png"] = Size{Width: 16, Height: 16}
	g, err := Build(cfg.Nodes, dev, src, cfg.Size())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer g.Dispose()
	if want := []string{"mix", "label"}; !reflect.DeepEqual(g.Outputs(), want) {
		t.Errorf("Outputs = %v, want %v", g.Outputs(), want)
	}
}
