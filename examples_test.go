package prism

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExampleCompositionsBuild(t *testing.T) {
	var files []string
	for _, pattern := range []string{"examples/*/*.hcl", "examples/*/*.json"} {
		m, err := filepath.Glob(pattern)
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, m...)
	}
	if len(files) == 0 {
		t.Skip("no example compositions")
	}

	for _, path := range files {
		t.Run(path, func(t *testing.T) {
			cfg, err := LoadConfigFile(path)
			if err != nil {
				t.Fatalf("LoadConfigFile: %v", err)
			}

			dev := newFakeDevice()
			src := newFakeSources(dev)
			for _, n := range cfg.Nodes {
				switch spec := n.Spec.(type) {
				case *ImageConfig:
					if _, err := os.Stat(filepath.Join(cfg.Dir, spec.Path)); err != nil {
						t.Errorf("node %q: %v", n.Name, err)
					}
					src.images[spec.Path] = Size{Width: 64, Height: 64}
				case *ShaderConfig:
					for _, p := range []string{spec.Vertex, spec.Fragment} {
						if p == "" {
							continue
						}
						b, err := os.ReadFile(filepath.Join(cfg.Dir, p))
						if err != nil {
							t.Errorf("node %q: %v", n.Name, err)
							continue
						}
						if !strings.Contains(string(b), "package main") {
							t.Errorf("%s: not a Kage source", p)
						}
					}
				}
			}

			g, err := Build(cfg.Nodes, dev, src, cfg.Size())
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			defer g.Dispose()
			if len(g.Outputs()) == 0 {
				t.Error("composition has no outputs")
			}
			g.Render(dev.texture(cfg.Size()), Frame{Time: 1.25})
		})
	}
}
