package prism

import (
	"bytes"
	"fmt"
	"hash/fnv"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// ttfFace is a text/v2 face at a fixed size with its line height cached.
type ttfFace struct {
	face *text.GoTextFace
	lh   float64
}

// LineHeight returns the vertical distance between baselines.
func (f *ttfFace) LineHeight() float64 { return f.lh }

// MeasureString returns the width and height of the rendered text.
func (f *ttfFace) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// faceCache shares parsed font sources between faces, keyed by a hash of
// the font data.
type faceCache struct {
	sources map[uint64]*text.GoTextFaceSource
}

func (c *faceCache) face(data []byte, size float64) (*ttfFace, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}
	if data == nil {
		data = goregular.TTF
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	key := h.Sum64()

	src, ok := c.sources[key]
	if !ok {
		var err error
		src, err = text.NewGoTextFaceSource(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}
		if c.sources == nil {
			c.sources = make(map[uint64]*text.GoTextFaceSource)
		}
		c.sources[key] = src
	}

	face := &text.GoTextFace{Source: src, Size: size}
	m := face.Metrics()
	return &ttfFace{face: face, lh: m.HAscent + m.HDescent + m.HLineGap}, nil
}
