package prism

import (
	"fmt"
	"math"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// LoopMode controls what a tween does after Duration has elapsed.
type LoopMode uint8

const (
	LoopNone   LoopMode = iota // hold the end value
	LoopRepeat                 // jump back to the start
	LoopYoyo                   // play backwards, then forwards again
)

var loopModeNames = [...]string{
	LoopNone:   "none",
	LoopRepeat: "repeat",
	LoopYoyo:   "yoyo",
}

func (m LoopMode) String() string {
	if int(m) < len(loopModeNames) {
		return loopModeNames[m]
	}
	return fmt.Sprintf("LoopMode(%d)", m)
}

// ParseLoopMode returns the LoopMode named s. The empty string is LoopNone.
func ParseLoopMode(s string) (LoopMode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LoopNone, true
	}
	for i, name := range loopModeNames {
		if name == s {
			return LoopMode(i), true
		}
	}
	return 0, false
}

var easings = map[string]ease.TweenFunc{
	"linear":         ease.Linear,
	"in-quad":        ease.InQuad,
	"out-quad":       ease.OutQuad,
	"in-out-quad":    ease.InOutQuad,
	"out-in-quad":    ease.OutInQuad,
	"in-cubic":       ease.InCubic,
	"out-cubic":      ease.OutCubic,
	"in-out-cubic":   ease.InOutCubic,
	"out-in-cubic":   ease.OutInCubic,
	"in-quart":       ease.InQuart,
	"out-quart":      ease.OutQuart,
	"in-out-quart":   ease.InOutQuart,
	"out-in-quart":   ease.OutInQuart,
	"in-quint":       ease.InQuint,
	"out-quint":      ease.OutQuint,
	"in-out-quint":   ease.InOutQuint,
	"out-in-quint":   ease.OutInQuint,
	"in-sine":        ease.InSine,
	"out-sine":       ease.OutSine,
	"in-out-sine":    ease.InOutSine,
	"out-in-sine":    ease.OutInSine,
	"in-expo":        ease.InExpo,
	"out-expo":       ease.OutExpo,
	"in-out-expo":    ease.InOutExpo,
	"out-in-expo":    ease.OutInExpo,
	"in-circ":        ease.InCirc,
	"out-circ":       ease.OutCirc,
	"in-out-circ":    ease.InOutCirc,
	"out-in-circ":    ease.OutInCirc,
	"in-elastic":     ease.InElastic,
	"out-elastic":    ease.OutElastic,
	"in-out-elastic": ease.InOutElastic,
	"out-in-elastic": ease.OutInElastic,
	"in-back":        ease.InBack,
	"out-back":       ease.OutBack,
	"in-out-back":    ease.InOutBack,
	"out-in-back":    ease.OutInBack,
	"in-bounce":      ease.InBounce,
	"out-bounce":     ease.OutBounce,
	"in-out-bounce":  ease.InOutBounce,
	"out-in-bounce":  ease.OutInBounce,
}

// easingFunc looks up an easing by name ("linear", "in-out-quad", ...).
// Underscores and case are ignored.
func easingFunc(name string) (ease.TweenFunc, bool) {
	key := strings.ReplaceAll(strings.ToLower(name), "_", "-")
	fn, ok := easings[key]
	return fn, ok
}

// tweenState animates up to 4 components. Each gween.Tween is Set to the
// looped local time, so the value depends only on frame time.
type tweenState struct {
	tweens   [4]*gween.Tween
	count    int
	duration float32
	loop     LoopMode
}

func newTweenState(cfg *TweenConfig) *tweenState {
	fn, ok := easingFunc(cfg.Easing)
	if !ok {
		fn = ease.Linear
	}
	s := &tweenState{
		count:    min(len(cfg.From), len(cfg.To), 4),
		duration: cfg.Duration,
		loop:     cfg.Loop,
	}
	for i := 0; i < s.count; i++ {
		s.tweens[i] = gween.New(cfg.From[i], cfg.To[i], cfg.Duration, fn)
	}
	return s
}

// localTime maps frame time onto [0, duration] according to the loop mode.
func (s *tweenState) localTime(t float32) float32 {
	d := s.duration
	if d <= 0 || t <= 0 {
		return 0
	}
	switch s.loop {
	case LoopRepeat:
		return float32(math.Mod(float64(t), float64(d)))
	case LoopYoyo:
		c := float32(math.Mod(float64(t), float64(2*d)))
		if c > d {
			return 2*d - c
		}
		return c
	}
	return min(t, d)
}

// value returns the animated value at frame time t.
func (s *tweenState) value(t float32) Value {
	local := s.localTime(t)
	out := Value{Kind: vectorKind(s.count)}
	for i := 0; i < s.count; i++ {
		out.Vec[i], _ = s.tweens[i].Set(local)
	}
	return out
}

// outputKind is the kind of Value the tween produces.
func (s *tweenState) outputKind() ValueKind {
	return vectorKind(s.count)
}
