package main

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/prism"
)

// control is a host event applied between frames.
type control uint8

const (
	controlReload control = iota + 1
	controlPause
	controlResume
	controlTogglePause
	controlScreenshot
)

func (c control) String() string {
	switch c {
	case controlReload:
		return "reload"
	case controlPause:
		return "pause"
	case controlResume:
		return "resume"
	case controlTogglePause:
		return "toggle-pause"
	case controlScreenshot:
		return "screenshot"
	}
	return "unknown"
}

// fpsLogInterval is how often FPS is logged when the composition sets
// log_fps.
const fpsLogInterval = 5 * time.Second

// session is the part of *prism.Renderer the game drives.
type session interface {
	Render(surface prism.Texture, pointer prism.Pointer)
	Resize(size prism.Size) error
	Reload(nodes []prism.NodeConfig) error
	Pause()
	Resume()
	Paused() bool
	Graph() *prism.Graph
}

// game adapts a prism session to ebiten.Game.
type game struct {
	logger     *slog.Logger
	configPath string
	load       func(path string) (*prism.Config, error)
	session    session
	controls   chan control

	pointer prism.PointerTracker
	surface *prism.EbitenTexture

	logFPS        bool
	lastFPSLog    time.Time
	screenshotDir string
	wantShot      bool
}

func newGame(logger *slog.Logger, opts *options, cfg *prism.Config, s session) *game {
	return &game{
		logger:        logger,
		configPath:    opts.ConfigPath,
		load:          prism.LoadConfigFile,
		session:       s,
		controls:      make(chan control, 8),
		logFPS:        cfg.LogFPS,
		lastFPSLog:    time.Now(),
		screenshotDir: opts.ScreenshotDir,
	}
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.apply(controlReload)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.apply(controlTogglePause)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.apply(controlScreenshot)
	}
	g.drain()
	g.pointer.Update()

	if g.logFPS && time.Since(g.lastFPSLog) >= fpsLogInterval {
		g.lastFPSLog = time.Now()
		st := g.session.Graph().Stats()
		g.logger.Info("fps",
			"fps", ebiten.ActualFPS(), "tps", ebiten.ActualTPS(),
			"evaluated", st.Evaluated, "draws", st.Draws, "composites", st.Composites)
	}
	return nil
}

// drain applies every control queued by the signal watcher.
func (g *game) drain() {
	for {
		select {
		case c := <-g.controls:
			g.apply(c)
		default:
			return
		}
	}
}

func (g *game) apply(c control) {
	g.logger.Debug("control", "control", c.String())
	switch c {
	case controlReload:
		g.reload()
	case controlPause:
		g.session.Pause()
	case controlResume:
		g.session.Resume()
	case controlTogglePause:
		if g.session.Paused() {
			g.session.Resume()
		} else {
			g.session.Pause()
		}
	case controlScreenshot:
		g.wantShot = true
	}
}

// reload re-reads the composition file and swaps the graph. Failures are
// logged and the current graph keeps rendering.
func (g *game) reload() {
	cfg, err := g.load(g.configPath)
	if err != nil {
		g.logger.Warn("reload: config rejected, keeping previous graph", "path", g.configPath, "error", err)
		return
	}
	if err := g.session.Reload(cfg.Nodes); err != nil {
		// Renderer.Reload already logged the build failure.
		return
	}
	g.logFPS = cfg.LogFPS
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.surface == nil || g.surface.Image() != screen {
		g.surface = prism.NewScreenTexture(screen)
	}
	// The screen is not cleared between frames, so skipping Render keeps
	// the last frame visible while paused.
	if !g.session.Paused() {
		g.session.Render(g.surface, g.pointer.Pointer())
	}
	if g.wantShot {
		g.wantShot = false
		if _, err := prism.WriteScreenshot(g.surface, g.screenshotDir, "prism"); err != nil {
			g.logger.Warn("screenshot failed", "error", err)
		}
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := prism.Size{Width: outsideWidth, Height: outsideHeight}
	if size.Valid() {
		if err := g.session.Resize(size); err != nil {
			g.logger.Warn("resize failed", "size", size.String(), "error", err)
		}
	}
	return outsideWidth, outsideHeight
}
