// Command prism opens a window and renders a composition file.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/prism"
)

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses args, builds the initial graph and runs the game loop.
func run(outW, logW io.Writer, args []string) error {
	opts, shouldExit, err := parseArgs(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := newLogger(opts.LogLevel, opts.LogFormat, logW)
	prism.SetLogger(logger)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	r, err := prism.NewRenderer(cfg.Nodes, prism.NewEbitenDevice(), prism.FileSources{Dir: cfg.Dir}, cfg.Size())
	if err != nil {
		return fmt.Errorf("building %s: %w", opts.ConfigPath, err)
	}
	defer r.Dispose()
	if opts.Paused {
		r.Pause()
	}

	g := newGame(logger, opts, cfg, r)
	stop := watchSignals(g.controls)
	defer stop()

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetScreenClearedEveryFrame(false)

	logger.Info("starting", "config", opts.ConfigPath, "size", cfg.Size().String(), "nodes", len(cfg.Nodes))
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// loadConfig reads the composition and applies command-line overrides.
func loadConfig(opts *options) (*prism.Config, error) {
	cfg, err := prism.LoadConfigFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Width > 0 {
		cfg.Width = opts.Width
	}
	if opts.Height > 0 {
		cfg.Height = opts.Height
	}
	if cfg.Title == "" {
		cfg.Title = "prism - " + filepath.Base(opts.ConfigPath)
	}
	return cfg, nil
}
