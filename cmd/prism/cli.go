package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError carries the process exit code for a failure.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// options are the parsed command-line settings.
type options struct {
	ConfigPath    string
	LogLevel      string
	LogFormat     string
	Width         int // 0 keeps the configured width
	Height        int // 0 keeps the configured height
	ScreenshotDir string
	Paused        bool
}

// parseArgs processes command-line arguments. It returns the options, true
// when the program should exit cleanly (help was requested), or an
// *ExitError.
func parseArgs(args []string, output io.Writer) (*options, bool, error) {
	fs := flag.NewFlagSet("prism", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
prism - render a graph of shader passes.

Usage:
  prism [options] CONFIG

Arguments:
  CONFIG
    Path to a composition file (.hcl, or .json for HCL JSON syntax).

Keys:
  F5 reload, Space pause/resume, F12 screenshot, Esc quit.

Signals:
  SIGHUP reload, SIGUSR1 pause, SIGUSR2 resume.

Options:
`)
		fs.PrintDefaults()
	}

	configFlag := fs.String("config", "", "Path to the composition file.")
	logLevelFlag := fs.String("log-level", "info", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	logFormatFlag := fs.String("log-format", "text", "Log output format: 'text' or 'json'.")
	widthFlag := fs.Int("width", 0, "Window width; overrides the composition.")
	heightFlag := fs.Int("height", 0, "Window height; overrides the composition.")
	shotFlag := fs.String("screenshot-dir", "screenshots", "Directory F12 screenshots are written to.")
	pausedFlag := fs.Bool("paused", false, "Start with the clock paused.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := *configFlag
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if path == "" {
		fs.Usage()
		return nil, false, &ExitError{Code: 2, Message: "missing composition file"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if *widthFlag < 0 || *heightFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "width and height must not be negative"}
	}

	return &options{
		ConfigPath:    path,
		LogLevel:      logLevel,
		LogFormat:     logFormat,
		Width:         *widthFlag,
		Height:        *heightFlag,
		ScreenshotDir: *shotFlag,
		Paused:        *pausedFlag,
	}, false, nil
}
