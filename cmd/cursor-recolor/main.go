package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ironsheep/cursor-recolor/internal/batch"
	"github.com/ironsheep/cursor-recolor/internal/palette"
	"github.com/ironsheep/cursor-recolor/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// CLI is the command line of cursor-recolor.
type CLI struct {
	Workers  int              `short:"w" default:"0" env:"CURSOR_RECOLOR_WORKERS" help:"Maximum number of images recolored at once (0 = number of CPUs)."`
	LogLevel string           `default:"info" enum:"debug,info,warn,error" env:"CURSOR_RECOLOR_LOG_LEVEL" help:"Log level (${enum})."`
	Serve    bool             `help:"Serve the recolor tools over MCP (JSON-RPC on stdin/stdout) instead of running one batch."`
	Version  kong.VersionFlag `short:"v" help:"Print version information and exit."`
}

const description = `Recolor cursor theme images from a base palette to a target palette.

Reads a batch descriptor as JSON on stdin, either
  {"base_palette": [...], "target_palette": [...], "jobs": [{"img_path": ..., "out_path": ...}]}
or the legacy array form
  [{"img_path": ..., "out_path": ..., "base_palette": [...], "target_palette": [...]}, ...]
and writes every recolored image as PNG. Failed images are reported on stderr
and do not change the exit status.`

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("cursor-recolor"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("cursor-recolor %s (built %s, commit %s)", Version, BuildTime, GitCommit)},
	)

	os.Exit(run(&cli, os.Stdin, os.Stdout, os.Stderr))
}

// run executes the parsed command line and returns the process exit status.
// Logs and diagnostics go to stderr; stdout is only used by the MCP server.
func run(cli *CLI, stdin io.Reader, stdout, stderr io.Writer) int {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		fmt.Fprintf(stderr, "invalid log level %q: %v\n", cli.LogLevel, err)
		return 2
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cli.Serve {
		logger.Debug("starting MCP server", "version", Version, "build_time", BuildTime, "commit", GitCommit)
		srv := server.New(server.Config{Workers: cli.Workers, Version: Version, Logger: logger})
		if err := srv.Run(stdin, stdout); err != nil {
			logger.Error("server error", "error", err)
			return 1
		}
		return 0
	}

	b, err := batch.Decode(stdin, logger)
	if err != nil {
		return fatal(stderr, err)
	}

	report, err := batch.Run(b, batch.Options{Workers: cli.Workers, Logger: logger})
	if err != nil {
		return fatal(stderr, err)
	}

	if err := report.WriteFailures(stderr); err != nil {
		logger.Error("could not write diagnostics", "error", err)
	}
	return 0
}

// fatal reports a batch-level error. Only configuration and palette errors
// reach here; both abort before any image is written.
func fatal(stderr io.Writer, err error) int {
	var ce *batch.ConfigError
	var pe *palette.PaletteError
	switch {
	case errors.As(err, &ce):
		fmt.Fprintf(stderr, "Invalid job list: %v\n", err)
	case errors.As(err, &pe):
		fmt.Fprintf(stderr, "Invalid palette: %v\n", err)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}
