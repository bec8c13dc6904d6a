// Package main provides the CLI entry point for timelapse.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/timelapse/pkg/pipeline"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "timelapse",
		Usage:       l10n.T("Assemble a folder of photos into a time-lapse video"),
		Version:     version,
		Description: l10n.T("timelapse scales photos to a common frame size and writes them in order to an AVI or MP4 video."),
		Commands: []*cli.Command{
			createCommand(),
			previewCommand(),
			inspectCommand(),
			formatsCommand(),
			versionCommand(),
		},
	}
}

// exitCode maps run errors to process exit codes.
func exitCode(err error) int {
	var coder cli.ExitCoder
	switch {
	case errors.As(err, &coder):
		return coder.ExitCode()
	case errors.Is(err, pipeline.ErrCancelled):
		return 130
	default:
		return 1
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:        "version",
		Usage:       l10n.T("Show version information"),
		Description: l10n.T("Display the version of timelapse."),
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, l10n.F("timelapse (Go) version %s", version))
			return nil
		},
	}
}
