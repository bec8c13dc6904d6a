package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/timelapse/pkg/adapters/osfilesystem"
	"github.com/user/timelapse/pkg/adapters/smartwriter"
	"github.com/user/timelapse/pkg/adapters/videoprobe"
	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/stages/preview"
	"github.com/user/timelapse/pkg/timelapse"
)

func previewCommand() *cli.Command {
	flags := append(inputFlags(),
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Category: l10n.T(catOutput), Usage: l10n.T("Contact sheet image path (.png or .jpg)")},
		&cli.IntFlag{Name: "cell", Value: preview.DefaultOptions().Cell, Category: l10n.T(catOutput), Usage: l10n.T("Thumbnail size in pixels")},
		&cli.IntFlag{Name: "columns", Value: preview.DefaultOptions().Columns, Category: l10n.T(catOutput), Usage: l10n.T("Thumbnails per row")},
		&cli.BoolFlag{Name: "no-labels", Category: l10n.T(catOutput), Usage: l10n.T("Omit frame numbers under thumbnails")},
	)
	flags = append(flags, settingsFlags()[:1]...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:        "preview",
		Usage:       l10n.T("Render a contact sheet of the photos in frame order"),
		Description: l10n.T("Render numbered thumbnails of every readable photo to check the frame order before creating a video."),
		ArgsUsage:   "[photo...]",
		Flags:       flags,
		Action:      runPreview,
	}
}

func runPreview(c *cli.Context) error {
	log, closeLog, err := newLogger(c)
	if err != nil {
		return err
	}
	defer closeLog()

	settings, _, err := loadSettings(c, osfilesystem.New(), log)
	if err != nil {
		return err
	}
	if err := applyFlags(c, &settings); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	cfg := timelapse.FromSettings(settings).WithInputs(c.Args().Slice()...).Build()

	opts := preview.DefaultOptions()
	opts.Cell = c.Int("cell")
	opts.Columns = c.Int("columns")
	opts.Labels = !c.Bool("no-labels")

	result, err := timelapse.Preview(c.Context, cfg, opts, timelapse.Options{Logger: log})
	if err != nil {
		return err
	}
	out := c.String("out")
	if err := timelapse.SavePreview(result.Image, out); err != nil {
		return err
	}
	log.Info("Preview saved to %s (%d photos, %d skipped)", out, result.Cells, len(result.Skipped))
	return nil
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:        "inspect",
		Usage:       l10n.T("Show the stream properties of video files"),
		Description: l10n.T("Read the container headers of AVI and MP4 files written by timelapse."),
		ArgsUsage:   "<video...>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit(l10n.T("At least one video argument is required"), 2)
			}
			var rows [][]string
			for _, path := range c.Args().Slice() {
				info, err := videoprobe.ProbeFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				rows = append(rows, []string{
					filepath.Base(path),
					string(info.Container),
					pipeline.FourCC(info.Codec).String(),
					fmt.Sprintf("%d x %d", info.Width, info.Height),
					fmt.Sprintf("%d", info.Frames),
					humanize.Ftoa(info.FPS),
					info.Duration().String(),
				})
			}
			fmt.Fprintln(c.App.Writer, renderTable(
				[]string{l10n.T("File"), l10n.T("Container"), l10n.T("Codec"), l10n.T("Frame Size"), l10n.T("Frames"), l10n.T("FPS"), l10n.T("Duration")},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:        "formats",
		Usage:       l10n.T("List video formats and the writer serving each"),
		Description: l10n.T("Show which writer backend would produce each format on this machine."),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ffmpeg", Category: l10n.T(catWriter), Usage: l10n.T("Path to the ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)")},
			&cli.BoolFlag{Name: "no-fallback", Category: l10n.T(catWriter), Usage: l10n.T("Fail instead of writing MJPEG when ffmpeg is missing")},
		},
		Action: func(c *cli.Context) error {
			opts := smartwriter.DefaultOptions()
			opts.FFmpegPath = c.String("ffmpeg")
			opts.AllowFallback = !c.Bool("no-fallback")

			var rows [][]string
			for _, a := range smartwriter.New(opts).Probe() {
				writer := a.Backend
				switch {
				case !a.OK:
					writer = l10n.T("unavailable")
				case a.Fallback:
					writer += " (" + l10n.T("fallback") + ")"
				}
				rows = append(rows, []string{
					string(a.Spec.Format),
					a.Spec.Codec.String(),
					"." + a.Spec.Extension,
					writer,
				})
			}
			fmt.Fprintln(c.App.Writer, renderTable(
				[]string{l10n.T("Format"), l10n.T("Codec"), l10n.T("Extension"), l10n.T("Writer")},
				rows, nil,
			))
			return nil
		},
	}
}
