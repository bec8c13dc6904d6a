package main

import (
	"fmt"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/timelapse/pkg/adapters/osfilesystem"
	"github.com/user/timelapse/pkg/config"
	"github.com/user/timelapse/pkg/orchestrator"
	"github.com/user/timelapse/pkg/pipeline"
	"github.com/user/timelapse/pkg/summarizer"
	"github.com/user/timelapse/pkg/timelapse"
)

func createCommand() *cli.Command {
	flags := append(inputFlags(), videoFlags()...)
	flags = append(flags,
		&cli.BoolFlag{Name: "dry-run", Category: l10n.T(catOutput), Usage: l10n.T("Show the planned video without writing it")},
		&cli.StringFlag{Name: "summary", Category: l10n.T(catOutput), Usage: l10n.T("Output execution summary to file (Markdown format)")},
		&cli.BoolFlag{Name: "keep-partial", Category: l10n.T(catDebug), Usage: l10n.T("Keep an incomplete video when a run fails")},
		&cli.BoolFlag{Name: "no-lock", Category: l10n.T(catDebug), Usage: l10n.T("Do not lock the output file against concurrent runs")},
		&cli.StringFlag{Name: "debug-dir", Category: l10n.T(catDebug), Usage: l10n.T("Directory for debug output")},
	)
	flags = append(flags, settingsFlags()...)
	flags = append(flags, loggingFlags()...)

	return &cli.Command{
		Name:        "create",
		Usage:       l10n.T("Create a time-lapse video from photos"),
		Description: l10n.T("Scale the given photos, or every photo in the input folder, to one frame size and write them to a video."),
		ArgsUsage:   "[photo...]",
		Flags:       flags,
		Action:      runCreate,
	}
}

func runCreate(c *cli.Context) error {
	log, closeLog, err := newLogger(c)
	if err != nil {
		return err
	}
	defer closeLog()

	fs := osfilesystem.New()
	settings, settingsPath, err := loadSettings(c, fs, log)
	if err != nil {
		return err
	}
	if err := applyFlags(c, &settings); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	builder := timelapse.FromSettings(settings).
		WithInputs(c.Args().Slice()...).
		WithDebugDir(c.String("debug-dir")).
		WithKeepPartial(c.Bool("keep-partial"))
	cfg := builder.Build()
	cfg.NoLock = c.Bool("no-lock")

	opts := timelapse.Options{Logger: log}
	runCfg, err := timelapse.Plan(cfg, opts)
	if err != nil {
		return err
	}

	// Run the planned inputs as-is so the folder is not scanned twice.
	cfg.Inputs = runCfg.Inputs
	cfg.Width, cfg.Height = runCfg.TargetWidth, runCfg.TargetHeight
	cfg.UsePhotoSize = false

	folder := ""
	if c.NArg() == 0 {
		folder = cfg.InputFolder
	}
	sum := plannedSummary(folder, runCfg)
	fmt.Fprintln(c.App.Writer, renderSummary(sum))

	if c.Bool("save-settings") && settingsPath != "" {
		if err := config.Save(fs, settingsPath, settings); err != nil {
			log.Warn("Failed to save settings: %s", err)
		} else {
			log.Info("Settings saved to %s", settingsPath)
		}
	}

	if c.Bool("dry-run") {
		return nil
	}

	progress := newProgress(c.App.ErrWriter, !c.Bool("quiet"))
	opts.OnProgress = progress.Update
	result, runErr := timelapse.Create(c.Context, cfg, opts)
	progress.Finish()

	if runErr == nil {
		addResult(sum, result)
		fmt.Fprintln(c.App.Writer, renderSummary(sum))
	}

	if path := c.String("summary"); path != "" {
		w := summarizer.NewWriter(fs, summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		))
		if err := w.Write(path, sum); err != nil {
			log.Warn("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", path)
		}
	}

	return runErr
}

// plannedSummary describes a run before it starts.
func plannedSummary(folder string, cfg pipeline.RunConfig) *summarizer.Summary {
	spec := cfg.Spec()
	return summarizer.NewBuilder().
		WithInput(folder, len(cfg.Inputs)).
		WithSettings(summarizer.Settings{
			FPS:       cfg.FPS,
			Requested: cfg.Target(),
			Format:    spec.Format,
			Codec:     spec.Codec,
		}).
		Build()
}

// addResult fills in the video section after a successful run.
func addResult(sum *summarizer.Summary, r orchestrator.RunResult) {
	sum.GeneratedAt = time.Now()
	sum.Video = summarizer.VideoInfo{
		RunID:        r.RunID,
		Native:       r.Native,
		Resolved:     r.Resolved,
		Backend:      r.Backend,
		Codec:        r.Codec,
		FallbackUsed: r.FallbackUsed,
		Frames:       r.Frames,
		OutputPath:   r.OutputPath,
		FileSize:     r.FileSize,
		Elapsed:      r.Elapsed,
	}
}

func renderSummary(sum *summarizer.Summary) string {
	rows := summarizer.Rows(sum, l10n.T)
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Label, r.Value}
	}
	return renderTable([]string{l10n.T("Item"), l10n.T("Value")}, cells, nil)
}
