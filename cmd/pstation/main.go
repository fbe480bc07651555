package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/go-pstation/pstation/cdimage"
	"github.com/go-pstation/pstation/pstation"
)

func main() {
	app := cli.NewApp()
	app.Name = "pstation"
	app.Description = "A PlayStation execution-substrate emulator"
	app.Usage = "pstation [options] <boot ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "disc",
			Usage: "Path to a disc image (raw 2352-byte sectors or ISO 2048-byte sectors)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn, or error",
			Value: "info",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("error running emulator", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	setLogLevel(c.String("log-level"))

	bootROM := c.Args().Get(0)
	if bootROM == "" {
		cli.ShowAppHelp(c)
		return errors.New("no boot ROM path provided")
	}

	m, err := pstation.NewWithBootROM(bootROM, nil)
	if err != nil {
		return fmt.Errorf("initialize machine: %w", err)
	}

	if discPath := c.String("disc"); discPath != "" {
		f, err := os.Open(discPath)
		if err != nil {
			return fmt.Errorf("open disc image: %w", err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat disc image: %w", err)
		}
		m.LoadDisc(cdimage.Open(f, info.Size()))
	}

	if !c.Bool("headless") {
		return errors.New("only --headless execution is supported; there is no windowed front end")
	}

	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}

	slog.Info("running headless", "frames", frames)
	for i := 0; i < frames; i++ {
		m.RunUntilFrame()
		if (i+1)%60 == 0 {
			slog.Info("frame progress", "completed", i+1, "total", frames)
		}
	}
	slog.Info("headless execution completed", "frames", m.FrameCount())

	return nil
}

func setLogLevel(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
