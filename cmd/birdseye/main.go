// Command birdseye переводит один снимок в вид сверху.
//
//	birdseye [--out temp/output.png] photo.jpg '{"camera_height": 15.5, "tilt_angle": 30, "focal_length": 400, "principal_point": [320, 240]}'
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	app "birdseye/internal/application"
	"birdseye/internal/domain/entity"
	"birdseye/internal/infrastructure/imageio"
	"birdseye/internal/infrastructure/vision"
	"birdseye/internal/logging"
)

const (
	flagOut       = "out"
	flagMaxWidth  = "max-width"
	flagMaxHeight = "max-height"
	flagBackend   = "backend"
	flagDebug     = "debug"

	defaultOutput = "temp/output.png"
)

// Коды выхода по видам ошибок.
const (
	exitParameter   = 2
	exitInput       = 3
	exitComputation = 4
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "birdseye",
		Usage:     "transform a forward-facing camera image into a bird's-eye view",
		ArgsUsage: "<image-path> '<json-params>'",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagOut,
				Aliases: []string{"o"},
				Value:   defaultOutput,
				Usage:   "write the result to `FILE`",
			},
			&cli.IntFlag{
				Name:  flagMaxWidth,
				Value: app.DefaultMaxWidth,
				Usage: "fit the result into this width",
			},
			&cli.IntFlag{
				Name:  flagMaxHeight,
				Value: app.DefaultMaxHeight,
				Usage: "fit the result into this height",
			},
			&cli.StringFlag{
				Name:    flagBackend,
				Value:   vision.BackendNative,
				Usage:   "warp backend: native or gocv",
				EnvVars: []string{"WARP_BACKEND"},
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		return entity.NewParameterError("expected 2 arguments, got %d; usage: %s %s", c.NArg(), c.App.Name, c.App.ArgsUsage)
	}

	level := "info"
	if c.Bool(flagDebug) {
		level = "debug"
	}
	logger, err := logging.New("birdseye", level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Сначала параметры, затем изображение: обе ошибки возникают до вычислений.
	params, err := entity.ParseTiltParameters([]byte(c.Args().Get(1)))
	if err != nil {
		return err
	}
	img, err := imageio.Load(c.Args().Get(0))
	if err != nil {
		return err
	}

	warper, fitter, err := vision.NewBackend(c.String(flagBackend))
	if err != nil {
		return err
	}
	svc := app.NewTransformService(warper, fitter, nil, logger, app.DefaultMaxCanvasSide)

	res, err := svc.Transform(context.Background(), img, params, c.Int(flagMaxWidth), c.Int(flagMaxHeight))
	if err != nil {
		return err
	}

	out := c.String(flagOut)
	if err := imageio.Save(out, res.Image); err != nil {
		return errors.Wrapf(err, "save %s", out)
	}

	logger.Info("saved",
		zap.String("path", out),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Bool("scaled", res.Scaled),
	)
	fmt.Fprintln(c.App.Writer, out)
	return nil
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	switch {
	case errors.As(err, &coder):
		return coder.ExitCode()
	case errors.Is(err, entity.ErrParameter):
		return exitParameter
	case errors.Is(err, entity.ErrInput):
		return exitInput
	case errors.Is(err, entity.ErrComputation):
		return exitComputation
	default:
		return 1
	}
}
