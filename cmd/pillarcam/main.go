// Command pillarcam bench-tests pillar detection against a webcam, a video
// file or a still image.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/wroteam/pillarcam/internal/logging"
	"github.com/wroteam/pillarcam/internal/pipeline"
	"go.uber.org/zap"
)

const (
	flagLogLevel = "log-level"
	flagJSONLogs = "json-logs"
	flagConfig   = "config"
	flagDevice   = "device"
	flagFile     = "file"
	flagFPS      = "fps"
	flagTimeout  = "timeout"
	flagRecord   = "record"
	flagSerial   = "serial"
	flagBaud     = "baud"
	flagDebug    = "debug"
	flagOutput   = "output"
)

var app = &cli.App{
	Name:            "pillarcam",
	Usage:           "detect green and red pillars and print drive commands",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  flagLogLevel,
			Value: "info",
			Usage: "log level (debug, info, warn, error)",
		},
		&cli.BoolFlag{
			Name:  flagJSONLogs,
			Usage: "write logs as JSON",
		},
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load the detection config from JSON `FILE`",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "run",
			Usage:  "run the detection loop and print a command whenever it changes",
			Action: runAction,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    flagDevice,
					Aliases: []string{"d"},
					Usage:   "camera device `ID`",
				},
				&cli.StringFlag{
					Name:    flagFile,
					Aliases: []string{"f"},
					Usage:   "replay a video `FILE` instead of a camera",
				},
				&cli.IntFlag{
					Name:  flagFPS,
					Value: pipeline.DefaultFPS,
					Usage: "frames per second",
				},
				&cli.DurationFlag{
					Name:  flagTimeout,
					Value: pipeline.DefaultDetectionTimeout,
					Usage: "time without a detection before sending N",
				},
				&cli.StringFlag{
					Name:  flagRecord,
					Usage: "write the outlined frames to an MJPG `FILE`",
				},
				&cli.StringFlag{
					Name:  flagSerial,
					Usage: "write commands to the serial port at `PATH` instead of stdout",
				},
				&cli.UintFlag{
					Name:  flagBaud,
					Value: defaultBaudRate,
					Usage: "serial port baud rate",
				},
				&cli.BoolFlag{
					Name:  flagDebug,
					Usage: "draw the center and bounding box of the dominant pillar",
				},
			},
		},
		{
			Name:      "annotate",
			Usage:     "outline green and red regions in an image",
			ArgsUsage: "<image>",
			Action:    annotateAction,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagOutput,
					Aliases: []string{"o"},
					Usage:   "write the outlined image to `FILE` (default: <image>.outlined.png)",
				},
			},
		},
	},
}

func newLogger(c *cli.Context) (*zap.SugaredLogger, error) {
	return logging.New("pillarcam", logging.Options{
		Level: c.String(flagLogLevel),
		JSON:  c.Bool(flagJSONLogs),
	})
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
