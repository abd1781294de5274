package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/wroteam/pillarcam/internal/annotator"
	"gocv.io/x/gocv"
)

func annotateAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("annotate takes exactly one image path")
	}
	input := c.Args().First()

	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	detection, err := loadDetectionConfig(c.String(flagConfig))
	if err != nil {
		return err
	}
	a, err := annotator.New(detection)
	if err != nil {
		return err
	}

	img := gocv.IMRead(input, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return errors.Errorf("cannot read image %s", input)
	}

	detections, err := a.Detect(&img)
	if err != nil {
		return err
	}
	if err := a.Draw(&img, detections); err != nil {
		return err
	}

	output := c.String(flagOutput)
	if output == "" {
		output = outlinedPath(input)
	}
	if !gocv.IMWrite(output, img) {
		return errors.Errorf("cannot write image %s", output)
	}

	for _, d := range detections {
		logger.Debugw("outlined regions", "target", d.Target, "contours", len(d.Contours))
		fmt.Fprintf(c.App.Writer, "%s: %d region(s)\n", d.Target, len(d.Contours))
	}
	logger.Infow("wrote outlined image", "path", output)
	return nil
}

// outlinedPath derives the default output name: photo.jpg -> photo.outlined.png.
func outlinedPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".outlined.png"
}
