package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/wroteam/pillarcam/internal/analyzer"
	"github.com/wroteam/pillarcam/internal/annotator"
	"github.com/wroteam/pillarcam/internal/capture"
	"github.com/wroteam/pillarcam/internal/pipeline"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

func runAction(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	detection, err := loadDetectionConfig(c.String(flagConfig))
	if err != nil {
		return err
	}
	outliner, err := annotator.New(detection)
	if err != nil {
		return err
	}

	analyzerConfig := analyzer.DefaultConfig()
	analyzerConfig.Debug = c.Bool(flagDebug)
	detector, err := analyzer.New(analyzerConfig, logger)
	if err != nil {
		return err
	}

	camConfig := capture.DefaultConfig()
	camConfig.FPS = c.Int(flagFPS)
	var cam capture.Camera
	if path := c.String(flagFile); path != "" {
		cam = capture.NewFileCamera(path, camConfig)
	} else {
		cam = capture.NewCamera(c.Int(flagDevice), camConfig)
	}

	sink, closeSink, err := openSink(c.String(flagSerial), c.Uint(flagBaud))
	if err != nil {
		detector.Close()
		return err
	}
	defer closeSink()

	rec := &recorder{path: c.String(flagRecord), fps: float64(camConfig.FPS), log: logger}
	defer rec.Close()

	config := pipeline.Config{
		FPS:              c.Int(flagFPS),
		DetectionTimeout: c.Duration(flagTimeout),
		Logger:           logger,
	}
	if rec.path != "" {
		config.Annotator = outliner
		config.OnFrame = rec.Write
	}

	p := pipeline.New(config, cam, detector, sink)
	if err := p.Start(); err != nil {
		detector.Close()
		return errors.Wrapf(err, "start %v", cam)
	}
	defer p.Stop()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Infow("shutting down")
	case <-p.Done():
	}
	return nil
}

// recorder writes outlined preview frames to a video file. The writer is
// created from the first frame's size.
type recorder struct {
	path   string
	fps    float64
	log    *zap.SugaredLogger
	writer *gocv.VideoWriter
	failed bool
}

func (r *recorder) Write(frame *gocv.Mat, result *analyzer.Result) {
	if r.failed {
		return
	}
	if r.writer == nil {
		w, err := gocv.VideoWriterFile(r.path, "MJPG", r.fps, frame.Cols(), frame.Rows(), true)
		if err != nil {
			r.log.Warnw("cannot record outlined frames", "path", r.path, "error", err)
			r.failed = true
			return
		}
		r.writer = w
	}
	if err := r.writer.Write(*frame); err != nil {
		r.log.Warnw("error recording frame", "error", err)
	}
}

func (r *recorder) Close() {
	if r.writer != nil {
		r.writer.Close()
	}
}
