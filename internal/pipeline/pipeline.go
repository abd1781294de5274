// Package pipeline runs the pillar detection loop: capture a frame, find the
// dominant pillar, map it to a command and hand changed commands to a sink.
package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/wroteam/pillarcam/internal/analyzer"
	"github.com/wroteam/pillarcam/internal/annotator"
	"github.com/wroteam/pillarcam/internal/capture"
	"github.com/wroteam/pillarcam/internal/command"
	"github.com/wroteam/pillarcam/internal/logging"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Pipeline timing defaults.
const (
	DefaultFPS = 30
	// DefaultDetectionTimeout is how long the pipeline waits without a valid
	// detection before sending command.NoDetection.
	DefaultDetectionTimeout = 200 * time.Millisecond
)

// ErrClosed is returned by Start after Stop released the pipeline's resources.
var ErrClosed = errors.New("pipeline is closed")

// FrameHook receives the outlined copy of every frame, for previews. The
// frame is closed when the hook returns.
type FrameHook func(frame *gocv.Mat, result *analyzer.Result)

// Config holds configuration options for the pipeline.
type Config struct {
	FPS              int
	DetectionTimeout time.Duration
	// Annotator outlines pillars on the preview copy. Nil disables previews.
	Annotator *annotator.Annotator
	Mapper    *command.Mapper
	OnFrame   FrameHook
	Logger    *zap.SugaredLogger
}

// Stats counts what the pipeline has done since it was created.
type Stats struct {
	Frames     int
	ReadErrors int
	Failures   int
	Detections int
	Sent       int
}

// Pipeline processes frames strictly one at a time on a single goroutine.
type Pipeline struct {
	config   Config
	camera   capture.Camera
	detector analyzer.Detector
	sink     Sink
	log      *zap.SugaredLogger

	mu      sync.Mutex
	stopCh  chan struct{}
	done    chan struct{}
	closed  bool
	session string

	lastSent      string
	lastDetection time.Time
	stats         Stats
}

// New creates a Pipeline. Zero config values take their defaults.
func New(config Config, camera capture.Camera, detector analyzer.Detector, sink Sink) *Pipeline {
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	if config.DetectionTimeout <= 0 {
		config.DetectionTimeout = DefaultDetectionTimeout
	}
	if config.Mapper == nil {
		config.Mapper = command.NewMapper()
	}

	return &Pipeline{
		config:   config,
		camera:   camera,
		detector: detector,
		sink:     sink,
		log:      logging.OrNop(config.Logger).Named("pipeline"),
	}
}

// Start opens the camera and begins the detection loop. Starting a running
// pipeline is a no-op.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.stopCh != nil {
		return nil
	}

	if err := p.camera.Open(); err != nil {
		return errors.Wrap(err, "open camera")
	}
	p.camera.SetFPS(p.config.FPS)

	p.session = uuid.NewString()
	p.log = logging.OrNop(p.config.Logger).Named("pipeline").With("session", p.session)
	p.lastDetection = time.Now()
	p.lastSent = ""

	p.stopCh = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stopCh, p.done)

	p.log.Infow("detection pipeline started", "fps", p.config.FPS, "timeout", p.config.DetectionTimeout)
	return nil
}

// Stop halts the loop, then closes the camera and the detector. Further
// calls are no-ops.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	stopCh, done := p.stopCh, p.done
	p.stopCh = nil
	p.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	if err := p.camera.Close(); err != nil {
		p.log.Warnw("error closing camera", "error", err)
	}
	if p.detector != nil {
		if err := p.detector.Close(); err != nil {
			p.log.Warnw("error closing detector", "error", err)
		}
	}

	stats := p.Stats()
	p.log.Infow("detection pipeline stopped",
		"frames", stats.Frames,
		"detections", stats.Detections,
		"sent", stats.Sent,
	)
}

// Running reports whether the loop is active.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopCh == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Done is closed when the loop exits, either from Stop or because the
// camera reached the end of its stream. It is nil before Start.
func (p *Pipeline) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Session returns the ID of the current or last run.
func (p *Pipeline) Session() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Stats returns a snapshot of the counters.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// LastCommand returns the last command delivered to the sink.
func (p *Pipeline) LastCommand() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSent
}
