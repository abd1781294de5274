package pipeline

import (
	"time"

	"github.com/pkg/errors"
	"github.com/wroteam/pillarcam/internal/analyzer"
	"github.com/wroteam/pillarcam/internal/capture"
	"github.com/wroteam/pillarcam/internal/command"
	"gocv.io/x/gocv"
)

// run is the detection loop. Each tick:
// 1. Read a frame from the camera
// 2. Analyze it for the dominant pillar
// 3. Outline pillars on a preview copy when an annotator is set
// 4. Map the result to a pillar command and send it if it changed
// 5. Send NoDetection once nothing valid was seen for the timeout
//
// The loop ends when stopCh closes or the camera reaches the end of its
// stream.
func (p *Pipeline) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(p.config.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			if !p.tick(now) {
				return
			}
		}
	}
}

// tick handles one frame and reports whether the loop should continue.
func (p *Pipeline) tick(now time.Time) bool {
	frame, err := p.camera.ReadFrame()
	if err != nil {
		p.count(func(s *Stats) { s.ReadErrors++ })
		if errors.Is(err, capture.ErrEndOfStream) {
			p.log.Infow("end of stream")
			p.send(command.NoDetection)
			return false
		}
		p.log.Warnw("error reading frame", "error", err)
		p.checkTimeout(now)
		return true
	}

	p.handleFrame(frame, now)
	frame.Close()
	return true
}

// handleFrame processes one frame. The caller keeps ownership of frame.
func (p *Pipeline) handleFrame(frame *gocv.Mat, now time.Time) {
	p.count(func(s *Stats) { s.Frames++ })

	var preview *gocv.Mat
	if p.config.Annotator != nil && p.config.OnFrame != nil {
		clone := frame.Clone()
		preview = &clone
		defer preview.Close()
		if err := p.config.Annotator.Process(preview); err != nil {
			p.log.Warnw("error annotating frame", "error", err)
		}
	}

	result, err := p.detector.Analyze(frame)
	if err != nil {
		p.count(func(s *Stats) { s.Failures++ })
		p.log.Warnw("error analyzing frame", "error", err)
		p.checkTimeout(now)
		return
	}

	if preview != nil {
		p.config.OnFrame(preview, result)
	}

	cmd, ok := p.config.Mapper.Map(result)
	if !ok {
		p.checkTimeout(now)
		return
	}

	p.mu.Lock()
	p.lastDetection = now
	p.stats.Detections++
	p.mu.Unlock()

	p.log.Debugw("pillar detected",
		"command", cmd.Pillar,
		"case", cmd.Case,
		"info", cmd.Info,
		"relative_x", relativeX(result),
	)
	p.send(cmd.Pillar)
}

// checkTimeout sends NoDetection once the last valid detection is older
// than the timeout.
func (p *Pipeline) checkTimeout(now time.Time) {
	p.mu.Lock()
	expired := now.Sub(p.lastDetection) > p.config.DetectionTimeout
	p.mu.Unlock()

	if expired {
		p.send(command.NoDetection)
	}
}

// send delivers command unless it repeats the last one delivered.
func (p *Pipeline) send(cmd string) {
	p.mu.Lock()
	if cmd == p.lastSent {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	if err := p.sink.Send(cmd); err != nil {
		p.log.Warnw("error sending command", "command", cmd, "error", err)
		return
	}

	p.mu.Lock()
	p.lastSent = cmd
	p.stats.Sent++
	p.mu.Unlock()

	p.log.Infow("command sent", "command", cmd)
}

func (p *Pipeline) count(f func(s *Stats)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f(&p.stats)
}

func relativeX(r *analyzer.Result) float64 {
	if r == nil {
		return 0
	}
	return r.Relative.X
}
