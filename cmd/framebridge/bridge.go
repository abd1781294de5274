package main

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/wroteam/pillarcam/internal/annotator"
	"github.com/wroteam/pillarcam/internal/logging"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Status codes returned across the C boundary.
const (
	statusOK           int32 = 0
	statusInvalidInput int32 = 1
	statusFailure      int32 = 2
)

var (
	mu     sync.RWMutex
	active = annotator.NewDefault()

	log = newLogger()
)

func newLogger() *zap.SugaredLogger {
	logger, err := logging.New("framebridge", logging.Options{Level: "warn"})
	if err != nil {
		return logging.OrNop(nil)
	}
	return logger
}

func current() *annotator.Annotator {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// processFrame wraps buf as a BGR Mat, annotates it and writes the pixels
// back into buf.
func processFrame(buf []byte, width, height int) (status int32) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("recovered while processing frame", "panic", r)
			status = statusFailure
		}
	}()

	if width <= 0 || height <= 0 || len(buf) == 0 || len(buf) != width*height*3 {
		return statusInvalidInput
	}

	frame, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, buf)
	if err != nil {
		log.Warnw("cannot wrap frame buffer", "width", width, "height", height, "error", err)
		return statusFailure
	}
	defer frame.Close()

	if err := current().Process(&frame); err != nil {
		if errors.Is(err, annotator.ErrInvalidInput) {
			return statusInvalidInput
		}
		log.Warnw("frame processing failed", "error", err)
		return statusFailure
	}

	copy(buf, frame.ToBytes())
	return statusOK
}

// configure swaps the active annotator for one built from a JSON attribute
// object.
func configure(raw string) int32 {
	cfg := annotator.DefaultConfig()

	if strings.TrimSpace(raw) != "" {
		var attrs map[string]any
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			log.Warnw("detection config is not a JSON object", "error", err)
			return statusInvalidInput
		}
		decoded, err := annotator.DecodeConfig(attrs)
		if err != nil {
			log.Warnw("detection config rejected", "error", err)
			return statusInvalidInput
		}
		cfg = decoded
	}

	next, err := annotator.New(cfg)
	if err != nil {
		log.Warnw("detection config rejected", "error", err)
		return statusInvalidInput
	}

	mu.Lock()
	active = next
	mu.Unlock()
	return statusOK
}
